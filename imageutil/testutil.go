package imageutil

import "image"

// CreateBlankImage creates an all-white (no ink) image.
func CreateBlankImage(width, height int) *GrayImage {
	img := NewGrayImage(width, height)
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	return img
}

// CreateGradientImage creates a horizontal gradient test image, black on
// the left and white on the right.
func CreateGradientImage(width, height int) *GrayImage {
	img := NewGrayImage(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetGrayValue(x, y, uint8(255*x/max(width-1, 1)))
		}
	}
	return img
}

// CreateCheckerboardImage creates a checkerboard pattern whose top-left
// square is white.
func CreateCheckerboardImage(width, height, squareSize int) *GrayImage {
	img := NewGrayImage(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if ((x/squareSize)+(y/squareSize))%2 == 0 {
				img.SetGrayValue(x, y, 255)
			} else {
				img.SetGrayValue(x, y, 0)
			}
		}
	}
	return img
}

// FillRect paints a rectangle of the image with value v.
func FillRect(img *GrayImage, rect image.Rectangle, v uint8) {
	rect = rect.Intersect(img.Bounds())
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			img.SetGrayValue(x, y, v)
		}
	}
}

// CalculateMaxDiff returns the largest per-pixel difference between two
// images of the same size, or -1 if the sizes differ.
func CalculateMaxDiff(img1, img2 *GrayImage) int {
	if img1.Width() != img2.Width() || img1.Height() != img2.Height() {
		return -1
	}
	maxDiff := 0
	for y := 0; y < img1.Height(); y++ {
		for x := 0; x < img1.Width(); x++ {
			d := int(img1.Intensity(x, y)) - int(img2.Intensity(x, y))
			if d < 0 {
				d = -d
			}
			maxDiff = max(maxDiff, d)
		}
	}
	return maxDiff
}
