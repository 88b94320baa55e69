package imageutil

import (
	"image"
	"image/color"
)

// ToGrayscale converts an RGBA image to grayscale using the standard
// luminance formula: Y = 0.299*R + 0.587*G + 0.114*B
// This matches the BT.601 standard used by OpenCV's COLOR_BGR2GRAY.
func ToGrayscale(img *RGBAImage) *GrayImage {
	width, height := img.Width(), img.Height()
	gray := NewGrayImage(width, height)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := img.RGBAAt(x, y)
			// Transparent pixels count as paper.
			r, g, b := blendOnWhite(c)
			lum := (299*r + 587*g + 114*b + 500) / 1000
			if lum > 255 {
				lum = 255
			}
			gray.Gray.SetGray(x, y, color.Gray{Y: uint8(lum)})
		}
	}

	return gray
}

// blendOnWhite composites a premultiplied color over a white background.
func blendOnWhite(c color.RGBA) (r, g, b int) {
	paper := 255 - int(c.A)
	return int(c.R) + paper, int(c.G) + paper, int(c.B) + paper
}

// ToGray converts any decoded image to a GrayImage. Gray images are
// copied as-is.
func ToGray(img image.Image) *GrayImage {
	if g, ok := img.(*image.Gray); ok {
		bounds := g.Bounds()
		gray := NewGrayImage(bounds.Dx(), bounds.Dy())
		for y := 0; y < bounds.Dy(); y++ {
			copy(gray.Pix[y*gray.Stride:y*gray.Stride+bounds.Dx()],
				g.Pix[g.PixOffset(bounds.Min.X, bounds.Min.Y+y):])
		}
		return gray
	}
	return ToGrayscale(RGBAImageFromImage(img))
}
