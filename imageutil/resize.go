package imageutil

import (
	"image"

	"golang.org/x/image/draw"
)

// Interpolation specifies the interpolation method for resizing.
type Interpolation int

const (
	// InterpolationArea uses Catmull-Rom for high-quality downscaling.
	// This is the closest equivalent to OpenCV's INTER_AREA.
	InterpolationArea Interpolation = iota

	// InterpolationLinear uses bilinear interpolation.
	// Equivalent to OpenCV's INTER_LINEAR.
	InterpolationLinear

	// InterpolationNearest uses nearest-neighbor interpolation.
	// Fastest but lowest quality.
	InterpolationNearest
)

func (interp Interpolation) scaler() draw.Scaler {
	switch interp {
	case InterpolationLinear:
		return draw.BiLinear
	case InterpolationNearest:
		return draw.NearestNeighbor
	default:
		// CatmullRom provides high quality for both up and down scaling
		return draw.CatmullRom
	}
}

// ResizeGray resizes a grayscale image to the specified dimensions.
func ResizeGray(img *GrayImage, width, height int, interp Interpolation) *GrayImage {
	dst := NewGrayImage(width, height)
	dstRect := image.Rect(0, 0, width, height)
	interp.scaler().Scale(dst.Gray, dstRect, img.Gray, img.Bounds(), draw.Src, nil)
	return dst
}

// ResizeGrayToWidth resizes an image to the specified width while
// maintaining aspect ratio. Images already narrower than width are
// returned unchanged.
func ResizeGrayToWidth(img *GrayImage, width int, interp Interpolation) *GrayImage {
	if width <= 0 || img.Width() <= width {
		return img
	}
	aspectRatio := float64(img.Width()) / float64(img.Height())
	height := max(int(float64(width)/aspectRatio), 1)
	tracer().Debugf("resizing %dx%d to %dx%d", img.Width(), img.Height(), width, height)
	return ResizeGray(img, width, height, interp)
}
