//go:build gocv

package imageutil

import (
	"fmt"

	"gocv.io/x/gocv"
)

// LoadGrayGoCV decodes an image through OpenCV, which covers formats the
// Go decoders do not (e.g. JPEG 2000, OpenEXR). Build with -tags gocv.
func LoadGrayGoCV(path string) (*GrayImage, error) {
	mat := gocv.IMRead(path, gocv.IMReadGrayScale)
	if mat.Empty() {
		return nil, fmt.Errorf("could not read image from %s", path)
	}
	defer mat.Close()

	return grayFromMat(mat), nil
}

// grayFromMat copies a single-channel 8-bit Mat into a GrayImage.
func grayFromMat(mat gocv.Mat) *GrayImage {
	height, width := mat.Rows(), mat.Cols()
	img := NewGrayImage(width, height)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Gray.Pix[y*img.Stride+x] = mat.GetUCharAt(y, x)
		}
	}
	return img
}

func init() {
	fallbackLoaders = append(fallbackLoaders, LoadGrayGoCV)
}
