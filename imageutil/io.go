package imageutil

import (
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"  // Register BMP decoder
	_ "golang.org/x/image/tiff" // Register TIFF decoder
	_ "golang.org/x/image/webp" // Register WebP decoder
)

// LoadGray loads an image from the specified path and converts it to
// grayscale. Supports PNG, JPEG, GIF, BMP, TIFF and WebP formats.
func LoadGray(path string) (*GrayImage, error) {
	img, err := decodeFile(path)
	if err != nil {
		return nil, err
	}
	gray := ToGray(img)
	tracer().Debugf("loaded %s: %dx%d", path, gray.Width(), gray.Height())
	return gray, nil
}

// fallbackLoaders are tried in order when the Go decoders cannot read a
// file. Optional loaders register themselves here (see the gocv build tag).
var fallbackLoaders []func(path string) (*GrayImage, error)

// OpenGray loads path with the Go decoders and falls back to any optional
// loader compiled into the binary.
func OpenGray(path string) (*GrayImage, error) {
	gray, err := LoadGray(path)
	if err == nil {
		return gray, nil
	}
	for _, load := range fallbackLoaders {
		if gray, ferr := load(path); ferr == nil {
			tracer().Infof("%s decoded by fallback loader", path)
			return gray, nil
		}
	}
	return nil, err
}

func decodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

// SaveImage saves an image to the specified path.
// Format is determined by file extension (png, jpg/jpeg, gif).
func SaveImage(img image.Image, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".png":
		return png.Encode(f, img)
	case ".jpg", ".jpeg":
		return jpeg.Encode(f, img, &jpeg.Options{Quality: 95})
	case ".gif":
		return gif.Encode(f, img, nil)
	default:
		// Default to PNG
		return png.Encode(f, img)
	}
}

// SavePNG saves a grayscale image as PNG to the specified path.
func SavePNG(img *GrayImage, path string) error {
	return SaveImage(img.Gray, path)
}
