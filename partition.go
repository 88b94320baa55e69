package img2glyph

import "image"

// Region is a read-only rectangular window into an image's coordinate
// space. It does not own pixel data.
type Region struct {
	X, Y          int
	Width, Height int
}

// Rect returns the region as an image.Rectangle.
func (r Region) Rect() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// Partition splits a width x height image into regions of
// partitionWidth x partitionHeight, enumerated row-major: top row first,
// left to right within a row. The order determines the layout of the
// output grid.
//
// When the partition is at least as large as the image in either
// dimension a single region covering the whole image is returned. Regions
// that would cross the right or bottom edge are dropped unless keepPartial
// is set, in which case they are truncated to the remaining pixels.
func Partition(
	imageWidth, imageHeight int,
	partitionWidth, partitionHeight int,
	keepPartial bool,
) []Region {
	if imageWidth <= 0 || imageHeight <= 0 {
		return nil
	}
	if partitionWidth <= 0 || partitionHeight <= 0 {
		return nil
	}
	if partitionWidth >= imageWidth || partitionHeight >= imageHeight {
		return []Region{{X: 0, Y: 0, Width: imageWidth, Height: imageHeight}}
	}

	cols := (imageWidth + partitionWidth - 1) / partitionWidth
	rows := (imageHeight + partitionHeight - 1) / partitionHeight
	regions := make([]Region, 0, cols*rows)
	for y := 0; y < imageHeight; y += partitionHeight {
		for x := 0; x < imageWidth; x += partitionWidth {
			w, h := partitionWidth, partitionHeight
			if x+w > imageWidth || y+h > imageHeight {
				if !keepPartial {
					continue
				}
				w = min(w, imageWidth-x)
				h = min(h, imageHeight-y)
			}
			regions = append(regions, Region{X: x, Y: y, Width: w, Height: h})
		}
	}
	return regions
}

// GridColumns returns the number of regions per output row for the given
// partitioning, matching what Partition emits.
func GridColumns(imageWidth, imageHeight, partitionWidth, partitionHeight int, keepPartial bool) int {
	if imageWidth <= 0 || imageHeight <= 0 || partitionWidth <= 0 || partitionHeight <= 0 {
		return 0
	}
	if partitionWidth >= imageWidth || partitionHeight >= imageHeight {
		return 1
	}
	cols := imageWidth / partitionWidth
	if keepPartial && imageWidth%partitionWidth != 0 {
		cols++
	}
	return cols
}
