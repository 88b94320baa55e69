package img2glyph

import (
	"fmt"
	"strings"
)

// cellWidth is the number of terminal columns per pixel; two roughly
// square up the 1:2 aspect of a terminal cell.
const cellWidth = 2

// FormatPoints draws a width x height canvas with a full block for every
// point of ps, framed by a box. Points outside the canvas are ignored.
func FormatPoints(ps PointSet, width, height int) string {
	return formatCanvas(width, height, func(x, y int) bool {
		if x > 0xffff || y > 0xffff {
			return false
		}
		return ps.Contains(Point{X: uint16(x), Y: uint16(y)})
	})
}

// FormatBitmap draws a glyph bitmap, marking the cells accepted by
// isForeground.
func FormatBitmap(b Bitmap, isForeground ForegroundFunc) string {
	return formatCanvas(b.Width, b.Height, func(x, y int) bool {
		i := y*b.Width + x
		return i < len(b.Pix) && isForeground(b.Pix[i])
	})
}

// ExplainRegion draws the ink of the region at row, col of a grid Render
// returned for img, followed by the bitmap of the glyph it was matched to.
func (r *Renderer) ExplainRegion(img Image, grid *Grid, row, col int) (string, error) {
	if row < 0 || row >= grid.Rows() || col < 0 || col >= grid.Columns() {
		return "", fmt.Errorf("%w: cell (%d,%d) outside %dx%d grid",
			ErrInvalidDimensions, row, col, grid.Rows(), grid.Columns())
	}
	regions := Partition(img.Width(), img.Height(), r.RegionWidth, r.RegionHeight, r.KeepPartial)
	cols := GridColumns(img.Width(), img.Height(), r.RegionWidth, r.RegionHeight, r.KeepPartial)
	i := row*cols + col
	if cols != grid.Columns() || i >= len(regions) {
		return "", fmt.Errorf("%w: grid was not rendered from this image", ErrInvalidDimensions)
	}
	region := regions[i]
	ps, err := RegionPoints(img, region, DarkerThan(r.DarknessThreshold))
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	ch := grid.At(row, col)
	fmt.Fprintf(&sb, "region (%d,%d) %dx%d: %d ink points, matched %q\n",
		region.X, region.Y, region.Width, region.Height, ps.Len(), ch)
	sb.WriteString(FormatPoints(ps, region.Width, region.Height))
	bitmap, err := r.glyphs.Rasterize(ch, region.Width)
	switch {
	case err == nil:
		sb.WriteString(FormatBitmap(bitmap, CoverageAbove(r.CoverageThreshold)))
	case ch == r.Placeholder:
		sb.WriteString("placeholder, no glyph\n")
	default:
		return "", err
	}
	return sb.String(), nil
}

func formatCanvas(width, height int, ink func(x, y int) bool) string {
	var sb strings.Builder
	bar := strings.Repeat("━", width*cellWidth)
	on := strings.Repeat("█", cellWidth)
	off := strings.Repeat(" ", cellWidth)

	sb.WriteString("┏" + bar + "┓\n")
	for y := 0; y < height; y++ {
		sb.WriteString("┃")
		for x := 0; x < width; x++ {
			if ink(x, y) {
				sb.WriteString(on)
			} else {
				sb.WriteString(off)
			}
		}
		sb.WriteString("┃\n")
	}
	sb.WriteString("┗" + bar + "┛\n")
	return sb.String()
}
