package img2glyph

import (
	"math"
	"sort"
)

// Point is a pixel coordinate. Coordinates are bounded to 16 bits, which
// caps the width and height of any buffer that can be turned into points.
type Point struct {
	X, Y uint16
}

// PointSet is a set of unique points. Sets are built once from a source
// buffer and never modified afterwards.
type PointSet map[Point]struct{}

// NewPointSet returns a set holding the given points. Duplicates collapse.
func NewPointSet(points ...Point) PointSet {
	ps := make(PointSet, len(points))
	for _, p := range points {
		ps[p] = struct{}{}
	}
	return ps
}

// Len returns the number of points in the set.
func (ps PointSet) Len() int {
	return len(ps)
}

// Contains reports whether p is in the set.
func (ps PointSet) Contains(p Point) bool {
	_, ok := ps[p]
	return ok
}

// Points returns the set's points sorted row-major (by Y, then X).
func (ps PointSet) Points() []Point {
	points := make([]Point, 0, len(ps))
	for p := range ps {
		points = append(points, p)
	}
	sort.Slice(points, func(i, j int) bool {
		if points[i].Y != points[j].Y {
			return points[i].Y < points[j].Y
		}
		return points[i].X < points[j].X
	})
	return points
}

// intersectionLen counts the points present in both sets.
func (ps PointSet) intersectionLen(other PointSet) int {
	small, large := ps, other
	if len(small) > len(large) {
		small, large = large, small
	}
	n := 0
	for p := range small {
		if large.Contains(p) {
			n++
		}
	}
	return n
}

// ForegroundFunc classifies a single cell intensity as foreground.
type ForegroundFunc func(intensity uint8) bool

// DarkerThan classifies image pixels: ink is dark on a light background,
// so a pixel is foreground when its intensity is below threshold.
func DarkerThan(threshold uint8) ForegroundFunc {
	return func(intensity uint8) bool {
		return intensity < threshold
	}
}

// CoverageAbove classifies glyph bitmaps: a rasterized glyph is bright
// coverage on a transparent canvas, so a cell is foreground when its
// coverage exceeds threshold.
func CoverageAbove(threshold uint8) ForegroundFunc {
	return func(coverage uint8) bool {
		return coverage > threshold
	}
}

// ExtractForeground walks a row-major buffer of width*height cells and
// collects the coordinates of every cell accepted by isForeground.
//
// The buffer is rejected with ErrInvalidDimensions when width is zero,
// when width does not evenly divide the buffer, when height disagrees with
// the buffer length, or when either dimension exceeds the 16-bit
// coordinate range. An empty result is not an error.
func ExtractForeground(
	buf []uint8,
	width, height int,
	isForeground ForegroundFunc,
) (PointSet, error) {
	if width <= 0 || height < 0 ||
		width > math.MaxUint16 || height > math.MaxUint16 ||
		len(buf)%width != 0 || len(buf)/width != height {
		return nil, &DimensionError{Width: width, Height: height, Length: len(buf)}
	}

	ps := make(PointSet)
	for i, v := range buf {
		if isForeground(v) {
			ps[Point{X: uint16(i % width), Y: uint16(i / width)}] = struct{}{}
		}
	}
	return ps, nil
}
