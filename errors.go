package img2glyph

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidDimensions is returned when a pixel buffer cannot be
	// interpreted with the given row width, or when a coordinate would not
	// fit into 16 bits.
	ErrInvalidDimensions = errors.New("invalid dimensions")

	// ErrCardinalityMismatch is returned by the Hamming metric for point
	// sets of different sizes.
	ErrCardinalityMismatch = errors.New("cardinality mismatch")

	// ErrEmptySet is returned by the Hausdorff metric when either point
	// set is empty.
	ErrEmptySet = errors.New("empty point set")

	// ErrNoMinimum is returned when a minimum distance fold ends without a
	// finite value.
	ErrNoMinimum = errors.New("no finite minimum")

	// ErrNoCandidateMatched is returned when every candidate glyph of a
	// region was skipped.
	ErrNoCandidateMatched = errors.New("no candidate glyph matched")

	// ErrNoFiniteComparison signals a score that cannot be ordered (NaN or
	// infinite). It indicates a broken metric, not bad input.
	ErrNoFiniteComparison = errors.New("score is not comparable")

	// ErrGlyphMissing is returned by a glyph source for runes the font
	// does not cover.
	ErrGlyphMissing = errors.New("glyph missing from font")

	// ErrUnknownMetric is returned by ParseMetric.
	ErrUnknownMetric = errors.New("unknown similarity metric")
)

// CardinalityError carries the sizes of the two sets handed to a metric
// that needs them to be equal.
type CardinalityError struct {
	A, B int
}

func (e *CardinalityError) Error() string {
	return fmt.Sprintf(
		"cannot compute hamming distance between sets with cardinality %d and %d",
		e.A, e.B)
}

// Is reports ErrCardinalityMismatch as the error kind.
func (e *CardinalityError) Is(target error) bool {
	return target == ErrCardinalityMismatch
}

// DimensionError describes a buffer that does not fit its declared shape.
type DimensionError struct {
	Width  int
	Height int
	Length int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("invalid dimensions: %dx%d for buffer of %d cells",
		e.Width, e.Height, e.Length)
}

// Is reports ErrInvalidDimensions as the error kind.
func (e *DimensionError) Is(target error) bool {
	return target == ErrInvalidDimensions
}

// RegionError attaches the region that failed to the underlying error.
type RegionError struct {
	Index  int
	Region Region
	Err    error
}

func (e *RegionError) Error() string {
	return fmt.Sprintf("region %d at (%d,%d) %dx%d: %v", e.Index,
		e.Region.X, e.Region.Y, e.Region.Width, e.Region.Height, e.Err)
}

func (e *RegionError) Unwrap() error {
	return e.Err
}

// isAbortError reports whether err indicates an upstream invariant
// violation that must stop the unit of work instead of being skipped.
func isAbortError(err error) bool {
	return errors.Is(err, ErrInvalidDimensions) ||
		errors.Is(err, ErrNoFiniteComparison)
}
