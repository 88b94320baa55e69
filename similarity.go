package img2glyph

import (
	"fmt"
	"math"
	"strings"
)

// Metric selects how the shape of a region is compared against the shape
// of a glyph. Lower scores mean more similar shapes.
type Metric int

const (
	// Hausdorff is the directed Hausdorff distance from the region's
	// points toward the glyph's points. It is deliberately one-directional.
	Hausdorff Metric = iota

	// Hamming counts the points present in exactly one of the sets. It is
	// only defined for sets of equal size.
	Hamming

	// SetDifference is max(|A|-|A∩B|, |B|-|A∩B|), the number of points the
	// larger side has unmatched. Historically selected as "levenshtein",
	// although it is not an edit distance.
	SetDifference
)

var metricNames = map[Metric]string{
	Hausdorff:     "hausdorff",
	Hamming:       "hamming",
	SetDifference: "setdiff",
}

func (m Metric) String() string {
	if name, ok := metricNames[m]; ok {
		return name
	}
	return fmt.Sprintf("Metric(%d)", int(m))
}

// ParseMetric resolves a metric selector. "levenshtein" and
// "set-difference" are accepted as aliases for SetDifference.
func ParseMetric(name string) (Metric, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "hausdorff", "":
		return Hausdorff, nil
	case "hamming":
		return Hamming, nil
	case "setdiff", "set-difference", "levenshtein":
		return SetDifference, nil
	}
	return 0, fmt.Errorf("%w: %q (options are hausdorff, hamming, setdiff)",
		ErrUnknownMetric, name)
}

// Distance scores region points a against glyph points b. Counting
// metrics return whole numbers; all scores share float64 so callers can
// order them uniformly.
func (m Metric) Distance(a, b PointSet) (float64, error) {
	switch m {
	case Hausdorff:
		return HausdorffDistance(a, b)
	case Hamming:
		d, err := HammingDistance(a, b)
		return float64(d), err
	case SetDifference:
		return float64(SetDifferenceScore(a, b)), nil
	}
	return 0, fmt.Errorf("%w: %v", ErrUnknownMetric, m)
}

// HammingDistance returns the size of the symmetric difference of a and b.
// Sets of different cardinality fail with a *CardinalityError.
func HammingDistance(a, b PointSet) (int, error) {
	if a.Len() != b.Len() {
		return 0, &CardinalityError{A: a.Len(), B: b.Len()}
	}
	common := a.intersectionLen(b)
	return (a.Len() - common) + (b.Len() - common), nil
}

// HausdorffDistance returns the directed Hausdorff distance from a to b:
// the largest distance from any point of a to its nearest point in b.
// Swapping the arguments generally changes the result.
func HausdorffDistance(a, b PointSet) (float64, error) {
	if a.Len() == 0 || b.Len() == 0 {
		return 0, ErrEmptySet
	}

	worst := math.Inf(-1)
	for p := range a {
		nearest := math.Inf(1)
		for q := range b {
			if d := euclideanDistance(p, q); d < nearest {
				nearest = d
			}
		}
		if math.IsInf(nearest, 1) {
			return 0, ErrNoMinimum
		}
		if nearest > worst {
			worst = nearest
		}
	}
	return worst, nil
}

// SetDifferenceScore returns max(|a|-|a∩b|, |b|-|a∩b|). It is symmetric
// and zero only for equal sets.
func SetDifferenceScore(a, b PointSet) int {
	common := a.intersectionLen(b)
	return max(a.Len()-common, b.Len()-common)
}

// euclideanDistance widens to int64 before squaring so that differences
// across the full 16-bit range cannot overflow.
func euclideanDistance(p, q Point) float64 {
	dx := int64(p.X) - int64(q.X)
	dy := int64(p.Y) - int64(q.Y)
	return math.Sqrt(float64(dx*dx + dy*dy))
}
