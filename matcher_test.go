package img2glyph

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	topLeft     = []Point{{0, 0}, {1, 0}, {0, 1}, {1, 1}}
	bottomRight = []Point{{2, 2}, {3, 2}, {2, 3}, {3, 3}}
)

func TestMatchRegionExactMatchWins(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "img2glyph")
	defer teardown()
	//
	region := NewPointSet(topLeft...)
	for _, metric := range []Metric{Hausdorff, Hamming, SetDifference} {
		for _, order := range [][]rune{{'a', 'b'}, {'b', 'a'}} {
			glyphs := newFakeGlyphs()
			for _, r := range order {
				if r == 'a' {
					glyphs.points('a', 4, bottomRight...)
				} else {
					glyphs.points('b', 4, topLeft...)
				}
			}
			m := NewMatcher(glyphs, WithMatcherMetric(metric))
			res, err := m.MatchRegion(context.Background(), region, 4)
			require.NoError(t, err, "%s %q", metric, order)
			assert.Equal(t, 'b', res.Rune, "%s %q", metric, order)
			assert.Equal(t, 0.0, res.Score)
			assert.Equal(t, metric, res.Metric)
			assert.Equal(t, 2, res.Scored)
		}
	}
}

func TestMatchRegionTieGoesToLowestCodepoint(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "img2glyph")
	defer teardown()
	//
	glyphs := newFakeGlyphs().
		points('z', 4, topLeft...).
		points('m', 4, append(topLeft, Point{3, 3})...).
		points('c', 4, topLeft...)
	m := NewMatcher(glyphs)
	res, err := m.MatchRegion(context.Background(), NewPointSet(topLeft...), 4)
	require.NoError(t, err)
	assert.Equal(t, 'c', res.Rune)
}

func TestMatchRegionSkipsUnusableCandidates(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "img2glyph")
	defer teardown()
	//
	glyphs := newFakeGlyphs().
		failing('A', errors.New("no outline")).
		bitmap('B', Bitmap{}).
		points('C', 4, bottomRight...).
		points('D', 4, Point{0, 0})
	m := NewMatcher(glyphs, WithMatcherMetric(Hamming))
	res, err := m.MatchRegion(context.Background(), NewPointSet(topLeft...), 4)
	require.NoError(t, err)
	assert.Equal(t, 'C', res.Rune, "D has a different cardinality")
	assert.Equal(t, 8.0, res.Score)
	assert.Equal(t, 1, res.Scored)
	assert.Equal(t, 3, res.Skipped)
}

func TestMatchRegionNoCandidate(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "img2glyph")
	defer teardown()
	//
	glyphs := newFakeGlyphs().
		points('a', 4, topLeft...).
		shape('b', fullShape)

	m := NewMatcher(glyphs)
	_, err := m.MatchRegion(context.Background(), NewPointSet(), 4)
	assert.True(t, errors.Is(err, ErrNoCandidateMatched), "empty region under hausdorff: %v", err)

	_, err = NewMatcher(newFakeGlyphs()).MatchRegion(context.Background(), NewPointSet(topLeft...), 4)
	assert.True(t, errors.Is(err, ErrNoCandidateMatched), "empty charset: %v", err)
}

func TestMatchRegionEmptyRegionUnderSetDifference(t *testing.T) {
	glyphs := newFakeGlyphs().
		shape('#', fullShape).
		shape(' ', emptyShape).
		shape('.', dotShape)
	m := NewMatcher(glyphs, WithMatcherMetric(SetDifference))
	res, err := m.MatchRegion(context.Background(), NewPointSet(), 5)
	require.NoError(t, err)
	assert.Equal(t, ' ', res.Rune)
}

func TestMatchRegionMalformedGlyphAborts(t *testing.T) {
	glyphs := newFakeGlyphs().
		points('a', 4, topLeft...).
		bitmap('b', Bitmap{Width: 3, Height: 3, Pix: make([]uint8, 5)})
	m := NewMatcher(glyphs)
	_, err := m.MatchRegion(context.Background(), NewPointSet(topLeft...), 4)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidDimensions), "got %v", err)
}

func TestMatchRegionCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m := NewMatcher(newFakeGlyphs().points('a', 4, topLeft...))
	_, err := m.MatchRegion(ctx, NewPointSet(topLeft...), 4)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestMatchRegionParallelAgreesWithSequential(t *testing.T) {
	traceWorkers(t)
	//
	glyphs := newFakeGlyphs()
	for i := 0; i < 40; i++ {
		r := rune('!' + (i*17)%60)
		pts := []Point{{uint16(i % 8), uint16(i % 5)}, {7, 7}}
		if i%9 == 0 {
			glyphs.failing(r, fmt.Errorf("broken glyph %d", i))
			continue
		}
		glyphs.points(r, 8, pts...)
	}
	region := NewPointSet(Point{3, 3}, Point{7, 7}, Point{6, 1})

	for _, metric := range []Metric{Hausdorff, Hamming, SetDifference} {
		want, err := NewMatcher(glyphs, WithMatcherMetric(metric)).
			MatchRegion(context.Background(), region, 8)
		for _, workers := range []int{2, 3, 7, 64} {
			got, gotErr := NewMatcher(glyphs, WithMatcherMetric(metric), WithCandidateWorkers(workers)).
				MatchRegion(context.Background(), region, 8)
			assert.Equal(t, err, gotErr, "%s with %d workers", metric, workers)
			assert.Equal(t, want, got, "%s with %d workers", metric, workers)
		}
	}
}

func TestBetter(t *testing.T) {
	low := candidateScore{index: 5, score: 1, ok: true}
	high := candidateScore{index: 1, score: 2, ok: true}
	tie := candidateScore{index: 2, score: 1, ok: true}

	win, err := better(low, high)
	require.NoError(t, err)
	assert.True(t, win)

	win, err = better(tie, low)
	require.NoError(t, err)
	assert.True(t, win, "equal scores prefer the lower index")

	win, err = better(low, candidateScore{})
	require.NoError(t, err)
	assert.True(t, win, "anything beats no candidate")

	win, err = better(candidateScore{}, low)
	require.NoError(t, err)
	assert.False(t, win)

	for _, bad := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err = better(candidateScore{score: bad, ok: true}, low)
		assert.True(t, errors.Is(err, ErrNoFiniteComparison), "%v first", bad)
		_, err = better(low, candidateScore{score: bad, ok: true})
		assert.True(t, errors.Is(err, ErrNoFiniteComparison), "%v second", bad)
		_, err = better(candidateScore{score: bad, ok: true}, candidateScore{})
		assert.True(t, errors.Is(err, ErrNoFiniteComparison), "%v alone", bad)
	}
}
