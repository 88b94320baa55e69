package img2glyph

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"sort"
	"sync"
)

// Bitmap is a rasterized glyph: one coverage value per cell, row-major.
type Bitmap struct {
	Width  int
	Height int
	Pix    []uint8
}

// GlyphSource is the font collaborator. Charset lists the candidate runes
// and Rasterize renders one of them on a canvas targetWidth pixels wide.
// Implementations must be safe for concurrent use by readers.
type GlyphSource interface {
	Charset() []rune
	Rasterize(r rune, targetWidth int) (Bitmap, error)
}

// MatchResult is the winning candidate for a region.
type MatchResult struct {
	Rune   rune
	Score  float64
	Metric Metric

	// Scored and Skipped count the candidates that produced a score and
	// the ones excluded from the scan.
	Scored  int
	Skipped int
}

// Matcher picks, for a region's point set, the candidate glyph whose
// foreground shape scores lowest under the configured metric. A Matcher
// holds no per-region state and may be shared across goroutines.
type Matcher struct {
	glyphs   GlyphSource
	metric   Metric
	coverage uint8
	workers  int
	runes    []rune
}

// MatcherOption configures a Matcher.
type MatcherOption func(*Matcher)

// WithMatcherMetric sets the similarity metric.
func WithMatcherMetric(metric Metric) MatcherOption {
	return func(m *Matcher) {
		m.metric = metric
	}
}

// WithGlyphCoverage sets the coverage above which a glyph cell counts as
// foreground.
func WithGlyphCoverage(threshold uint8) MatcherOption {
	return func(m *Matcher) {
		m.coverage = threshold
	}
}

// WithCandidateWorkers sets how many goroutines score candidates of a
// single region. Values below 2 scan sequentially.
func WithCandidateWorkers(n int) MatcherOption {
	return func(m *Matcher) {
		m.workers = n
	}
}

// NewMatcher creates a Matcher over the glyph source's charset.
// Candidates are scanned in ascending codepoint order whatever order the
// source reports them in, so exact ties resolve to the lowest codepoint.
func NewMatcher(glyphs GlyphSource, opts ...MatcherOption) *Matcher {
	m := &Matcher{
		glyphs:   glyphs,
		metric:   Hausdorff,
		coverage: DefaultCoverageThreshold,
		workers:  1,
	}
	for _, opt := range opts {
		opt(m)
	}

	charset := glyphs.Charset()
	m.runes = make([]rune, len(charset))
	copy(m.runes, charset)
	sort.Slice(m.runes, func(i, j int) bool { return m.runes[i] < m.runes[j] })
	return m
}

// Metric returns the metric the matcher scores with.
func (m *Matcher) Metric() Metric {
	return m.metric
}

// candidateScore is the outcome of scoring one candidate.
type candidateScore struct {
	index int
	score float64
	ok    bool
}

// better reports whether a should win over b. Both must carry finite
// scores; equal scores prefer the lower candidate index.
func better(a, b candidateScore) (bool, error) {
	if (a.ok && !isFinite(a.score)) || (b.ok && !isFinite(b.score)) {
		return false, fmt.Errorf("%w: %v vs %v", ErrNoFiniteComparison, a.score, b.score)
	}
	if !a.ok {
		return false, nil
	}
	if !b.ok {
		return true, nil
	}
	if a.score != b.score {
		return a.score < b.score, nil
	}
	return a.index < b.index, nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// MatchRegion rasterizes every candidate at regionWidth, scores its
// foreground points against regionPoints and returns the best candidate.
//
// Candidates whose rasterization fails, whose bitmap is empty, or whose
// score the metric refuses are skipped. When every candidate is skipped
// the result is ErrNoCandidateMatched. Malformed glyph bitmaps
// (ErrInvalidDimensions) and unorderable scores (ErrNoFiniteComparison)
// abort the match.
func (m *Matcher) MatchRegion(
	ctx context.Context,
	regionPoints PointSet,
	regionWidth int,
) (MatchResult, error) {
	n := len(m.runes)
	workers := m.workers
	if workers > n {
		workers = n
	}
	if workers < 1 {
		workers = 1
	}

	type chunkResult struct {
		best    candidateScore
		scored  int
		skipped int
		err     error
	}
	chunks := make([]chunkResult, workers)
	size := (n + workers - 1) / workers

	scan := func(c int) {
		lo, hi := c*size, min((c+1)*size, n)
		res := &chunks[c]
		for i := lo; i < hi; i++ {
			if err := ctx.Err(); err != nil {
				res.err = err
				return
			}
			cs, err := m.scoreCandidate(regionPoints, regionWidth, i)
			if err != nil {
				res.err = err
				return
			}
			if !cs.ok {
				res.skipped++
				continue
			}
			res.scored++
			win, err := better(cs, res.best)
			if err != nil {
				res.err = err
				return
			}
			if win {
				res.best = cs
			}
		}
	}

	if workers == 1 {
		scan(0)
	} else {
		var wg sync.WaitGroup
		for c := 0; c < workers; c++ {
			wg.Add(1)
			go func(c int) {
				defer wg.Done()
				scan(c)
			}(c)
		}
		wg.Wait()
	}

	var best candidateScore
	result := MatchResult{Metric: m.metric}
	for _, c := range chunks {
		if c.err != nil {
			return result, c.err
		}
		result.Scored += c.scored
		result.Skipped += c.skipped
		win, err := better(c.best, best)
		if err != nil {
			return result, err
		}
		if win {
			best = c.best
		}
	}
	if !best.ok {
		return result, ErrNoCandidateMatched
	}
	result.Rune = m.runes[best.index]
	result.Score = best.score
	return result, nil
}

// scoreCandidate evaluates the i-th candidate. A returned error aborts the
// scan; recoverable failures come back as a score with ok == false.
func (m *Matcher) scoreCandidate(regionPoints PointSet, regionWidth, i int) (candidateScore, error) {
	r := m.runes[i]
	skip := candidateScore{index: i}

	bitmap, err := m.glyphs.Rasterize(r, regionWidth)
	if err != nil {
		tracer().Debugf("skipping %q: %v", r, err)
		return skip, nil
	}
	if bitmap.Width == 0 {
		return skip, nil
	}

	glyphPoints, err := ExtractForeground(bitmap.Pix, bitmap.Width, bitmap.Height,
		CoverageAbove(m.coverage))
	if err != nil {
		return skip, fmt.Errorf("glyph %q: %w", r, err)
	}

	score, err := m.metric.Distance(regionPoints, glyphPoints)
	if err != nil {
		if isAbortError(err) || errors.Is(err, ErrUnknownMetric) {
			return skip, fmt.Errorf("glyph %q: %w", r, err)
		}
		return skip, nil
	}
	return candidateScore{index: i, score: score, ok: true}, nil
}

// DefaultWorkers is the region-level parallelism used when none is
// configured.
func DefaultWorkers() int {
	return runtime.GOMAXPROCS(0)
}
