package img2glyph

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultRegionSize is the edge length, in pixels, of a region.
	DefaultRegionSize = 50

	// DefaultDarknessThreshold separates ink from paper in the source
	// image: pixels darker than this are foreground.
	DefaultDarknessThreshold = 128

	// DefaultCoverageThreshold is the 25% alpha cut-off above which a
	// rasterized glyph cell is foreground. Lower values keep thin strokes
	// and anti-aliased edges.
	DefaultCoverageThreshold = 64

	// DefaultPlaceholder fills grid cells whose region matched nothing.
	DefaultPlaceholder = ' '
)

// Image is the grayscale image collaborator. Intensity returns 0 (black)
// to 255 (white) for a pixel inside the image.
type Image interface {
	Width() int
	Height() int
	Intensity(x, y int) uint8
}

// Renderer turns an image into a grid of glyphs. It partitions the image,
// extracts the ink of every region and asks a Matcher for the closest
// glyph. Regions are matched concurrently; the output does not depend on
// the number of workers.
type Renderer struct {
	// Configuration options
	RegionWidth       int
	RegionHeight      int
	KeepPartial       bool
	Metric            Metric
	DarknessThreshold uint8
	CoverageThreshold uint8
	Placeholder       rune
	Workers           int
	CandidateWorkers  int
	RegionTimeout     time.Duration
	Strict            bool

	glyphs GlyphSource
}

// RendererOption is a functional option for configuring a Renderer.
type RendererOption func(*Renderer)

// NewRenderer creates a new Renderer drawing glyphs from the given source.
// Default values: 50x50 regions, Hausdorff metric, partial regions dropped,
// darkness threshold 128, coverage threshold 64, blank placeholder, one
// worker per available CPU, no region timeout.
func NewRenderer(glyphs GlyphSource, opts ...RendererOption) *Renderer {
	r := &Renderer{
		RegionWidth:       DefaultRegionSize,
		RegionHeight:      DefaultRegionSize,
		Metric:            Hausdorff,
		DarknessThreshold: DefaultDarknessThreshold,
		CoverageThreshold: DefaultCoverageThreshold,
		Placeholder:       DefaultPlaceholder,
		Workers:           DefaultWorkers(),
		CandidateWorkers:  1,
		glyphs:            glyphs,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// WithRegionSize sets the region width and height in pixels. The region
// width is also the size glyphs are rasterized at.
func WithRegionSize(width, height int) RendererOption {
	return func(r *Renderer) {
		r.RegionWidth = width
		r.RegionHeight = height
	}
}

// WithMetric sets the similarity metric.
func WithMetric(metric Metric) RendererOption {
	return func(r *Renderer) {
		r.Metric = metric
	}
}

// WithKeepPartial keeps truncated regions along the right and bottom edge.
func WithKeepPartial(keep bool) RendererOption {
	return func(r *Renderer) {
		r.KeepPartial = keep
	}
}

// WithDarknessThreshold sets the intensity below which image pixels are
// ink.
func WithDarknessThreshold(threshold uint8) RendererOption {
	return func(r *Renderer) {
		r.DarknessThreshold = threshold
	}
}

// WithCoverageThreshold sets the coverage above which glyph cells are ink.
func WithCoverageThreshold(threshold uint8) RendererOption {
	return func(r *Renderer) {
		r.CoverageThreshold = threshold
	}
}

// WithPlaceholder sets the rune used for regions that matched nothing.
func WithPlaceholder(placeholder rune) RendererOption {
	return func(r *Renderer) {
		r.Placeholder = placeholder
	}
}

// WithWorkers sets the number of regions matched concurrently.
func WithWorkers(n int) RendererOption {
	return func(r *Renderer) {
		r.Workers = n
	}
}

// WithCandidateParallelism sets the number of goroutines scoring
// candidates inside a single region.
func WithCandidateParallelism(n int) RendererOption {
	return func(r *Renderer) {
		r.CandidateWorkers = n
	}
}

// WithRegionTimeout bounds the time spent matching one region. Zero
// disables the deadline.
func WithRegionTimeout(d time.Duration) RendererOption {
	return func(r *Renderer) {
		r.RegionTimeout = d
	}
}

// WithStrict makes any region failure abort the render instead of
// producing a placeholder.
func WithStrict(strict bool) RendererOption {
	return func(r *Renderer) {
		r.Strict = strict
	}
}

// RenderStats summarizes a render pass.
type RenderStats struct {
	PassID       string
	Regions      int
	Placeholders int
	Elapsed      time.Duration
}

// Matcher returns a Matcher configured like the renderer.
func (r *Renderer) Matcher() *Matcher {
	return NewMatcher(r.glyphs,
		WithMatcherMetric(r.Metric),
		WithGlyphCoverage(r.CoverageThreshold),
		WithCandidateWorkers(r.CandidateWorkers),
	)
}

// Render matches every region of img and assembles the grid. Regions
// that fail to match become the placeholder rune unless the renderer is
// strict; malformed dimensions and unorderable scores always abort.
func (r *Renderer) Render(ctx context.Context, img Image) (*Grid, RenderStats, error) {
	stats := RenderStats{PassID: uuid.NewString()}
	start := time.Now()

	if r.RegionWidth <= 0 || r.RegionHeight <= 0 {
		return nil, stats, fmt.Errorf("%w: region size %dx%d",
			ErrInvalidDimensions, r.RegionWidth, r.RegionHeight)
	}

	regions := Partition(img.Width(), img.Height(),
		r.RegionWidth, r.RegionHeight, r.KeepPartial)
	stats.Regions = len(regions)
	tracer().Infof("pass %s: %dx%d image, %d regions of %dx%d, metric %s",
		stats.PassID, img.Width(), img.Height(), len(regions),
		r.RegionWidth, r.RegionHeight, r.Metric)

	matcher := r.Matcher()
	chars := make([]rune, len(regions))
	errs := make([]error, len(regions))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	indexes := make(chan int)
	var wg sync.WaitGroup
	workers := max(r.Workers, 1)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				chars[i], errs[i] = r.matchRegion(ctx, matcher, img, regions[i])
				if errs[i] != nil && (r.Strict || isAbortError(errs[i])) {
					cancel()
				}
			}
		}()
	}

feed:
	for i := range regions {
		select {
		case indexes <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(indexes)
	wg.Wait()

	if err := firstAbort(regions, errs, r.Strict); err != nil {
		tracer().Errorf("pass %s aborted: %v", stats.PassID, err)
		return nil, stats, err
	}
	if err := ctx.Err(); err != nil {
		return nil, stats, err
	}

	for i, err := range errs {
		if err != nil {
			tracer().Debugf("pass %s: %v, using placeholder", stats.PassID,
				&RegionError{Index: i, Region: regions[i], Err: err})
			chars[i] = r.Placeholder
			stats.Placeholders++
		}
	}

	grid := AssembleGrid(regions, chars)
	cols := GridColumns(img.Width(), img.Height(), r.RegionWidth, r.RegionHeight, r.KeepPartial)
	if len(regions) > 0 && (grid.Columns() != cols || grid.Rows()*cols != len(regions)) {
		return nil, stats, fmt.Errorf("%w: %d regions do not form rows of %d",
			ErrInvalidDimensions, len(regions), cols)
	}
	stats.Elapsed = time.Since(start)
	tracer().Infof("pass %s: %d rows x %d columns, %d placeholders, %v",
		stats.PassID, grid.Rows(), grid.Columns(), stats.Placeholders, stats.Elapsed)
	return grid, stats, nil
}

// firstAbort returns the error of the lowest-indexed region that must stop
// the render, so the reported failure does not depend on scheduling.
// Cancellations caused by the abort itself are ignored.
func firstAbort(regions []Region, errs []error, strict bool) error {
	for i, err := range errs {
		if err == nil || errors.Is(err, context.Canceled) {
			continue
		}
		if strict || isAbortError(err) {
			return &RegionError{Index: i, Region: regions[i], Err: err}
		}
	}
	return nil
}

// matchRegion extracts the ink of one region and matches it.
func (r *Renderer) matchRegion(
	ctx context.Context,
	matcher *Matcher,
	img Image,
	region Region,
) (rune, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if r.RegionTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.RegionTimeout)
		defer cancel()
	}

	points, err := RegionPoints(img, region, DarkerThan(r.DarknessThreshold))
	if err != nil {
		return 0, err
	}

	res, err := matcher.MatchRegion(ctx, points, region.Width)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			tracer().Errorf("region (%d,%d) timed out after %v", region.X, region.Y, r.RegionTimeout)
		}
		return 0, err
	}
	tracer().Debugf("region (%d,%d): %q score %.3f (%d scored, %d skipped)",
		region.X, region.Y, res.Rune, res.Score, res.Scored, res.Skipped)
	return res.Rune, nil
}

// RegionPoints copies a region of img into a row-major buffer and extracts
// its foreground points in region-local coordinates.
func RegionPoints(img Image, region Region, isForeground ForegroundFunc) (PointSet, error) {
	buf := make([]uint8, 0, region.Width*region.Height)
	for y := region.Y; y < region.Y+region.Height; y++ {
		for x := region.X; x < region.X+region.Width; x++ {
			buf = append(buf, img.Intensity(x, y))
		}
	}
	return ExtractForeground(buf, region.Width, region.Height, isForeground)
}
