package img2glyph

import (
	"bytes"
	"sync"
	"testing"

	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/npillmayer/schuko/tracing/trace2go"
)

// traceBuffer collects trace output written from several goroutines.
type traceBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *traceBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *traceBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// traceWorkers sets up Debug tracing for tests that render or match with
// more than one worker. The gotestingadapter tracer must not be shared
// between goroutines, so these tests trace through the Go logger adapter
// into a buffer instead.
func traceWorkers(t *testing.T) *traceBuffer {
	t.Helper()
	tracing.RegisterTraceAdapter("go", gologadapter.GetAdapter(), false)
	conf := testconfig.Conf{
		"tracing.adapter": "go",
		"trace.img2glyph": "Debug",
	}
	if err := trace2go.ConfigureRoot(conf, "trace", trace2go.ReplaceTracers(true)); err != nil {
		t.Fatal(err)
	}
	tracing.SetTraceSelector(trace2go.Selector())
	t.Cleanup(trace2go.Teardown)

	out := &traceBuffer{}
	tracer().SetTraceLevel(tracing.LevelDebug)
	tracer().SetOutput(out)
	return out
}

// shapeFunc draws a glyph on a w x w canvas: it reports the coverage of
// cell (x, y).
type shapeFunc func(x, y, w int) uint8

func fullShape(x, y, w int) uint8 { return 255 }

func emptyShape(x, y, w int) uint8 { return 0 }

func dotShape(x, y, w int) uint8 {
	if x == w/2 && y == w/2 {
		return 255
	}
	return 0
}

// fakeGlyphs is an in-memory GlyphSource. Runes are reported in the
// order given, which need not be sorted.
type fakeGlyphs struct {
	order  []rune
	shapes map[rune]shapeFunc
	fixed  map[rune]Bitmap
	fail   map[rune]error

	mu    sync.Mutex
	calls map[rune]int
}

func newFakeGlyphs() *fakeGlyphs {
	return &fakeGlyphs{
		shapes: make(map[rune]shapeFunc),
		fixed:  make(map[rune]Bitmap),
		fail:   make(map[rune]error),
		calls:  make(map[rune]int),
	}
}

// shape registers a glyph drawn at the requested width.
func (f *fakeGlyphs) shape(r rune, s shapeFunc) *fakeGlyphs {
	f.order = append(f.order, r)
	f.shapes[r] = s
	return f
}

// bitmap registers a glyph with a fixed bitmap whatever the width.
func (f *fakeGlyphs) bitmap(r rune, b Bitmap) *fakeGlyphs {
	f.order = append(f.order, r)
	f.fixed[r] = b
	return f
}

// points registers a glyph whose bitmap covers exactly the given points
// on a size x size canvas.
func (f *fakeGlyphs) points(r rune, size int, pts ...Point) *fakeGlyphs {
	pix := make([]uint8, size*size)
	for _, p := range pts {
		pix[int(p.Y)*size+int(p.X)] = 255
	}
	return f.bitmap(r, Bitmap{Width: size, Height: size, Pix: pix})
}

// failing registers a glyph whose rasterization always fails.
func (f *fakeGlyphs) failing(r rune, err error) *fakeGlyphs {
	f.order = append(f.order, r)
	f.fail[r] = err
	return f
}

func (f *fakeGlyphs) Charset() []rune {
	return f.order
}

func (f *fakeGlyphs) Rasterize(r rune, targetWidth int) (Bitmap, error) {
	f.mu.Lock()
	f.calls[r]++
	f.mu.Unlock()

	if err, ok := f.fail[r]; ok {
		return Bitmap{}, err
	}
	if b, ok := f.fixed[r]; ok {
		return b, nil
	}
	s, ok := f.shapes[r]
	if !ok {
		return Bitmap{}, ErrGlyphMissing
	}
	if targetWidth <= 0 {
		return Bitmap{}, nil
	}
	pix := make([]uint8, targetWidth*targetWidth)
	for y := 0; y < targetWidth; y++ {
		for x := 0; x < targetWidth; x++ {
			pix[y*targetWidth+x] = s(x, y, targetWidth)
		}
	}
	return Bitmap{Width: targetWidth, Height: targetWidth, Pix: pix}, nil
}

func (f *fakeGlyphs) callCount(r rune) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[r]
}
