package img2glyph

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/font/gofont/gomono"
)

// TestRoundTrip paints a grid with a real font and renders the picture
// back: every cell must come back as the glyph it was painted with.
func TestRoundTrip(t *testing.T) {
	traceWorkers(t)

	path := filepath.Join(t.TempDir(), "gomono.ttf")
	if err := os.WriteFile(path, gomono.TTF, 0o644); err != nil {
		t.Fatal(err)
	}
	fonts, err := LoadTrueTypeGlyphs(path, ParseCharset("AXO#.=/"))
	if err != nil {
		t.Fatalf("Failed to load font: %v", err)
	}
	glyphs := NewCachedGlyphs(fonts)

	const cell = 24
	want := AssembleGrid(Partition(4*cell, 2*cell, cell, cell, false), []rune("AX#=./OA"))
	img := RenderGridImage(want, glyphs, cell, DefaultCoverageThreshold)
	if img.Width() != 4*cell || img.Height() != 2*cell {
		t.Fatalf("Expected a %dx%d image, got %dx%d", 4*cell, 2*cell, img.Width(), img.Height())
	}

	for _, metric := range []Metric{SetDifference, Hamming} {
		r := NewRenderer(glyphs,
			WithRegionSize(cell, cell),
			WithMetric(metric),
			WithStrict(true),
		)
		got, _, err := r.Render(context.Background(), img)
		if err != nil {
			t.Fatalf("%s: Render failed: %v", metric, err)
		}
		if got.String() != want.String() {
			t.Errorf("%s: round trip gave\n%swant\n%s", metric, got, want)
		}
	}

	_, misses, rate := glyphs.CacheStats()
	if misses != len(fonts.Charset()) {
		t.Errorf("Expected one rasterization per rune, got %d", misses)
	}
	if rate <= 0.5 {
		t.Errorf("Expected mostly cache hits, got rate %.2f", rate)
	}
}

func TestMissingFont(t *testing.T) {
	_, err := LoadTrueTypeGlyphs("nonexistent.ttf", nil)
	if err == nil {
		t.Error("Expected error when loading non-existent font")
	}
}
