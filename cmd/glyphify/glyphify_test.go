package main

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/npillmayer/schuko/tracing"
	"github.com/wbrown/img2glyph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTraceLevel(t *testing.T) {
	assert.Equal(t, tracing.LevelDebug, parseTraceLevel("Debug"))
	assert.Equal(t, tracing.LevelError, parseTraceLevel("error"))
	assert.Equal(t, tracing.LevelInfo, parseTraceLevel("Info"))
	assert.Equal(t, tracing.LevelInfo, parseTraceLevel("bogus"))
}

func TestApplyEnv(t *testing.T) {
	size := flag.Int("size", 50, "")
	metric := flag.String("metric", "hausdorff", "")
	require.NoError(t, flag.CommandLine.Parse([]string{"-metric", "hamming"}))

	env := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(env, []byte("GLYPHIFY_SIZE=12\nGLYPHIFY_METRIC=setdiff\n"), 0o644))
	t.Cleanup(func() {
		os.Unsetenv("GLYPHIFY_SIZE")
		os.Unsetenv("GLYPHIFY_METRIC")
	})

	require.NoError(t, applyEnv(env))
	assert.Equal(t, 12, *size, "environment fills unset flags")
	assert.Equal(t, "hamming", *metric, "explicit flags win")

	assert.NoError(t, applyEnv(filepath.Join(t.TempDir(), "missing.env")), "a missing file is fine")
}

func TestCheckGlyphTable(t *testing.T) {
	table := &img2glyph.GlyphTable{
		Runes:   []rune{'#'},
		Bitmaps: map[int]map[rune]img2glyph.Bitmap{4: {}, 8: {}},
	}
	assert.NoError(t, checkGlyphTable(table, 8))
	err := checkGlyphTable(table, 6)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "[4 8]")

	assert.NoError(t, checkGlyphTable(img2glyph.NewCachedGlyphs(table), 6),
		"only glyph tables have a fixed width set")
}

func TestMissingRegionWidths(t *testing.T) {
	table := &img2glyph.GlyphTable{
		Bitmaps: map[int]map[rune]img2glyph.Bitmap{2: {}, 8: {}},
	}
	assert.Empty(t, missingRegionWidths(table, 32, 32, 8, true), "no truncated column")
	assert.Empty(t, missingRegionWidths(table, 34, 32, 8, true), "edge width is in the table")
	assert.Empty(t, missingRegionWidths(table, 35, 32, 8, false), "edge column is dropped")
	assert.Equal(t, []int{3}, missingRegionWidths(table, 35, 32, 8, true))
	assert.Equal(t, []int{5}, missingRegionWidths(table, 5, 32, 8, false),
		"a narrow image is a single region of its own width")

	assert.Empty(t, missingRegionWidths(img2glyph.NewCachedGlyphs(table), 35, 32, 8, true))
}

func TestParseCell(t *testing.T) {
	row, col, err := parseCell("3, 12")
	require.NoError(t, err)
	assert.Equal(t, 3, row)
	assert.Equal(t, 12, col)

	for _, bad := range []string{"3", "a,1", "1,-2", ""} {
		_, _, err := parseCell(bad)
		assert.Error(t, err, bad)
	}
}
