package img2glyph

import (
	"bytes"
	"compress/gzip"
	"encoding/gob"
	"fmt"
	"os"
	"sort"
)

// GlyphTable is a GlyphSource serving bitmaps rasterized ahead of time
// at a fixed set of widths, so rendering needs no font at runtime.
// Tables are produced by cmd/compute_glyphs.
type GlyphTable struct {
	FontName string
	Runes    []rune
	Bitmaps  map[int]map[rune]Bitmap // by width, then rune
}

// ComputeGlyphTable rasterizes every rune of src at each of the widths.
// Runes that fail to rasterize at a width are left out of that width.
func ComputeGlyphTable(src GlyphSource, fontName string, widths ...int) (*GlyphTable, error) {
	table := &GlyphTable{
		FontName: fontName,
		Runes:    append([]rune(nil), src.Charset()...),
		Bitmaps:  make(map[int]map[rune]Bitmap, len(widths)),
	}
	for _, w := range widths {
		if w <= 0 {
			return nil, fmt.Errorf("%w: glyph width %d", ErrInvalidDimensions, w)
		}
		if _, done := table.Bitmaps[w]; done {
			continue
		}
		bitmaps := make(map[rune]Bitmap, len(table.Runes))
		for _, r := range table.Runes {
			b, err := src.Rasterize(r, w)
			if err != nil {
				tracer().Debugf("glyph table: %q at %dpx: %v", r, w, err)
				continue
			}
			bitmaps[r] = b
		}
		table.Bitmaps[w] = bitmaps
		tracer().Infof("glyph table %s: %d of %d glyphs at %dpx",
			fontName, len(bitmaps), len(table.Runes), w)
	}
	return table, nil
}

// Charset returns the runes the table was computed for.
func (t *GlyphTable) Charset() []rune {
	return t.Runes
}

// Widths returns the widths the table holds bitmaps for, ascending.
func (t *GlyphTable) Widths() []int {
	widths := make([]int, 0, len(t.Bitmaps))
	for w := range t.Bitmaps {
		widths = append(widths, w)
	}
	sort.Ints(widths)
	return widths
}

// HasWidth reports whether the table holds bitmaps at width w.
func (t *GlyphTable) HasWidth(w int) bool {
	_, ok := t.Bitmaps[w]
	return ok
}

// Rasterize looks up the precomputed bitmap of r. Widths the table was
// not computed for fail with ErrGlyphMissing.
func (t *GlyphTable) Rasterize(r rune, targetWidth int) (Bitmap, error) {
	if targetWidth <= 0 {
		return Bitmap{}, nil
	}
	bitmaps, ok := t.Bitmaps[targetWidth]
	if !ok {
		return Bitmap{}, fmt.Errorf("%w: no glyphs at %dpx (table has %v)",
			ErrGlyphMissing, targetWidth, t.Widths())
	}
	b, ok := bitmaps[r]
	if !ok {
		return Bitmap{}, fmt.Errorf("%w: %q", ErrGlyphMissing, r)
	}
	return b, nil
}

// Save writes the table as gzip-compressed gob.
func (t *GlyphTable) Save(path string) error {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if err := gob.NewEncoder(gz).Encode(t); err != nil {
		gz.Close()
		return fmt.Errorf("failed to encode glyph table: %w", err)
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("failed to close gzip: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write glyph table: %w", err)
	}
	return nil
}

// LoadGlyphTable reads a table written by Save.
func LoadGlyphTable(path string) (*GlyphTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read glyph table: %w", err)
	}
	gz, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decompress glyph table: %w", err)
	}
	defer gz.Close()

	var t GlyphTable
	if err := gob.NewDecoder(gz).Decode(&t); err != nil {
		return nil, fmt.Errorf("failed to decode glyph table: %w", err)
	}
	sort.Slice(t.Runes, func(i, j int) bool { return t.Runes[i] < t.Runes[j] })
	return &t, nil
}
