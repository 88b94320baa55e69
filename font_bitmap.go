package img2glyph

import (
	"fmt"
	"image"
	"os"
	"sort"

	"github.com/flopp/go-findfont"
	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/text/width"
)

// DefaultFont is the font selector used when none is given.
const DefaultFont = "DejaVuSansMono.ttf"

// baselineRatio places the baseline at 90% of the canvas height, leaving
// the bottom tenth for descenders.
const baselineRatio = 0.9

// blockChars are the block elements offered on top of printable ASCII.
var blockChars = []rune{
	'▀', '▁', '▂', '▃', '▄', '▅', '▆', '▇', '█',
	'▌', '▍', '▎', '▏', '▐', '░', '▒', '▓',
	'▔', '▕', '▖', '▗', '▘', '▙', '▚', '▛', '▜', '▝', '▞', '▟',
}

// TrueTypeGlyphs is a GlyphSource backed by a TrueType font. Glyphs are
// rasterized on demand; the parsed font is shared read-only, so a single
// value may serve concurrent matchers.
type TrueTypeGlyphs struct {
	font    *truetype.Font
	name    string
	charset []rune
}

// DefaultCharset returns printable ASCII followed by block elements, in
// ascending codepoint order.
func DefaultCharset() []rune {
	charset := make([]rune, 0, 95+len(blockChars))
	for r := rune(32); r <= rune(126); r++ {
		charset = append(charset, r)
	}
	return normalizeCharset(append(charset, blockChars...))
}

// ParseCharset turns a string of candidate characters into a sorted,
// deduplicated charset.
func ParseCharset(s string) []rune {
	return normalizeCharset([]rune(s))
}

// normalizeCharset sorts, deduplicates and drops runes that occupy two
// terminal cells, which would break the column alignment of the grid.
func normalizeCharset(runes []rune) []rune {
	seen := make(map[rune]bool, len(runes))
	out := make([]rune, 0, len(runes))
	for _, r := range runes {
		if seen[r] || !isSingleCell(r) {
			continue
		}
		seen[r] = true
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func isSingleCell(r rune) bool {
	if r < 0x20 || r == 0x7f {
		return false
	}
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return false
	}
	return true
}

// FindFont resolves a font selector to a file path. The selector is either
// a path to a font file or a font file name looked up in the system font
// directories.
func FindFont(selector string) (string, error) {
	if selector == "" {
		selector = DefaultFont
	}
	if info, err := os.Stat(selector); err == nil && !info.IsDir() {
		return selector, nil
	}
	path, err := findfont.Find(selector)
	if err != nil {
		return "", fmt.Errorf("font %q not found: %w", selector, err)
	}
	tracer().Debugf("font %q resolved to %s", selector, path)
	return path, nil
}

// LoadTrueTypeGlyphs loads the font at path. Runes of charset the font has
// no glyph for are dropped; a nil charset selects DefaultCharset.
func LoadTrueTypeGlyphs(path string, charset []rune) (*TrueTypeGlyphs, error) {
	fontBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read font: %w", err)
	}
	ttf, err := freetype.ParseFont(fontBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font %s: %w", path, err)
	}
	return NewTrueTypeGlyphs(ttf, path, charset), nil
}

// NewTrueTypeGlyphs wraps an already parsed font.
func NewTrueTypeGlyphs(ttf *truetype.Font, name string, charset []rune) *TrueTypeGlyphs {
	if charset == nil {
		charset = DefaultCharset()
	}
	g := &TrueTypeGlyphs{font: ttf, name: name}
	missing := 0
	for _, r := range normalizeCharset(charset) {
		if r != ' ' && ttf.Index(r) == 0 {
			missing++
			continue
		}
		g.charset = append(g.charset, r)
	}
	tracer().Infof("font %s: %d candidate glyphs, %d not in font", name, len(g.charset), missing)
	return g
}

// Name returns the font's path or name.
func (g *TrueTypeGlyphs) Name() string {
	return g.name
}

// Charset returns the candidate runes in ascending codepoint order.
func (g *TrueTypeGlyphs) Charset() []rune {
	return g.charset
}

// Rasterize renders r on a square alpha canvas of targetWidth pixels at a
// font size of targetWidth pixels. Each cell of the bitmap holds the
// glyph's coverage. A non-positive width yields an empty bitmap.
func (g *TrueTypeGlyphs) Rasterize(r rune, targetWidth int) (Bitmap, error) {
	if targetWidth <= 0 {
		return Bitmap{}, nil
	}
	if r != ' ' && g.font.Index(r) == 0 {
		return Bitmap{}, fmt.Errorf("%w: %q", ErrGlyphMissing, r)
	}

	img := image.NewAlpha(image.Rect(0, 0, targetWidth, targetWidth))

	ctx := freetype.NewContext()
	ctx.SetDPI(72)
	ctx.SetFont(g.font)
	ctx.SetFontSize(float64(targetWidth))
	ctx.SetClip(img.Bounds())
	ctx.SetDst(img)
	ctx.SetSrc(image.White)
	ctx.SetHinting(font.HintingNone)

	baselineY := int(float64(targetWidth) * baselineRatio)
	if _, err := ctx.DrawString(string(r), freetype.Pt(0, baselineY)); err != nil {
		return Bitmap{}, fmt.Errorf("rasterize %q: %w", r, err)
	}

	return Bitmap{Width: targetWidth, Height: targetWidth, Pix: img.Pix}, nil
}
