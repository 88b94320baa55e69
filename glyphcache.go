package img2glyph

import "sync"

// glyphKey identifies one rasterization: a rune at a canvas width.
type glyphKey struct {
	Rune  rune
	Width int
}

// glyphEntry is a remembered rasterization, failures included, so a rune
// missing from the font is not looked up again.
type glyphEntry struct {
	Bitmap Bitmap
	Err    error
}

// CachedGlyphs memoizes the rasterizations of another GlyphSource. A
// render pass asks for the same rune at the same width once per region;
// with a cache in front of the font each pair is rendered once.
//
// Cached bitmaps are shared between callers and must not be modified.
type CachedGlyphs struct {
	src GlyphSource

	mu      sync.RWMutex
	entries map[glyphKey]glyphEntry
	hits    int
	misses  int
}

// NewCachedGlyphs wraps src with a rasterization cache.
func NewCachedGlyphs(src GlyphSource) *CachedGlyphs {
	return &CachedGlyphs{
		src:     src,
		entries: make(map[glyphKey]glyphEntry),
	}
}

// Charset returns the wrapped source's charset.
func (c *CachedGlyphs) Charset() []rune {
	return c.src.Charset()
}

// Rasterize returns the cached rasterization of r at targetWidth,
// rendering it through the wrapped source on first use.
func (c *CachedGlyphs) Rasterize(r rune, targetWidth int) (Bitmap, error) {
	k := glyphKey{Rune: r, Width: targetWidth}

	c.mu.RLock()
	entry, exists := c.entries[k]
	c.mu.RUnlock()
	if exists {
		c.mu.Lock()
		c.hits++
		c.mu.Unlock()
		return entry.Bitmap, entry.Err
	}

	bitmap, err := c.src.Rasterize(r, targetWidth)

	c.mu.Lock()
	defer c.mu.Unlock()
	if entry, exists := c.entries[k]; exists {
		c.hits++
		return entry.Bitmap, entry.Err
	}
	c.misses++
	c.entries[k] = glyphEntry{Bitmap: bitmap, Err: err}
	return bitmap, err
}

// CacheStats returns the cache hit and miss counts along with the hit rate.
func (c *CachedGlyphs) CacheStats() (hits, misses int, hitRate float64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	total := c.hits + c.misses
	if total > 0 {
		hitRate = float64(c.hits) / float64(total)
	}
	return c.hits, c.misses, hitRate
}
