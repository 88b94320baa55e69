// Package img2glyph renders a grayscale image as text by matching the ink
// of each image region against the shapes of font glyphs.
//
// An image is split into fixed-size regions (Partition). The dark pixels
// of a region and the covered cells of every rasterized candidate glyph
// are reduced to point sets (ExtractForeground) and compared with one of
// three metrics: directed Hausdorff distance, Hamming distance, or a set
// difference count. The lowest scoring glyph wins the region (Matcher),
// and the winners are laid out row by row (Grid). Renderer runs the whole
// pipeline, matching regions concurrently.
package img2glyph

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'img2glyph'.
func tracer() tracing.Trace {
	return tracing.Select("img2glyph")
}
