package img2glyph

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/wbrown/img2glyph/imageutil"
)

// RenderGridImage paints a grid back into pixels: every cell is a
// cell x cell square holding its glyph rasterized at that size, dark ink
// on white, using coverage as the ink threshold. Runes the source cannot
// rasterize are left blank.
func RenderGridImage(grid *Grid, glyphs GlyphSource, cell int, coverage uint8) *imageutil.GrayImage {
	if cell < 1 {
		cell = 1
	}
	img := imageutil.NewGrayImage(grid.Columns()*cell, grid.Rows()*cell)
	fillRect(img, img.Bounds(), color.Gray{Y: 255})

	isInk := CoverageAbove(coverage)
	for row := 0; row < grid.Rows(); row++ {
		for col := 0; col < grid.Columns(); col++ {
			bitmap, err := glyphs.Rasterize(grid.At(row, col), cell)
			if err != nil || bitmap.Width == 0 {
				continue
			}
			renderBitmap(img, bitmap, col*cell, row*cell, isInk)
		}
	}
	return img
}

// renderBitmap draws the foreground cells of a bitmap at the given
// position.
func renderBitmap(img *imageutil.GrayImage, bitmap Bitmap, startX, startY int, isInk ForegroundFunc) {
	for y := 0; y < bitmap.Height; y++ {
		for x := 0; x < bitmap.Width; x++ {
			if isInk(bitmap.Pix[y*bitmap.Width+x]) {
				img.SetGrayValue(startX+x, startY+y, 0)
			}
		}
	}
}

// fillRect fills a rectangle with the given color
func fillRect(img *imageutil.GrayImage, rect image.Rectangle, c color.Color) {
	draw.Draw(img.Gray, rect, &image.Uniform{C: c}, image.Point{}, draw.Src)
}
