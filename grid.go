package img2glyph

import (
	"bytes"
	"io"
)

// Grid is the matched glyph for every region, arranged in the row-major
// order the regions were produced in.
type Grid struct {
	cells [][]rune
}

// AssembleGrid groups per-region runes into rows. regions and chars are
// parallel slices in partition order; a new row starts whenever the region
// origin moves down.
func AssembleGrid(regions []Region, chars []rune) *Grid {
	g := &Grid{}
	lastY := -1
	for i, region := range regions {
		if i >= len(chars) {
			break
		}
		if region.Y != lastY {
			g.cells = append(g.cells, nil)
			lastY = region.Y
		}
		row := len(g.cells) - 1
		g.cells[row] = append(g.cells[row], chars[i])
	}
	return g
}

// Rows returns the number of grid rows.
func (g *Grid) Rows() int {
	return len(g.cells)
}

// Columns returns the length of the first row. All rows share it.
func (g *Grid) Columns() int {
	if len(g.cells) == 0 {
		return 0
	}
	return len(g.cells[0])
}

// At returns the rune at the given row and column.
func (g *Grid) At(row, col int) rune {
	return g.cells[row][col]
}

// Line returns row i as a string.
func (g *Grid) Line(i int) string {
	return string(g.cells[i])
}

// WriteTo prints every row as "| " + row + " |" followed by a newline.
func (g *Grid) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for i := range g.cells {
		n, err := io.WriteString(w, "| "+g.Line(i)+" |\n")
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func (g *Grid) String() string {
	var buf bytes.Buffer
	g.WriteTo(&buf)
	return buf.String()
}
