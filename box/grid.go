package box

import (
	"fmt"
)

// Grid is a periodic cell list. Points in each cell are stored as a linked
// list running through Next, starting at Heads[cell]. -1 terminates a list.
type Grid struct {
	Cells int     // Cells on one side of the grid.
	Width float64 // Width of the periodic box.
	cw    float64 // Width of a single cell.

	Heads []int
	Next  []int
}

// NewGrid creates an empty grid with the given number of cells on a side
// covering a box of width L. n is the number of points that will be inserted.
func NewGrid(cells int, L float64, n int) *Grid {
	if cells <= 0 {
		panic(fmt.Sprintf("Grid must have at least one cell, not %d.", cells))
	} else if L <= 0 {
		panic(fmt.Sprintf("Grid box width must be positive, not %g.", L))
	}

	g := &Grid{
		Cells: cells, Width: L, cw: L / float64(cells),
		Heads: make([]int, cells*cells*cells),
		Next:  make([]int, n),
	}
	for i := range g.Heads { g.Heads[i] = -1 }
	for i := range g.Next { g.Next[i] = -1 }

	return g
}

// cellIndex returns the index of the cell containing x. x is wrapped into the
// box first.
func (g *Grid) cellIndex(x [3]float64) int {
	idx := [3]int{}
	for k := 0; k < 3; k++ {
		i := int(Wrap(x[k], g.Width) / g.cw)
		if i >= g.Cells { i = g.Cells - 1 }
		idx[k] = i
	}
	return idx[0] + idx[1]*g.Cells + idx[2]*g.Cells*g.Cells
}

// Insert adds all the points in x to the grid. len(x) must match the n
// passed to NewGrid.
func (g *Grid) Insert(x [][3]float64) {
	if len(x) != len(g.Next) {
		panic(fmt.Sprintf("len(x) = %d, but the grid was made for %d points.",
			len(x), len(g.Next)))
	}

	for i := range x {
		c := g.cellIndex(x[i])
		g.Next[i] = g.Heads[c]
		g.Heads[c] = i
	}
}

// MaxLength returns the length of the longest cell list.
func (g *Grid) MaxLength() int {
	max := 0
	for _, head := range g.Heads {
		n := 0
		for j := head; j != -1; j = g.Next[j] { n++ }
		if n > max { max = n }
	}
	return max
}

// ReadIndexes appends the indices of all the points in cell idx to buf[:0]
// and returns it.
func (g *Grid) ReadIndexes(idx int, buf []int) []int {
	buf = buf[:0]
	for j := g.Heads[idx]; j != -1; j = g.Next[j] {
		buf = append(buf, j)
	}
	return buf
}
