package render

import (
	"fmt"
	"math"

	"github.com/abatten/TOPAZ/box"
)

// Grid is a square image which particles are deposited onto with
// nearest-grid-point assignment. It implements plotter.GridXYZ, with X and Y
// giving pixel centers.
type Grid struct {
	N     int       // Pixels on a side.
	Width float64   // Width of the (periodic) image.
	Data  []float64 // Row-major: Data[r*N + c]
}

// NewGrid creates an empty n x n grid covering [0, width) on both axes.
func NewGrid(n int, width float64) *Grid {
	if n <= 0 {
		panic(fmt.Sprintf("Grid must have at least one pixel, not %d.", n))
	} else if width <= 0 {
		panic(fmt.Sprintf("Grid width must be positive, not %g.", width))
	}
	return &Grid{ N: n, Width: width, Data: make([]float64, n*n) }
}

func (g *Grid) index(u, v float64) int {
	pw := g.Width / float64(g.N)
	c := int(box.Wrap(u, g.Width) / pw)
	r := int(box.Wrap(v, g.Width) / pw)
	// Wrap can return exactly Width after rounding.
	if c == g.N { c = g.N - 1 }
	if r == g.N { r = g.N - 1 }
	return r*g.N + c
}

// Deposit adds w to the pixel containing (u, v). Coordinates outside the
// image are wrapped periodically.
func (g *Grid) Deposit(u, v, w float64) { g.Data[g.index(u, v)] += w }

// Scale multiplies every pixel by k.
func (g *Grid) Scale(k float64) {
	for i := range g.Data { g.Data[i] *= k }
}

// Log10 replaces every pixel by its base-10 log. Empty and negative pixels
// become NaN so heat maps leave them blank.
func (g *Grid) Log10() {
	for i, x := range g.Data {
		if x > 0 {
			g.Data[i] = math.Log10(x)
		} else {
			g.Data[i] = math.NaN()
		}
	}
}

// Sum returns the total of all pixels.
func (g *Grid) Sum() float64 {
	sum := 0.0
	for _, x := range g.Data { sum += x }
	return sum
}

func (g *Grid) Dims() (c, r int) { return g.N, g.N }
func (g *Grid) Z(c, r int) float64 { return g.Data[r*g.N + c] }
func (g *Grid) X(c int) float64 { return (float64(c) + 0.5) * g.Width / float64(g.N) }
func (g *Grid) Y(r int) float64 { return (float64(r) + 0.5) * g.Width / float64(g.N) }
