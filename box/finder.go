/*package box contains routines for dealing with the periodic geometry of
cosmological simulations boxes.*/
package box

import (
	"math"
)

const (
	maxFinderCells = 250
	// Target number of points in each finder cell.
	finderOccupancy = 8
)

// Finder finds the points within a given radius of a position in a periodic
// box. It is built once for a set of points and can then be queried many
// times.
//
// Returned slices are internal buffers, so please treat them kindly.
type Finder struct {
	g      *Grid
	gBuf   []int
	idxBuf []int
	dr2Buf []float64
	x      [][3]float64
	bufi   int
}

// NewFinder creates a new Finder for the points x in a box of width L.
func NewFinder(L float64, x [][3]float64) *Finder {
	cells := int(math.Cbrt(float64(len(x)) / finderOccupancy))
	if cells < 1 { cells = 1 }
	if cells > maxFinderCells { cells = maxFinderCells }

	g := NewGrid(cells, L, len(x))
	g.Insert(x)

	f := &Finder{
		g:      g,
		gBuf:   make([]int, 0, g.MaxLength()),
		idxBuf: make([]int, len(g.Next)),
		dr2Buf: make([]float64, len(g.Next)),
		x:      x,
	}

	return f
}

// CellWidth returns the width of the finder's cells. Searches with radii much
// smaller than this are cheap.
func (sf *Finder) CellWidth() float64 { return sf.g.cw }

// Find returns the indices of all the points within r0 of pos.
func (sf *Finder) Find(pos [3]float64, r0 float64) []int {
	sf.search(pos, r0)
	return sf.idxBuf[:sf.bufi]
}

// Nearest returns the index of the closest point within r0 of pos and its
// distance. ok is false if there are no such points.
func (sf *Finder) Nearest(pos [3]float64, r0 float64) (idx int, r float64, ok bool) {
	sf.search(pos, r0)
	if sf.bufi == 0 { return -1, 0, false }

	best := 0
	for i := 1; i < sf.bufi; i++ {
		if sf.dr2Buf[i] < sf.dr2Buf[best] { best = i }
	}
	return sf.idxBuf[best], math.Sqrt(sf.dr2Buf[best]), true
}

func (sf *Finder) search(pos [3]float64, r0 float64) {
	sf.bufi = 0
	sf.idxBuf = sf.idxBuf[:cap(sf.idxBuf)]
	sf.dr2Buf = sf.dr2Buf[:cap(sf.dr2Buf)]

	b := &Bounds{}
	c := sf.g.Cells

	for k := 0; k < 3; k++ { pos[k] = Wrap(pos[k], sf.g.Width) }
	b.SphereBounds(pos, r0, sf.g.cw, sf.g.Width)
	for k := 0; k < 3; k++ {
		// Big spheres would visit cells twice.
		if b.Span[k] > c { b.Origin[k], b.Span[k] = 0, c }
	}

	for dz := 0; dz < b.Span[2]; dz++ {
		z := (b.Origin[2] + dz) % c
		zOff := z * c * c
		for dy := 0; dy < b.Span[1]; dy++ {
			y := (b.Origin[1] + dy) % c
			yOff := y * c
			for dx := 0; dx < b.Span[0]; dx++ {
				x := (b.Origin[0] + dx) % c
				idx := zOff + yOff + x

				sf.gBuf = sf.g.ReadIndexes(idx, sf.gBuf)
				sf.addPoints(sf.gBuf, pos[0], pos[1], pos[2], r0, sf.g.Width)
			}
		}
	}
}

func (sf *Finder) addPoints(
	idxs []int, xh, yh, zh, rh float64, L float64,
) {
	for _, j := range idxs {
		sx, sy, sz := sf.x[j][0], sf.x[j][1], sf.x[j][2]
		dx, dy, dz, dr := xh-sx, yh-sy, zh-sz, rh

		if dx > +L/2 { dx -= L }
		if dx < -L/2 { dx += L }
		if dy > +L/2 { dy -= L }
		if dy < -L/2 { dy += L }
		if dz > +L/2 { dz -= L }
		if dz < -L/2 { dz += L }

		dr2 := dx*dx + dy*dy + dz*dz

		if dr*dr >= dr2 {
			sf.idxBuf[sf.bufi] = j
			sf.dr2Buf[sf.bufi] = dr2
			sf.bufi++
		}
	}
}
