package box

import (
	"math"
)

// Bounds is a cell-aligned bounding box.
type Bounds struct {
	Origin, Span [3]int
}

// SphereBounds creates a cell-aligned bounding box around a non-aligned
// sphere within a box with periodic boundary conditions.
func (b *Bounds) SphereBounds(pos [3]float64, r, cw, width float64) {
	for i := 0; i < 3; i++ {
		min, max := pos[i]-r, pos[i]+r
		if min < 0 {
			min += width
			max += width
		}

		minCell, maxCell := int(min/cw), int(max/cw)
		b.Origin[i] = minCell
		b.Span[i] = maxCell - minCell + 1
	}
}

// Inside returns true if the given value is within the bounding box along the
// given dimension. The periodic box width is given by width.
func (b *Bounds) Inside(val int, width int, dim int) bool {
	lo, hi := b.Origin[dim], b.Origin[dim]+b.Span[dim]
	if val >= hi {
		val -= width
	} else if val < lo {
		val += width
	}
	return val < hi && val >= lo
}

// Wrap moves x into the range [0, L).
func Wrap(x, L float64) float64 {
	x = math.Mod(x, L)
	if x < 0 { x += L }
	if x >= L { x = 0 }
	return x
}

// SymBound moves the displacement x into the range [-L/2, L/2).
func SymBound(x, L float64) float64 {
	x = Wrap(x, L)
	if x >= L/2 { x -= L }
	return x
}
