/*package ray generates straight sight lines through snapshots and writes the
sampled number densities of the requested lines to HDF5 files.*/
package ray

import (
	"fmt"
	"strings"
)

// Axis is one of the three box axes.
type Axis int

const (
	X Axis = iota
	Y
	Z
)

// ParseAxis parses "x", "y" or "z" (in either case).
func ParseAxis(s string) (Axis, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "x": return X, nil
	case "y": return Y, nil
	case "z": return Z, nil
	}
	return -1, fmt.Errorf("unrecognized axis '%s': must be x, y or z", s)
}

func (a Axis) String() string {
	switch a {
	case X: return "x"
	case Y: return "y"
	case Z: return "z"
	}
	return fmt.Sprintf("Axis(%d)", int(a))
}

// Orthogonal returns the two other axes in ascending order.
func (a Axis) Orthogonal() (Axis, Axis) {
	switch a {
	case X: return Y, Z
	case Y: return X, Z
	case Z: return X, Y
	}
	panic(fmt.Sprintf("Unrecognized axis %d.", int(a)))
}
