package ray

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"gonum.org/v1/hdf5"

	"github.com/abatten/TOPAZ/io/h5"
)

const (
	rayGroup      = "ray"
	samplesPrefix = "n_"
	columnPrefix  = "N_"
)

// RayFilename returns the name a random ray is written to:
// <dir>/<prefix>_<lines>_<axis>axis_<a1><c1>_<a2><c2>.h5, where the lines are
// joined without a separator and a1, a2 are the two orthogonal axes.
func RayFilename(
	dir, prefix string, lines []string, axis Axis, c1, c2 float64,
) string {
	joined := NormalizeLine(strings.Join(lines, ""))
	a1, a2 := axis.Orthogonal()
	name := fmt.Sprintf("%s_%s_%saxis_%s%.3f_%s%.3f.h5",
		prefix, joined, axis, a1, c1, a2, c2)
	return filepath.Join(dir, name)
}

// WriteRay writes r to an HDF5 file. Everything lives in the "ray" group: the
// redshift and box size as attributes, and the datasets l, start, end,
// n_<line> (sampled number densities) and N_<line> (column densities).
func WriteRay(fname string, r *Ray) error {
	f, err := hdf5.CreateFile(fname, hdf5.F_ACC_TRUNC)
	if err != nil { return fmt.Errorf("creating %s: %w", fname, err) }
	defer f.Close()

	g, err := f.CreateGroup(rayGroup)
	if err != nil { return err }
	defer g.Close()

	z, L := r.Redshift, r.BoxSize
	if err := h5.WriteAttr(g, "Redshift", &z, hdf5.T_NATIVE_DOUBLE, 0); err != nil {
		return err
	}
	if err := h5.WriteAttr(g, "BoxSize", &L, hdf5.T_NATIVE_DOUBLE, 0); err != nil {
		return err
	}

	err = h5.WriteFloat64s(g, "l", r.L, []uint{uint(len(r.L))})
	if err != nil { return err }
	err = h5.WriteFloat64s(g, "start", r.Start[:], []uint{3})
	if err != nil { return err }
	err = h5.WriteFloat64s(g, "end", r.End[:], []uint{3})
	if err != nil { return err }

	for _, line := range r.Lines {
		n := r.Samples[line]
		err = h5.WriteFloat64s(g, samplesPrefix + line, n, []uint{uint(len(n))})
		if err != nil { return err }

		col := []float64{r.Column[line]}
		err = h5.WriteFloat64s(g, columnPrefix + line, col, []uint{1})
		if err != nil { return err }
	}

	return nil
}

// ReadRay reads a file written by WriteRay. Lines are returned in sorted
// order.
func ReadRay(fname string) (*Ray, error) {
	f, err := hdf5.OpenFile(fname, hdf5.F_ACC_RDONLY)
	if err != nil { return nil, fmt.Errorf("opening %s: %w", fname, err) }
	defer f.Close()

	g, err := f.OpenGroup(rayGroup)
	if err != nil { return nil, fmt.Errorf("%s has no ray group: %w", fname, err) }
	defer g.Close()

	r := &Ray{
		Path: fname, Samples: map[string][]float64{}, Column: map[string]float64{},
	}

	err = h5.ReadAttr(g, "Redshift", &r.Redshift, hdf5.T_NATIVE_DOUBLE)
	if err != nil { return nil, err }
	err = h5.ReadAttr(g, "BoxSize", &r.BoxSize, hdf5.T_NATIVE_DOUBLE)
	if err != nil { return nil, err }

	if r.L, err = h5.ReadFloat64s(g, "l"); err != nil { return nil, err }
	if err = readVec(g, "start", &r.Start); err != nil { return nil, err }
	if err = readVec(g, "end", &r.End); err != nil { return nil, err }

	names, err := h5.Names(g)
	if err != nil { return nil, err }
	for _, name := range names {
		if strings.HasPrefix(name, samplesPrefix) {
			r.Lines = append(r.Lines, strings.TrimPrefix(name, samplesPrefix))
		}
	}
	sort.Strings(r.Lines)

	for _, line := range r.Lines {
		n, err := h5.ReadFloat64s(g, samplesPrefix + line)
		if err != nil { return nil, err }
		if len(n) != len(r.L) {
			return nil, fmt.Errorf("%s: line %s has %d samples, but l has %d",
				fname, line, len(n), len(r.L))
		}
		r.Samples[line] = n

		col, err := h5.ReadFloat64s(g, columnPrefix + line)
		if err != nil { return nil, err }
		if len(col) != 1 {
			return nil, fmt.Errorf("%s: column density of %s has %d values",
				fname, line, len(col))
		}
		r.Column[line] = col[0]
	}

	return r, nil
}

func readVec(g *hdf5.Group, name string, out *[3]float64) error {
	v, err := h5.ReadFloat64s(g, name)
	if err != nil { return err }
	if len(v) != 3 { return fmt.Errorf("'%s' has %d components", name, len(v)) }
	copy(out[:], v)
	return nil
}
