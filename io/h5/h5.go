/*package h5 contains the small amount of HDF5 plumbing shared by the snapshot
reader and the ray writer: whole-dataset float64 reads and writes and scalar
or fixed-size attributes.*/
package h5

import (
	"errors"
	"fmt"
	"strings"

	"gonum.org/v1/hdf5"
)

// ErrNoDataset is returned when a dataset can't be opened.
var ErrNoDataset = errors.New("h5: no such dataset")

// Location is anything datasets can be read from and written to. Both
// *hdf5.File and *hdf5.Group satisfy it.
type Location interface {
	OpenDataset(name string) (*hdf5.Dataset, error)
	CreateDataset(
		name string, dtype *hdf5.Datatype, dspace *hdf5.Dataspace,
	) (*hdf5.Dataset, error)
	CreateGroup(name string) (*hdf5.Group, error)
	LinkExists(name string) bool
}

// ReadFloat64s reads an entire dataset into a flat float64 slice. Datasets are
// read in their on-disk type (Gadget writes both 32- and 64-bit floats) and
// then widened.
func ReadFloat64s(loc Location, path string) ([]float64, error) {
	dset, err := loc.OpenDataset(path)
	if err != nil { return nil, fmt.Errorf("%w: %s", ErrNoDataset, path) }
	defer dset.Close()

	space := dset.Space()
	defer space.Close()
	n := space.SimpleExtentNPoints()

	dtype, err := dset.Datatype()
	if err != nil { return nil, err }
	defer dtype.Close()

	out := make([]float64, n)
	if n == 0 { return out, nil }

	switch {
	case dtype.Class() == hdf5.T_FLOAT && dtype.Size() == 8:
		err = dset.Read(&out)
	case dtype.Class() == hdf5.T_FLOAT && dtype.Size() == 4:
		buf := make([]float32, n)
		err = dset.Read(&buf)
		for i := range buf { out[i] = float64(buf[i]) }
	case dtype.Class() == hdf5.T_INTEGER && dtype.Size() == 8:
		buf := make([]int64, n)
		err = dset.Read(&buf)
		for i := range buf { out[i] = float64(buf[i]) }
	case dtype.Class() == hdf5.T_INTEGER && dtype.Size() == 4:
		buf := make([]int32, n)
		err = dset.Read(&buf)
		for i := range buf { out[i] = float64(buf[i]) }
	default:
		return nil, fmt.Errorf("h5: %s has unsupported type (class %d, %d bytes)",
			path, dtype.Class(), dtype.Size())
	}

	if err != nil { return nil, fmt.Errorf("h5: reading %s: %w", path, err) }
	return out, nil
}

// WriteFloat64s writes a float64 dataset with the given dimensions, creating
// any intermediate groups in path.
func WriteFloat64s(loc Location, path string, data []float64, dims []uint) error {
	n := uint(1)
	for _, d := range dims { n *= d }
	if n != uint(len(data)) {
		return fmt.Errorf("h5: %s has %d values, but dims = %v",
			path, len(data), dims)
	}

	groups := strings.Split(path, "/")
	for i := 1; i < len(groups); i++ {
		name := strings.Join(groups[:i], "/")
		if name == "" || loc.LinkExists(name) { continue }
		g, err := loc.CreateGroup(name)
		if err != nil { return fmt.Errorf("h5: group %s: %w", name, err) }
		g.Close()
	}

	space, err := hdf5.CreateSimpleDataspace(dims, nil)
	if err != nil { return err }
	defer space.Close()

	dset, err := loc.CreateDataset(path, hdf5.T_NATIVE_DOUBLE, space)
	if err != nil { return fmt.Errorf("h5: dataset %s: %w", path, err) }
	defer dset.Close()

	if len(data) == 0 { return nil }
	return dset.Write(&data)
}

// ReadAttr reads an attribute of g into ptr, which must point to a scalar or
// an array (not a slice).
func ReadAttr(
	g *hdf5.Group, name string, ptr interface{}, dtype *hdf5.Datatype,
) error {
	attr, err := g.OpenAttribute(name)
	if err != nil { return fmt.Errorf("h5: attribute %s: %w", name, err) }
	defer attr.Close()
	return attr.Read(ptr, dtype)
}

// ReadOptionalAttr is ReadAttr for attributes which may be missing. found is
// false, and ptr untouched, if g has no attribute called name. An attribute
// which exists but can't be read is still an error.
func ReadOptionalAttr(
	g *hdf5.Group, name string, ptr interface{}, dtype *hdf5.Datatype,
) (found bool, err error) {
	attr, err := g.OpenAttribute(name)
	if err != nil { return false, nil }
	defer attr.Close()

	if err := attr.Read(ptr, dtype); err != nil {
		return true, fmt.Errorf("h5: attribute %s: %w", name, err)
	}
	return true, nil
}

// WriteAttr writes a scalar attribute (dims == 0) or a one-dimensional array
// attribute with dims elements.
func WriteAttr(
	g *hdf5.Group, name string, ptr interface{}, dtype *hdf5.Datatype,
	dims int,
) error {
	var space *hdf5.Dataspace
	var err error
	if dims == 0 {
		space, err = hdf5.CreateDataspace(hdf5.S_SCALAR)
	} else {
		space, err = hdf5.CreateSimpleDataspace([]uint{uint(dims)}, nil)
	}
	if err != nil { return err }
	defer space.Close()

	attr, err := g.CreateAttribute(name, dtype, space)
	if err != nil { return fmt.Errorf("h5: attribute %s: %w", name, err) }
	defer attr.Close()
	return attr.Write(ptr, dtype)
}

// Names returns the names of the objects directly inside g.
func Names(g *hdf5.Group) ([]string, error) {
	n, err := g.NumObjects()
	if err != nil { return nil, err }

	out := make([]string, n)
	for i := range out {
		out[i], err = g.ObjectNameByIndex(uint(i))
		if err != nil { return nil, err }
	}
	return out, nil
}
