package snapshot

import (
	"fmt"
	"errors"
	"math"

	"gonum.org/v1/hdf5"

	"github.com/abatten/TOPAZ/io/h5"
)

type gadgetHDF5Snapshot struct {
	fname string
	f     *hdf5.File
	hd    Header

	nGasTotal int64 // Gas particles across every chunk of the snapshot.

	x      [][3]float64
	fields map[Key][]float64
}

// GadgetHDF5 opens a single Gadget-3 HDF5 snapshot file, the format used by
// the Aurora runs. Datasets are read lazily and cached until Close is called.
// If fname is one chunk of a split snapshot, only that chunk's particles are
// visible: use GadgetHDF5Chunks or Open for the whole snapshot.
func GadgetHDF5(fname string) (Snapshot, error) {
	snap, err := openGadgetHDF5(fname)
	if err != nil { return nil, err }
	return snap, nil
}

func openGadgetHDF5(fname string) (*gadgetHDF5Snapshot, error) {
	f, err := hdf5.OpenFile(fname, hdf5.F_ACC_RDONLY)
	if err != nil { return nil, fmt.Errorf("opening %s: %w", fname, err) }

	snap := &gadgetHDF5Snapshot{
		fname: fname, f: f, fields: map[Key][]float64{},
	}

	hd, nGasTotal, err := readGadgetHDF5Header(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("reading header of %s: %w", fname, err)
	}
	snap.hd, snap.nGasTotal = *hd, nGasTotal

	return snap, nil
}

// gadgetHDF5Header is the subset of the Gadget "Header" group attributes we
// care about.
type gadgetHDF5Header struct {
	NumPartTotal, NumPartThisFile             [6]uint32
	Time, Redshift                            float64
	BoxSize, Omega0, OmegaLambda, HubbleParam float64
	UnitMassInG, UnitLengthInCm               float64
}

func readGadgetHDF5Header(f *hdf5.File) (hd *Header, nGasTotal int64, err error) {
	g, err := f.OpenGroup("Header")
	if err != nil { return nil, 0, err }
	defer g.Close()

	gh := &gadgetHDF5Header{}
	doubles := []struct {
		name string
		ptr  *float64
	}{
		{"Time", &gh.Time}, {"Redshift", &gh.Redshift},
		{"BoxSize", &gh.BoxSize}, {"Omega0", &gh.Omega0},
		{"OmegaLambda", &gh.OmegaLambda}, {"HubbleParam", &gh.HubbleParam},
	}
	for _, d := range doubles {
		if err := h5.ReadAttr(g, d.name, d.ptr, hdf5.T_NATIVE_DOUBLE); err != nil {
			return nil, 0, err
		}
	}
	err = h5.ReadAttr(g, "NumPart_Total", &gh.NumPartTotal, hdf5.T_NATIVE_UINT32)
	if err != nil { return nil, 0, err }

	// Single-file snapshots may leave out the per-file counts.
	found, err := h5.ReadOptionalAttr(g, "NumPart_ThisFile",
		&gh.NumPartThisFile, hdf5.T_NATIVE_UINT32)
	if err != nil { return nil, 0, err }
	if !found { gh.NumPartThisFile = gh.NumPartTotal }

	// Missing unit attributes leave zeros, which mean Gadget's defaults.
	units := []struct {
		name string
		ptr  *float64
	}{
		{"UnitMass_in_g", &gh.UnitMassInG},
		{"UnitLength_in_cm", &gh.UnitLengthInCm},
	}
	for _, u := range units {
		_, err := h5.ReadOptionalAttr(g, u.name, u.ptr, hdf5.T_NATIVE_DOUBLE)
		if err != nil { return nil, 0, err }
	}

	return gh.convert(), int64(gh.NumPartTotal[0]), nil
}

func (gh *gadgetHDF5Header) convert() *Header {
	hd := &Header{}

	hd.Z = gh.Redshift
	hd.Scale = gh.Time
	if hd.Scale <= 0 { hd.Scale = 1/(1 + hd.Z) }
	hd.L = gh.BoxSize
	hd.OmegaM = gh.Omega0
	hd.OmegaL = gh.OmegaLambda
	hd.H100 = gh.HubbleParam
	hd.UnitMassCgs = gh.UnitMassInG
	hd.UnitLengthCgs = gh.UnitLengthInCm

	for _, n := range gh.NumPartTotal { hd.NTotal += int64(n) }
	hd.NGas = int64(gh.NumPartThisFile[0])
	hd.NSide = intCubeRoot(int64(gh.NumPartTotal[0]))

	return hd
}

func (snap *gadgetHDF5Snapshot) Header() *Header { return &snap.hd }

func (snap *gadgetHDF5Snapshot) Positions() ([][3]float64, error) {
	if snap.x != nil { return snap.x, nil }

	flat, err := readDataset(snap.f, CoordinatesPath)
	if err != nil { return nil, fmt.Errorf("positions in %s: %w", snap.fname, err) }
	if len(flat) != 3*int(snap.hd.NGas) {
		return nil, fmt.Errorf("%w: %s has %d values for %d particles",
			ErrCorrupt, CoordinatesPath, len(flat), snap.hd.NGas)
	}

	x := make([][3]float64, snap.hd.NGas)
	for i := range x {
		for j := 0; j < 3; j++ {
			v := flat[3*i + j]
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("%w: non-finite position in %s",
					ErrCorrupt, snap.fname)
			}
			x[i][j] = v
		}
	}

	snap.x = x
	return x, nil
}

func (snap *gadgetHDF5Snapshot) Field(key Key) ([]float64, error) {
	if data, ok := snap.fields[key]; ok { return data, nil }

	data, err := readDataset(snap.f, key.Path())
	if err != nil { return nil, fmt.Errorf("%s in %s: %w", key, snap.fname, err) }
	if err := checkLength(&snap.hd, key, len(data)); err != nil {
		return nil, err
	}

	snap.fields[key] = data
	return data, nil
}

func (snap *gadgetHDF5Snapshot) Close() error {
	snap.x, snap.fields = nil, nil
	if snap.f == nil { return nil }
	err := snap.f.Close()
	snap.f = nil
	return err
}

// WriteGadgetHDF5 writes gas particles to a Gadget-3 style HDF5 file which can
// be read back by GadgetHDF5. Only hd.Z, hd.Scale, hd.L, the cosmology and the
// units are stored.
func WriteGadgetHDF5(
	fname string, hd *Header, x [][3]float64, fields map[Key][]float64,
) error {
	if err := checkFields(x, fields); err != nil { return err }
	return writeGadgetHDF5File(fname, hd, x, fields, len(x))
}

// WriteGadgetHDF5Chunks splits the particles over n files named by ChunkFile,
// the way Gadget-3 writes large snapshots. It returns the chunk file names.
func WriteGadgetHDF5Chunks(
	fname string, hd *Header, x [][3]float64, fields map[Key][]float64, n int,
) ([]string, error) {
	if n <= 0 { return nil, fmt.Errorf("need at least one chunk, not %d", n) }
	if err := checkFields(x, fields); err != nil { return nil, err }

	names := make([]string, n)
	for i := 0; i < n; i++ {
		start, end := i*len(x)/n, (i + 1)*len(x)/n

		part := map[Key][]float64{}
		for key, data := range fields { part[key] = data[start:end] }

		names[i] = ChunkFile(fname, i)
		err := writeGadgetHDF5File(names[i], hd, x[start:end], part, len(x))
		if err != nil { return nil, err }
	}
	return names, nil
}

func checkFields(x [][3]float64, fields map[Key][]float64) error {
	for key, data := range fields {
		if len(data) != len(x) {
			return fmt.Errorf("len(%s) = %d, but len(x) = %d",
				key, len(data), len(x))
		}
	}
	return nil
}

func writeGadgetHDF5File(
	fname string, hd *Header, x [][3]float64, fields map[Key][]float64,
	nTotal int,
) error {
	f, err := hdf5.CreateFile(fname, hdf5.F_ACC_TRUNC)
	if err != nil { return err }
	defer f.Close()

	err = writeGadgetHDF5Header(f, hd, len(x), nTotal)
	if err != nil { return err }

	flat := make([]float64, 3*len(x))
	for i := range x {
		flat[3*i], flat[3*i+1], flat[3*i+2] = x[i][0], x[i][1], x[i][2]
	}
	err = h5.WriteFloat64s(f, CoordinatesPath, flat, []uint{uint(len(x)), 3})
	if err != nil { return err }

	for key, data := range fields {
		err = h5.WriteFloat64s(f, key.Path(), data, []uint{uint(len(data))})
		if err != nil { return err }
	}

	return nil
}

func writeGadgetHDF5Header(f *hdf5.File, hd *Header, nThis, nTotal int) error {
	g, err := f.CreateGroup("Header")
	if err != nil { return err }
	defer g.Close()

	scale := hd.Scale
	if scale <= 0 { scale = 1/(1 + hd.Z) }

	doubles := []struct {
		name string
		val  float64
	}{
		{"Time", scale}, {"Redshift", hd.Z}, {"BoxSize", hd.L},
		{"Omega0", hd.OmegaM}, {"OmegaLambda", hd.OmegaL},
		{"HubbleParam", hd.H100},
		{"UnitMass_in_g", hd.unitMass()},
		{"UnitLength_in_cm", hd.unitLength()},
	}

	for _, d := range doubles {
		val := d.val
		err := h5.WriteAttr(g, d.name, &val, hdf5.T_NATIVE_DOUBLE, 0)
		if err != nil { return err }
	}

	this := [6]uint32{uint32(nThis), 0, 0, 0, 0, 0}
	err = h5.WriteAttr(g, "NumPart_ThisFile", &this, hdf5.T_NATIVE_UINT32, 6)
	if err != nil { return err }
	total := [6]uint32{uint32(nTotal), 0, 0, 0, 0, 0}
	return h5.WriteAttr(g, "NumPart_Total", &total, hdf5.T_NATIVE_UINT32, 6)
}

// readDataset maps a missing dataset onto ErrNoField.
func readDataset(f *hdf5.File, path string) ([]float64, error) {
	data, err := h5.ReadFloat64s(f, path)
	if errors.Is(err, h5.ErrNoDataset) {
		return nil, fmt.Errorf("%w: %s", ErrNoField, path)
	}
	return data, err
}
