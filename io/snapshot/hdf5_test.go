package snapshot

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/hdf5"

	"github.com/abatten/TOPAZ/cosmo"
	"github.com/abatten/TOPAZ/io/h5"
)

func TestReadWriteGadgetHDF5(t *testing.T) {
	hd := &Header{
		Z: 4.5, OmegaM: 0.265, OmegaL: 0.735, H100: 0.71, L: 6250,
	}
	x := [][3]float64{ {1, 2, 3}, {4, 5, 6}, {6249, 0, 3125} }
	fields := map[Key][]float64{
		Mass:    {1e-5, 2e-5, 3e-5},
		Density: {1e-6, 2e-6, 4e-6},
		IonHI:   {0.9, 0.5, 1e-4},
		AbundanceC: {1e-3, 0, 2e-3},
	}

	fname := filepath.Join(t.TempDir(), "snap_012.hdf5")
	require.NoError(t, WriteGadgetHDF5(fname, hd, x, fields))

	snap, err := GadgetHDF5(fname)
	require.NoError(t, err)
	defer snap.Close()

	rhd := snap.Header()
	assert.Equal(t, 4.5, rhd.Z)
	assert.InDelta(t, 1/5.5, rhd.Scale, 1e-12)
	assert.Equal(t, 6250.0, rhd.L)
	assert.Equal(t, 0.71, rhd.H100)
	assert.Equal(t, int64(3), rhd.NGas)

	rx, err := snap.Positions()
	require.NoError(t, err)
	assert.Equal(t, x, rx)

	for key, data := range fields {
		rdata, err := snap.Field(key)
		require.NoError(t, err, key.String())
		assert.Equal(t, data, rdata, key.String())
	}

	_, err = snap.Field(IonHeII)
	assert.True(t, errors.Is(err, ErrNoField), "got %v", err)
}

func TestWriteGadgetHDF5LengthMismatch(t *testing.T) {
	fname := filepath.Join(t.TempDir(), "bad.hdf5")
	err := WriteGadgetHDF5(fname, &Header{L: 1}, [][3]float64{{0, 0, 0}},
		map[Key][]float64{ Mass: {1, 2} })
	assert.Error(t, err)
}

func TestOpenDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "snapdir_007")
	hd := &Header{ Z: 6, H100: 0.7, L: 100 }
	x := [][3]float64{ {1, 1, 1} }

	require.NoError(t, mkdir(dir))
	require.NoError(t, WriteGadgetHDF5(SnapshotFile(dir, ""), hd, x,
		map[Key][]float64{ Mass: {1} }))

	snap, err := Open(dir, "")
	require.NoError(t, err)
	defer snap.Close()
	assert.Equal(t, 6.0, snap.Header().Z)

	_, err = Open(filepath.Join(dir, "missing"), "")
	assert.Error(t, err)
}

func TestHeaderWithoutUnits(t *testing.T) {
	fname := filepath.Join(t.TempDir(), "bare.hdf5")
	f, err := hdf5.CreateFile(fname, hdf5.F_ACC_TRUNC)
	require.NoError(t, err)
	defer f.Close()

	g, err := f.CreateGroup("Header")
	require.NoError(t, err)
	for _, name := range []string{
		"Time", "Redshift", "BoxSize", "Omega0", "OmegaLambda", "HubbleParam",
	} {
		val := 0.5
		require.NoError(t, h5.WriteAttr(g, name, &val, hdf5.T_NATIVE_DOUBLE, 0))
	}
	npart := [6]uint32{8, 0, 0, 0, 0, 0}
	require.NoError(t, h5.WriteAttr(g, "NumPart_Total", &npart,
		hdf5.T_NATIVE_UINT32, 6))
	require.NoError(t, g.Close())

	hd, nGasTotal, err := readGadgetHDF5Header(f)
	require.NoError(t, err)
	assert.Equal(t, int64(8), hd.NGas)
	assert.Equal(t, int64(8), nGasTotal)
	assert.Equal(t, 0.0, hd.UnitMassCgs)
	assert.Equal(t, 0.0, hd.UnitLengthCgs)
	assert.Equal(t, cosmo.GadgetUnitMassCgs, hd.unitMass())
	assert.Equal(t, cosmo.GadgetUnitLengthCgs, hd.unitLength())
}

func TestHeaderWithUnits(t *testing.T) {
	hd := &Header{ Z: 3, H100: 0.7, L: 10, UnitMassCgs: 2e40, UnitLengthCgs: 3e21 }
	fname := filepath.Join(t.TempDir(), "units.hdf5")
	require.NoError(t, WriteGadgetHDF5(fname, hd, [][3]float64{{1, 2, 3}}, nil))

	snap, err := GadgetHDF5(fname)
	require.NoError(t, err)
	defer snap.Close()
	assert.Equal(t, 2e40, snap.Header().UnitMassCgs)
	assert.Equal(t, 3e21, snap.Header().UnitLengthCgs)
}

func TestChunkFile(t *testing.T) {
	assert.Equal(t, "out/snap_012.3.hdf5", ChunkFile("out/snap_012.hdf5", 3))
	assert.Equal(t, "snap_012.0", ChunkFile("snap_012", 0))
}

func chunkedFixture(t *testing.T) (string, [][3]float64, []float64) {
	dir := filepath.Join(t.TempDir(), "snapdir_012")
	require.NoError(t, mkdir(dir))

	x := make([][3]float64, 7)
	mass := make([]float64, 7)
	for i := range x {
		x[i] = [3]float64{float64(i), 1, 2}
		mass[i] = float64(i + 1)
	}

	hd := &Header{ Z: 5, H100: 0.7, L: 10 }
	names, err := WriteGadgetHDF5Chunks(SnapshotFile(dir, ""), hd, x,
		map[Key][]float64{ Mass: mass }, 3)
	require.NoError(t, err)
	require.Len(t, names, 3)
	assert.Equal(t, filepath.Join(dir, "snap_012.2.hdf5"), names[2])

	return dir, x, mass
}

func TestOpenChunkedDirectory(t *testing.T) {
	dir, x, mass := chunkedFixture(t)

	snap, err := Open(dir, "")
	require.NoError(t, err)
	defer snap.Close()

	assert.Equal(t, int64(7), snap.Header().NGas)
	assert.Equal(t, 5.0, snap.Header().Z)

	rx, err := snap.Positions()
	require.NoError(t, err)
	assert.Equal(t, x, rx)

	rmass, err := snap.Field(Mass)
	require.NoError(t, err)
	assert.Equal(t, mass, rmass)

	_, err = snap.Field(IonHI)
	assert.True(t, errors.Is(err, ErrNoField), "got %v", err)

	part, err := GadgetHDF5(ChunkFile(SnapshotFile(dir, ""), 1))
	require.NoError(t, err)
	defer part.Close()
	assert.Equal(t, int64(2), part.Header().NGas)
}

func TestOpenMissingChunk(t *testing.T) {
	dir, _, _ := chunkedFixture(t)
	require.NoError(t, os.Remove(ChunkFile(SnapshotFile(dir, ""), 1)))

	_, err := Open(dir, "")
	assert.True(t, errors.Is(err, ErrCorrupt), "got %v", err)

	empty := filepath.Join(t.TempDir(), "snapdir_013")
	require.NoError(t, mkdir(empty))
	_, err = Open(empty, "")
	assert.Error(t, err)
}
