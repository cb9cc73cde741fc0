package snapshot

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ChunkFile returns the name of the i-th file of a snapshot split over
// several files: "snap_012.hdf5" becomes "snap_012.3.hdf5" for i = 3.
func ChunkFile(fname string, i int) string {
	ext := filepath.Ext(fname)
	return fmt.Sprintf("%s.%d%s", strings.TrimSuffix(fname, ext), i, ext)
}

// ChunkFiles returns the chunk files of fname which exist on disk, starting
// at chunk 0 and stopping at the first missing one.
func ChunkFiles(fname string) []string {
	var out []string
	for i := 0; ; i++ {
		name := ChunkFile(fname, i)
		if _, err := os.Stat(name); err != nil { return out }
		out = append(out, name)
	}
}

type chunkedSnapshot struct {
	hd    Header
	parts []*gadgetHDF5Snapshot

	x      [][3]float64
	fields map[Key][]float64
}

// GadgetHDF5Chunks opens a Gadget-3 snapshot which has been split over the
// given files, in order. The header is taken from the first file, and the
// files must hold every gas particle that NumPart_Total says exists.
func GadgetHDF5Chunks(fnames []string) (Snapshot, error) {
	if len(fnames) == 0 { return nil, fmt.Errorf("no snapshot chunks given") }

	snap := &chunkedSnapshot{ fields: map[Key][]float64{} }
	nGas := int64(0)
	for _, fname := range fnames {
		part, err := openGadgetHDF5(fname)
		if err != nil {
			snap.Close()
			return nil, err
		}
		snap.parts = append(snap.parts, part)
		nGas += part.hd.NGas
	}

	snap.hd = snap.parts[0].hd
	snap.hd.NGas = nGas
	if total := snap.parts[0].nGasTotal; nGas != total {
		snap.Close()
		return nil, fmt.Errorf("%w: %d chunks of %s hold %d of %d gas particles",
			ErrCorrupt, len(fnames), fnames[0], nGas, total)
	}

	return snap, nil
}

func (snap *chunkedSnapshot) Header() *Header { return &snap.hd }

func (snap *chunkedSnapshot) Positions() ([][3]float64, error) {
	if snap.x != nil { return snap.x, nil }

	x := make([][3]float64, 0, snap.hd.NGas)
	for _, part := range snap.parts {
		px, err := part.Positions()
		if err != nil { return nil, err }
		x = append(x, px...)
	}

	snap.x = x
	return x, nil
}

func (snap *chunkedSnapshot) Field(key Key) ([]float64, error) {
	if data, ok := snap.fields[key]; ok { return data, nil }

	data := make([]float64, 0, snap.hd.NGas)
	for _, part := range snap.parts {
		pdata, err := part.Field(key)
		if err != nil { return nil, err }
		data = append(data, pdata...)
	}

	snap.fields[key] = data
	return data, nil
}

func (snap *chunkedSnapshot) Close() error {
	snap.x, snap.fields = nil, nil
	var first error
	for _, part := range snap.parts {
		if err := part.Close(); err != nil && first == nil { first = err }
	}
	snap.parts = nil
	return first
}
