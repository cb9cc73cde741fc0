package snapshot

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"path"
	"sort"

	"github.com/abatten/TOPAZ/cosmo"
)

type lGadget2Snapshot struct {
	hd        Header
	context   LGadget2Context
	filenames []string

	x [][3]float64
	m []float64
}

type LGadget2Context struct {
	NPartNum int
	Order    binary.ByteOrder
}

var defaultLGadget2Context = LGadget2Context{
	Order:    binary.LittleEndian,
	NPartNum: 2,
}

// LGadget2 returns a snapshot for the LGadget-2 files in a given directory.
// Additional information may be optionally offered in the form of an
// LGadget2Context instance.
//
// LGadget-2 runs are dark matter only, so the only field available is Mass.
// They are still useful for density slices and projections.
func LGadget2(
	dir string, context ...LGadget2Context,
) (Snapshot, error) {
	snap := &lGadget2Snapshot{}
	var err error

	snap.context = defaultLGadget2Context
	if len(context) > 0 { snap.context = context[0] }

	snap.filenames, err = getFilenames(dir)
	if err != nil { return nil, err }
	if len(snap.filenames) == 0 {
		return nil, fmt.Errorf("No files in directory %s", dir)
	}

	hd, err := readLGadget2Header(snap.filenames[0], snap.context.Order)
	if err != nil { return nil, err }
	converted, err := hd.convert(snap.context.NPartNum)
	if err != nil { return nil, err }
	snap.hd = *converted

	return snap, nil
}

// getFilenames returns the names of all the files in a directory.
func getFilenames(dir string) ([]string, error) {
	files, err := os.ReadDir(dir)
	if err != nil { return nil, err }

	out := []string{}
	for i := range files {
		if files[i].IsDir() { continue }
		out = append(out, path.Join(dir, files[i].Name()))
	}
	sort.Strings(out)

	return out, nil
}

func readLGadget2Header(
	file string, order binary.ByteOrder,
) (*lGadget2Header, error) {

	out := &lGadget2Header{}

	f, err := os.Open(file)
	if err != nil { return nil, err }
	defer f.Close()

	if _, err = readInt32(f, order); err != nil { return nil, err }
	err = binary.Read(f, order, out)
	return out, err
}

func (gh *lGadget2Header) convert(nPartNum int) (*Header, error) {
	hd := &Header{}

	hd.Z = gh.Redshift
	hd.Scale = 1/(1 + hd.Z)
	hd.L = gh.BoxSize
	hd.OmegaM = gh.Omega0
	hd.OmegaL = gh.OmegaLambda
	hd.H100 = gh.HubbleParam

	var err error
	hd.NTotal, err = lgadgetParticleNum(gh.NPartTotal, nPartNum)
	if err != nil { return nil, err }
	hd.NGas = hd.NTotal
	hd.NSide = intCubeRoot(hd.NTotal)

	// LGadget-2 works in Mpc/h and Msun/h.
	hd.UnitLengthCgs = cosmo.MpcCgs
	hd.UnitMassCgs = cosmo.MSunCgs

	hd.calcUniformMass()

	return hd, nil
}

func lgadgetParticleNum(npart [6]uint32, nPartNum int) (int64, error) {
	if nPartNum == 2 {
		if npart[0] > 100 * 1000 {
			return 0, fmt.Errorf(
				"Simulation contains too many particles. This is probably " +
				"because NPartNum is set to 2 when it should be set to 1.",
			)
		}
		return int64(npart[1]) + int64(uint32(npart[0])) << 32, nil
	} else {
		return int64(npart[0]), nil
	}
}

func intCubeRoot(n int64) int64 {
	c := math.Pow(float64(n), 1.0/3)
	hi, lo := math.Ceil(c), math.Floor(c)
	if hi - c < c - lo {
		return int64(hi)
	} else {
		return int64(lo)
	}
}

// readInt32 returns single 32-bit interger from the given file using the
// given endianness.
func readInt32(r io.Reader, order binary.ByteOrder) (int32, error) {
	var n int32
	err := binary.Read(r, order, &n)
	return n, err
}

func (snap *lGadget2Snapshot) Files() int { return len(snap.filenames) }

func (snap *lGadget2Snapshot) Header() *Header { return &snap.hd }

// readFile reads the positions in file i. The IDs and velocities are skipped.
func (snap *lGadget2Snapshot) readFile(i int) ([][3]float32, error) {
	fname := snap.filenames[i]
	order := snap.context.Order

	f, err := os.Open(fname)
	if err != nil { return nil, err }
	defer f.Close()

	gh := &lGadget2Header{}
	if _, err = readInt32(f, order); err != nil { return nil, err }
	if err = binary.Read(f, order, gh); err != nil { return nil, err }
	if _, err = readInt32(f, order); err != nil { return nil, err }

	count, err := lgadgetParticleNum(gh.NPart, snap.context.NPartNum)
	if err != nil { return nil, err }

	size, err := readInt32(f, order)
	if err != nil { return nil, err }
	if int64(size) != 12*count {
		return nil, fmt.Errorf("%w: %s position block has %d bytes, "+
			"but there are %d particles", ErrCorrupt, fname, size, count)
	}

	xs := make([][3]float32, count)
	if err = binary.Read(f, order, xs); err != nil { return nil, err }

	tw := float32(gh.BoxSize)
	for i := range xs {
		for j := 0; j < 3; j++ {
			if xs[i][j] < 0 {
				xs[i][j] += tw
			} else if xs[i][j] >= tw {
				xs[i][j] -= tw
			}

			if math.IsNaN(float64(xs[i][j])) ||
				math.IsInf(float64(xs[i][j]), 0) ||
				xs[i][j] < -tw || xs[i][j] > 2*tw {

				return nil, fmt.Errorf(
					"%w: Corruption detected in the file %s. I can't analyze it.",
					ErrCorrupt, fname,
				)
			}
		}
	}

	return xs, nil
}

func (snap *lGadget2Snapshot) Positions() ([][3]float64, error) {
	if snap.x != nil { return snap.x, nil }

	x := make([][3]float64, 0, snap.hd.NGas)
	for i := range snap.filenames {
		xs, err := snap.readFile(i)
		if err != nil { return nil, err }
		for j := range xs {
			x = append(x, [3]float64{
				float64(xs[j][0]), float64(xs[j][1]), float64(xs[j][2]),
			})
		}
	}

	if err := checkLength(&snap.hd, Mass, len(x)); err != nil { return nil, err }
	snap.x = x
	return x, nil
}

func (snap *lGadget2Snapshot) Field(key Key) ([]float64, error) {
	if key != Mass {
		return nil, fmt.Errorf("%w: LGadget-2 snapshots have no %s", ErrNoField, key)
	}
	if snap.m != nil { return snap.m, nil }

	snap.m = make([]float64, snap.hd.NGas)
	for i := range snap.m { snap.m[i] = snap.hd.UniformMp }
	return snap.m, nil
}

func (snap *lGadget2Snapshot) Close() error {
	snap.x, snap.m = nil, nil
	return nil
}

// lGadget2Header is the formatting for meta-information used by Gadget 2.
type lGadget2Header struct {
	NPart                                     [6]uint32
	Mass                                      [6]float64
	Time, Redshift                            float64
	FlagSfr, FlagFeedback                     int32
	NPartTotal                                [6]uint32
	FlagCooling, NumFiles                     int32
	BoxSize, Omega0, OmegaLambda, HubbleParam float64
	FlagStellarAge, HashTabSize               int32

	Padding [88]byte
}

// WriteLGadget2 writes positions as a single-file LGadget-2 snapshot in dir.
// Velocities and IDs are written as zeros. It exists mostly so tests don't
// need fixture files.
func WriteLGadget2(
	dir, fname string, gh *lGadget2Header, x [][3]float32,
	order binary.ByteOrder,
) error {
	if err := os.MkdirAll(dir, 0755); err != nil { return err }
	f, err := os.Create(path.Join(dir, fname))
	if err != nil { return err }
	defer f.Close()

	n := int32(len(x))
	blocks := []struct {
		size int32
		data interface{}
	}{
		{256, gh},
		{12*n, x},
		{12*n, make([][3]float32, n)},
		{8*n, make([]int64, n)},
	}

	for _, b := range blocks {
		if err = binary.Write(f, order, b.size); err != nil { return err }
		if err = binary.Write(f, order, b.data); err != nil { return err }
		if err = binary.Write(f, order, b.size); err != nil { return err }
	}

	return nil
}
