package ray

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abatten/TOPAZ/io/snapshot"
)

// Options control what Make, Random and Batch hand back.
type Options struct {
	// ReturnRay makes Make and Random return the traced Ray. Otherwise only
	// the file is written.
	ReturnRay bool
}

// Generator traces rays through snapshots and writes them to disk. The zero
// value is usable: it traces with a SampleTracer, draws coordinates from a
// time-seeded source, logs nothing, and writes "ray_*.h5" files to the
// working directory.
type Generator struct {
	Tracer    Tracer
	Rand      *rand.Rand
	Log       *zap.SugaredLogger
	OutputDir string
	Prefix    string
}

// NewGenerator returns a Generator whose random coordinates are determined by
// seed.
func NewGenerator(seed int64, log *zap.SugaredLogger) *Generator {
	return &Generator{ Rand: rand.New(rand.NewSource(seed)), Log: log }
}

func (gen *Generator) init() {
	if gen.Tracer == nil { gen.Tracer = &SampleTracer{} }
	if gen.Rand == nil {
		gen.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if gen.Log == nil { gen.Log = zap.NewNop().Sugar() }
	if gen.OutputDir == "" { gen.OutputDir = "." }
	if gen.Prefix == "" { gen.Prefix = "ray" }
}

// Make traces the ray from start to end and writes it to fname. The Ray is
// only returned if opts.ReturnRay is set.
func (gen *Generator) Make(
	snap snapshot.Snapshot, start, end [3]float64, lines []string,
	fname string, opts Options,
) (*Ray, error) {
	gen.init()

	lines, err := ValidateLines(lines)
	if err != nil { return nil, err }

	r, err := gen.Tracer.Trace(snap, start, end, lines)
	if err != nil { return nil, err }
	r.Path = fname

	if dir := filepath.Dir(fname); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil { return nil, err }
	}
	if err := WriteRay(fname, r); err != nil { return nil, err }

	gen.Log.Debugw("Wrote ray", "path", fname, "start", start, "end", end,
		"lines", lines)

	if !opts.ReturnRay { return nil, nil }
	return r, nil
}

// Random writes a ray parallel to axis which crosses the whole box. The two
// orthogonal coordinates are drawn uniformly from [0, L). The file name comes
// from RayFilename; an existing file with the same name is overwritten.
func (gen *Generator) Random(
	snap snapshot.Snapshot, axis Axis, lines []string, opts Options,
) (path string, r *Ray, err error) {
	gen.init()
	if axis < X || axis > Z { return "", nil, fmt.Errorf("invalid axis %d", axis) }

	L := snap.Header().L
	a1, a2 := axis.Orthogonal()
	c1, c2 := gen.Rand.Float64()*L, gen.Rand.Float64()*L

	var start, end [3]float64
	start[axis], end[axis] = 0, L
	start[a1], end[a1] = c1, c1
	start[a2], end[a2] = c2, c2

	path = RayFilename(gen.OutputDir, gen.Prefix, lines, axis, c1, c2)
	r, err = gen.Make(snap, start, end, lines, path, opts)
	if err != nil { return "", nil, err }
	return path, r, nil
}

// Batch writes n independent random rays and returns their paths in the order
// they were made.
func (gen *Generator) Batch(
	snap snapshot.Snapshot, n int, axis Axis, lines []string, opts Options,
) ([]string, error) {
	gen.init()
	if n < 0 { return nil, fmt.Errorf("can't make %d rays", n) }

	run := uuid.New()
	log := gen.Log.With("run", run.String())
	log.Infow("Starting ray batch", "rays", n, "axis", axis.String(),
		"lines", lines, "z", snap.Header().Z)

	paths := make([]string, 0, n)
	for i := 0; i < n; i++ {
		path, _, err := gen.Random(snap, axis, lines, opts)
		if err != nil { return paths, fmt.Errorf("ray %d of %d: %w", i+1, n, err) }
		paths = append(paths, path)

		log.Infow("Made ray", "ray", i+1, "of", n, "path", path)
	}

	return paths, nil
}
