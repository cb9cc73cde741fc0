package ray

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/abatten/TOPAZ/box"
	"github.com/abatten/TOPAZ/io/snapshot"
)

// DefaultSamples is the number of points SampleTracer uses when Samples isn't
// set.
const DefaultSamples = 1000

// Ray is a sampled sight line.
type Ray struct {
	Start, End [3]float64 // Code units
	Lines      []string
	Path       string // File the ray was written to, if any.

	Redshift, BoxSize float64

	// L is the distance of each sample from Start in code units.
	L []float64
	// Samples maps each line to its number density (cm^-3) at each sample.
	Samples map[string][]float64
	// Column maps each line to its column density in cm^-2.
	Column map[string]float64
}

// Length returns the length of the ray in code units.
func (r *Ray) Length() float64 {
	sum := 0.0
	for k := 0; k < 3; k++ {
		d := r.End[k] - r.Start[k]
		sum += d*d
	}
	return math.Sqrt(sum)
}

// Tracer samples a snapshot along the segment from start to end.
type Tracer interface {
	Trace(snap snapshot.Snapshot, start, end [3]float64, lines []string) (*Ray, error)
}

// SampleTracer evaluates the lines at evenly spaced points along the ray. Each
// point takes the values of the closest gas particle, as long as the point lies
// inside that particle's smoothing length. Points outside every particle are
// empty.
type SampleTracer struct {
	Samples int
}

func (tr *SampleTracer) Trace(
	snap snapshot.Snapshot, start, end [3]float64, lines []string,
) (*Ray, error) {
	lines, err := ValidateLines(lines)
	if err != nil { return nil, err }

	nSamples := tr.Samples
	if nSamples == 0 { nSamples = DefaultSamples }
	if nSamples < 2 {
		return nil, fmt.Errorf("ray needs at least 2 samples, got %d", nSamples)
	}

	hd := snap.Header()
	x, err := snap.Positions()
	if err != nil { return nil, err }
	if len(x) == 0 { return nil, fmt.Errorf("snapshot has no gas particles") }

	hsml, rMax, err := searchRadius(snap, hd, len(x))
	if err != nil { return nil, err }

	n := map[string][]float64{}
	for _, line := range lines {
		if n[line], err = numberDensity(snap, line); err != nil {
			return nil, fmt.Errorf("line %s: %w", line, err)
		}
	}

	r := &Ray{
		Start: start, End: end, Lines: lines,
		Redshift: hd.Z, BoxSize: hd.L,
		L:       make([]float64, nSamples),
		Samples: map[string][]float64{},
		Column:  map[string]float64{},
	}
	for _, line := range lines { r.Samples[line] = make([]float64, nSamples) }

	length := r.Length()
	dl := length / float64(nSamples)
	floats.Span(r.L, dl/2, length - dl/2)

	finder := box.NewFinder(hd.L, x)
	for i, l := range r.L {
		var pos [3]float64
		for k := 0; k < 3; k++ {
			t := 0.0
			if length > 0 { t = l / length }
			pos[k] = start[k] + t*(end[k] - start[k])
		}

		j, dist, ok := finder.Nearest(pos, rMax)
		if !ok || (hsml != nil && dist > hsml[j]) { continue }
		for _, line := range lines { r.Samples[line][i] = n[line][j] }
	}

	dlCm := dl * hd.LengthToCm()
	for _, line := range lines {
		r.Column[line] = floats.Sum(r.Samples[line]) * dlCm
	}

	return r, nil
}

// searchRadius returns the smoothing lengths and the largest distance worth
// searching. Without smoothing lengths, every sample takes the closest
// particle within twice the mean interparticle spacing.
func searchRadius(
	snap snapshot.Snapshot, hd *snapshot.Header, n int,
) (hsml []float64, rMax float64, err error) {
	hsml, err = snap.Field(snapshot.SmoothingLength)
	switch {
	case errors.Is(err, snapshot.ErrNoField):
		hsml, rMax = nil, 2 * hd.L / math.Cbrt(float64(n))
	case err != nil:
		return nil, 0, err
	default:
		rMax = floats.Max(hsml)
	}

	if rMax > hd.L/2 { rMax = hd.L/2 }
	return hsml, rMax, nil
}
