/*package stats reduces per-particle fields to single numbers and collects
those numbers across a series of snapshots.*/
package stats

import (
	"errors"
	"fmt"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/abatten/TOPAZ/io/snapshot"
)

var (
	// ErrUnknownWeighting is returned for weighting modes other than mass and
	// volume.
	ErrUnknownWeighting = errors.New("stats: unknown weighting")
	// ErrZeroWeight is returned when the weights sum to zero.
	ErrZeroWeight = errors.New("stats: weights sum to zero")
)

// Weighting selects how particles contribute to a weighted mean.
type Weighting int

const (
	// Unspecified weighting is treated as mass weighting.
	Unspecified Weighting = iota
	Mass
	Volume
)

// ParseWeighting parses "mass", "volume", or "" (unspecified).
func ParseWeighting(s string) (Weighting, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return Unspecified, nil
	case "mass":
		return Mass, nil
	case "volume":
		return Volume, nil
	}
	return Unspecified, fmt.Errorf("%w: '%s'", ErrUnknownWeighting, s)
}

func (w Weighting) String() string {
	switch w {
	case Unspecified: return "unspecified"
	case Mass: return "mass"
	case Volume: return "volume"
	}
	return fmt.Sprintf("Weighting(%d)", int(w))
}

// Weights returns normalized per-particle weights, which sum to one. mass and
// density must be in a common unit system: volumes are computed as
// mass / density.
func Weights(mass, density []float64, w Weighting) ([]float64, error) {
	var out []float64

	switch w {
	case Unspecified, Mass:
		out = make([]float64, len(mass))
		copy(out, mass)
	case Volume:
		if len(density) != len(mass) {
			panic(fmt.Sprintf("len(mass) = %d, but len(density) = %d",
				len(mass), len(density)))
		}
		out = make([]float64, len(mass))
		for i := range out { out[i] = mass[i] / density[i] }
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownWeighting, w)
	}

	total := floats.Sum(out)
	if total == 0 { return nil, ErrZeroWeight }
	floats.Scale(1/total, out)

	return out, nil
}

// WeightedMean returns sum(q w) / sum(w).
func WeightedMean(q, weights []float64) float64 {
	if len(q) != len(weights) {
		panic(fmt.Sprintf("len(q) = %d, but len(weights) = %d",
			len(q), len(weights)))
	}
	return stat.Mean(q, weights)
}

// Weight reduces the per-particle quantity q to a single number weighted by
// each particle's mass (Mass or Unspecified) or volume (Volume). q must have
// one entry per gas particle in snap.
func Weight(q []float64, snap snapshot.Snapshot, w Weighting) (float64, error) {
	if w != Unspecified && w != Mass && w != Volume {
		return 0, fmt.Errorf("%w: %s", ErrUnknownWeighting, w)
	}

	if n := snap.Header().NGas; int64(len(q)) != n {
		return 0, fmt.Errorf("len(q) = %d, but the snapshot has %d gas particles",
			len(q), n)
	}

	mass, err := snapshot.GasMass(snap)
	if err != nil { return 0, err }

	var density []float64
	if w == Volume {
		density, err = snapshot.GasDensity(snap)
		if err != nil { return 0, err }
	}

	weights, err := Weights(mass, density, w)
	if err != nil { return 0, err }

	return WeightedMean(q, weights), nil
}
