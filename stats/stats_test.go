package stats

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/abatten/TOPAZ/io/snapshot"
)

func mockSnap(
	t *testing.T, z float64, mass, density, hi []float64,
) snapshot.Snapshot {
	hd := &snapshot.Header{ Z: z, H100: 0.7, L: 100 }
	snap, err := snapshot.NewMockSnapshot(hd, make([][3]float64, len(mass)),
		map[snapshot.Key][]float64{
			snapshot.Mass: mass, snapshot.Density: density, snapshot.IonHI: hi,
		})
	require.NoError(t, err)
	return snap
}

func constant(n int, x float64) []float64 {
	out := make([]float64, n)
	for i := range out { out[i] = x }
	return out
}

func randoms(rng *rand.Rand, n int, lo, hi float64) []float64 {
	out := make([]float64, n)
	for i := range out { out[i] = lo + (hi - lo)*rng.Float64() }
	return out
}

func TestParseWeighting(t *testing.T) {
	tests := []struct {
		s string
		w Weighting
		fail bool
	}{
		{"", Unspecified, false},
		{"mass", Mass, false},
		{"Volume", Volume, false},
		{" volume ", Volume, false},
		{"number", Unspecified, true},
	}

	for i, test := range tests {
		w, err := ParseWeighting(test.s)
		if test.fail {
			if !errors.Is(err, ErrUnknownWeighting) {
				t.Errorf("%d) ParseWeighting(%q) = %v", i, test.s, err)
			}
		} else if err != nil || w != test.w {
			t.Errorf("%d) ParseWeighting(%q) = %s, %v", i, test.s, w, err)
		}
	}
}

func TestConstantField(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	n := 100
	snap := mockSnap(t, 5, constant(n, 1e-4), randoms(rng, n, 1e-8, 1e-2),
		constant(n, 0.3))

	for _, w := range []Weighting{ Unspecified, Mass, Volume } {
		val, err := Weight(constant(n, 0.3), snap, w)
		require.NoError(t, err)
		assert.InDelta(t, 0.3, val, 1e-12, w.String())
	}
}

func TestMassEqualsUnspecified(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	n := 50
	q := randoms(rng, n, 0, 1)
	snap := mockSnap(t, 3, randoms(rng, n, 1, 10), randoms(rng, n, 1, 10), q)

	m, err := Weight(q, snap, Mass)
	require.NoError(t, err)
	u, err := Weight(q, snap, Unspecified)
	require.NoError(t, err)
	assert.Equal(t, m, u)

	expected := 0.0
	mass, _ := snap.Field(snapshot.Mass)
	mTot := 0.0
	for i := range q {
		expected += q[i]*mass[i]
		mTot += mass[i]
	}
	assert.InDelta(t, expected/mTot, m, 1e-12)
}

func TestVolumeWeighting(t *testing.T) {
	// Two particles with the same mass, but the second takes up three times
	// the volume.
	snap := mockSnap(t, 3, []float64{1, 1}, []float64{3, 1}, []float64{0, 1})

	v, err := Weight([]float64{0, 1}, snap, Volume)
	require.NoError(t, err)
	assert.InDelta(t, 0.75, v, 1e-12)

	m, err := Weight([]float64{0, 1}, snap, Mass)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, m, 1e-12)
}

func TestBoundedness(t *testing.T) {
	rng := rand.New(rand.NewSource(3))

	for trial := 0; trial < 20; trial++ {
		n := 1 + rng.Intn(200)
		lo, hi := -rng.Float64(), rng.Float64()
		q := randoms(rng, n, lo, hi)
		snap := mockSnap(t, 1, randoms(rng, n, 1e-3, 1e3),
			randoms(rng, n, 1e-5, 1e5), q)

		qMin, qMax := math.Inf(1), math.Inf(-1)
		for _, x := range q {
			qMin, qMax = math.Min(qMin, x), math.Max(qMax, x)
		}

		for _, w := range []Weighting{ Mass, Volume } {
			val, err := Weight(q, snap, w)
			require.NoError(t, err)
			if val < qMin - 1e-12 || val > qMax + 1e-12 {
				t.Errorf("%d) %s-weighted mean %g outside [%g, %g]",
					trial, w, val, qMin, qMax)
			}
		}
	}
}

func TestWeightsNormalized(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	mass, density := randoms(rng, 1000, 1, 100), randoms(rng, 1000, 1e-3, 1)

	for _, w := range []Weighting{ Unspecified, Mass, Volume } {
		weights, err := Weights(mass, density, w)
		require.NoError(t, err)

		sum := 0.0
		for _, x := range weights { sum += x }
		assert.InDelta(t, 1.0, sum, 1e-12, w.String())
	}

	_, err := Weights([]float64{0, 0}, []float64{1, 1}, Mass)
	assert.True(t, errors.Is(err, ErrZeroWeight))

	_, err = Weights(mass, density, Weighting(7))
	assert.True(t, errors.Is(err, ErrUnknownWeighting))
}

func TestWeightErrors(t *testing.T) {
	snap := mockSnap(t, 1, []float64{1, 1}, []float64{1, 1}, []float64{0, 0})

	_, err := Weight([]float64{1}, snap, Mass)
	assert.Error(t, err)

	_, err = Weight([]float64{1, 1}, snap, Weighting(-1))
	assert.True(t, errors.Is(err, ErrUnknownWeighting))

	hd := &snapshot.Header{ Z: 1 }
	noDensity, err := snapshot.NewMockSnapshot(hd, make([][3]float64, 2),
		map[snapshot.Key][]float64{ snapshot.Mass: {1, 1} })
	require.NoError(t, err)
	_, err = Weight([]float64{1, 1}, noDensity, Volume)
	assert.True(t, errors.Is(err, snapshot.ErrNoField))
}

// reusable keeps mock snapshots open so they can be loaded more than once.
type reusable struct{ snapshot.Snapshot }

func (reusable) Close() error { return nil }

// mapLoader returns a Loader that hands out snapshots from a map.
func mapLoader(snaps map[string]snapshot.Snapshot) snapshot.Loader {
	return func(path string) (snapshot.Snapshot, error) {
		snap, ok := snaps[path]
		if !ok { return nil, fmt.Errorf("no snapshot at %s", path) }
		return reusable{snap}, nil
	}
}

func TestIonMeanRandomSnapshots(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	n := 64
	paths := []string{"snapdir_010", "snapdir_011", "snapdir_012"}
	zs := []float64{5.0, 4.5, 4.0}

	snaps := map[string]snapshot.Snapshot{}
	for i := range paths {
		snaps[paths[i]] = mockSnap(t, zs[i], randoms(rng, n, 1, 2),
			randoms(rng, n, 1e-4, 1), constant(n, 0.3))
	}

	for _, w := range []Weighting{ Unspecified, Mass, Volume } {
		ts, err := IonMean(paths, "HI", w, WithLoader(mapLoader(snaps)))
		require.NoError(t, err)
		require.NoError(t, ts.Validate())
		assert.Equal(t, len(paths), ts.Len())
		assert.Equal(t, zs, ts.Redshift)
		for i := range ts.Value {
			assert.InDelta(t, 0.3, ts.Value[i], 1e-12)
		}
		assert.Equal(t, "HI", ts.Ion)
		assert.Equal(t, w, ts.Weighting)
	}
}

func TestIonMeanPreservesOrder(t *testing.T) {
	n := 4
	paths := []string{"a", "b", "c", "d"}
	zs := []float64{2, 6, 3, 3}
	vals := []float64{0.1, 0.9, 0.5, 0.2}

	snaps := map[string]snapshot.Snapshot{}
	for i := range paths {
		snaps[paths[i]] = mockSnap(t, zs[i], constant(n, 1), constant(n, 1),
			constant(n, vals[i]))
	}

	ts, err := IonMean(paths, "HI", Mass, WithLoader(mapLoader(snaps)))
	require.NoError(t, err)
	assert.Equal(t, zs, ts.Redshift)
	assert.InDeltaSlice(t, vals, ts.Value, 1e-12)
}

func TestIonMeanFailsFast(t *testing.T) {
	n := 4
	snaps := map[string]snapshot.Snapshot{
		"a": mockSnap(t, 5, constant(n, 1), constant(n, 1), constant(n, 0.5)),
		"c": mockSnap(t, 3, constant(n, 1), constant(n, 1), constant(n, 0.5)),
	}

	ts, err := IonMean([]string{"a", "b", "c"}, "HI", Volume,
		WithLoader(mapLoader(snaps)))
	assert.Error(t, err)
	assert.Nil(t, ts)
	assert.Contains(t, err.Error(), "b")

	_, err = IonMean([]string{"a"}, "HeII", Volume, WithLoader(mapLoader(snaps)))
	assert.True(t, errors.Is(err, snapshot.ErrNoField), "got %v", err)

	_, err = IonMean([]string{"a"}, "OVI", Volume, WithLoader(mapLoader(snaps)))
	assert.Error(t, err)

	_, err = IonMean([]string{"a"}, "HI", Weighting(9), WithLoader(mapLoader(snaps)))
	assert.True(t, errors.Is(err, ErrUnknownWeighting))
}

func TestIonMeanLoggingDoesNotChangeResults(t *testing.T) {
	rng := rand.New(rand.NewSource(6))
	n := 32
	paths := []string{"a", "b"}
	snaps := map[string]snapshot.Snapshot{}
	for i, p := range paths {
		snaps[p] = mockSnap(t, float64(5 - i), randoms(rng, n, 1, 2),
			randoms(rng, n, 1, 2), randoms(rng, n, 0, 1))
	}

	quiet, err := IonMean(paths, "HI", Volume, WithLoader(mapLoader(snaps)))
	require.NoError(t, err)

	core, logs := observer.New(zap.InfoLevel)
	loud, err := IonMean(paths, "HI", Volume, WithLoader(mapLoader(snaps)),
		WithLogger(zap.New(core).Sugar()))
	require.NoError(t, err)

	assert.Equal(t, quiet, loud)
	assert.Equal(t, len(paths), logs.Len())
}

func TestIonMeanEmpty(t *testing.T) {
	ts, err := IonMean(nil, "HI", Volume)
	require.NoError(t, err)
	assert.Equal(t, 0, ts.Len())
}
