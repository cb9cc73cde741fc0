package render

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gonum.org/v1/plot/plotter"

	"github.com/abatten/TOPAZ/fields"
	"github.com/abatten/TOPAZ/io/snapshot"
	"github.com/abatten/TOPAZ/ray"
	"github.com/abatten/TOPAZ/stats"
)

var _ plotter.GridXYZ = &Grid{}

func boxSnap(t *testing.T, metals float64) snapshot.Snapshot {
	x := [][3]float64{
		{1, 1, 1}, {1, 1, 9}, {5, 5, 5}, {9, 9, 5.2}, {2, 8, 4.9},
	}
	n := len(x)
	fill := func(v float64) []float64 {
		out := make([]float64, n)
		for i := range out { out[i] = v }
		return out
	}

	hd := &snapshot.Header{ Z: 2.5, Scale: 1/3.5, H100: 0.7, L: 10 }
	snap, err := snapshot.NewMockSnapshot(hd, x, map[snapshot.Key][]float64{
		snapshot.Mass:        fill(1e-3),
		snapshot.Density:     fill(1),
		snapshot.Metallicity: fill(metals),
		snapshot.IonHI:       fill(0.1),
		snapshot.AbundanceH:  fill(0.7),
		snapshot.AbundanceO:  fill(0.4*metals),
	})
	require.NoError(t, err)
	return snap
}

func TestGrid(t *testing.T) {
	g := NewGrid(4, 8)
	g.Deposit(1, 1, 2)
	g.Deposit(1.5, 0.5, 3)
	g.Deposit(-1, 7, 1) // wraps to (7, 7)
	g.Deposit(8, 9, 4)  // wraps to (0, 1)

	c, r := g.Dims()
	assert.Equal(t, 4, c)
	assert.Equal(t, 4, r)
	assert.Equal(t, 9.0, g.Z(0, 0))
	assert.Equal(t, 1.0, g.Z(3, 3))
	assert.Equal(t, 10.0, g.Sum())
	assert.Equal(t, 1.0, g.X(0))
	assert.Equal(t, 7.0, g.Y(3))

	g.Scale(10)
	g.Log10()
	assert.InDelta(t, math.Log10(90), g.Z(0, 0), 1e-12)
	assert.True(t, math.IsNaN(g.Z(1, 2)))
}

func TestSlab(t *testing.T) {
	x := [][3]float64{ {0, 0, 0.5}, {0, 0, 9.8}, {0, 0, 5}, {0, 0, 1.2} }
	tests := []struct {
		center, thickness float64
		ok                []bool
	}{
		{0, 2, []bool{true, true, false, false}},
		{10, 2, []bool{true, true, false, false}},
		{5, 1, []bool{false, false, true, false}},
		{1, 1, []bool{true, false, false, true}},
		{1.5, 1, []bool{false, false, false, true}},
		{5, 10, []bool{true, true, true, true}},
		{5, 10.5, []bool{true, true, true, true}},
	}

	for i, test := range tests {
		ok := slab(x, ray.Z, test.center, test.thickness, 10)
		assert.Equal(t, test.ok, ok, "%d) center = %g, thickness = %g",
			i, test.center, test.thickness)
	}
}

func TestDensityMaps(t *testing.T) {
	snap := boxSnap(t, 0.01)

	p, err := DensitySlice(snap, ray.Z, 5, 1, 16)
	require.NoError(t, err)
	assert.Equal(t, "z = 2.50", p.Title.Text)
	assert.Equal(t, "x [kpc]", p.X.Label.Text)

	_, err = DensitySlice(snap, ray.Z, 2.5, 0.5, 16)
	assert.True(t, errors.Is(err, ErrEmptySlice))
	_, err = DensitySlice(snap, ray.Z, 5, 0, 16)
	assert.Error(t, err)

	p, err = DensityProjection(snap, ray.X, 16)
	require.NoError(t, err)
	assert.Equal(t, "y [kpc]", p.X.Label.Text)
	assert.Equal(t, "z [kpc]", p.Y.Label.Text)

	fname := filepath.Join(t.TempDir(), "projection.png")
	require.NoError(t, Save(p, fname, 0, 0))
	assert.FileExists(t, fname)
}

func TestProjectionConservesMass(t *testing.T) {
	snap := boxSnap(t, 0.01)
	hd := snap.Header()
	x, _ := snap.Positions()
	mass, _ := snap.Field(snapshot.Mass)

	kpc := hd.LengthToKpc()
	g := project(x, mass, ray.Y, hd.L, kpc, 8)
	assert.InDelta(t, 5e-3, g.Sum(), 1e-15)
	assert.InDelta(t, hd.L*kpc, g.Width, 1e-9)
}

func TestMetallicityMap(t *testing.T) {
	p, err := MetallicityMap(boxSnap(t, 0.0127), ray.Z, "", 8)
	require.NoError(t, err)
	assert.Equal(t, "[Z/Zsun], z = 2.50", p.Title.Text)

	core, logs := observer.New(zap.WarnLevel)
	p, err = MetallicityMap(boxSnap(t, 0), ray.Z, "", 8,
		WithLogger(zap.New(core).Sugar()))
	assert.Nil(t, p)
	assert.True(t, errors.Is(err, ErrNoMetals))
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, zapcore.WarnLevel, logs.All()[0].Level)
}

func TestElementMetallicityMap(t *testing.T) {
	p, err := MetallicityMap(boxSnap(t, 0.0127), ray.Z, "O", 8)
	require.NoError(t, err)
	assert.Equal(t, "[O/H], z = 2.50", p.Title.Text)
	assert.Equal(t, "x [kpc]", p.X.Label.Text)

	core, logs := observer.New(zap.WarnLevel)
	_, err = MetallicityMap(boxSnap(t, 0), ray.Z, "O", 8,
		WithLogger(zap.New(core).Sugar()))
	assert.True(t, errors.Is(err, ErrNoMetals))
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "O", logs.All()[0].ContextMap()["metal"])

	_, err = MetallicityMap(boxSnap(t, 0.0127), ray.Z, "H", 8)
	assert.True(t, errors.Is(err, fields.ErrUnknownField))

	// Carbon isn't in the fixture.
	_, err = MetallicityMap(boxSnap(t, 0.0127), ray.Z, "C", 8)
	assert.True(t, errors.Is(err, snapshot.ErrNoField))
}

func TestElementRatioIsMassWeighted(t *testing.T) {
	x := [][3]float64{ {1, 1, 1}, {1.1, 1.1, 5} }
	hd := &snapshot.Header{ Z: 1, H100: 0.7, L: 10 }
	solar := fields.SolarMassFraction["O"] / fields.SolarMassFraction["H"]
	snap, err := snapshot.NewMockSnapshot(hd, x, map[snapshot.Key][]float64{
		snapshot.Mass:       {1, 3},
		snapshot.AbundanceH: {0.7, 0.7},
		snapshot.AbundanceO: {0.7*solar, 0.7*solar*5},
	})
	require.NoError(t, err)

	ratio, err := fields.Default().Compute(fields.RatioName("O"), snap)
	require.NoError(t, err)
	assert.InDelta(t, 1, ratio[0], 1e-12)
	assert.InDelta(t, 5, ratio[1], 1e-12)

	mass, _ := snap.Field(snapshot.Mass)
	w := []float64{ mass[0]*ratio[0], mass[1]*ratio[1] }
	gq := project(x, w, ray.Z, hd.L, 1, 4)
	g := project(x, mass, ray.Z, hd.L, 1, 4)
	assert.InDelta(t, (1 + 15)/4.0, gq.Z(0, 0)/g.Z(0, 0), 1e-12)

	_, err = MetallicityMap(snap, ray.Z, "O", 4)
	require.NoError(t, err)
}

func TestIonHistory(t *testing.T) {
	_, err := IonHistory(nil, nil, "HI", stats.Volume)
	assert.True(t, errors.Is(err, ErrNoHistory))

	ts := &stats.TimeSeries{
		Ion: "HeII", Weighting: stats.Mass,
		Redshift: []float64{5, 4, 3}, Value: []float64{0.1, 0.3, 0.2},
	}
	p, err := IonHistory(ts, nil, "", stats.Unspecified)
	require.NoError(t, err)
	assert.Equal(t, "Redshift", p.X.Label.Text)
	assert.Equal(t, "mass-weighted HeII fraction", p.Y.Label.Text)

	p, err = IonHistory(ts, nil, "", stats.Mass, WithHalfLine(true))
	require.NoError(t, err)
	assert.Equal(t, 0.5, p.Y.Max)
	assert.Equal(t, 0.1, p.Y.Min)

	p, err = IonHistory(ts, []string{"missing"}, "HI", stats.Volume)
	require.NoError(t, err, "ts should take precedence over paths")
	assert.Equal(t, "HeII fraction", p.Title.Text)
	assert.Equal(t, 0.3, p.Y.Max)

	_, err = IonHistory(&stats.TimeSeries{ Ion: "HI" }, nil, "", stats.Mass)
	assert.True(t, errors.Is(err, ErrNoHistory))

	bad := &stats.TimeSeries{ Redshift: []float64{1}, Value: nil }
	_, err = IonHistory(bad, nil, "", stats.Mass)
	assert.Error(t, err)
}

func TestIonHistoryFromSnapshots(t *testing.T) {
	snaps := map[string]snapshot.Snapshot{
		"a": boxSnap(t, 0.01), "b": boxSnap(t, 0.01),
	}
	load := func(path string) (snapshot.Snapshot, error) {
		snap, ok := snaps[path]
		if !ok { return nil, fmt.Errorf("no snapshot at %s", path) }
		return snap, nil
	}

	p, err := IonHistory(nil, []string{"a", "b"}, "HI", stats.Volume,
		WithLoader(load))
	require.NoError(t, err)
	assert.Equal(t, "volume-weighted HI fraction", p.Y.Label.Text)

	_, err = IonHistory(nil, []string{"c"}, "HI", stats.Volume,
		WithLoader(load))
	assert.Error(t, err)
}
