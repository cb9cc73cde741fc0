package history

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abatten/TOPAZ/stats"
)

func openStore(t *testing.T) *Store {
	s, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestPutGet(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	ts := &stats.TimeSeries{
		Ion: "HeII", Weighting: stats.Volume,
		Redshift: []float64{6, 4.5, 5, 3},
		Value:    []float64{0.9, 0.1, 0.4, 1e-7},
	}
	run, err := s.Put(ctx, "aurora-L025", ts)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, run)

	got, err := s.Get(ctx, "aurora-L025")
	require.NoError(t, err)
	assert.Equal(t, ts, got)

	info, err := s.Info(ctx, "aurora-L025")
	require.NoError(t, err)
	assert.Equal(t, run, info.RunID)
	assert.Equal(t, "HeII", info.Ion)
	assert.False(t, info.Created.IsZero())
}

func TestPutReplaces(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	first := &stats.TimeSeries{
		Ion: "HI", Redshift: []float64{1, 2, 3}, Value: []float64{1, 2, 3},
	}
	second := &stats.TimeSeries{
		Ion: "HI", Weighting: stats.Mass,
		Redshift: []float64{7}, Value: []float64{0.5},
	}

	run1, err := s.Put(ctx, "a", first)
	require.NoError(t, err)
	run2, err := s.Put(ctx, "a", second)
	require.NoError(t, err)
	assert.NotEqual(t, run1, run2)

	got, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, second, got)
}

func TestEmptySeries(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	ts := &stats.TimeSeries{ Ion: "HI", Redshift: []float64{}, Value: []float64{} }
	_, err := s.Put(ctx, "empty", ts)
	require.NoError(t, err)

	got, err := s.Get(ctx, "empty")
	require.NoError(t, err)
	assert.Equal(t, 0, got.Len())
}

func TestErrors(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	_, err := s.Get(ctx, "missing")
	assert.True(t, errors.Is(err, ErrNotFound))
	_, err = s.Info(ctx, "missing")
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = s.Put(ctx, " ", &stats.TimeSeries{})
	assert.Error(t, err)
	_, err = s.Put(ctx, "bad", &stats.TimeSeries{ Redshift: []float64{1} })
	assert.Error(t, err)
	_, err = s.Put(ctx, "nil", nil)
	assert.Error(t, err)

	_, err = Open("")
	assert.Error(t, err)
}

func TestList(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	entries, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)

	for _, name := range []string{"c", "a", "b"} {
		_, err := s.Put(ctx, name, &stats.TimeSeries{
			Ion: "HI", Redshift: []float64{1}, Value: []float64{2},
		})
		require.NoError(t, err)
	}

	entries, err = s.List(ctx)
	require.NoError(t, err)
	names := []string{}
	for _, e := range entries { names = append(names, e.Name) }
	assert.Equal(t, []string{"a", "b", "c"}, names)
}

func TestReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "history.db")

	s, err := Open(path)
	require.NoError(t, err)
	ts := &stats.TimeSeries{ Ion: "HI", Redshift: []float64{2}, Value: []float64{0.5} }
	_, err = s.Put(ctx, "kept", ts)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.Get(ctx, "kept")
	require.NoError(t, err)
	assert.Equal(t, ts, got)
}
