package stats

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/abatten/TOPAZ/fields"
	"github.com/abatten/TOPAZ/io/snapshot"
)

// TimeSeries is a sequence of (redshift, value) pairs, one per snapshot, in
// the order the snapshots were given.
type TimeSeries struct {
	Ion       string
	Weighting Weighting
	Redshift  []float64
	Value     []float64
}

// Len returns the number of snapshots in the series.
func (ts *TimeSeries) Len() int { return len(ts.Redshift) }

// Validate checks that the two columns line up.
func (ts *TimeSeries) Validate() error {
	if len(ts.Redshift) != len(ts.Value) {
		return fmt.Errorf("len(Redshift) = %d, but len(Value) = %d",
			len(ts.Redshift), len(ts.Value))
	}
	return nil
}

type options struct {
	log      *zap.SugaredLogger
	load     snapshot.Loader
	registry *fields.Registry
}

// Option configures IonMean.
type Option func(*options)

// WithLogger sets the logger used for progress reports. By default nothing is
// logged.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(o *options) { o.log = log }
}

// WithLoader sets the function used to open each snapshot path.
func WithLoader(load snapshot.Loader) Option {
	return func(o *options) { o.load = load }
}

// WithFormat opens each path with snapshot.Open and the given file name
// format.
func WithFormat(format string) Option {
	return func(o *options) { o.load = snapshot.DirLoader(format) }
}

// WithRegistry sets the field registry ions are looked up in.
func WithRegistry(r *fields.Registry) Option {
	return func(o *options) { o.registry = r }
}

// IonMean computes the weighted mean of an ion's fraction for every snapshot in
// paths. The returned series has exactly one entry per path, in the same order.
//
// Any failure aborts the whole series: a gap would misalign redshifts and
// values.
func IonMean(
	paths []string, ion string, w Weighting, opts ...Option,
) (*TimeSeries, error) {
	o := &options{
		log:      zap.NewNop().Sugar(),
		load:     snapshot.DirLoader(snapshot.DefaultFormat),
		registry: fields.Default(),
	}
	for _, opt := range opts { opt(o) }

	if _, err := fields.IonField(ion); err != nil { return nil, err }
	if _, err := o.registry.Lookup(ion); err != nil { return nil, err }
	if w != Unspecified && w != Mass && w != Volume {
		return nil, fmt.Errorf("%w: %s", ErrUnknownWeighting, w)
	}

	ts := &TimeSeries{
		Ion: ion, Weighting: w,
		Redshift: make([]float64, 0, len(paths)),
		Value:    make([]float64, 0, len(paths)),
	}

	for i, path := range paths {
		z, val, err := snapshotMean(o, path, ion, w)
		if err != nil { return nil, fmt.Errorf("snapshot %s: %w", path, err) }

		ts.Redshift = append(ts.Redshift, z)
		ts.Value = append(ts.Value, val)

		o.log.Infow("Computed weighted ion fraction",
			"snapshot", i+1, "of", len(paths), "path", path,
			"ion", ion, "weighting", w.String(), "z", z, "value", val)
	}

	return ts, nil
}

// snapshotMean loads one snapshot, reduces the ion field, and releases the
// snapshot before returning.
func snapshotMean(
	o *options, path, ion string, w Weighting,
) (z, val float64, err error) {
	snap, err := o.load(path)
	if err != nil { return 0, 0, err }
	defer snap.Close()

	q, err := o.registry.Compute(ion, snap)
	if err != nil { return 0, 0, err }

	val, err = Weight(q, snap, w)
	if err != nil { return 0, 0, err }

	return snap.Header().Z, val, nil
}
