/*package render draws density and metallicity maps of snapshots and ion
fraction histories with gonum/plot. Renderers build a *plot.Plot and leave
saving it to the caller.*/
package render

import (
	"errors"
	"fmt"
	"image/color"
	"math"

	"go.uber.org/zap"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/abatten/TOPAZ/array"
	"github.com/abatten/TOPAZ/box"
	"github.com/abatten/TOPAZ/fields"
	"github.com/abatten/TOPAZ/io/snapshot"
	"github.com/abatten/TOPAZ/ray"
	"github.com/abatten/TOPAZ/stats"
)

var (
	// ErrNoMetals is returned when a metallicity map is requested for a
	// snapshot without any metals.
	ErrNoMetals = errors.New("render: snapshot contains no metals")
	// ErrNoHistory is returned when an ion history has nothing to plot.
	ErrNoHistory = errors.New("render: no history or snapshots given")
	// ErrEmptySlice is returned when a slice contains no particles.
	ErrEmptySlice = errors.New("render: no particles in slice")
)

// DefaultColors is the number of colors in the heat map palette.
const DefaultColors = 64

type options struct {
	log      *zap.SugaredLogger
	load     snapshot.Loader
	colors   int
	registry *fields.Registry
	halfLine bool
}

// Option configures a renderer.
type Option func(*options)

// WithLogger sets the logger warnings are sent to.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(o *options) { o.log = log }
}

// WithLoader sets how IonHistory opens snapshots.
func WithLoader(load snapshot.Loader) Option {
	return func(o *options) { o.load = load }
}

// WithColors sets the number of colors in heat maps.
func WithColors(n int) Option {
	return func(o *options) { o.colors = n }
}

// WithRegistry sets the registry abundance ratio fields are computed with.
func WithRegistry(r *fields.Registry) Option {
	return func(o *options) { o.registry = r }
}

// WithHalfLine marks the 50% level on ion histories with a dashed line.
func WithHalfLine(on bool) Option {
	return func(o *options) { o.halfLine = on }
}

func getOptions(opts []Option) *options {
	o := &options{ log: zap.NewNop().Sugar(), colors: DefaultColors }
	for _, opt := range opts { opt(o) }
	if o.registry == nil { o.registry = fields.Default() }
	return o
}

// slab flags the particles whose axis coordinate lies in the periodic window
// [center - thickness/2, center + thickness/2).
func slab(
	x [][3]float64, axis ray.Axis, center, thickness, L float64,
) []bool {
	d := array.Component(x, int(axis))
	if thickness >= L { return array.Not(make([]bool, len(d))) }

	for i := range d { d[i] = box.Wrap(d[i], L) }
	lo, hi := box.Wrap(center - thickness/2, L), box.Wrap(center + thickness/2, L)
	if lo < hi { return array.And(array.Geq(d, lo), array.Less(d, hi)) }
	// The window straddles the box edge.
	return array.Or(array.Geq(d, lo), array.Less(d, hi))
}

// project deposits w onto the plane orthogonal to axis. Coordinates are
// converted to kpc.
func project(
	x [][3]float64, w []float64, axis ray.Axis, L, kpc float64, pixels int,
) *Grid {
	a1, a2 := axis.Orthogonal()
	g := NewGrid(pixels, L*kpc)
	for i := range x { g.Deposit(x[i][a1]*kpc, x[i][a2]*kpc, w[i]) }
	return g
}

// DensitySlice maps the gas density of a slab of the given thickness (code
// units) centered on center along axis. Pixels hold log10 of the mean density
// in comoving Msun kpc^-3.
func DensitySlice(
	snap snapshot.Snapshot, axis ray.Axis, center, thickness float64,
	pixels int, opts ...Option,
) (*plot.Plot, error) {
	o := getOptions(opts)
	hd := snap.Header()
	if thickness <= 0 || thickness > hd.L {
		return nil, fmt.Errorf("slice thickness %g outside (0, %g]",
			thickness, hd.L)
	}

	x, err := snap.Positions()
	if err != nil { return nil, err }
	mass, err := snap.Field(snapshot.Mass)
	if err != nil { return nil, err }

	ok := slab(x, axis, center, thickness, hd.L)
	if array.Count(ok) == 0 {
		return nil, fmt.Errorf("%w: %s = %g +/- %g",
			ErrEmptySlice, axis, center, thickness/2)
	}
	o.log.Debugw("Selected slice", "particles", array.Count(ok),
		"axis", axis.String(), "center", center, "thickness", thickness)

	kpc := hd.LengthToKpc()
	g := project(array.SelectVec(x, ok), array.Select(mass, ok),
		axis, hd.L, kpc, pixels)

	pw := g.Width / float64(pixels)
	g.Scale(hd.MassToMsun() / (pw * pw * thickness * kpc))
	g.Log10()

	return heatMap(g, axis, hd, "", o)
}

// DensityProjection maps the gas density averaged along axis through the
// whole box, as log10 of comoving Msun kpc^-3.
func DensityProjection(
	snap snapshot.Snapshot, axis ray.Axis, pixels int, opts ...Option,
) (*plot.Plot, error) {
	o := getOptions(opts)
	hd := snap.Header()

	x, err := snap.Positions()
	if err != nil { return nil, err }
	mass, err := snap.Field(snapshot.Mass)
	if err != nil { return nil, err }
	if len(x) == 0 { return nil, ErrEmptySlice }

	kpc := hd.LengthToKpc()
	g := project(x, mass, axis, hd.L, kpc, pixels)

	pw := g.Width / float64(pixels)
	g.Scale(hd.MassToMsun() / (pw * pw * g.Width))
	g.Log10()

	return heatMap(g, axis, hd, "", o)
}

// MetallicityMap maps the mass-weighted abundance of metal projected along
// axis. metal is an element symbol with an abundance ratio field (see
// fields.RatioElements) and pixels hold [X/H], the log10 of the ratio to
// solar. An empty metal maps the total metallicity as log10(Z / Zsun)
// instead. A snapshot without any of the metal is reported with a warning and
// ErrNoMetals rather than drawn as an empty map.
func MetallicityMap(
	snap snapshot.Snapshot, axis ray.Axis, metal string, pixels int,
	opts ...Option,
) (*plot.Plot, error) {
	o := getOptions(opts)
	hd := snap.Header()

	key, label := snapshot.Metallicity, "[Z/Zsun]"
	var ratio fields.Func
	if metal != "" {
		var err error
		ratio, err = o.registry.Lookup(fields.RatioName(metal))
		if err != nil { return nil, err }
		key, label = snapshot.ElementKeys[metal], fmt.Sprintf("[%s/H]", metal)
	}

	x, err := snap.Positions()
	if err != nil { return nil, err }
	mass, err := snap.Field(snapshot.Mass)
	if err != nil { return nil, err }
	frac, err := snap.Field(key)
	if err != nil { return nil, err }

	if array.Count(array.Greater(frac, 0)) == 0 {
		o.log.Warnw("Snapshot contains no metals, skipping metallicity map",
			"metal", key.String(), "z", hd.Z, "particles", len(x))
		return nil, ErrNoMetals
	}

	q := make([]float64, len(frac))
	if ratio == nil {
		for i := range q { q[i] = frac[i] / fields.SolarMetallicity }
	} else if q, err = ratio(snap); err != nil {
		return nil, err
	}

	weighted := make([]float64, len(mass))
	for i := range weighted { weighted[i] = mass[i] * q[i] }

	kpc := hd.LengthToKpc()
	gq := project(x, weighted, axis, hd.L, kpc, pixels)
	g := project(x, mass, axis, hd.L, kpc, pixels)
	for i := range g.Data {
		if g.Data[i] > 0 { g.Data[i] = gq.Data[i] / g.Data[i] }
	}
	g.Log10()

	return heatMap(g, axis, hd, label, o)
}

func heatMap(
	g *Grid, axis ray.Axis, hd *snapshot.Header, label string, o *options,
) (*plot.Plot, error) {
	if o.colors < 2 { return nil, fmt.Errorf("need at least 2 colors, not %d", o.colors) }

	p := plot.New()
	p.Title.Text = fmt.Sprintf("z = %.2f", hd.Z)
	if label != "" { p.Title.Text = label + ", " + p.Title.Text }
	a1, a2 := axis.Orthogonal()
	p.X.Label.Text = fmt.Sprintf("%s [kpc]", a1)
	p.Y.Label.Text = fmt.Sprintf("%s [kpc]", a2)

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range g.Data {
		if math.IsNaN(v) || math.IsInf(v, 0) { continue }
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}
	if lo > hi { return nil, fmt.Errorf("map has no finite pixels") }

	hm := plotter.NewHeatMap(g, palette.Heat(o.colors, 1))
	hm.Min, hm.Max = lo, hi
	// A uniform map still needs a nonzero color range.
	if lo == hi { hm.Min, hm.Max = lo - 0.5, hi + 0.5 }
	p.Add(hm)
	p.X.Min, p.X.Max = 0, g.Width
	p.Y.Min, p.Y.Max = 0, g.Width

	return p, nil
}

// IonHistory plots an ion's weighted mean fraction against redshift. A non-nil
// ts takes precedence and paths, ion and w are then ignored. If ts is nil,
// the series is computed from the snapshots in paths with stats.IonMean; with
// neither, ErrNoHistory is returned. The y axis is logarithmic when every
// value is positive.
func IonHistory(
	ts *stats.TimeSeries, paths []string, ion string, w stats.Weighting,
	opts ...Option,
) (*plot.Plot, error) {
	o := getOptions(opts)

	if ts == nil {
		if len(paths) == 0 { return nil, ErrNoHistory }

		sOpts := []stats.Option{ stats.WithLogger(o.log) }
		if o.load != nil { sOpts = append(sOpts, stats.WithLoader(o.load)) }

		var err error
		ts, err = stats.IonMean(paths, ion, w, sOpts...)
		if err != nil { return nil, err }
	} else {
		ion, w = ts.Ion, ts.Weighting
	}

	if err := ts.Validate(); err != nil { return nil, err }
	if ts.Len() == 0 { return nil, ErrNoHistory }

	pts := make(plotter.XYs, ts.Len())
	positive := true
	for i := range pts {
		pts[i].X, pts[i].Y = ts.Redshift[i], ts.Value[i]
		if ts.Value[i] <= 0 { positive = false }
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s fraction", ion)
	p.X.Label.Text = "Redshift"
	if w == stats.Unspecified { w = stats.Mass }
	p.Y.Label.Text = fmt.Sprintf("%s-weighted %s fraction", w, ion)
	if positive {
		p.Y.Scale = plot.LogScale{}
		p.Y.Tick.Marker = plot.LogTicks{ Prec: -1 }
	} else {
		o.log.Warnw("Non-positive ion fractions, using a linear y axis",
			"ion", ion)
	}

	line, err := plotter.NewLine(pts)
	if err != nil { return nil, err }
	line.Color = color.RGBA{ B: 255, A: 255 }
	scatter, err := plotter.NewScatter(pts)
	if err != nil { return nil, err }
	scatter.Color = line.Color
	p.Add(line, scatter)
	p.Legend.Add("Aurora", line, scatter)

	if o.halfLine {
		half := plotter.NewFunction(func(float64) float64 { return 0.5 })
		half.Color = color.Gray{ Y: 128 }
		half.Width = vg.Points(1)
		half.Dashes = []vg.Length{ vg.Points(4), vg.Points(2) }
		p.Add(half)
		p.Y.Min, p.Y.Max = math.Min(p.Y.Min, 0.5), math.Max(p.Y.Max, 0.5)
	}

	return p, nil
}

// Save writes p to fname, with the format chosen by the extension. Zero sizes
// default to 5 inches.
func Save(p *plot.Plot, fname string, width, height vg.Length) error {
	if width == 0 { width = 5*vg.Inch }
	if height == 0 { height = 5*vg.Inch }
	return p.Save(width, height, fname)
}
