/*package fields is a registry of per-particle quantities which can be computed
from a snapshot. Everything the analysis code asks a snapshot for by name goes
through a Registry, so new derived quantities can be added without touching the
snapshot readers.*/
package fields

import (
	"errors"
	"fmt"
	"sort"

	"github.com/abatten/TOPAZ/io/snapshot"
)

// ErrUnknownField is returned when a name isn't in the registry.
var ErrUnknownField = errors.New("fields: unknown field")

// Func computes a per-particle quantity. It must not modify any slices
// returned by the snapshot.
type Func func(snap snapshot.Snapshot) ([]float64, error)

// Registry maps field names to the functions that compute them.
type Registry struct {
	funcs map[string]Func
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{ funcs: map[string]Func{} }
}

// Register adds a field. Registering the same name twice is an error.
func (r *Registry) Register(name string, f Func) error {
	if name == "" {
		return fmt.Errorf("fields: empty field name")
	} else if f == nil {
		return fmt.Errorf("fields: nil function for '%s'", name)
	} else if _, ok := r.funcs[name]; ok {
		return fmt.Errorf("fields: '%s' is already registered", name)
	}
	r.funcs[name] = f
	return nil
}

// mustRegister is Register for the built-in table, where a collision is a
// programming error.
func (r *Registry) mustRegister(name string, f Func) {
	if err := r.Register(name, f); err != nil { panic(err.Error()) }
}

// Lookup returns the function for a field.
func (r *Registry) Lookup(name string) (Func, error) {
	f, ok := r.funcs[name]
	if !ok { return nil, fmt.Errorf("%w: '%s'", ErrUnknownField, name) }
	return f, nil
}

// Compute evaluates a field on a snapshot.
func (r *Registry) Compute(name string, snap snapshot.Snapshot) ([]float64, error) {
	f, err := r.Lookup(name)
	if err != nil { return nil, err }
	return f(snap)
}

// Names returns the registered field names in sorted order.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.funcs))
	for name := range r.funcs { out = append(out, name) }
	sort.Strings(out)
	return out
}

// Raw returns a Func which reads a dataset straight from the snapshot.
func Raw(key snapshot.Key) Func {
	return func(snap snapshot.Snapshot) ([]float64, error) {
		return snap.Field(key)
	}
}

// Default returns a registry containing the ion fractions, the abundance
// ratios, and the basic gas properties.
func Default() *Registry {
	r := NewRegistry()

	for _, ion := range Ions {
		r.mustRegister(ion, Raw(snapshot.IonKeys[ion]))
	}
	for _, elem := range RatioElements {
		r.mustRegister(RatioName(elem), AbundanceRatio(elem))
	}

	r.mustRegister("Mass", Raw(snapshot.Mass))
	r.mustRegister("Metallicity", Raw(snapshot.Metallicity))
	r.mustRegister("Temperature", Raw(snapshot.Temperature))
	r.mustRegister("Density", densityMsunKpc)

	return r
}

// densityMsunKpc is the gas density in comoving Msun kpc^-3.
func densityMsunKpc(snap snapshot.Snapshot) ([]float64, error) {
	rho, err := snap.Field(snapshot.Density)
	if err != nil { return nil, err }

	k := snap.Header().DensityToMsunKpc()
	out := make([]float64, len(rho))
	for i := range rho { out[i] = rho[i] * k }
	return out, nil
}
