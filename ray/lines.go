package ray

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/abatten/TOPAZ/io/snapshot"
)

// ErrUnknownLine is returned for lines that can't be traced.
var ErrUnknownLine = errors.New("ray: unknown line")

// species describes how to get the number density of a line from a particle's
// density: n = rho X / A * f, where X is the element mass fraction and f is
// the ion fraction (one for bare elements).
type species struct {
	element string
	ion     snapshot.Key // -1 for bare elements
}

var lineTable = map[string]species{
	"HI": {"H", snapshot.IonHI}, "HII": {"H", snapshot.IonHII},
	"HeI": {"He", snapshot.IonHeI}, "HeII": {"He", snapshot.IonHeII},
	"HeIII": {"He", snapshot.IonHeIII},

	"H": {"H", -1}, "He": {"He", -1}, "C": {"C", -1}, "N": {"N", -1},
	"O": {"O", -1}, "Mg": {"Mg", -1}, "Si": {"Si", -1}, "Fe": {"Fe", -1},
}

// atomicMass in units of the proton mass.
var atomicMass = map[string]float64{
	"H": 1.008, "He": 4.0026, "C": 12.011, "N": 14.007,
	"O": 15.999, "Mg": 24.305, "Si": 28.085, "Fe": 55.845,
}

// Primordial mass fractions, used when a snapshot doesn't track H or He.
var primordial = map[string]float64{ "H": 0.752, "He": 0.248 }

// NormalizeLine removes spaces from a line name, so "H I" becomes "HI".
func NormalizeLine(line string) string {
	return strings.ReplaceAll(line, " ", "")
}

// Lines returns every traceable line name in sorted order.
func Lines() []string {
	out := make([]string, 0, len(lineTable))
	for line := range lineTable { out = append(out, line) }
	sort.Strings(out)
	return out
}

// ValidateLines normalizes a list of lines and checks that each one can be
// traced.
func ValidateLines(lines []string) ([]string, error) {
	if len(lines) == 0 { return nil, fmt.Errorf("%w: no lines given", ErrUnknownLine) }

	out := make([]string, len(lines))
	seen := map[string]bool{}
	for i, line := range lines {
		out[i] = NormalizeLine(line)
		if _, ok := lineTable[out[i]]; !ok {
			return nil, fmt.Errorf("%w: '%s' (known lines: %v)",
				ErrUnknownLine, line, Lines())
		} else if seen[out[i]] {
			return nil, fmt.Errorf("line '%s' given twice", line)
		}
		seen[out[i]] = true
	}
	return out, nil
}

// numberDensity returns the physical number density of a line's species in
// cm^-3 for every gas particle.
func numberDensity(snap snapshot.Snapshot, line string) ([]float64, error) {
	sp, ok := lineTable[line]
	if !ok { return nil, fmt.Errorf("%w: '%s'", ErrUnknownLine, line) }

	rho, err := snapshot.GasDensity(snap)
	if err != nil { return nil, err }

	X, err := snap.Field(snapshot.ElementKeys[sp.element])
	if errors.Is(err, snapshot.ErrNoField) && primordial[sp.element] > 0 {
		X = nil
	} else if err != nil {
		return nil, err
	}

	var f []float64
	if sp.ion >= 0 {
		if f, err = snap.Field(sp.ion); err != nil { return nil, err }
	}

	A := atomicMass[sp.element]
	n := make([]float64, len(rho))
	for i := range n {
		x := primordial[sp.element]
		if X != nil { x = X[i] }
		n[i] = rho[i] * x / A
		if f != nil { n[i] *= f[i] }
	}
	return n, nil
}
