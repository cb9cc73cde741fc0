package fields

import (
	"fmt"

	"github.com/abatten/TOPAZ/io/snapshot"
)

// Ions lists the ions with a fraction field, in order of increasing
// ionization.
var Ions = []string{"HI", "HII", "HeI", "HeII", "HeIII"}

// RatioElements lists the elements that get an X/H abundance ratio field.
var RatioElements = []string{"C", "He", "Fe", "Mg", "N", "O", "Si"}

// SolarMassFraction contains the solar mass fractions used to normalize
// abundance ratios (Wiersma, Schaye & Smith 2009), the same set the Aurora
// cooling tables assume.
var SolarMassFraction = map[string]float64{
	"H":  0.70649785,
	"He": 0.28055534,
	"C":  2.0665436e-3,
	"N":  8.3562563e-4,
	"O":  5.4926244e-3,
	"Mg": 5.907064e-4,
	"Si": 6.825874e-4,
	"Fe": 1.1032152e-3,
}

// SolarMetallicity is the total solar metal mass fraction.
const SolarMetallicity = 0.0127

// IsIon returns true if name is a known ion.
func IsIon(name string) bool {
	_, ok := snapshot.IonKeys[name]
	return ok
}

// IonField validates an ion name and returns the key of its fraction field.
func IonField(ion string) (snapshot.Key, error) {
	k, ok := snapshot.IonKeys[ion]
	if !ok {
		return -1, fmt.Errorf("%w: ion '%s' (known ions: %v)",
			ErrUnknownField, ion, Ions)
	}
	return k, nil
}

// RatioName returns the registry name of an element's abundance ratio field,
// e.g. "OXH".
func RatioName(elem string) string { return elem + "XH" }

// AbundanceRatio returns a Func computing (X/H) / (X/H)_sun for each particle
// from the element mass fractions. Particles without hydrogen get a ratio of
// zero.
func AbundanceRatio(elem string) Func {
	key, ok := snapshot.ElementKeys[elem]
	if !ok || elem == "H" {
		panic(fmt.Sprintf("No abundance ratio for element '%s'.", elem))
	}
	solar := SolarMassFraction[elem] / SolarMassFraction["H"]

	return func(snap snapshot.Snapshot) ([]float64, error) {
		x, err := snap.Field(key)
		if err != nil { return nil, err }
		h, err := snap.Field(snapshot.AbundanceH)
		if err != nil { return nil, err }

		out := make([]float64, len(x))
		for i := range x {
			if h[i] > 0 { out[i] = x[i] / h[i] / solar }
		}
		return out, nil
	}
}
