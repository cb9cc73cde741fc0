package snapshot

import (
	"fmt"
)

// Key is an enumerated per-particle dataset. Keys are resolved to on-disk
// paths through a fixed table instead of being assembled at call time.
type Key int

const (
	Mass Key = iota
	Density
	SmoothingLength
	Temperature
	Metallicity

	IonHI
	IonHII
	IonHeI
	IonHeII
	IonHeIII

	AbundanceH
	AbundanceHe
	AbundanceC
	AbundanceN
	AbundanceO
	AbundanceMg
	AbundanceSi
	AbundanceFe

	nKeys
)

// GasGroup is the HDF5 group holding gas particles.
const GasGroup = "PartType0"

// CoordinatesPath is the dataset holding gas positions.
const CoordinatesPath = GasGroup + "/Coordinates"

var keyTable = [nKeys]struct{ name, path string }{
	Mass:            {"Mass", "Masses"},
	Density:         {"Density", "Density"},
	SmoothingLength: {"SmoothingLength", "SmoothingLength"},
	Temperature:     {"Temperature", "Temperature"},
	Metallicity:     {"Metallicity", "Metallicity"},

	IonHI:    {"HI", "apHI"},
	IonHII:   {"HII", "apHII"},
	IonHeI:   {"HeI", "apHeI"},
	IonHeII:  {"HeII", "apHeII"},
	IonHeIII: {"HeIII", "apHeIII"},

	AbundanceH:  {"H", "ElementAbundance/Hydrogen"},
	AbundanceHe: {"He", "ElementAbundance/Helium"},
	AbundanceC:  {"C", "ElementAbundance/Carbon"},
	AbundanceN:  {"N", "ElementAbundance/Nitrogen"},
	AbundanceO:  {"O", "ElementAbundance/Oxygen"},
	AbundanceMg: {"Mg", "ElementAbundance/Magnesium"},
	AbundanceSi: {"Si", "ElementAbundance/Silicon"},
	AbundanceFe: {"Fe", "ElementAbundance/Iron"},
}

// Keys returns every known key in table order.
func Keys() []Key {
	out := make([]Key, nKeys)
	for i := range out { out[i] = Key(i) }
	return out
}

func (k Key) valid() bool { return k >= 0 && k < nKeys }

// String returns the logical name of the key, e.g. "HI" or "Density".
func (k Key) String() string {
	if !k.valid() { return fmt.Sprintf("Key(%d)", int(k)) }
	return keyTable[k].name
}

// Path returns the dataset path of the key relative to the file root.
func (k Key) Path() string {
	if !k.valid() { panic(fmt.Sprintf("Unrecognized snapshot key %d.", k)) }
	return GasGroup + "/" + keyTable[k].path
}

// KeyByName looks up a key by its logical name.
func KeyByName(name string) (Key, bool) {
	for i := range keyTable {
		if keyTable[i].name == name { return Key(i), true }
	}
	return -1, false
}

// IonKeys maps ion names to the keys of their fraction fields.
var IonKeys = map[string]Key{
	"HI": IonHI, "HII": IonHII,
	"HeI": IonHeI, "HeII": IonHeII, "HeIII": IonHeIII,
}

// ElementKeys maps element symbols to the keys of their mass fractions.
var ElementKeys = map[string]Key{
	"H": AbundanceH, "He": AbundanceHe, "C": AbundanceC, "N": AbundanceN,
	"O": AbundanceO, "Mg": AbundanceMg, "Si": AbundanceSi, "Fe": AbundanceFe,
}

// ValidateKeys checks that the key table is complete and unambiguous. It
// should be called once at startup.
func ValidateKeys() error {
	names, paths := map[string]bool{}, map[string]bool{}
	for i, entry := range keyTable {
		if entry.name == "" || entry.path == "" {
			return fmt.Errorf("snapshot key %d has no name or path", i)
		} else if names[entry.name] {
			return fmt.Errorf("duplicate snapshot key name '%s'", entry.name)
		} else if paths[entry.path] {
			return fmt.Errorf("duplicate snapshot key path '%s'", entry.path)
		}
		names[entry.name], paths[entry.path] = true, true
	}

	for ion, k := range IonKeys {
		if k.String() != ion {
			return fmt.Errorf("ion '%s' maps to key %s", ion, k)
		}
	}
	for elem, k := range ElementKeys {
		if k.String() != elem {
			return fmt.Errorf("element '%s' maps to key %s", elem, k)
		}
	}
	return nil
}
