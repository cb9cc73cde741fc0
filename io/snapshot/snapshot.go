/*package snapshot reads the gas particles of simulation snapshots. The rest of
the module only ever sees the Snapshot interface, so new formats can be added
without touching the analysis code.*/
package snapshot

import (
	"errors"
	"fmt"

	"github.com/abatten/TOPAZ/cosmo"
)

var (
	// ErrNoField is returned when a snapshot doesn't contain a dataset.
	ErrNoField = errors.New("snapshot: field not present")
	// ErrCorrupt is returned when a snapshot's data can't be trusted.
	ErrCorrupt = errors.New("snapshot: corrupt data")
)

// Snapshot is a single, read-only time slice of a simulation. Only the gas
// particles are exposed.
type Snapshot interface {
	Header() *Header // Header contains basic information about the snapshot

	// Positions returns the particle positions in code length units.
	Positions() ([][3]float64, error)
	// Field returns a raw per-particle dataset in code units. The returned
	// slice must not be modified.
	Field(key Key) ([]float64, error)
	// Close releases any file handles held by the snapshot.
	Close() error
}

// Header is a struct containing basic information about the snapshot. Not all
// simulation headers provide all information: the user is responsible for
// supplying that information afterwards in these cases.
type Header struct {
	Z, Scale             float64 // Redshift, scale factor
	OmegaM, OmegaL, H100 float64 // Omega_m(z=0), Omega_L(z=0), little-h(z=0)
	L, Epsilon           float64 // Box size, force softening
	NSide, NTotal        int64   // Particles on one size, total particles
	NGas                 int64   // Particles returned by Positions and Field
	UniformMp            float64 // If all particle masses are the same, this is m_p.

	UnitMassCgs, UnitLengthCgs float64 // Code units. Zero means Gadget's.
}

func (hd *Header) calcUniformMass() {
	rhoM0 := cosmo.RhoAverage(hd.H100*100, hd.OmegaM, hd.OmegaL, 0)
	mTot := (hd.L * hd.L * hd.L) * rhoM0
	hd.UniformMp = mTot / float64(hd.NTotal)
}

func (hd *Header) littleH() float64 {
	if hd.H100 <= 0 { return 1 }
	return hd.H100
}

func (hd *Header) scale() float64 {
	if hd.Scale > 0 { return hd.Scale }
	return cosmo.ScaleFactor(hd.Z)
}

func (hd *Header) unitMass() float64 {
	if hd.UnitMassCgs > 0 { return hd.UnitMassCgs }
	return cosmo.GadgetUnitMassCgs
}

func (hd *Header) unitLength() float64 {
	if hd.UnitLengthCgs > 0 { return hd.UnitLengthCgs }
	return cosmo.GadgetUnitLengthCgs
}

// MassToProton converts a code mass into proton masses.
func (hd *Header) MassToProton() float64 {
	return hd.unitMass() / hd.littleH() / cosmo.ProtonMassCgs
}

// MassToMsun converts a code mass into solar masses.
func (hd *Header) MassToMsun() float64 {
	return hd.unitMass() / hd.littleH() / cosmo.MSunCgs
}

// DensityToProton converts a comoving code density into physical proton masses
// per cm^3.
func (hd *Header) DensityToProton() float64 {
	h, a, l := hd.littleH(), hd.scale(), hd.unitLength()
	return hd.unitMass() / (l * l * l) * h * h / (a * a * a) /
		cosmo.ProtonMassCgs
}

// DensityToMsunKpc converts a code density into comoving Msun kpc^-3.
func (hd *Header) DensityToMsunKpc() float64 {
	h, l := hd.littleH(), hd.unitLength()/cosmo.KpcCgs
	return hd.unitMass() / cosmo.MSunCgs * h * h / (l * l * l)
}

// LengthToKpc converts a code length into comoving kpc.
func (hd *Header) LengthToKpc() float64 {
	return hd.unitLength() / cosmo.KpcCgs / hd.littleH()
}

// LengthToCm converts a comoving code length into physical cm.
func (hd *Header) LengthToCm() float64 {
	return hd.unitLength() / hd.littleH() * hd.scale()
}

// GasMass returns the particle masses in proton-mass units.
func GasMass(snap Snapshot) ([]float64, error) {
	return scaledField(snap, Mass, snap.Header().MassToProton())
}

// GasDensity returns the physical particle densities in proton masses per
// cm^3.
func GasDensity(snap Snapshot) ([]float64, error) {
	return scaledField(snap, Density, snap.Header().DensityToProton())
}

func scaledField(snap Snapshot, key Key, k float64) ([]float64, error) {
	raw, err := snap.Field(key)
	if err != nil { return nil, err }

	out := make([]float64, len(raw))
	for i := range raw { out[i] = raw[i] * k }
	return out, nil
}

// checkLength makes sure a dataset lines up with the header's particle count.
func checkLength(hd *Header, key Key, n int) error {
	if int64(n) != hd.NGas {
		return fmt.Errorf("%w: %s has %d entries, but NGas = %d",
			ErrCorrupt, key, n, hd.NGas)
	}
	return nil
}
