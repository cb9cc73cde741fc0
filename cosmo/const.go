/*package cosmo contains physical constants and background cosmology routines
used when converting snapshot code units into physical ones.*/
package cosmo

const (
	// Mks
	MpcMks  = 3.08567758e22
	KpcMks  = 3.08567758e19
	MSunMks = 1.98855e30
	GMks    = 6.67384e-11

	// Cgs
	KpcCgs        = 3.08567758e21
	MpcCgs        = 3.08567758e24
	MSunCgs       = 1.98855e33
	ProtonMassCgs = 1.672621898e-24

	// Gadget's default internal units: 1e10 Msun and 1 kpc.
	GadgetUnitMassCgs   = 1.989e43
	GadgetUnitLengthCgs = 3.085678e21
)
