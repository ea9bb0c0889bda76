package isochrone

import "math"

// solarMbol is the IAU bolometric magnitude zero point for the Sun.
const solarMbol = 4.74

// Per-band extinction coefficients A_X / A_V for the Gaia passbands.
var extinctionCoeff = map[string]float64{
	"G":  0.86,
	"BP": 1.06,
	"RP": 0.65,
}

// absoluteMagnitudes returns the absolute G, BP, RP magnitudes for a star of
// the given log10 luminosity and effective temperature. Bolometric
// correction and colors are quadratic/linear in log10(Teff/Tsun), calibrated
// to solar values at x = 0.
func absoluteMagnitudes(logL, teff float64) map[string]float64 {
	x := math.Log10(teff / solarTeff)
	mbol := solarMbol - 2.5*logL

	bcG := 0.06 + 0.2*x - 6.0*x*x
	g := mbol - bcG
	bpMinusG := 0.33 - 3.2*x
	gMinusRP := 0.49 - 3.3*x

	return map[string]float64{
		"G":  g,
		"BP": g + bpMinusG,
		"RP": g - gMinusRP,
	}
}

// apparentMagnitude applies distance modulus and extinction for one band.
func apparentMagnitude(absMag, distance, av float64, band string) float64 {
	return absMag + 5*math.Log10(distance/10) + extinctionCoeff[band]*av
}
