package isochrone

import "math"

// Grid bounds for the analytic tracks, solar units and log10 years.
const (
	minMass   = 0.1
	maxMass   = 10.0
	minLogAge = 8.0
	maxLogAge = 10.15
	minFeH    = -2.5
	maxFeH    = 0.6

	solarTeff = 5772.0
)

// trackPoint is the stellar structure evaluated at one (mass, age, feh).
type trackPoint struct {
	logL   float64 // log10 L/Lsun
	radius float64 // Rsun
	teff   float64 // K
	logg   float64 // cgs
}

// zamsLogL is the zero-age main-sequence luminosity from the piecewise
// mass-luminosity relation, with a small metallicity shift (metal-poor
// stars run brighter at fixed mass).
func zamsLogL(mass, feh float64) float64 {
	var logL float64
	switch {
	case mass < 0.43:
		logL = math.Log10(0.23) + 2.3*math.Log10(mass)
	case mass < 2.0:
		logL = 4.0 * math.Log10(mass)
	default:
		logL = math.Log10(1.4) + 3.5*math.Log10(mass)
	}
	return logL - 0.10*feh
}

// zamsRadius is the zero-age main-sequence radius in solar units.
func zamsRadius(mass, feh float64) float64 {
	exp := 0.9
	if mass > 1.0 {
		exp = 0.6
	}
	return math.Pow(mass, exp) * math.Pow(10, 0.05*feh)
}

// mainSequenceLifetime returns log10 of the main-sequence lifetime in years,
// from the nuclear timescale t ~ 10 Gyr * (M/Msun) / (L/Lsun).
func mainSequenceLifetime(mass, feh float64) float64 {
	return 10.0 + math.Log10(mass) - zamsLogL(mass, feh)
}

// evolve evaluates the track at the given mass (Msun), log10 age (years) and
// metallicity. The second return is false off the grid, including past the
// end of the main sequence.
func evolve(mass, log10Age, feh float64) (trackPoint, bool) {
	if mass < minMass || mass > maxMass ||
		log10Age < minLogAge || log10Age > maxLogAge ||
		feh < minFeH || feh > maxFeH {
		return trackPoint{}, false
	}

	// Fractional main-sequence age. Brightening and radius inflation are
	// smooth in f so the likelihood stays differentiable for the sampler's
	// random walk.
	f := math.Pow(10, log10Age-mainSequenceLifetime(mass, feh))
	if f > 1 {
		return trackPoint{}, false
	}

	logL := zamsLogL(mass, feh) + math.Log10(1+0.45*f)
	radius := zamsRadius(mass, feh) * (1 + 0.30*f*f)

	// Stefan-Boltzmann in solar units: (T/Tsun)^4 = L / R^2.
	teff := solarTeff * math.Pow(math.Pow(10, logL)/(radius*radius), 0.25)
	logg := 4.438 + math.Log10(mass) - 2*math.Log10(radius)

	return trackPoint{logL: logL, radius: radius, teff: teff, logg: logg}, true
}
