package fit

import "math"

// Jitter parameters live in log-variance space on this range; the prior
// transform maps the unit interval onto it linearly.
const (
	jitterMin = -10.0
	jitterMax = 10.0
)

// InflatedError combines a native magnitude error with a log-variance jitter
// parameter and returns the inflated error together with the log-probability
// correction the caller must add.
//
// The correction is -2 ln(inflated): the model's band terms carry +ln(err),
// so the net per-band normalization comes out at the Gaussian's -ln(err).
// Kept as an isolated pure function so the reparameterization stays
// auditable on its own.
func InflatedError(err, logJitter float64) (inflated, logProbCorrection float64) {
	inflated = math.Sqrt(err*err + math.Exp(logJitter))
	return inflated, -2 * math.Log(inflated)
}

// jitterFromUnit maps a unit-cube coordinate onto the jitter range.
func jitterFromUnit(u float64) float64 {
	return jitterMin + (jitterMax-jitterMin)*u
}
