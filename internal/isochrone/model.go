package isochrone

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"isofit/internal/gaia"
)

// Prior ranges not tied to the track grid.
const (
	defaultMaxDistance = 3000.0 // pc, used when the record carries no bound
	defaultMaxAV       = 1.0

	fehPriorSigma = 0.2 // dex, local metallicity distribution width
)

// paramNames is the native parameter vector layout, in order.
var paramNames = []string{"mass", "log10_age", "feh", "distance", "AV"}

// derivedNames is the column layout of Derived, in order.
var derivedNames = []string{
	"mass", "radius", "teff", "logg", "logL",
	"G_mag", "BP_mag", "RP_mag",
	"distance", "AV", "parallax",
}

// SingleStar models one star observed in the Gaia bands plus parallax.
//
// The zero value is not usable; construct with New. The model holds the
// measurement record read-only; per-evaluation error inflation is supplied
// through the override argument of LogPosterior.
type SingleStar struct {
	record      *gaia.Record
	maxDistance float64
	maxAV       float64
	fehPrior    distuv.Normal
}

// New builds a model bound to the measurement record. The distance prior
// bound comes from the record when present.
func New(record *gaia.Record) *SingleStar {
	maxDist := defaultMaxDistance
	if record.HasMaxDistance() {
		maxDist = record.MaxDistance
	}
	return &SingleStar{
		record:      record,
		maxDistance: maxDist,
		maxAV:       defaultMaxAV,
		fehPrior:    distuv.Normal{Mu: 0, Sigma: fehPriorSigma},
	}
}

// NParams returns the native parameter count.
func (m *SingleStar) NParams() int { return len(paramNames) }

// ParamNames returns the native parameter names in vector order.
func (m *SingleStar) ParamNames() []string {
	names := make([]string, len(paramNames))
	copy(names, paramNames)
	return names
}

// DerivedNames returns the Derived column names in order.
func (m *SingleStar) DerivedNames() []string {
	names := make([]string, len(derivedNames))
	copy(names, derivedNames)
	return names
}

// MaxDistance returns the distance prior bound in parsecs.
func (m *SingleStar) MaxDistance() float64 { return m.maxDistance }

// PriorTransform maps the first NParams coordinates of the unit cube to
// native parameter space:
//
//	mass      log-uniform on [0.1, 10] Msun
//	log10_age uniform on [8.0, 10.15]
//	feh       Normal(0, 0.25) via the inverse CDF
//	distance  p(d) proportional to d^2 up to the distance bound
//	AV        uniform on [0, maxAV]
func (m *SingleStar) PriorTransform(cube []float64) []float64 {
	theta := make([]float64, len(paramNames))
	theta[0] = minMass * math.Pow(maxMass/minMass, cube[0])
	theta[1] = minLogAge + (maxLogAge-minLogAge)*cube[1]
	theta[2] = m.fehPrior.Quantile(clampUnit(cube[2]))
	theta[3] = m.maxDistance * math.Cbrt(cube[3])
	theta[4] = m.maxAV * cube[4]
	return theta
}

// LogPosterior evaluates the model log-probability at the native parameters.
// errOverride, when non-nil, substitutes per-band magnitude errors for this
// evaluation only.
//
// Band terms carry a +ln(err) convention; callers inflating errors apply the
// completing -2 ln(err) term so the net Gaussian normalization is -ln(err).
// Off-grid parameters and non-finite inputs return -Inf.
func (m *SingleStar) LogPosterior(theta []float64, errOverride map[string]float64) float64 {
	mass, logAge, feh := theta[0], theta[1], theta[2]
	distance, av := theta[3], theta[4]

	if distance <= 0 || av < 0 || av > m.maxAV {
		return math.Inf(-1)
	}
	point, ok := evolve(mass, logAge, feh)
	if !ok {
		return math.Inf(-1)
	}

	abs := absoluteMagnitudes(point.logL, point.teff)
	lp := 0.0
	for _, band := range gaia.Bands {
		obs, found := m.record.Band(band)
		if !found {
			continue
		}
		err := obs.Err
		if override, has := errOverride[band]; has {
			err = override
		}
		pred := apparentMagnitude(abs[band], distance, av, band)
		resid := (obs.Value - pred) / err
		lp += -0.5*resid*resid + math.Log(err)
	}

	plx := m.record.Parallax
	residPlx := (plx.Value - 1000.0/distance) / plx.Err
	lp += -0.5 * residPlx * residPlx

	if math.IsNaN(lp) {
		return math.Inf(-1)
	}
	return lp
}

// Derived computes the physical quantities for one native parameter vector,
// in DerivedNames order.
func (m *SingleStar) Derived(theta []float64) []float64 {
	mass, logAge, feh := theta[0], theta[1], theta[2]
	distance, av := theta[3], theta[4]

	out := make([]float64, len(derivedNames))
	point, ok := evolve(mass, logAge, feh)
	if !ok {
		for i := range out {
			out[i] = math.NaN()
		}
		out[8] = distance
		out[9] = av
		out[10] = 1000.0 / distance
		return out
	}

	abs := absoluteMagnitudes(point.logL, point.teff)
	out[0] = mass
	out[1] = point.radius
	out[2] = point.teff
	out[3] = point.logg
	out[4] = point.logL
	out[5] = apparentMagnitude(abs["G"], distance, av, "G")
	out[6] = apparentMagnitude(abs["BP"], distance, av, "BP")
	out[7] = apparentMagnitude(abs["RP"], distance, av, "RP")
	out[8] = distance
	out[9] = av
	out[10] = 1000.0 / distance
	return out
}

// clampUnit keeps inverse-CDF inputs strictly inside (0, 1).
func clampUnit(u float64) float64 {
	const eps = 1e-12
	if u < eps {
		return eps
	}
	if u > 1-eps {
		return 1 - eps
	}
	return u
}
