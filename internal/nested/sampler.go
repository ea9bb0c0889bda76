package nested

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"
)

// LogLikeFunc evaluates the log-likelihood at a point in parameter space.
// Implementations must return a finite value or -Inf, never NaN.
type LogLikeFunc func(theta []float64) float64

// PriorTransformFunc maps a unit-cube point to parameter space.
type PriorTransformFunc func(cube []float64) []float64

// Options tunes a static nested sampling run.
type Options struct {
	// NLive is the live-point count. Defaults to 500.
	NLive int
	// DLogZ stops the run when the estimated evidence still held by the
	// live set drops below this value. Defaults to 0.01.
	DLogZ float64
	// Walks is the number of random-walk steps per replacement.
	// Defaults to 25.
	Walks int
	// MaxIter caps iterations; zero means no cap.
	MaxIter int
	// Seed fixes the random stream; zero seeds from the clock.
	Seed int64
}

func (o *Options) normalize() {
	if o.NLive <= 0 {
		o.NLive = 500
	}
	if o.DLogZ <= 0 {
		o.DLogZ = 0.01
	}
	if o.Walks <= 0 {
		o.Walks = 25
	}
	if o.Seed == 0 {
		o.Seed = time.Now().UnixNano()
	}
}

// ErrNoLivePoint means the prior produced no finite-likelihood starting
// point; the model and data are irreconcilable.
var ErrNoLivePoint = errors.New("nested: no live point with finite likelihood")

// Results is the weighted trace and diagnostics of one run. Slices are
// indexed by dead-point order, live points appended last.
type Results struct {
	// Samples are the retired points in parameter (not unit-cube) space.
	Samples [][]float64
	// LogL is the log-likelihood of each sample.
	LogL []float64
	// LogWt is the unnormalized log-weight of each sample.
	LogWt []float64
	// LogZ and LogZErr are the evidence trajectory after each sample.
	LogZ    []float64
	LogZErr []float64
	// NLive and NIter describe the run shape; NCall holds likelihood calls
	// per iteration with the prior-sampling cost in NCall[0].
	NLive int
	NIter int
	NCall []int
	// Eff is the sampling efficiency in percent.
	Eff float64
}

// FinalLogZ returns the final evidence estimate.
func (r *Results) FinalLogZ() float64 {
	if len(r.LogZ) == 0 {
		return math.Inf(-1)
	}
	return r.LogZ[len(r.LogZ)-1]
}

// FinalLogZErr returns the final evidence uncertainty.
func (r *Results) FinalLogZErr() float64 {
	if len(r.LogZErr) == 0 {
		return 0
	}
	return r.LogZErr[len(r.LogZErr)-1]
}

// TotalCalls returns the total number of likelihood evaluations.
func (r *Results) TotalCalls() int {
	total := 0
	for _, n := range r.NCall {
		total += n
	}
	return total
}

// Weights returns the normalized posterior weights exp(logwt - logz_final).
func (r *Results) Weights() []float64 {
	logZ := r.FinalLogZ()
	weights := make([]float64, len(r.LogWt))
	for i, lw := range r.LogWt {
		weights[i] = math.Exp(lw - logZ)
	}
	return weights
}

// Run performs static nested sampling over ndim dimensions.
//
// Each likelihood evaluation goes through prior(cube) first, so logLike
// always sees parameter-space points. Run honors ctx cancellation between
// iterations.
func Run(ctx context.Context, logLike LogLikeFunc, prior PriorTransformFunc, ndim int, opts Options) (*Results, error) {
	opts.normalize()
	rnd := rand.New(rand.NewSource(opts.Seed))
	nlive := opts.NLive

	liveU := make([][]float64, nlive)
	liveV := make([][]float64, nlive)
	liveLogL := make([]float64, nlive)

	// Initial live set from the prior. Retry a bounded number of times per
	// point so a prior mostly outside the likelihood support still starts.
	initCalls := 0
	for i := 0; i < nlive; i++ {
		found := false
		for attempt := 0; attempt < 1000; attempt++ {
			u := randomCube(rnd, ndim)
			v := prior(u)
			l := logLike(v)
			initCalls++
			if !math.IsInf(l, -1) && !math.IsNaN(l) {
				liveU[i], liveV[i], liveLogL[i] = u, v, l
				found = true
				break
			}
		}
		if !found {
			return nil, ErrNoLivePoint
		}
	}

	res := &Results{NLive: nlive, NCall: []int{initCalls}}

	var (
		logz    = math.Inf(-1)
		logzvar = 0.0
		h       = 0.0
		logvol  = 0.0
		dlv     = 1.0 / float64(nlive)
	)
	// log(1 - exp(-dlv)), the per-iteration shrinkage slice.
	logShrink := math.Log(-math.Expm1(-dlv))

	walker := newWalker(rnd, ndim, opts.Walks)

	for iter := 0; opts.MaxIter == 0 || iter < opts.MaxIter; iter++ {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("nested sampling interrupted: %w", ctx.Err())
		default:
		}

		worst := argmin(liveLogL)
		logLStar := liveLogL[worst]

		logdvol := logvol + logShrink
		logwt := logLStar + logdvol
		logz, logzvar, h = accumulate(logz, logzvar, h, logwt, logLStar, dlv)
		logvol -= dlv

		res.Samples = append(res.Samples, cloneRow(liveV[worst]))
		res.LogL = append(res.LogL, logLStar)
		res.LogWt = append(res.LogWt, logwt)
		res.LogZ = append(res.LogZ, logz)
		res.LogZErr = append(res.LogZErr, math.Sqrt(math.Abs(logzvar)))
		res.NIter++

		// Termination: evidence still held by the live set.
		lmax := max64(liveLogL)
		dlogzRemain := logaddexp(logz, lmax+logvol) - logz
		if dlogzRemain < opts.DLogZ {
			break
		}

		start := worst
		for nlive > 1 && start == worst {
			start = rnd.Intn(nlive)
		}
		u, v, l, calls := walker.evolve(liveU[start], logLStar, logLike, prior)
		res.NCall = append(res.NCall, calls)
		liveU[worst], liveV[worst], liveLogL[worst] = u, v, l
	}

	// Fold the surviving live points into the trace, each carrying an equal
	// share of the remaining prior volume.
	order := make([]int, nlive)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool { return liveLogL[order[a]] < liveLogL[order[b]] })

	logdvolLive := logvol - math.Log(float64(nlive))
	for _, i := range order {
		logwt := liveLogL[i] + logdvolLive
		logz, logzvar, h = accumulate(logz, logzvar, h, logwt, liveLogL[i], dlv)
		res.Samples = append(res.Samples, cloneRow(liveV[i]))
		res.LogL = append(res.LogL, liveLogL[i])
		res.LogWt = append(res.LogWt, logwt)
		res.LogZ = append(res.LogZ, logz)
		res.LogZErr = append(res.LogZErr, math.Sqrt(math.Abs(logzvar)))
	}

	if total := res.TotalCalls(); total > 0 {
		res.Eff = 100 * float64(res.NIter) / float64(total)
	}
	return res, nil
}

// accumulate folds one dead point into the running evidence, variance, and
// information estimates.
func accumulate(logz, logzvar, h, logwt, logl, dlv float64) (float64, float64, float64) {
	logzNew := logaddexp(logz, logwt)
	var hNew float64
	if math.IsInf(logzNew, -1) {
		hNew = h
	} else {
		lzterm := math.Exp(logwt-logzNew)*logl + math.Exp(logz-logzNew)*(h+logz)
		hNew = lzterm - logzNew
		if math.IsNaN(hNew) {
			hNew = h
		}
	}
	logzvar += 2 * (hNew - h) * dlv
	return logzNew, logzvar, hNew
}

// walker carries the adaptive random-walk state for constrained replacement.
type walker struct {
	rnd   *rand.Rand
	ndim  int
	walks int
	scale float64
}

func newWalker(rnd *rand.Rand, ndim, walks int) *walker {
	return &walker{rnd: rnd, ndim: ndim, walks: walks, scale: 0.1}
}

// evolve random-walks from a live point under the constraint L > L*. It
// returns the final position and the number of likelihood calls made. With
// no accepted step the start point itself is returned, which already
// satisfies the constraint.
func (w *walker) evolve(startU []float64, logLStar float64, logLike LogLikeFunc, prior PriorTransformFunc) ([]float64, []float64, float64, int) {
	u := cloneRow(startU)
	v := prior(u)
	l := logLike(v)
	calls := 1

	accepted := 0
	for step := 0; step < w.walks; step++ {
		proposal := make([]float64, w.ndim)
		for d := 0; d < w.ndim; d++ {
			proposal[d] = reflectUnit(u[d] + w.scale*w.rnd.NormFloat64())
		}
		pv := prior(proposal)
		pl := logLike(pv)
		calls++
		if pl > logLStar {
			u, v, l = proposal, pv, pl
			accepted++
		}
	}

	// Drive the acceptance fraction toward one half.
	facc := float64(accepted) / float64(w.walks)
	w.scale *= math.Exp((facc - 0.5) / float64(w.ndim))
	w.scale = math.Min(math.Max(w.scale, 1e-5), 1.0)

	return u, v, l, calls
}

// reflectUnit folds a coordinate back into [0, 1].
func reflectUnit(x float64) float64 {
	for x < 0 || x > 1 {
		if x < 0 {
			x = -x
		}
		if x > 1 {
			x = 2 - x
		}
	}
	return x
}

func randomCube(rnd *rand.Rand, ndim int) []float64 {
	u := make([]float64, ndim)
	for d := range u {
		u[d] = rnd.Float64()
	}
	return u
}

func cloneRow(row []float64) []float64 {
	out := make([]float64, len(row))
	copy(out, row)
	return out
}

func argmin(values []float64) int {
	best := 0
	for i, v := range values {
		if v < values[best] {
			best = i
		}
	}
	return best
}

func max64(values []float64) float64 {
	best := math.Inf(-1)
	for _, v := range values {
		if v > best {
			best = v
		}
	}
	return best
}

func logaddexp(a, b float64) float64 {
	if math.IsInf(a, -1) {
		return b
	}
	if math.IsInf(b, -1) {
		return a
	}
	if a > b {
		return a + math.Log1p(math.Exp(b-a))
	}
	return b + math.Log1p(math.Exp(a-b))
}
