package fit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"isofit/internal/gaia"
	"isofit/internal/isochrone"
	"isofit/internal/nested"
	"isofit/internal/results"
)

// Version identifies the artifact generation and forms part of every output
// path. Bump it when the model or layout changes so old fits are not reused.
const Version = "0.2.0"

// logLikeFloor replaces non-finite log-probabilities and bounds finite ones
// from below, so the sampler never ingests NaN or -Inf.
const logLikeFloor = -1e10

// Options controls one fit run.
type Options struct {
	// OutputRoot is the directory under which all fit artifacts live.
	OutputRoot string
	// Overwrite forces a fresh fit even when artifacts already exist.
	Overwrite bool
	// NLive, DLogZ, Walks and Seed pass through to the nested sampler.
	NLive int
	DLogZ float64
	Walks int
	Seed  int64
	// ResampleSize is the equal-weight posterior row count; zero keeps the
	// weighted trace length.
	ResampleSize int
	// Logger receives progress events. Nil discards them.
	Logger *slog.Logger
}

func (o *Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Result is the outcome of a fit: the bound model, equal-weight posterior
// and derived sample sets, and (for fresh runs) the sampler diagnostics.
type Result struct {
	Model   *isochrone.SingleStar
	Samples *results.Frame
	Derived *results.Frame
	Stats   *nested.Results
	Summary results.SamplingSummary
	// Loaded is true when persisted artifacts short-circuited the fit.
	Loaded bool
	// Dir is the artifact directory for this identity.
	Dir string
}

// Run fits the measurement record for the named identity, or returns the
// persisted result when one exists and overwrite is off.
func Run(ctx context.Context, identity string, record *gaia.Record, opts Options) (*Result, error) {
	if err := record.Validate(); err != nil {
		return nil, err
	}

	dir := results.Dir(opts.OutputRoot, Version, identity)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	// One fit per directory at a time, across processes.
	lock := flock.New(results.LockPath(dir))
	if err := lock.Lock(); err != nil {
		return nil, fmt.Errorf("lock output directory: %w", err)
	}
	defer func() { _ = lock.Unlock() }()

	model := isochrone.New(record)
	logger := opts.logger().With("identity", identity)

	if !opts.Overwrite && results.HasSamples(dir) {
		samples, derived, err := results.LoadFrames(ctx, dir)
		if err != nil {
			return nil, fmt.Errorf("load existing samples: %w", err)
		}
		logger.Info("reusing persisted fit", "dir", dir, "rows", samples.Len())
		return &Result{Model: model, Samples: samples, Derived: derived, Loaded: true, Dir: dir}, nil
	}

	if err := writeRecord(dir, record); err != nil {
		return nil, err
	}

	ndim := model.NParams() + len(gaia.Bands)
	priorTransform := makePriorTransform(model)
	logLike := makeLogLike(model, record)

	logger.Info("starting nested sampling", "ndim", ndim, "nlive", opts.NLive)
	start := time.Now()
	run, err := nested.Run(ctx, logLike, priorTransform, ndim, nested.Options{
		NLive: opts.NLive,
		DLogZ: opts.DLogZ,
		Walks: opts.Walks,
		Seed:  opts.Seed,
	})
	if err != nil {
		return nil, fmt.Errorf("nested sampling for %s: %w", identity, err)
	}
	minutes := time.Since(start).Minutes()
	logger.Info("sampling finished",
		"iterations", run.NIter,
		"calls", run.TotalCalls(),
		"logz", run.FinalLogZ(),
		"minutes", minutes)

	rnd := rand.New(rand.NewSource(resampleSeed(opts.Seed)))
	rows, err := nested.ResampleEqual(run.Samples, run.Weights(), opts.ResampleSize, rnd)
	if err != nil {
		return nil, fmt.Errorf("resample posterior for %s: %w", identity, err)
	}

	samples, derived, err := buildFrames(model, rows)
	if err != nil {
		return nil, err
	}

	if err := results.SaveFrames(ctx, dir, samples, derived); err != nil {
		return nil, fmt.Errorf("persist samples: %w", err)
	}
	if err := results.WriteSummaryCSV(filepath.Join(dir, results.SummaryFile), results.Describe(derived)); err != nil {
		return nil, err
	}

	summary := results.SamplingSummary{
		RunID:     uuid.NewString(),
		NLive:     run.NLive,
		NIter:     run.NIter,
		NCall:     run.TotalCalls(),
		Eff:       run.Eff,
		LogZ:      run.FinalLogZ(),
		LogZErr:   run.FinalLogZErr(),
		TotalTime: minutes,
	}
	if err := results.WriteSamplingSummary(filepath.Join(dir, results.SamplingSummaryFile), summary); err != nil {
		return nil, err
	}

	return &Result{
		Model:   model,
		Samples: samples,
		Derived: derived,
		Stats:   run,
		Summary: summary,
		Dir:     dir,
	}, nil
}

// makePriorTransform maps the unit cube to native parameters through the
// model's own transform, with the trailing per-band jitter coordinates
// mapped linearly onto the jitter range.
func makePriorTransform(model *isochrone.SingleStar) nested.PriorTransformFunc {
	nParams := model.NParams()
	return func(cube []float64) []float64 {
		theta := model.PriorTransform(cube[:nParams])
		for i := nParams; i < len(cube); i++ {
			theta = append(theta, jitterFromUnit(cube[i]))
		}
		return theta
	}
}

// makeLogLike builds the sampler-facing likelihood: per-band errors inflated
// by the jitter parameters (with their normalization correction), the
// model's log-posterior on the native parameters, and a finite floor so the
// sampler never sees NaN or infinities.
func makeLogLike(model *isochrone.SingleStar, record *gaia.Record) nested.LogLikeFunc {
	nParams := model.NParams()
	return func(theta []float64) float64 {
		overrides := make(map[string]float64, len(gaia.Bands))
		correction := 0.0
		for i, band := range gaia.Bands {
			obs, _ := record.Band(band)
			inflated, corr := InflatedError(obs.Err, theta[nParams+i])
			overrides[band] = inflated
			correction += corr
		}
		lp := correction + model.LogPosterior(theta[:nParams], overrides)
		if math.IsNaN(lp) || math.IsInf(lp, 0) {
			return logLikeFloor
		}
		return math.Max(lp, logLikeFloor)
	}
}

// buildFrames turns equal-weight posterior rows into the named sample and
// derived-quantity tables. The derived parallax column is recomputed from
// the sampled distance.
func buildFrames(model *isochrone.SingleStar, rows [][]float64) (*results.Frame, *results.Frame, error) {
	columns := model.ParamNames()
	for _, band := range gaia.Bands {
		columns = append(columns, "log_jitter_"+band)
	}

	samples := results.NewFrame(columns)
	derived := results.NewFrame(model.DerivedNames())
	nParams := model.NParams()
	for _, row := range rows {
		if err := samples.Append(row); err != nil {
			return nil, nil, fmt.Errorf("build sample frame: %w", err)
		}
		if err := derived.Append(model.Derived(row[:nParams])); err != nil {
			return nil, nil, fmt.Errorf("build derived frame: %w", err)
		}
	}

	distance, ok := samples.Column("distance")
	if !ok {
		return nil, nil, fmt.Errorf("sample frame missing distance column")
	}
	parallax := make([]float64, len(distance))
	for i, d := range distance {
		parallax[i] = 1000.0 / d
	}
	if err := derived.SetColumn("parallax", parallax); err != nil {
		return nil, nil, err
	}
	if err := derived.SetColumn("distance", distance); err != nil {
		return nil, nil, err
	}
	return samples, derived, nil
}

func writeRecord(dir string, record *gaia.Record) error {
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	path := filepath.Join(dir, results.RecordFile)
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write record: %w", err)
	}
	return nil
}

// resampleSeed derives a resampling stream distinct from the sampler's.
func resampleSeed(seed int64) int64 {
	if seed == 0 {
		return time.Now().UnixNano()
	}
	return seed ^ 0x5deece66d
}
