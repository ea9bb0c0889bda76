package batch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"isofit/internal/config"
	"isofit/internal/fit"
	"isofit/internal/gaia"
	"isofit/internal/logging"
	"isofit/internal/results"
)

// Runner drives the fit jobs for one dataset group.
type Runner struct {
	cfg    *config.Config
	client *gaia.Client
	logger *slog.Logger
}

// NewRunner wires a runner from application config. A nil logger discards
// progress output.
func NewRunner(cfg *config.Config, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	httpClient := &http.Client{Timeout: time.Duration(cfg.Catalog.TimeoutSeconds) * time.Second}
	return &Runner{
		cfg:    cfg,
		client: gaia.NewClient(cfg.Catalog.Endpoint, httpClient),
		logger: logger,
	}
}

// Summary counts job outcomes for one batch run.
type Summary struct {
	Total     int
	Completed int
	Reused    int
	Skipped   int
	Failed    int
}

// Run fits every target in the named group across a pool of worker
// goroutines. Lookup errors and fit failures are contained per job; Run
// only errors when the group itself cannot be loaded.
func (r *Runner) Run(ctx context.Context, group string, threads int, overwrite bool) (Summary, error) {
	targets, err := LoadGroup(r.cfg.Paths.DatasetDir, group)
	if err != nil {
		return Summary{}, err
	}
	if threads <= 0 {
		threads = runtime.NumCPU()
	}

	r.logger.Info("starting batch", "group", group, "targets", len(targets), "threads", threads)

	var completed, reused, skipped, failed atomic.Int64

	// Jobs are independent; a plain group without context cancellation
	// keeps one bad target from aborting the rest.
	var pool errgroup.Group
	pool.SetLimit(threads)
	for _, target := range targets {
		target := target
		pool.Go(func() error {
			switch r.runJob(ctx, group, target, overwrite) {
			case jobCompleted:
				completed.Add(1)
			case jobReused:
				reused.Add(1)
			case jobSkipped:
				skipped.Add(1)
			case jobFailed:
				failed.Add(1)
			}
			return nil
		})
	}
	_ = pool.Wait()

	summary := Summary{
		Total:     len(targets),
		Completed: int(completed.Load()),
		Reused:    int(reused.Load()),
		Skipped:   int(skipped.Load()),
		Failed:    int(failed.Load()),
	}
	r.logger.Info("batch finished",
		"group", group,
		"completed", summary.Completed,
		"reused", summary.Reused,
		"skipped", summary.Skipped,
		"failed", summary.Failed)
	return summary, nil
}

type jobOutcome int

const (
	jobCompleted jobOutcome = iota
	jobReused
	jobSkipped
	jobFailed
)

func (r *Runner) runJob(ctx context.Context, group string, target Target, overwrite bool) jobOutcome {
	identity := group + "/" + target.Name
	dir := results.Dir(r.cfg.Paths.OutputDir, fit.Version, identity)

	jobLogger, closeLog, err := logging.NewJobLogger(dir)
	if err != nil {
		r.logger.Error("job setup failed", "identity", identity, "error", err)
		return jobFailed
	}
	defer func() { _ = closeLog() }()

	record, err := gaia.Lookup(ctx, r.client, gaia.Coord{RA: target.RA, Dec: target.Dec}, gaia.LookupOptions{
		ApproxMag:    target.Mag,
		MagTol:       r.cfg.Catalog.MagTolerance,
		RadiusArcsec: r.cfg.Catalog.RadiusArcsec,
	})
	if err != nil {
		writeStderr(dir, fmt.Sprintf("lookup %s: %v", identity, err))
		if gaia.IsSkippable(err) {
			r.logger.Warn("skipping target", "identity", identity, "reason", err)
			return jobSkipped
		}
		r.logger.Error("lookup failed", "identity", identity, "error", err)
		return jobFailed
	}

	res, err := fit.Run(ctx, identity, record, fit.Options{
		OutputRoot:   r.cfg.Paths.OutputDir,
		Overwrite:    overwrite,
		NLive:        r.cfg.Sampler.NLive,
		DLogZ:        r.cfg.Sampler.DLogZ,
		Walks:        r.cfg.Sampler.Walks,
		Seed:         r.cfg.Sampler.Seed,
		ResampleSize: r.cfg.Sampler.ResampleSize,
		Logger:       jobLogger,
	})
	if err != nil {
		writeStderr(dir, fmt.Sprintf("fit %s: %v", identity, err))
		r.logger.Error("fit failed", "identity", identity, "error", err)
		return jobFailed
	}
	if res.Loaded {
		return jobReused
	}
	return jobCompleted
}

// writeStderr records a job failure in the per-job stderr.log.
func writeStderr(dir, message string) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return
	}
	path := filepath.Join(dir, results.StderrLog)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return
	}
	defer file.Close()
	fmt.Fprintln(file, message)
}
