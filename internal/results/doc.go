// Package results persists the per-star fit artifacts.
//
// Each fitted star owns one directory, <output_root>/<version>/<identity>,
// holding the measurement record (gaia.json), the posterior and derived
// sample tables (star.db, SQLite), a descriptive-statistics summary
// (star_summary.csv), and the sampler diagnostics
// (star_sampling_summary.json). Batch jobs add stdout.log and stderr.log.
//
// The sample tables are written once per fit and reread to short-circuit a
// repeat fit of the same identity.
package results
