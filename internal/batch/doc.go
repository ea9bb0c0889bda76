// Package batch maps independent fit jobs over a dataset group.
//
// A group is a CSV file of targets (name, ra, dec, optional magnitude) in
// the configured dataset directory. The runner resolves each target against
// the catalog and fits it, with a bounded worker pool across targets. Jobs
// share nothing: each writes its own artifact directory and its own
// stdout.log/stderr.log, so a failed or skipped target never disturbs the
// rest of the batch.
package batch
