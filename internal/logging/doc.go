// Package logging constructs the slog loggers used across isofit.
//
// New builds a logger from explicit options or application config, choosing
// between a human console handler (color when attached to a terminal) and a
// machine JSON handler. NewJobLogger builds the per-star file logger used by
// batch runs, writing into the star's own output directory so a batch of
// thousands of fits leaves one readable log per star.
package logging
