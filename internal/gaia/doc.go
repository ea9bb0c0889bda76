// Package gaia resolves a sky position to a single Gaia source and builds
// the measurement record consumed by the isochrone fit.
//
// The Client speaks to a TAP sync endpoint with a cone-search ADQL query and
// returns candidate rows ordered by angular distance. Lookup selects the best
// candidate, converts flux-relative errors to magnitude errors, applies the
// published parallax zero-point correction, and validates that every quantity
// is finite before handing the record downstream.
//
// Lookup failures come in three recoverable kinds (ErrNoMatch,
// ErrNonFiniteParallax, ErrNonFinitePhotometry); batch processing treats
// these as per-target skips rather than fatal errors.
package gaia
