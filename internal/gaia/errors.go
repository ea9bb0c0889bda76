package gaia

import "errors"

// Sentinel errors raised while building a measurement record from catalog
// data. All three mark the target itself as unusable rather than a transport
// failure, so batch runs skip the target and continue.
var (
	ErrNoMatch             = errors.New("gaia: no matches found")
	ErrNonFiniteParallax   = errors.New("gaia: non-finite parallax")
	ErrNonFinitePhotometry = errors.New("gaia: non-finite photometry")
)

// IsSkippable reports whether err is one of the lookup errors that a batch
// run should treat as "skip this target".
func IsSkippable(err error) bool {
	return errors.Is(err, ErrNoMatch) ||
		errors.Is(err, ErrNonFiniteParallax) ||
		errors.Is(err, ErrNonFinitePhotometry)
}
