// Package isochrone provides the single-star stellar model behind the fit:
// native parameters, unit-cube prior transform, log-posterior against a
// measurement record, and the forward mapping from parameters to physical
// quantities.
//
// The model is a compact analytic stand-in for a full isochrone grid. Stellar
// structure comes from piecewise mass-luminosity and mass-radius relations
// with a main-sequence brightening term; Gaia G/BP/RP magnitudes come from
// bolometric corrections polynomial in effective temperature plus per-band
// extinction coefficients. Post-main-sequence states fall off the grid and
// evaluate to an impossible posterior, which the sampler prunes.
package isochrone
