// Package nested implements static nested sampling and equal-weight
// posterior resampling.
//
// Run maintains a fixed set of live points drawn from the prior through a
// unit-cube transform. Each iteration retires the lowest-likelihood point,
// assigns it the shrinking prior-volume weight, and replaces it with a
// bounded random walk from a surviving point constrained to higher
// likelihood. Sampling stops when the estimated evidence remaining in the
// live set falls below a threshold, then the live points are folded into the
// trace. Results carries the weighted samples plus the run diagnostics
// (evidence trajectory, call counts, efficiency) consumed by the fit layer.
package nested
