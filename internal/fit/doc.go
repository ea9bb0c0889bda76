// Package fit runs the isochrone fit for one star and manages its artifacts.
//
// Run wires a stellar model and a measurement record into the nested
// sampler: the model's native parameters pass through its own prior
// transform while three extra per-band jitter parameters absorb systematic
// model-data mismatch in magnitude space. The raw weighted trace is
// resampled to equal-weight posterior rows, mapped to physical quantities,
// and persisted under <output_root>/<version>/<identity>. A repeat Run for
// the same identity returns the persisted sample sets without sampling
// unless overwrite is requested.
package fit
