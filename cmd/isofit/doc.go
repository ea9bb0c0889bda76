// Command isofit resolves stars against the Gaia catalog and fits isochrone
// models to their photometry and parallax.
//
// Subcommands:
//
//	lookup  print the measurement record for one position
//	fit     look up and fit one star, persisting its artifacts
//	batch   fit every target in a dataset group across a worker pool
//	show    render the persisted summary for a fitted star
//	config  initialize or display the configuration
package main
