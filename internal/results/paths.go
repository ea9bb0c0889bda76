package results

import (
	"os"
	"path/filepath"
)

// Artifact file names inside a star's output directory.
const (
	SamplesFile         = "star.db"
	RecordFile          = "gaia.json"
	SummaryFile         = "star_summary.csv"
	SamplingSummaryFile = "star_sampling_summary.json"
	StdoutLog           = "stdout.log"
	StderrLog           = "stderr.log"
	lockFile            = ".lock"
)

// Dir resolves the output directory for one (identity, version) pair.
// Identities may contain slashes to group stars (e.g. "cks/kic10187017").
func Dir(root, version, identity string) string {
	return filepath.Join(root, version, filepath.FromSlash(identity))
}

// LockPath returns the advisory lock file guarding a star directory.
func LockPath(dir string) string {
	return filepath.Join(dir, lockFile)
}

// HasSamples reports whether a persisted sample table already exists, which
// short-circuits a repeat fit.
func HasSamples(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, SamplesFile))
	return err == nil && !info.IsDir()
}
