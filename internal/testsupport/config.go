// Package testsupport provides shared helpers for package tests: temp-dir
// backed configs and a canned catalog TAP server.
package testsupport

import (
	"path/filepath"
	"testing"

	"isofit/internal/config"
)

// ConfigOption customizes the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test
// and sampler settings small enough for test-speed fits.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.OutputDir = filepath.Join(base, "results")
	cfg.Paths.DatasetDir = filepath.Join(base, "datasets")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Sampler.NLive = 60
	cfg.Sampler.DLogZ = 1.0
	cfg.Sampler.Walks = 8
	cfg.Sampler.Seed = 42

	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return &cfg
}

// WithEndpoint points the catalog client at a test server.
func WithEndpoint(url string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Catalog.Endpoint = url
	}
}

// WithSamplerSeed fixes the sampler random stream.
func WithSamplerSeed(seed int64) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Sampler.Seed = seed
	}
}
