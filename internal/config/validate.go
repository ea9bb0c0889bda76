package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateCatalog(); err != nil {
		return err
	}
	if err := c.validateSampler(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateCatalog() error {
	if c.Catalog.Endpoint == "" {
		return errors.New("catalog.endpoint must be set")
	}
	if c.Catalog.TimeoutSeconds <= 0 {
		return errors.New("catalog.timeout_seconds must be positive")
	}
	if c.Catalog.RadiusArcsec <= 0 {
		return errors.New("catalog.radius_arcsec must be positive")
	}
	if c.Catalog.MagTolerance <= 0 {
		return errors.New("catalog.mag_tolerance must be positive")
	}
	return nil
}

func (c *Config) validateSampler() error {
	if c.Sampler.NLive < 2 {
		return fmt.Errorf("sampler.nlive must be at least 2, got %d", c.Sampler.NLive)
	}
	if c.Sampler.DLogZ <= 0 {
		return errors.New("sampler.dlogz must be positive")
	}
	if c.Sampler.Walks <= 0 {
		return errors.New("sampler.walks must be positive")
	}
	if c.Sampler.ResampleSize < 0 {
		return errors.New("sampler.resample_size must not be negative")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
