package main

import (
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"isofit/internal/config"
	"isofit/internal/gaia"
	"isofit/internal/logging"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	var logErr error
	c.loggerOnce.Do(func() {
		c.logger, logErr = logging.NewFromConfig(cfg)
	})
	if logErr != nil {
		return nil, logErr
	}
	return c.logger, nil
}

// catalogClient builds the Gaia client from config, with the configured
// request timeout.
func (c *commandContext) catalogClient() (*gaia.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	httpClient := &http.Client{Timeout: time.Duration(cfg.Catalog.TimeoutSeconds) * time.Second}
	return gaia.NewClient(cfg.Catalog.Endpoint, httpClient), nil
}
