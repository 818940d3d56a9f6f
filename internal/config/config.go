// Package config loads runtime configuration from EMBERFALL_* environment variables.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/samdwyer/emberfall/internal/logger"
	"github.com/samdwyer/emberfall/internal/manifest"
)

// Config holds every runtime option.
type Config struct {
	// ContentDir is searched for item source files. Empty means the embedded content.
	ContentDir string `env:"EMBERFALL_CONTENT_DIR"`

	// DuplicatePolicy is one of fail, first-wins, last-wins.
	DuplicatePolicy string `env:"EMBERFALL_DUPLICATE_POLICY" envDefault:"fail"`

	// SourcePolicy is abort or skip.
	SourcePolicy string `env:"EMBERFALL_SOURCE_POLICY" envDefault:"abort"`

	AllowZeroStack bool          `env:"EMBERFALL_ALLOW_ZERO_STACK"`
	TickInterval   time.Duration `env:"EMBERFALL_TICK_INTERVAL" envDefault:"16ms"`
	LoadTimeout    time.Duration `env:"EMBERFALL_LOAD_TIMEOUT" envDefault:"10s"`

	LogLevel  string `env:"EMBERFALL_LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"EMBERFALL_LOG_FORMAT" envDefault:"text"`

	TelemetryEnabled bool `env:"EMBERFALL_TELEMETRY_ENABLED"`
}

// Load parses the environment and validates the result.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks option values that env parsing cannot.
func (c Config) Validate() error {
	var errs []error
	if _, err := manifest.ParseDuplicatePolicy(c.DuplicatePolicy); err != nil {
		errs = append(errs, err)
	}
	if _, err := manifest.ParseSourcePolicy(c.SourcePolicy); err != nil {
		errs = append(errs, err)
	}
	if c.TickInterval <= 0 {
		errs = append(errs, fmt.Errorf("tick interval must be positive, got %s", c.TickInterval))
	}
	if c.LoadTimeout <= 0 {
		errs = append(errs, fmt.Errorf("load timeout must be positive, got %s", c.LoadTimeout))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// ManifestOptions converts the item pipeline settings. Call after Validate.
func (c Config) ManifestOptions() manifest.Options {
	dup, _ := manifest.ParseDuplicatePolicy(c.DuplicatePolicy)
	src, _ := manifest.ParseSourcePolicy(c.SourcePolicy)
	return manifest.Options{
		Convert: manifest.ConvertOptions{
			Duplicates:     dup,
			AllowZeroStack: c.AllowZeroStack,
		},
		Sources: src,
	}
}

// Logger returns the logging settings.
func (c Config) Logger() logger.Config {
	return logger.Config{Level: c.LogLevel, Format: c.LogFormat}
}
