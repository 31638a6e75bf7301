// Package config loads settings from the environment (optionally seeded
// from a .env file) and from overrides persisted in the store.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/iricigor/glooko-analytics/internal/glucose"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Prefix is the environment variable prefix, e.g. GLOOKO_LOW.
const Prefix = "GLOOKO"

// Config holds every setting. Thresholds are in mmol/L.
type Config struct {
	DBPath    string `envconfig:"DB_PATH" default:"glooko.db"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"console"`
	Timezone  string `envconfig:"TIMEZONE" default:"Local"`
	Unit      string `envconfig:"UNIT" default:"mmol/L"`

	VeryLow  float64 `envconfig:"VERY_LOW" default:"3.0"`
	Low      float64 `envconfig:"LOW" default:"3.9"`
	High     float64 `envconfig:"HIGH" default:"10.0"`
	VeryHigh float64 `envconfig:"VERY_HIGH" default:"13.9"`

	CategoryMode    int           `envconfig:"CATEGORY_MODE" default:"3"`
	InsulinDuration time.Duration `envconfig:"INSULIN_DURATION" default:"5h"`
	IOBInterval     time.Duration `envconfig:"IOB_INTERVAL" default:"5m"`
	Smooth          bool          `envconfig:"SMOOTH" default:"false"`
}

// Load reads envFile (".env" when empty; a missing file is fine) and then
// the GLOOKO_* environment. Variables already set in the environment win
// over the file.
func Load(envFile string) (*Config, error) {
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	if !(c.VeryLow < c.Low && c.Low < c.High && c.High < c.VeryHigh) {
		errs = append(errs, fmt.Errorf("thresholds must satisfy very_low < low < high < very_high, got %.1f/%.1f/%.1f/%.1f",
			c.VeryLow, c.Low, c.High, c.VeryHigh))
	}
	if _, err := glucose.ParseMode(c.CategoryMode); err != nil {
		errs = append(errs, err)
	}
	if _, err := glucose.ParseUnit(c.Unit); err != nil {
		errs = append(errs, err)
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err))
	}
	if c.InsulinDuration <= 0 {
		errs = append(errs, fmt.Errorf("insulin duration must be positive, got %s", c.InsulinDuration))
	}
	if c.IOBInterval <= 0 || c.IOBInterval > 24*time.Hour {
		errs = append(errs, fmt.Errorf("iob interval must be within (0, 24h], got %s", c.IOBInterval))
	}
	return errors.Join(errs...)
}

// Thresholds returns the configured range boundaries.
func (c *Config) Thresholds() glucose.Thresholds {
	return glucose.Thresholds{
		VeryLow:  c.VeryLow,
		Low:      c.Low,
		High:     c.High,
		VeryHigh: c.VeryHigh,
	}
}

// Mode returns the category mode. Call Validate first.
func (c *Config) Mode() glucose.Mode {
	m, err := glucose.ParseMode(c.CategoryMode)
	if err != nil {
		panic(err)
	}
	return m
}

// DisplayUnit returns the unit used for output.
func (c *Config) DisplayUnit() glucose.Unit {
	u, err := glucose.ParseUnit(c.Unit)
	if err != nil {
		return glucose.UnitMmol
	}
	return u
}

// Location returns the timezone readings are interpreted and grouped in.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// Usage prints the supported environment variables.
func Usage() error {
	return envconfig.Usage(Prefix, &Config{})
}
