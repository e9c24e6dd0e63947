// Package config loads plotcast settings from YAML with environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sartorproj/plotcast/additive"
	"github.com/sartorproj/plotcast/forecast"
)

// Config represents the application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Forecast ForecastConfig `yaml:"forecast"`
	Additive AdditiveConfig `yaml:"additive"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Addr           string        `yaml:"addr"`
	MaxUploadBytes int64         `yaml:"max_upload_bytes"`
	RateLimit      float64       `yaml:"rate_limit"` // requests per second per client
	RateBurst      int           `yaml:"rate_burst"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	AllowedOrigin  string        `yaml:"allowed_origin"`
}

// ForecastConfig holds request defaults
type ForecastConfig struct {
	DefaultModel   string `yaml:"default_model"`
	DefaultHorizon int    `yaml:"default_horizon"`
}

// AdditiveConfig mirrors additive.Config
type AdditiveConfig struct {
	Changepoints       int     `yaml:"changepoints"`
	ChangepointRange   float64 `yaml:"changepoint_range"`
	YearlyOrder        int     `yaml:"yearly_order"`
	WeeklyOrder        int     `yaml:"weekly_order"`
	UncertaintySamples int     `yaml:"uncertainty_samples"`
	IntervalWidth      float64 `yaml:"interval_width"`
	Seed               uint64  `yaml:"seed"` // 0 = random per request
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	a := additive.DefaultConfig()
	return &Config{
		Server: ServerConfig{
			Addr:           ":8080",
			MaxUploadBytes: 10 << 20,
			RateLimit:      2,
			RateBurst:      10,
			ReadTimeout:    30 * time.Second,
			WriteTimeout:   120 * time.Second,
			AllowedOrigin:  "*",
		},
		Forecast: ForecastConfig{
			DefaultModel:   "none",
			DefaultHorizon: forecast.DefaultHorizon,
		},
		Additive: AdditiveConfig{
			Changepoints:       a.Changepoints,
			ChangepointRange:   a.ChangepointRange,
			YearlyOrder:        a.YearlyOrder,
			WeeklyOrder:        a.WeeklyOrder,
			UncertaintySamples: a.UncertaintySamples,
			IntervalWidth:      a.IntervalWidth,
			Seed:               a.Seed,
		},
	}
}

// Load loads configuration from a YAML file. A missing file or an empty
// path yields the defaults. PLOTCAST_ADDR and PLOTCAST_SEED override the
// file in both cases.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("reading config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config file: %w", err)
			}
		}
	}

	if addr := os.Getenv("PLOTCAST_ADDR"); addr != "" {
		cfg.Server.Addr = addr
	}
	if seed := os.Getenv("PLOTCAST_SEED"); seed != "" {
		v, err := strconv.ParseUint(seed, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("PLOTCAST_SEED: %w", err)
		}
		cfg.Additive.Seed = v
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("server.max_upload_bytes must be positive")
	}
	if c.Server.RateLimit <= 0 || c.Server.RateBurst < 1 {
		return fmt.Errorf("server.rate_limit must be positive and server.rate_burst at least 1")
	}
	if _, err := forecast.ParseModel(c.Forecast.DefaultModel); err != nil {
		return fmt.Errorf("forecast.default_model: %w", err)
	}
	req := forecast.Request{Model: forecast.None, Horizon: c.Forecast.DefaultHorizon}
	if err := req.Validate(); err != nil {
		return fmt.Errorf("forecast.default_horizon: %w", err)
	}
	if err := c.AdditiveModel().Validate(); err != nil {
		return fmt.Errorf("additive: %w", err)
	}
	return nil
}

// AdditiveModel returns the additive model settings.
func (c *Config) AdditiveModel() additive.Config {
	a := additive.DefaultConfig()
	a.Changepoints = c.Additive.Changepoints
	a.ChangepointRange = c.Additive.ChangepointRange
	a.YearlyOrder = c.Additive.YearlyOrder
	a.WeeklyOrder = c.Additive.WeeklyOrder
	a.UncertaintySamples = c.Additive.UncertaintySamples
	a.IntervalWidth = c.Additive.IntervalWidth
	a.Seed = c.Additive.Seed
	return a
}
