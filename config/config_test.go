package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "plotcast.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.NoError(t, cfg.Validate())
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, `
server:
  addr: ":9090"
  read_timeout: 5s
forecast:
  default_model: sarima
  default_horizon: 14
additive:
  uncertainty_samples: 200
  seed: 17
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, int64(10<<20), cfg.Server.MaxUploadBytes)
	assert.Equal(t, "sarima", cfg.Forecast.DefaultModel)
	assert.Equal(t, 14, cfg.Forecast.DefaultHorizon)

	a := cfg.AdditiveModel()
	assert.Equal(t, 200, a.UncertaintySamples)
	assert.Equal(t, uint64(17), a.Seed)
	assert.Equal(t, 0.8, a.IntervalWidth)
	assert.NoError(t, cfg.Validate())
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PLOTCAST_ADDR", "127.0.0.1:7000")
	t.Setenv("PLOTCAST_SEED", "99")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:7000", cfg.Server.Addr)
	assert.Equal(t, uint64(99), cfg.Additive.Seed)

	t.Setenv("PLOTCAST_SEED", "-1")
	_, err = Load("")
	assert.ErrorContains(t, err, "PLOTCAST_SEED")
}

func TestLoadInvalidYAML(t *testing.T) {
	_, err := Load(writeFile(t, "server: [unclosed"))
	assert.ErrorContains(t, err, "parsing config file")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		errMsg string
	}{
		{"addr", func(c *Config) { c.Server.Addr = "" }, "server.addr"},
		{"upload", func(c *Config) { c.Server.MaxUploadBytes = 0 }, "max_upload_bytes"},
		{"rate", func(c *Config) { c.Server.RateBurst = 0 }, "rate_limit"},
		{"model", func(c *Config) { c.Forecast.DefaultModel = "lstm" }, "default_model"},
		{"horizon", func(c *Config) { c.Forecast.DefaultHorizon = 365 }, "default_horizon"},
		{"interval", func(c *Config) { c.Additive.IntervalWidth = 1 }, "additive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.errMsg)
		})
	}
}
