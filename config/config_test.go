package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.NotNil(t, cfg)
	assert.Equal(t, "csv", cfg.Journal.Type)
	assert.Equal(t, []string{"EUR/USD", "GBP/USD", "USD/JPY", "AUD/USD"}, cfg.Pairs)
	assert.True(t, cfg.Strategy.DailyTrend)
	assert.False(t, cfg.Strategy.Advanced)
	assert.NoError(t, cfg.Validate())

	ttl, err := cfg.Market.CacheTTLDuration()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, ttl)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"valid config", func(*Config) {}, ""},
		{"sqlite", func(c *Config) { c.Journal.Type = "sqlite" }, ""},
		{"missing settings path", func(c *Config) { c.Settings.Path = "" }, "settings.path is required"},
		{"bad journal type", func(c *Config) { c.Journal.Type = "xlsx" }, "journal.type must be 'csv' or 'sqlite'"},
		{"csv without path", func(c *Config) { c.Journal.CSVPath = "" }, "journal csv_path required"},
		{"sqlite without path", func(c *Config) { c.Journal.Type = "sqlite"; c.Journal.DBPath = "" }, "journal db_path required"},
		{"negative tolerance", func(c *Config) { c.Strategy.NeutralTolerancePips = -1 }, "neutral_tolerance_pips"},
		{"bad environment", func(c *Config) { c.Market.Environment = "demo" }, "market.environment"},
		{"bad ttl", func(c *Config) { c.Market.CacheTTL = "soon" }, "market.cache_ttl"},
		{"zero rsi period", func(c *Config) { c.Market.RSIPeriod = 0 }, "market.rsi_period must be positive"},
		{"too few candles", func(c *Config) { c.Market.CandleCount = 20 }, "market.candle_count must be at least 50"},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
		{"unknown pair", func(c *Config) { c.Pairs = []string{"EUR/XYZ"} }, "unknown pair"},
		{"no pairs", func(c *Config) { c.Pairs = nil }, "pairs must not be empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestSaveAndLoadFile(t *testing.T) {
	dir := t.TempDir()

	for _, name := range []string{"fxplan.yaml", "fxplan.json"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			cfg := Default()
			cfg.Strategy.Advanced = true
			cfg.Pairs = []string{"USD/CAD"}
			require.NoError(t, cfg.SaveToFile(path))

			loaded, err := LoadFromFile(path)
			require.NoError(t, err)
			assert.Equal(t, cfg, loaded)
		})
	}
}

func TestLoadFromFilePartialUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fxplan.yaml")
	require.NoError(t, os.WriteFile(path, []byte("journal:\n  type: sqlite\n  db_path: ./j.db\n"), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Journal.Type)
	assert.Equal(t, 14, cfg.Market.RSIPeriod)
}

func TestLoadFromFileErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadFromFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("journal: [unclosed"), 0o644))
	_, err = LoadFromFile(bad)
	assert.Error(t, err)

	invalid := filepath.Join(dir, "invalid.yaml")
	require.NoError(t, os.WriteFile(invalid, []byte("journal:\n  type: xlsx\n"), 0o644))
	_, err = LoadFromFile(invalid)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestLoadEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("FXPLAN_TEST_TOKEN=abc123\nFXPLAN_TEST_FLAG=yes\n"), 0o644))
	t.Cleanup(func() {
		os.Unsetenv("FXPLAN_TEST_TOKEN")
		os.Unsetenv("FXPLAN_TEST_FLAG")
	})

	LoadEnv(path, filepath.Join(t.TempDir(), "absent.env"))
	m := MarketConfig{TokenEnv: "FXPLAN_TEST_TOKEN"}
	assert.Equal(t, "abc123", m.Token())
	assert.True(t, EnvBool("FXPLAN_TEST_FLAG"))
	assert.False(t, EnvBool("FXPLAN_TEST_UNSET"))
}
