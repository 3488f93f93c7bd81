// Package config holds the application configuration and the operator
// settings document.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rustyeddy/fxplan/market"
	"github.com/rustyeddy/fxplan/signal"
	"gopkg.in/yaml.v3"
)

// Config is the application configuration.
type Config struct {
	Settings SettingsConfig `json:"settings" yaml:"settings"`
	Journal  JournalConfig  `json:"journal" yaml:"journal"`
	Strategy StrategyConfig `json:"strategy" yaml:"strategy"`
	Market   MarketConfig   `json:"market" yaml:"market"`
	Log      LogConfig      `json:"log" yaml:"log"`
	Pairs    []string       `json:"pairs" yaml:"pairs"`
}

// SettingsConfig locates the settings document.
type SettingsConfig struct {
	Path string `json:"path" yaml:"path"`
}

// JournalConfig contains journaling parameters
type JournalConfig struct {
	Type    string `json:"type" yaml:"type"` // "csv" or "sqlite"
	CSVPath string `json:"csv_path,omitempty" yaml:"csv_path,omitempty"`
	DBPath  string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// StrategyConfig selects the optional checklist conditions.
type StrategyConfig struct {
	DailyTrend           bool    `json:"daily_trend" yaml:"daily_trend"`
	Advanced             bool    `json:"advanced" yaml:"advanced"`
	NeutralTolerancePips float64 `json:"neutral_tolerance_pips" yaml:"neutral_tolerance_pips"`
}

// Options converts the strategy section for the evaluator.
func (s StrategyConfig) Options() signal.Options {
	return signal.Options{
		DailyTrend:           s.DailyTrend,
		Advanced:             s.Advanced,
		NeutralTolerancePips: s.NeutralTolerancePips,
	}
}

// MarketConfig drives the candle download used by refresh.
type MarketConfig struct {
	Environment       string  `json:"environment" yaml:"environment"` // "practice" or "live"
	TokenEnv          string  `json:"token_env" yaml:"token_env"`
	CacheTTL          string  `json:"cache_ttl" yaml:"cache_ttl"`
	Timeout           string  `json:"timeout" yaml:"timeout"`
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second"`
	EMAPeriod         int     `json:"ema_period" yaml:"ema_period"`
	RSIPeriod         int     `json:"rsi_period" yaml:"rsi_period"`
	ATRPeriod         int     `json:"atr_period" yaml:"atr_period"`
	DailyEMAPeriod    int     `json:"daily_ema_period" yaml:"daily_ema_period"`
	CandleCount       int     `json:"candle_count" yaml:"candle_count"`
}

// CacheTTLDuration parses CacheTTL. Empty disables caching.
func (m MarketConfig) CacheTTLDuration() (time.Duration, error) {
	if m.CacheTTL == "" {
		return 0, nil
	}
	return time.ParseDuration(m.CacheTTL)
}

// TimeoutDuration parses Timeout, defaulting to 15s.
func (m MarketConfig) TimeoutDuration() (time.Duration, error) {
	if m.Timeout == "" {
		return 15 * time.Second, nil
	}
	return time.ParseDuration(m.Timeout)
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"` // "text" or "json"
}

// LoadFromFile loads configuration from a file (YAML first, then JSON).
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		cfg = Default()
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Settings.Path == "" {
		return fmt.Errorf("settings.path is required")
	}
	switch c.Journal.Type {
	case "csv":
		if c.Journal.CSVPath == "" {
			return fmt.Errorf("journal csv_path required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	default:
		return fmt.Errorf("journal.type must be 'csv' or 'sqlite'")
	}
	if c.Strategy.NeutralTolerancePips < 0 {
		return fmt.Errorf("strategy.neutral_tolerance_pips must not be negative")
	}

	m := c.Market
	if m.Environment != "practice" && m.Environment != "live" {
		return fmt.Errorf("market.environment must be 'practice' or 'live'")
	}
	if _, err := m.CacheTTLDuration(); err != nil {
		return fmt.Errorf("market.cache_ttl: %w", err)
	}
	if _, err := m.TimeoutDuration(); err != nil {
		return fmt.Errorf("market.timeout: %w", err)
	}
	if m.RequestsPerSecond < 0 {
		return fmt.Errorf("market.requests_per_second must not be negative")
	}
	for name, v := range map[string]int{"ema_period": m.EMAPeriod, "rsi_period": m.RSIPeriod, "atr_period": m.ATRPeriod, "daily_ema_period": m.DailyEMAPeriod} {
		if v <= 0 {
			return fmt.Errorf("market.%s must be positive", name)
		}
	}
	if need := maxInt(m.EMAPeriod, m.RSIPeriod+1, m.ATRPeriod+1, m.DailyEMAPeriod); m.CandleCount < need {
		return fmt.Errorf("market.candle_count must be at least %d", need)
	}

	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("log.format must be 'text' or 'json'")
	}

	if len(c.Pairs) == 0 {
		return fmt.Errorf("pairs must not be empty")
	}
	for _, p := range c.Pairs {
		if _, ok := market.Instruments[market.NormalizePair(p)]; !ok {
			return fmt.Errorf("unknown pair: %s", p)
		}
	}
	return nil
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Settings: SettingsConfig{Path: "./config.json"},
		Journal: JournalConfig{
			Type:    "csv",
			CSVPath: "./trading_journal.csv",
			DBPath:  "./journal.db",
		},
		Strategy: StrategyConfig{
			DailyTrend: true,
		},
		Market: MarketConfig{
			Environment:       "practice",
			TokenEnv:          "OANDA_TOKEN",
			CacheTTL:          "5m",
			Timeout:           "15s",
			RequestsPerSecond: 5,
			EMAPeriod:         50,
			RSIPeriod:         14,
			ATRPeriod:         14,
			DailyEMAPeriod:    50,
			CandleCount:       120,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Pairs: append([]string(nil), market.DefaultPairs...),
	}
}

func maxInt(vals ...int) int {
	m := vals[0]
	for _, v := range vals[1:] {
		if v > m {
			m = v
		}
	}
	return m
}
