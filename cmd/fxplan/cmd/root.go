package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rustyeddy/fxplan/app"
	"github.com/rustyeddy/fxplan/config"
	"github.com/rustyeddy/fxplan/internal/logger"
	"github.com/rustyeddy/fxplan/internal/trace"
	"github.com/spf13/cobra"
)

var (
	cfgFile  string
	logLevel string

	// appConfig is loaded once by setup for every command.
	appConfig *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "fxplan",
	Short: "Multi-timeframe FX signal planner and trade journal",
	Long: `fxplan evaluates a trend-following checklist for major FX pairs and
turns confirmed signals into risk-sized trade plans.

It provides tools for:
  - H4 trend, H1 RSI pullback and candle confirmation checks
  - ATR based stop loss, take profit and position sizing
  - A trade journal that keeps the account balance reconciled
  - Refreshing indicator readings from OANDA candles

Complete documentation is available at https://github.com/rustyeddy/fxplan`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return trace.Shutdown(context.Background())
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "fxplan.yaml", "application config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
}

func setup(cmd *cobra.Command, args []string) error {
	config.LoadEnv()
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	appConfig = cfg
	level := cfg.Log.Level
	if logLevel != "" {
		level = logLevel
	}
	logger.Init(logger.Config{Level: level, Format: cfg.Log.Format, Output: os.Stderr})

	if config.EnvBool("FXPLAN_TRACING") {
		if err := trace.Init(trace.Options{Enabled: true, Output: os.Stderr, Version: version}); err != nil {
			return fmt.Errorf("init tracing: %w", err)
		}
	}
	return nil
}

// loadConfig reads --config, falling back to defaults when the file does
// not exist.
func loadConfig() (*config.Config, error) {
	if _, err := os.Stat(cfgFile); errors.Is(err, os.ErrNotExist) {
		return config.Default(), nil
	}
	return config.LoadFromFile(cfgFile)
}

func openState(ctx context.Context) (*app.State, error) {
	if appConfig == nil {
		return nil, errors.New("configuration not loaded")
	}
	st, err := app.Open(ctx, appConfig)
	if err != nil {
		return nil, fmt.Errorf("open state: %w", err)
	}
	return st, nil
}
