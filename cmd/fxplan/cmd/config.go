package cmd

import (
	"fmt"
	"strings"

	"github.com/rustyeddy/fxplan/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Generate or validate configuration files",
	Long: `Manage the application configuration file.

Subcommands:
  init     - Generate a default configuration file
  validate - Validate an existing configuration file

Examples:
  fxplan config init -o fxplan.yaml
  fxplan config validate -f fxplan.yaml`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate a default configuration file",
	Args:  cobra.NoArgs,
	RunE:  runConfigInit,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	Args:  cobra.NoArgs,
	RunE:  runConfigValidate,
}

var (
	configInitOutput   string
	configValidatePath string
)

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configValidateCmd)

	configInitCmd.Flags().StringVarP(&configInitOutput, "output", "o", "fxplan.yaml", "output config file path")
	configValidateCmd.Flags().StringVarP(&configValidatePath, "file", "f", "", "path to config file (default --config)")
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	if err := cfg.SaveToFile(configInitOutput); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	fmt.Printf("✓ Created default configuration: %s\n", configInitOutput)
	fmt.Println("\nEdit the file and run with:")
	fmt.Printf("  fxplan --config %s analyze\n", configInitOutput)
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	path := configValidatePath
	if path == "" {
		path = cfgFile
	}
	cfg, err := config.LoadFromFile(path)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	fmt.Printf("✓ Configuration valid: %s\n", path)
	fmt.Printf("  Settings: %s\n", cfg.Settings.Path)
	fmt.Printf("  Journal: %s\n", cfg.Journal.Type)
	fmt.Printf("  Strategy: daily trend %v, advanced %v\n", cfg.Strategy.DailyTrend, cfg.Strategy.Advanced)
	fmt.Printf("  Market: %s (token from $%s)\n", cfg.Market.Environment, cfg.Market.TokenEnv)
	fmt.Printf("  Pairs: %s\n", strings.Join(cfg.Pairs, ", "))
	return nil
}
