package cmd

import (
	"fmt"
	"strconv"

	"github.com/rustyeddy/fxplan/signal"
	"github.com/spf13/cobra"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change account and pair settings",
	Long: `Manage the settings document (account balance, risk percentage and
the per pair indicator readings).

Subcommands:
  show    - Print the current settings
  balance - Set the account balance
  risk    - Set the risk percentage per trade
  pair    - Update the readings of one pair

Examples:
  fxplan settings balance 2500
  fxplan settings risk 1.5
  fxplan settings pair EUR/USD --price 1.0855 --ema 1.0820 --rsi 40 --atr 0.0015 --bullish --daily uptrend`,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current settings",
	Args:  cobra.NoArgs,
	RunE:  runSettingsShow,
}

var settingsBalanceCmd = &cobra.Command{
	Use:   "balance <amount>",
	Short: "Set the account balance",
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsBalance,
}

var settingsRiskCmd = &cobra.Command{
	Use:   "risk <percent>",
	Short: "Set the risk percentage per trade",
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsRisk,
}

var settingsPairCmd = &cobra.Command{
	Use:   "pair <pair>",
	Short: "Update the readings of one pair",
	Long: `Update the stored readings of a pair. Only the flags given are changed.

Daily trend takes one of: unchecked, uptrend, downtrend, sideways.`,
	Args: cobra.ExactArgs(1),
	RunE: runSettingsPair,
}

var pairFlags struct {
	price, ema, rsi, atr              float64
	bullish, bearish, keyLevel, struc bool
	daily                             string
}

func init() {
	rootCmd.AddCommand(settingsCmd)
	settingsCmd.AddCommand(settingsShowCmd, settingsBalanceCmd, settingsRiskCmd, settingsPairCmd)

	f := settingsPairCmd.Flags()
	f.Float64Var(&pairFlags.price, "price", 0, "current price")
	f.Float64Var(&pairFlags.ema, "ema", 0, "H4 EMA 50")
	f.Float64Var(&pairFlags.rsi, "rsi", 0, "H1 RSI 14")
	f.Float64Var(&pairFlags.atr, "atr", 0, "H1 ATR 14 in price units")
	f.BoolVar(&pairFlags.bullish, "bullish", false, "bullish confirmation candle")
	f.BoolVar(&pairFlags.bearish, "bearish", false, "bearish confirmation candle")
	f.BoolVar(&pairFlags.keyLevel, "key-level", false, "price is near a key level")
	f.BoolVar(&pairFlags.struc, "structure", false, "market structure confirmed")
	f.StringVar(&pairFlags.daily, "daily", "", "daily trend")
}

func runSettingsShow(cmd *cobra.Command, args []string) error {
	st, err := openState(cmd.Context())
	if err != nil {
		return err
	}
	defer st.Close()

	params, err := st.Settings.RiskParameters()
	if err != nil {
		return err
	}
	fmt.Printf("Settings: %s\n", st.Settings.Path())
	fmt.Printf("  Account balance: $%.2f\n", params.AccountBalance)
	fmt.Printf("  Risk per trade:  %.2f%%\n", params.RiskPercentage)
	for _, pair := range st.Settings.Pairs() {
		fmt.Printf("  %s\n", st.Settings.Snapshot(pair))
	}
	return nil
}

func runSettingsBalance(cmd *cobra.Command, args []string) error {
	amount, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return fmt.Errorf("balance: %w", err)
	}
	st, err := openState(cmd.Context())
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.Settings.SetAccountBalance(amount); err != nil {
		return err
	}
	fmt.Printf("✓ Account balance set to $%.2f\n", amount)
	return nil
}

func runSettingsRisk(cmd *cobra.Command, args []string) error {
	pct, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return fmt.Errorf("risk: %w", err)
	}
	st, err := openState(cmd.Context())
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.Settings.SetRiskPercentage(pct); err != nil {
		return err
	}
	fmt.Printf("✓ Risk per trade set to %.2f%%\n", pct)
	return nil
}

func runSettingsPair(cmd *cobra.Command, args []string) error {
	st, err := openState(cmd.Context())
	if err != nil {
		return err
	}
	defer st.Close()

	snap := st.Settings.Snapshot(args[0])
	f := cmd.Flags()
	if f.Changed("price") {
		snap.CurrentPrice = pairFlags.price
	}
	if f.Changed("ema") {
		snap.EMAReference = pairFlags.ema
	}
	if f.Changed("rsi") {
		snap.RSI = pairFlags.rsi
	}
	if f.Changed("atr") {
		snap.RawATR = pairFlags.atr
	}
	if f.Changed("bullish") {
		snap.BullishCandle = pairFlags.bullish
	}
	if f.Changed("bearish") {
		snap.BearishCandle = pairFlags.bearish
	}
	if f.Changed("key-level") {
		snap.NearKeyLevel = pairFlags.keyLevel
	}
	if f.Changed("structure") {
		snap.MarketStructureOK = pairFlags.struc
	}
	if f.Changed("daily") {
		if snap.DailyTrend, err = signal.ParseTrend(pairFlags.daily); err != nil {
			return err
		}
	}

	if err := st.Settings.SetSnapshot(args[0], snap); err != nil {
		return err
	}
	fmt.Printf("✓ Updated %s\n", st.Settings.Snapshot(args[0]))
	return nil
}
