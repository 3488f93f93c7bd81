package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/rustyeddy/fxplan/app"
	"github.com/rustyeddy/fxplan/journal"
	"github.com/rustyeddy/fxplan/signal"
	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [pair...]",
	Short: "Evaluate the checklist and print trade plans",
	Long: `Evaluate the stored readings of each pair (default: the configured
pairs) and print the checklist, the decision and, for confirmed signals,
the risk sized trade plan.`,
	RunE: runAnalyze,
}

var refreshCmd = &cobra.Command{
	Use:   "refresh [pair...]",
	Short: "Recompute pair readings from OANDA candles",
	Long: `Download H1, H4 and daily candles and store fresh readings for each
pair. The OANDA token is read from the variable named by market.token_env.`,
	RunE: runRefresh,
}

var confirmCmd = &cobra.Command{
	Use:   "confirm <pair>",
	Short: "Journal the confirmed plan for a pair as a pending trade",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfirm,
}

var confirmDate string

func init() {
	rootCmd.AddCommand(analyzeCmd, refreshCmd, confirmCmd)
	confirmCmd.Flags().StringVar(&confirmDate, "date", "", "trade date YYYY-MM-DD (default today)")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	st, err := openState(cmd.Context())
	if err != nil {
		return err
	}
	defer st.Close()

	pairs := args
	if len(pairs) == 0 {
		pairs = st.Config.Pairs
	}
	for i, pair := range pairs {
		a, err := st.Analyze(pair)
		if err != nil {
			return err
		}
		if i > 0 {
			fmt.Println()
		}
		printAnalysis(a)
	}
	return nil
}

func printAnalysis(a app.Analysis) {
	fmt.Printf("=== %s ===\n", a.Pair)
	fmt.Println(a.Summary)
	fmt.Println()

	for _, side := range []struct {
		dir    signal.Direction
		checks signal.Checks
	}{{signal.Buy, a.Result.Checklist.Buy}, {signal.Sell, a.Result.Checklist.Sell}} {
		if len(side.checks) == 0 {
			continue
		}
		fmt.Printf("%s checklist:\n", side.dir)
		for _, c := range side.checks {
			mark := "✗"
			if c.Passed {
				mark = "✓"
			}
			fmt.Printf("  %s %s\n", mark, c.Condition.Label(side.dir))
		}
	}

	switch d := a.Result.Decision.(type) {
	case signal.Confirmed:
		fmt.Printf("\nSignal: %s (%s)\n", d.Direction, d.Rationale)
	default:
		fmt.Printf("\nSignal: none. %s\n", d.Reason())
	}

	if a.Plan == nil {
		return
	}
	p := a.Plan
	fmt.Println("\nTrade plan:")
	fmt.Printf("  Entry:       %.5f\n", p.EntryPrice)
	fmt.Printf("  Stop loss:   %.5f (%.1f pips, 2 x ATR %.1f)\n", p.StopLossPrice, p.StopLossPips, p.ATRPips)
	fmt.Printf("  Take profit: %.5f (%.1f pips, R:R %.1f)\n", p.TakeProfit, p.TakeProfitPips, p.RR())
	fmt.Printf("  Risk:        $%.2f\n", p.RiskAmount)
	fmt.Printf("  Lot size:    %.2f\n", p.LotSize)
	for _, v := range a.Violations {
		fmt.Printf("  ! %s: %s\n", v.Code, v.Msg)
	}
}

func runRefresh(cmd *cobra.Command, args []string) error {
	st, err := openState(cmd.Context())
	if err != nil {
		return err
	}
	defer st.Close()

	results, err := st.Refresh(cmd.Context(), args)
	for _, r := range results {
		if r.Err != nil {
			fmt.Printf("✗ %s: %v\n", r.Pair, r.Err)
			continue
		}
		fmt.Printf("✓ %s\n", r.Snapshot.String())
	}
	return err
}

func runConfirm(cmd *cobra.Command, args []string) error {
	date := time.Now()
	if confirmDate != "" {
		var err error
		if date, err = time.Parse(journal.DateLayout, confirmDate); err != nil {
			return fmt.Errorf("date: %w", err)
		}
	}

	st, err := openState(cmd.Context())
	if err != nil {
		return err
	}
	defer st.Close()

	rec, err := st.Confirm(cmd.Context(), args[0], date)
	if err != nil {
		return err
	}
	fmt.Printf("✓ Journaled %s %s %.2f lots at %.5f (%s)\n",
		rec.Direction, rec.Pair, rec.LotSize, rec.Entry, journal.ShortID(rec.ID))
	if rec.Reason != "" {
		fmt.Printf("  Reason: %s\n", strings.TrimSpace(rec.Reason))
	}
	return nil
}
