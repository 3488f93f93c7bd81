package cmd

import (
	"fmt"

	"github.com/rustyeddy/fxplan/journal"
	"github.com/spf13/cobra"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Query and edit the trade journal",
	Long: `Query and edit the trade journal. Records are referenced by row
number (as printed by list), record ID or the short ID.

Subcommands:
  list  - List all records
  close - Set the exit and outcome of a record
  rm    - Delete a record and reverse its P/L
  stats - Print performance statistics
  org   - Export records as org-mode

Examples:
  fxplan journal list
  fxplan journal close 3 --exit 1.0900 --outcome win --review "followed the plan"
  fxplan journal rm 3`,
}

var journalListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all records",
	Args:  cobra.NoArgs,
	RunE:  runJournalList,
}

var journalCloseCmd = &cobra.Command{
	Use:   "close <ref>",
	Short: "Set the exit and outcome of a record",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalClose,
}

var journalRmCmd = &cobra.Command{
	Use:   "rm <ref>",
	Short: "Delete a record and reverse its P/L",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalRm,
}

var journalStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print performance statistics",
	Args:  cobra.NoArgs,
	RunE:  runJournalStats,
}

var journalOrgCmd = &cobra.Command{
	Use:   "org [ref]",
	Short: "Export one or all records as org-mode",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runJournalOrg,
}

var closeFlags struct {
	exit, entry, sl, tp float64
	outcome, review     string
}

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalListCmd, journalCloseCmd, journalRmCmd, journalStatsCmd, journalOrgCmd)

	f := journalCloseCmd.Flags()
	f.Float64Var(&closeFlags.exit, "exit", 0, "exit price")
	f.StringVar(&closeFlags.outcome, "outcome", "", "win, loss or pending")
	f.Float64Var(&closeFlags.entry, "entry", 0, "corrected entry price")
	f.Float64Var(&closeFlags.sl, "sl", 0, "corrected stop loss")
	f.Float64Var(&closeFlags.tp, "tp", 0, "corrected take profit")
	f.StringVar(&closeFlags.review, "review", "", "post trade review")
	journalCloseCmd.MarkFlagRequired("outcome")
}

func runJournalList(cmd *cobra.Command, args []string) error {
	st, err := openState(cmd.Context())
	if err != nil {
		return err
	}
	defer st.Close()

	recs := st.Ledger.List()
	if len(recs) == 0 {
		fmt.Println("Journal is empty")
		return nil
	}
	for i, r := range recs {
		fmt.Printf("%3d  %s  %s\n", i+1, journal.ShortID(r.ID), r)
	}
	return nil
}

func runJournalClose(cmd *cobra.Command, args []string) error {
	outcome, err := journal.ParseOutcome(closeFlags.outcome)
	if err != nil {
		return err
	}
	req := journal.CloseRequest{Exit: closeFlags.exit, Outcome: outcome}
	f := cmd.Flags()
	if f.Changed("entry") {
		req.Entry = &closeFlags.entry
	}
	if f.Changed("sl") {
		req.StopLoss = &closeFlags.sl
	}
	if f.Changed("tp") {
		req.TakeProfit = &closeFlags.tp
	}
	if f.Changed("review") {
		req.Review = &closeFlags.review
	}

	st, err := openState(cmd.Context())
	if err != nil {
		return err
	}
	defer st.Close()

	ch, err := st.CloseTrade(cmd.Context(), args[0], req)
	if err != nil {
		return err
	}
	fmt.Printf("✓ %s\n", ch.Record)
	fmt.Printf("  Balance: $%.2f (%+.2f)\n", ch.Balance, ch.Delta)
	return nil
}

func runJournalRm(cmd *cobra.Command, args []string) error {
	st, err := openState(cmd.Context())
	if err != nil {
		return err
	}
	defer st.Close()

	ch, err := st.RemoveTrade(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	fmt.Printf("✓ Removed %s\n", ch.Record)
	fmt.Printf("  Balance: $%.2f (%+.2f)\n", ch.Balance, ch.Delta)
	return nil
}

func runJournalStats(cmd *cobra.Command, args []string) error {
	st, err := openState(cmd.Context())
	if err != nil {
		return err
	}
	defer st.Close()

	s := st.Ledger.Stats()
	fmt.Printf("Trades:        %d (%d open, %d closed)\n", s.Trades, s.Open, s.Closed)
	fmt.Printf("Wins/Losses:   %d/%d (%.1f%%)\n", s.Wins, s.Losses, s.WinRate)
	fmt.Printf("Net P/L:       $%.2f (%.1f pips)\n", s.NetPL, s.NetPips)
	fmt.Printf("Profit factor: %.2f\n", s.ProfitFactor)
	if base, err := st.Ledger.Baseline(); err == nil {
		fmt.Printf("Baseline:      $%.2f\n", base)
	}
	return nil
}

func runJournalOrg(cmd *cobra.Command, args []string) error {
	st, err := openState(cmd.Context())
	if err != nil {
		return err
	}
	defer st.Close()

	if len(args) == 1 {
		rec, _, err := st.Ledger.Lookup(args[0])
		if err != nil {
			return err
		}
		fmt.Println(journal.FormatRecordOrg(rec))
		return nil
	}
	fmt.Println(journal.FormatRecordsOrg(st.Ledger.List()))
	return nil
}
