// Package journal records planned trades, reconciles realised P/L against
// the account balance and persists the log to CSV or SQLite.
package journal

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rustyeddy/fxplan/market"
	"github.com/rustyeddy/fxplan/pkg/id"
	"github.com/rustyeddy/fxplan/risk"
	"github.com/rustyeddy/fxplan/signal"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound    = errors.New("journal record not found")
	ErrPersistence = errors.New("journal persistence failed")
)

// DateLayout is the on-disk date format of a record.
const DateLayout = "2006-01-02"

type Outcome int

const (
	Pending Outcome = iota
	Win
	Loss
)

func (o Outcome) String() string {
	switch o {
	case Win:
		return "Win"
	case Loss:
		return "Loss"
	default:
		return "Pending"
	}
}

func ParseOutcome(s string) (Outcome, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "pending":
		return Pending, nil
	case "win":
		return Win, nil
	case "loss":
		return Loss, nil
	}
	return Pending, market.Invalid("outcome", "must be Pending, Win or Loss, got %q", s)
}

func (o Outcome) MarshalText() ([]byte, error) { return []byte(o.String()), nil }

func (o *Outcome) UnmarshalText(b []byte) error {
	v, err := ParseOutcome(string(b))
	if err != nil {
		return err
	}
	*o = v
	return nil
}

// Record is one journal row. ID is storage identity only and is not part
// of the CSV layout.
type Record struct {
	ID         string           `json:"id"`
	Date       time.Time        `json:"date"`
	Pair       string           `json:"pair"`
	Direction  signal.Direction `json:"direction"`
	Entry      float64          `json:"entry"`
	Exit       float64          `json:"exit"`
	StopLoss   float64          `json:"stop_loss"`
	TakeProfit float64          `json:"take_profit"`
	LotSize    float64          `json:"lot_size"`
	PLPips     float64          `json:"pl_pips"`
	PLUSD      float64          `json:"pl_usd"`
	Outcome    Outcome          `json:"outcome"`
	Reason     string           `json:"reason"`
	Review     string           `json:"review"`
}

// NewRecord turns a confirmed plan into a pending record.
func NewRecord(p risk.TradePlan, date time.Time) Record {
	return Record{
		ID:         id.NewAt(date),
		Date:       date,
		Pair:       market.NormalizePair(p.Pair),
		Direction:  p.Direction,
		Entry:      p.EntryPrice,
		StopLoss:   p.StopLossPrice,
		TakeProfit: p.TakeProfit,
		LotSize:    risk.RoundLots(p.LotSize),
		Outcome:    Pending,
		Reason:     p.Reason,
	}
}

// ComputePL returns realised pips (1 decimal) and USD (2 decimals). Pending
// trades and trades without a direction are always flat. USD is computed
// from the unrounded pip move.
func ComputePL(pair string, dir signal.Direction, entry, exit, lots float64, o Outcome) (pips, usd float64) {
	if o == Pending || (dir != signal.Buy && dir != signal.Sell) {
		return 0, 0
	}
	move := decimal.NewFromFloat(exit).
		Sub(decimal.NewFromFloat(entry)).
		Mul(decimal.NewFromFloat(market.PipMultiplier(pair)))
	if dir == signal.Sell {
		move = move.Neg()
	}
	cash := move.
		Mul(decimal.NewFromFloat(market.PipValuePerLot(pair))).
		Mul(decimal.NewFromFloat(lots)).
		Round(2)
	return move.Round(1).InexactFloat64(), cash.InexactFloat64()
}

// Recompute refreshes the P/L fields from prices and outcome.
func (r *Record) Recompute() {
	r.PLPips, r.PLUSD = ComputePL(r.Pair, r.Direction, r.Entry, r.Exit, r.LotSize, r.Outcome)
}

func (r Record) Closed() bool { return r.Outcome != Pending }

func (r Record) String() string {
	return fmt.Sprintf("%s %s %s %.2f lots entry=%.5f exit=%.5f %s %.1f pips $%.2f",
		r.Date.Format(DateLayout), r.Pair, r.Direction, r.LotSize, r.Entry, r.Exit,
		r.Outcome, r.PLPips, r.PLUSD)
}

// addMoney sums two account amounts without binary float drift.
func addMoney(a, b float64) float64 {
	return decimal.NewFromFloat(a).Add(decimal.NewFromFloat(b)).InexactFloat64()
}
