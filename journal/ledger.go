package journal

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rustyeddy/fxplan/market"
	"github.com/rustyeddy/fxplan/risk"
	"github.com/rustyeddy/fxplan/signal"
)

// Account is the settings store as seen by the ledger.
type Account interface {
	RiskParameters() (risk.Params, error)
	SetAccountBalance(amount float64) error
}

// Store persists the full ordered record list.
type Store interface {
	Load(ctx context.Context) ([]Record, error)
	Save(ctx context.Context, records []Record) error
	Close() error
}

// CloseRequest edits a record. Nil overrides keep the stored value.
type CloseRequest struct {
	Exit       float64
	Outcome    Outcome
	Entry      *float64
	StopLoss   *float64
	TakeProfit *float64
	Review     *string
}

// Change reports a ledger mutation and the balance adjustment it caused.
type Change struct {
	Record  Record
	Delta   float64
	Balance float64
}

// Ledger owns the journal records and keeps the account balance equal to
// a baseline plus the realised P/L of every record it holds.
type Ledger struct {
	mu      sync.Mutex
	store   Store
	account Account
	records []Record
	log     *slog.Logger
}

type Option func(*Ledger)

func WithLogger(l *slog.Logger) Option {
	return func(g *Ledger) { g.log = l }
}

// Open loads the records from store. Pending records carrying P/L are
// flattened, since a pending trade can not have realised anything.
func Open(ctx context.Context, store Store, account Account, opts ...Option) (*Ledger, error) {
	l := &Ledger{store: store, account: account, log: slog.Default()}
	for _, o := range opts {
		o(l)
	}

	recs, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load journal: %w", err)
	}
	for i := range recs {
		r := &recs[i]
		if r.Outcome == Pending && (r.PLPips != 0 || r.PLUSD != 0) {
			l.log.Warn("pending record carries P/L, resetting",
				"row", i+1, "pair", r.Pair, "pl_usd", r.PLUSD)
			r.PLPips, r.PLUSD = 0, 0
		}
	}
	l.records = recs
	l.log.Debug("journal loaded", "records", len(recs))
	return l, nil
}

// Append adds a pending record for a confirmed plan. Records are never
// merged, and the balance is unchanged.
func (l *Ledger) Append(ctx context.Context, p risk.TradePlan, date time.Time) (Record, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec := NewRecord(p, date)
	next := append(l.snapshot(), rec)
	if err := l.save(ctx, next); err != nil {
		return Record{}, err
	}
	l.records = next
	l.log.Info("journal append", "id", rec.ID, "pair", rec.Pair, "direction", rec.Direction.String(), "lots", rec.LotSize)
	return rec, nil
}

// Close sets the exit and outcome of a record, recomputes its P/L and
// applies only the difference from its previous P/L to the balance.
func (l *Ledger) Close(ctx context.Context, ref string, req CloseRequest) (Change, error) {
	if err := req.validate(); err != nil {
		return Change{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	i, err := l.resolve(ref)
	if err != nil {
		return Change{}, err
	}

	rec := l.records[i]
	if req.Outcome != Pending && rec.Direction != signal.Buy && rec.Direction != signal.Sell {
		return Change{}, market.Invalid("direction", "row %d has no direction, it can only stay pending", i+1)
	}
	prev := rec.PLUSD
	rec.Exit = req.Exit
	rec.Outcome = req.Outcome
	if req.Entry != nil {
		rec.Entry = *req.Entry
	}
	if req.StopLoss != nil {
		rec.StopLoss = *req.StopLoss
	}
	if req.TakeProfit != nil {
		rec.TakeProfit = *req.TakeProfit
	}
	if req.Review != nil {
		rec.Review = *req.Review
	}
	rec.Recompute()

	next := l.snapshot()
	next[i] = rec
	ch, err := l.commit(ctx, next, addMoney(rec.PLUSD, -prev))
	if err != nil {
		return Change{}, err
	}
	ch.Record = rec
	l.log.Info("journal close", "id", rec.ID, "outcome", rec.Outcome.String(),
		"pl_pips", rec.PLPips, "pl_usd", rec.PLUSD, "delta", ch.Delta)
	return ch, nil
}

// Remove deletes a record and reverses its P/L from the balance.
func (l *Ledger) Remove(ctx context.Context, ref string) (Change, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	i, err := l.resolve(ref)
	if err != nil {
		return Change{}, err
	}
	rec := l.records[i]

	next := make([]Record, 0, len(l.records)-1)
	next = append(next, l.records[:i]...)
	next = append(next, l.records[i+1:]...)

	ch, err := l.commit(ctx, next, -rec.PLUSD)
	if err != nil {
		return Change{}, err
	}
	ch.Record = rec
	l.log.Info("journal remove", "id", rec.ID, "pair", rec.Pair, "delta", ch.Delta)
	return ch, nil
}

// List returns a copy of the records, oldest first.
func (l *Ledger) List() []Record {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshot()
}

// Lookup returns a record and its 1-based row number.
func (l *Ledger) Lookup(ref string) (Record, int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	i, err := l.resolve(ref)
	if err != nil {
		return Record{}, 0, err
	}
	return l.records[i], i + 1, nil
}

// Baseline is the balance the account would have with no realised trades.
func (l *Ledger) Baseline() (float64, error) {
	p, err := l.account.RiskParameters()
	if err != nil {
		return 0, fmt.Errorf("read balance: %w: %w", ErrPersistence, err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	base := p.AccountBalance
	for _, r := range l.records {
		base = addMoney(base, -r.PLUSD)
	}
	return base, nil
}

// CloseStore releases the underlying store.
func (l *Ledger) CloseStore() error {
	return l.store.Close()
}

// commit writes records, then the balance. A failed balance write rolls
// the record write back so the two never disagree on disk.
func (l *Ledger) commit(ctx context.Context, next []Record, delta float64) (Change, error) {
	p, err := l.account.RiskParameters()
	if err != nil {
		return Change{}, fmt.Errorf("read balance: %w: %w", ErrPersistence, err)
	}
	ch := Change{Delta: delta, Balance: p.AccountBalance}

	if err := l.save(ctx, next); err != nil {
		return Change{}, err
	}
	if delta != 0 {
		ch.Balance = addMoney(p.AccountBalance, delta)
		if err := l.account.SetAccountBalance(ch.Balance); err != nil {
			if rerr := l.save(ctx, l.records); rerr != nil {
				l.log.Error("journal rollback failed", "err", rerr)
			}
			return Change{}, fmt.Errorf("update balance: %w: %w", ErrPersistence, err)
		}
	}
	l.records = next
	return ch, nil
}

func (l *Ledger) save(ctx context.Context, recs []Record) error {
	if err := l.store.Save(ctx, recs); err != nil {
		return fmt.Errorf("save journal: %w: %w", ErrPersistence, err)
	}
	return nil
}

func (l *Ledger) snapshot() []Record {
	out := make([]Record, len(l.records))
	copy(out, l.records)
	return out
}

// resolve accepts a record ID, a unique ID suffix of at least 6
// characters (see ShortID), or a 1-based row number. IDs are tried first
// so an all digit suffix still finds its record.
func (l *Ledger) resolve(ref string) (int, error) {
	ref = strings.TrimSpace(ref)

	match := -1
	for i, r := range l.records {
		if strings.EqualFold(r.ID, ref) {
			return i, nil
		}
		if len(ref) >= 6 && strings.HasSuffix(strings.ToUpper(r.ID), strings.ToUpper(ref)) {
			if match >= 0 {
				return -1, fmt.Errorf("record %q is ambiguous: %w", ref, ErrNotFound)
			}
			match = i
		}
	}
	if match >= 0 {
		return match, nil
	}

	if n, err := strconv.Atoi(ref); err == nil {
		if n >= 1 && n <= len(l.records) {
			return n - 1, nil
		}
		return -1, fmt.Errorf("row %d: %w", n, ErrNotFound)
	}
	return -1, fmt.Errorf("record %q: %w", ref, ErrNotFound)
}

func (req CloseRequest) validate() error {
	switch req.Outcome {
	case Pending, Win, Loss:
	default:
		return market.Invalid("outcome", "unknown outcome %d", int(req.Outcome))
	}
	if !market.Finite(req.Exit) || req.Exit < 0 {
		return market.Invalid("exit", "must be a non-negative price, got %v", req.Exit)
	}
	if req.Outcome != Pending && req.Exit == 0 {
		return market.Invalid("exit", "a closed trade needs an exit price")
	}
	for name, v := range map[string]*float64{"entry": req.Entry, "stop_loss": req.StopLoss, "take_profit": req.TakeProfit} {
		if v != nil && (!market.Finite(*v) || *v <= 0) {
			return market.Invalid(name, "must be a positive price, got %v", *v)
		}
	}
	return nil
}
