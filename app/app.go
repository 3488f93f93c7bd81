// Package app holds the explicit application state every operator action
// goes through.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rustyeddy/fxplan/analysis"
	"github.com/rustyeddy/fxplan/config"
	"github.com/rustyeddy/fxplan/journal"
	"github.com/rustyeddy/fxplan/market"
	"github.com/rustyeddy/fxplan/oanda"
	"github.com/rustyeddy/fxplan/risk"
	"github.com/rustyeddy/fxplan/signal"
)

var (
	// ErrNotConfirmed is returned when a plan is requested without a confirmed signal.
	ErrNotConfirmed = errors.New("no confirmed signal")
	// ErrNoMarketData means refresh was asked for but no data source is configured.
	ErrNoMarketData = errors.New("no market data source configured")
)

// Snapshotter computes fresh readings for a pair.
type Snapshotter interface {
	Snapshot(ctx context.Context, pair string, prev signal.Snapshot) (signal.Snapshot, error)
}

// State is the loaded configuration, settings and journal.
type State struct {
	Config   *config.Config
	Settings *config.SettingsStore
	Ledger   *journal.Ledger
	Analyzer Snapshotter // nil without a market data token

	log *slog.Logger
}

type Option func(*State)

func WithLogger(l *slog.Logger) Option {
	return func(s *State) { s.log = l }
}

// WithAnalyzer replaces the market data source built from the config.
func WithAnalyzer(a Snapshotter) Option {
	return func(s *State) { s.Analyzer = a }
}

// Open loads the settings document and the journal named by cfg.
func Open(ctx context.Context, cfg *config.Config, opts ...Option) (*State, error) {
	s := &State{Config: cfg, log: slog.Default()}
	for _, o := range opts {
		o(s)
	}

	settings, err := config.OpenSettings(cfg.Settings.Path)
	if err != nil {
		return nil, err
	}
	s.Settings = settings

	store, err := OpenStore(cfg.Journal)
	if err != nil {
		return nil, err
	}
	s.Ledger, err = journal.Open(ctx, store, settings, journal.WithLogger(s.log))
	if err != nil {
		store.Close()
		return nil, err
	}

	if s.Analyzer == nil {
		s.Analyzer, err = NewAnalyzer(cfg.Market, s.log)
		if err != nil {
			s.Ledger.CloseStore()
			return nil, err
		}
	}
	return s, nil
}

// OpenStore opens the configured journal backend.
func OpenStore(c config.JournalConfig) (journal.Store, error) {
	switch c.Type {
	case "", "csv":
		return journal.NewCSVStore(c.CSVPath), nil
	case "sqlite":
		return journal.NewSQLiteStore(c.DBPath)
	}
	return nil, fmt.Errorf("unknown journal type %q", c.Type)
}

// NewAnalyzer builds the OANDA backed analyzer, or nil when no token is set.
func NewAnalyzer(m config.MarketConfig, log *slog.Logger) (Snapshotter, error) {
	token := m.Token()
	if token == "" {
		return nil, nil
	}
	ttl, err := m.CacheTTLDuration()
	if err != nil {
		return nil, fmt.Errorf("market.cache_ttl: %w", err)
	}
	timeout, err := m.TimeoutDuration()
	if err != nil {
		return nil, fmt.Errorf("market.timeout: %w", err)
	}
	client := oanda.NewClient(token, m.Environment != "live",
		oanda.WithTimeout(timeout),
		oanda.WithRateLimit(m.RequestsPerSecond))

	p := analysis.DefaultParams()
	p.EMAPeriod = m.EMAPeriod
	p.RSIPeriod = m.RSIPeriod
	p.ATRPeriod = m.ATRPeriod
	p.DailyEMAPeriod = m.DailyEMAPeriod
	p.CandleCount = m.CandleCount
	return analysis.New(client, p, analysis.WithCacheTTL(ttl), analysis.WithLogger(log)), nil
}

// Analysis is the evaluation of one pair, with a plan when confirmed.
type Analysis struct {
	Pair       string
	Snapshot   signal.Snapshot
	Result     signal.Result
	Summary    string
	Plan       *risk.TradePlan
	Violations []risk.Violation
}

// Analyze evaluates the stored readings for pair.
func (s *State) Analyze(pair string) (Analysis, error) {
	pair = market.NormalizePair(pair)
	if _, ok := market.Instruments[pair]; !ok {
		return Analysis{}, market.Invalid("pair", "unknown pair %q", pair)
	}
	snap := s.Settings.Snapshot(pair)
	res := signal.Evaluate(pair, snap, s.Config.Strategy.Options())
	a := Analysis{
		Pair:     pair,
		Snapshot: snap,
		Result:   res,
		Summary:  signal.Summary(pair, snap),
	}
	if _, ok := res.Decision.(signal.Confirmed); !ok {
		return a, nil
	}

	params, err := s.Settings.RiskParameters()
	if err != nil {
		return Analysis{}, err
	}
	plan, err := risk.FromResult(res, snap, params)
	if err != nil {
		return Analysis{}, err
	}
	a.Plan = &plan
	a.Violations = risk.Review(plan)
	return a, nil
}

// Confirm journals the plan for pair as a pending trade dated date.
func (s *State) Confirm(ctx context.Context, pair string, date time.Time) (journal.Record, error) {
	a, err := s.Analyze(pair)
	if err != nil {
		return journal.Record{}, err
	}
	if a.Plan == nil {
		return journal.Record{}, fmt.Errorf("%s: %w: %s", a.Pair, ErrNotConfirmed, a.Result.Decision.Reason())
	}
	return s.Ledger.Append(ctx, *a.Plan, date)
}

// RefreshResult is the outcome of refreshing one pair.
type RefreshResult struct {
	Pair     string
	Snapshot signal.Snapshot
	Err      error
}

// Refresh recomputes and stores the readings of pairs, or of the configured
// pairs when none are given. A pair whose data is unavailable keeps its
// previous readings and reports the error; other failures stop the run.
func (s *State) Refresh(ctx context.Context, pairs []string) ([]RefreshResult, error) {
	if s.Analyzer == nil {
		return nil, ErrNoMarketData
	}
	if len(pairs) == 0 {
		pairs = s.Config.Pairs
	}

	out := make([]RefreshResult, 0, len(pairs))
	for _, p := range pairs {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		pair := market.NormalizePair(p)
		prev := s.Settings.Snapshot(pair)
		snap, err := s.Analyzer.Snapshot(ctx, pair, prev)
		if err != nil {
			if !errors.Is(err, analysis.ErrDataUnavailable) {
				return out, err
			}
			s.log.Warn("refresh skipped", "pair", pair, "err", err)
			out = append(out, RefreshResult{Pair: pair, Snapshot: prev, Err: err})
			continue
		}
		if err := s.Settings.SetSnapshot(pair, snap); err != nil {
			return out, err
		}
		s.log.Info("refresh", "pair", pair, "price", snap.CurrentPrice, "daily", snap.DailyTrend.String())
		out = append(out, RefreshResult{Pair: pair, Snapshot: snap})
	}
	return out, nil
}

// CloseTrade edits a journal record and reconciles the balance.
func (s *State) CloseTrade(ctx context.Context, ref string, req journal.CloseRequest) (journal.Change, error) {
	return s.Ledger.Close(ctx, ref, req)
}

// RemoveTrade deletes a journal record and reverses its P/L.
func (s *State) RemoveTrade(ctx context.Context, ref string) (journal.Change, error) {
	return s.Ledger.Remove(ctx, ref)
}

// Close releases the journal store.
func (s *State) Close() error {
	return s.Ledger.CloseStore()
}
