// Package analysis turns downloaded candles into evaluator snapshots.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/rustyeddy/fxplan/indicators"
	"github.com/rustyeddy/fxplan/internal/trace"
	"github.com/rustyeddy/fxplan/market"
	"github.com/rustyeddy/fxplan/signal"
	"go.opentelemetry.io/otel/attribute"
)

// ErrDataUnavailable means the candles needed for a snapshot could not be
// obtained or were too short for the indicator periods.
var ErrDataUnavailable = errors.New("market data unavailable")

// CandleSource returns completed candles for a pair, oldest first.
type CandleSource interface {
	Candles(ctx context.Context, pair string, tf market.Timeframe, count int) ([]market.Candle, error)
}

// Params are the indicator periods.
type Params struct {
	EMAPeriod      int     // H4 trend reference
	RSIPeriod      int     // H1 momentum
	ATRPeriod      int     // H1 volatility
	DailyEMAPeriod int     // D1 trend
	CandleCount    int     // candles requested per timeframe
	SidewaysBand   float64 // fraction of the daily EMA treated as sideways
}

func DefaultParams() Params {
	return Params{
		EMAPeriod:      50,
		RSIPeriod:      14,
		ATRPeriod:      14,
		DailyEMAPeriod: 50,
		CandleCount:    120,
		SidewaysBand:   0.001,
	}
}

// Analyzer computes snapshots from a candle source.
type Analyzer struct {
	src    CandleSource
	params Params
	cache  *cache.Cache
	log    *slog.Logger
}

type Option func(*Analyzer)

// WithCacheTTL keeps downloaded candles for ttl. Zero disables the cache.
func WithCacheTTL(ttl time.Duration) Option {
	return func(a *Analyzer) {
		if ttl <= 0 {
			a.cache = nil
			return
		}
		a.cache = cache.New(ttl, 2*ttl)
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(a *Analyzer) { a.log = l }
}

func New(src CandleSource, p Params, opts ...Option) *Analyzer {
	a := &Analyzer{src: src, params: p, log: slog.Default()}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Snapshot builds the evaluator input for pair. The operator flags of prev
// (key level, market structure) are carried over since no indicator
// derives them. A failed daily download leaves the daily trend unchecked.
func (a *Analyzer) Snapshot(ctx context.Context, pair string, prev signal.Snapshot) (snap signal.Snapshot, err error) {
	pair = market.NormalizePair(pair)
	ctx, span := trace.StartSpan(ctx, "analysis.snapshot", attribute.String("pair", pair))
	defer func() { trace.End(span, err) }()

	p := a.params
	h1, err := a.candles(ctx, pair, market.H1)
	if err != nil {
		return signal.Snapshot{}, err
	}
	h4, err := a.candles(ctx, pair, market.H4)
	if err != nil {
		return signal.Snapshot{}, err
	}

	snap = signal.Snapshot{
		NearKeyLevel:      prev.NearKeyLevel,
		MarketStructureOK: prev.MarketStructureOK,
	}
	if len(h1) == 0 {
		return signal.Snapshot{}, fmt.Errorf("%s H1: no candles: %w", pair, ErrDataUnavailable)
	}
	snap.CurrentPrice = h1[len(h1)-1].Close

	if snap.EMAReference, err = indicators.EMA(h4, p.EMAPeriod); err != nil {
		return signal.Snapshot{}, fmt.Errorf("%s H4 ema: %w: %w", pair, ErrDataUnavailable, err)
	}
	if snap.RSI, err = indicators.RSI(h1, p.RSIPeriod); err != nil {
		return signal.Snapshot{}, fmt.Errorf("%s H1 rsi: %w: %w", pair, ErrDataUnavailable, err)
	}
	if snap.RawATR, err = indicators.ATR(h1, p.ATRPeriod); err != nil {
		return signal.Snapshot{}, fmt.Errorf("%s H1 atr: %w: %w", pair, ErrDataUnavailable, err)
	}
	snap.BullishCandle = indicators.BullishReversal(h1)
	snap.BearishCandle = indicators.BearishReversal(h1)
	snap.DailyTrend = a.dailyTrend(ctx, pair)

	snap, err = snap.Sanitize()
	if err != nil {
		return signal.Snapshot{}, fmt.Errorf("%s: %w: %w", pair, ErrDataUnavailable, err)
	}
	a.log.Debug("snapshot computed", "pair", pair, "price", snap.CurrentPrice,
		"ema", snap.EMAReference, "rsi", snap.RSI, "atr", snap.RawATR, "daily", snap.DailyTrend.String())
	return snap, nil
}

func (a *Analyzer) dailyTrend(ctx context.Context, pair string) signal.Trend {
	d1, err := a.candles(ctx, pair, market.D1)
	if err != nil {
		a.log.Warn("daily candles unavailable", "pair", pair, "err", err)
		return signal.Unchecked
	}
	bias, _, err := indicators.EMABias(d1, a.params.DailyEMAPeriod, a.params.SidewaysBand)
	if err != nil {
		a.log.Warn("daily trend not computed", "pair", pair, "err", err)
		return signal.Unchecked
	}
	switch bias {
	case indicators.Above:
		return signal.Uptrend
	case indicators.Below:
		return signal.Downtrend
	}
	return signal.Sideways
}

// Invalidate drops cached candles for pair.
func (a *Analyzer) Invalidate(pair string) {
	if a.cache == nil {
		return
	}
	pair = market.NormalizePair(pair)
	for _, tf := range []market.Timeframe{market.H1, market.H4, market.D1} {
		a.cache.Delete(a.key(pair, tf))
	}
}

func (a *Analyzer) candles(ctx context.Context, pair string, tf market.Timeframe) ([]market.Candle, error) {
	key := a.key(pair, tf)
	if a.cache != nil {
		if v, ok := a.cache.Get(key); ok {
			return v.([]market.Candle), nil
		}
	}

	ctx, span := trace.StartSpan(ctx, "analysis.candles",
		attribute.String("pair", pair), attribute.String("timeframe", string(tf)))
	cs, err := a.src.Candles(ctx, pair, tf, a.params.CandleCount)
	trace.End(span, err)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w: %w", pair, tf, ErrDataUnavailable, err)
	}
	a.log.Debug("candles fetched", "pair", pair, "timeframe", tf, "count", len(cs))
	if a.cache != nil {
		a.cache.SetDefault(key, cs)
	}
	return cs, nil
}

func (a *Analyzer) key(pair string, tf market.Timeframe) string {
	return fmt.Sprintf("%s|%s|%d", pair, tf, a.params.CandleCount)
}
