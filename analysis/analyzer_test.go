package analysis

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/rustyeddy/fxplan/indicators"
	"github.com/rustyeddy/fxplan/internal/logger"
	"github.com/rustyeddy/fxplan/market"
	"github.com/rustyeddy/fxplan/signal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	mu     sync.Mutex
	series map[market.Timeframe][]market.Candle
	fail   map[market.Timeframe]error
	calls  map[market.Timeframe]int
	pairs  []string
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		series: map[market.Timeframe][]market.Candle{},
		fail:   map[market.Timeframe]error{},
		calls:  map[market.Timeframe]int{},
	}
}

func (f *fakeSource) Candles(ctx context.Context, pair string, tf market.Timeframe, count int) ([]market.Candle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[tf]++
	f.pairs = append(f.pairs, pair)
	if err := f.fail[tf]; err != nil {
		return nil, err
	}
	cs := f.series[tf]
	if len(cs) > count {
		cs = cs[len(cs)-count:]
	}
	return cs, nil
}

// wave builds n candles around base, drifting by step with a small swing.
func wave(n int, base, step float64) []market.Candle {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]market.Candle, n)
	for i := range out {
		mid := base + float64(i)*step + 0.0004*math.Sin(float64(i))
		open := mid - 0.0001
		if i%2 == 0 {
			open = mid + 0.0001
		}
		out[i] = market.Candle{
			Time:  start.Add(time.Duration(i) * time.Hour),
			Open:  open,
			High:  mid + 0.0005,
			Low:   mid - 0.0005,
			Close: mid,
		}
	}
	return out
}

func testParams() Params {
	p := DefaultParams()
	p.CandleCount = 80
	return p
}

func TestSnapshotFromCandles(t *testing.T) {
	t.Parallel()

	src := newFakeSource()
	src.series[market.H1] = wave(80, 1.0850, 0.00002)
	src.series[market.H4] = wave(80, 1.0800, 0.00001)
	src.series[market.D1] = wave(80, 1.0500, 0.001)

	a := New(src, testParams(), WithLogger(logger.Discard()))
	prev := signal.Snapshot{NearKeyLevel: true, MarketStructureOK: true, RSI: 99}
	snap, err := a.Snapshot(context.Background(), "eur_usd", prev)
	require.NoError(t, err)

	h1 := src.series[market.H1]
	assert.Equal(t, h1[len(h1)-1].Close, snap.CurrentPrice)

	ema, _ := indicators.EMA(src.series[market.H4], 50)
	assert.InDelta(t, ema, snap.EMAReference, 1e-12)
	rsi, _ := indicators.RSI(h1, 14)
	assert.InDelta(t, rsi, snap.RSI, 1e-9)
	atr, _ := indicators.ATR(h1, 14)
	assert.InDelta(t, atr, snap.RawATR, 1e-12)

	assert.Equal(t, indicators.BullishReversal(h1), snap.BullishCandle)
	assert.Equal(t, indicators.BearishReversal(h1), snap.BearishCandle)
	assert.Equal(t, signal.Uptrend, snap.DailyTrend)
	assert.True(t, snap.NearKeyLevel)
	assert.True(t, snap.MarketStructureOK)
	assert.Contains(t, src.pairs, "EUR/USD")
}

func TestSnapshotDailyTrend(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		d1   []market.Candle
		fail error
		want signal.Trend
	}{
		{"falling", wave(80, 1.2, -0.001), nil, signal.Downtrend},
		{"flat", wave(80, 1.1, 0), nil, signal.Sideways},
		{"too short", wave(10, 1.1, 0.001), nil, signal.Unchecked},
		{"download failed", nil, errors.New("boom"), signal.Unchecked},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			src := newFakeSource()
			src.series[market.H1] = wave(80, 1.0850, 0)
			src.series[market.H4] = wave(80, 1.0800, 0)
			src.series[market.D1] = tt.d1
			src.fail[market.D1] = tt.fail

			snap, err := New(src, testParams(), WithLogger(logger.Discard())).
				Snapshot(context.Background(), "EUR/USD", signal.Snapshot{})
			require.NoError(t, err)
			assert.Equal(t, tt.want, snap.DailyTrend)
		})
	}
}

func TestSnapshotDataUnavailable(t *testing.T) {
	t.Parallel()

	src := newFakeSource()
	src.series[market.H1] = wave(80, 1.0850, 0)
	src.series[market.H4] = wave(20, 1.0800, 0)
	a := New(src, testParams(), WithLogger(logger.Discard()))

	_, err := a.Snapshot(context.Background(), "EUR/USD", signal.Snapshot{})
	assert.ErrorIs(t, err, ErrDataUnavailable)
	assert.ErrorContains(t, err, "H4 ema")

	src.fail[market.H1] = errors.New("timeout")
	_, err = a.Snapshot(context.Background(), "EUR/USD", signal.Snapshot{})
	assert.ErrorIs(t, err, ErrDataUnavailable)
	assert.ErrorContains(t, err, "timeout")

	empty := newFakeSource()
	_, err = New(empty, testParams(), WithLogger(logger.Discard())).
		Snapshot(context.Background(), "EUR/USD", signal.Snapshot{})
	assert.ErrorIs(t, err, ErrDataUnavailable)
}

func TestCandleCache(t *testing.T) {
	t.Parallel()

	src := newFakeSource()
	src.series[market.H1] = wave(80, 1.0850, 0)
	src.series[market.H4] = wave(80, 1.0800, 0)
	src.series[market.D1] = wave(80, 1.0800, 0)
	a := New(src, testParams(), WithCacheTTL(time.Minute), WithLogger(logger.Discard()))

	ctx := context.Background()
	_, err := a.Snapshot(ctx, "EUR/USD", signal.Snapshot{})
	require.NoError(t, err)
	_, err = a.Snapshot(ctx, "EUR/USD", signal.Snapshot{})
	require.NoError(t, err)
	assert.Equal(t, 1, src.calls[market.H1])
	assert.Equal(t, 1, src.calls[market.D1])

	a.Invalidate("eurusd")
	_, err = a.Snapshot(ctx, "EUR/USD", signal.Snapshot{})
	require.NoError(t, err)
	assert.Equal(t, 2, src.calls[market.H4])

	uncached := New(src, testParams(), WithCacheTTL(0), WithLogger(logger.Discard()))
	_, err = uncached.Snapshot(ctx, "EUR/USD", signal.Snapshot{})
	require.NoError(t, err)
	assert.Equal(t, 3, src.calls[market.H1])
}
