package indicators

import (
	"testing"

	"github.com/rustyeddy/fxplan/market"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func closes(vals ...float64) []market.Candle {
	out := make([]market.Candle, len(vals))
	for i, v := range vals {
		out[i] = market.Candle{Open: v, High: v, Low: v, Close: v}
	}
	return out
}

func createTestCandles() []market.Candle {
	return []market.Candle{
		{Open: 100, High: 105, Low: 99, Close: 102},
		{Open: 102, High: 107, Low: 101, Close: 105},
		{Open: 105, High: 108, Low: 104, Close: 106},
		{Open: 106, High: 110, Low: 105, Close: 108},
		{Open: 108, High: 112, Low: 107, Close: 110},
		{Open: 110, High: 113, Low: 109, Close: 111},
		{Open: 111, High: 115, Low: 110, Close: 113},
		{Open: 113, High: 116, Low: 112, Close: 114},
		{Open: 114, High: 118, Low: 113, Close: 116},
		{Open: 116, High: 120, Low: 115, Close: 118},
	}
}

func TestMA(t *testing.T) {
	candles := createTestCandles()

	ma, err := MA(candles, 5)
	assert.NoError(t, err)
	// Last 5 closes: 111,113,114,116,118 => 572/5 = 114.4
	assert.InDelta(t, 114.4, ma, 0.001)
}

func TestEMA(t *testing.T) {
	candles := createTestCandles()

	ema, err := EMA(candles, 5)
	require.NoError(t, err)
	// seeded with SMA(102..110)=106.2, alpha=1/3
	assert.InDelta(t, 114.454, ema, 0.001)
}

func TestIndicatorErrors(t *testing.T) {
	t.Parallel()

	candles := createTestCandles()

	tests := []struct {
		name string
		fn   func() (float64, error)
	}{
		{"ma zero period", func() (float64, error) { return MA(candles, 0) }},
		{"ma too short", func() (float64, error) { return MA(candles, 11) }},
		{"ema zero period", func() (float64, error) { return EMA(candles, 0) }},
		{"ema too short", func() (float64, error) { return EMA(candles, 11) }},
		{"rsi zero period", func() (float64, error) { return RSI(candles, 0) }},
		{"rsi too short", func() (float64, error) { return RSI(candles, 10) }},
		{"atr zero period", func() (float64, error) { return ATR(candles, 0) }},
		{"atr too short", func() (float64, error) { return ATR(candles, 10) }},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := tt.fn()
			assert.Error(t, err)
		})
	}
}

func TestRSI(t *testing.T) {
	t.Parallel()

	t.Run("only gains", func(t *testing.T) {
		v, err := RSI(createTestCandles(), 5)
		require.NoError(t, err)
		assert.Equal(t, 100.0, v)
	})

	t.Run("wilder smoothing", func(t *testing.T) {
		// changes +1,-1,+1 with period 2: avgGain 0.75, avgLoss 0.25 => RS 3
		v, err := RSI(closes(1, 2, 1, 2), 2)
		require.NoError(t, err)
		assert.InDelta(t, 75.0, v, 1e-9)
	})

	t.Run("bounded", func(t *testing.T) {
		v, err := RSI(closes(5, 4, 3, 2, 1), 3)
		require.NoError(t, err)
		assert.InDelta(t, 0.0, v, 1e-9)
	})
}

func TestATRDetailed(t *testing.T) {
	candles := []market.Candle{
		{High: 10, Low: 8, Close: 9},
		{High: 11, Low: 9, Close: 10},
		{High: 12, Low: 10, Close: 11},
		{High: 11, Low: 9, Close: 10},
		{High: 12, Low: 10, Close: 11},
		{High: 13, Low: 11, Close: 12},
	}
	atr, err := ATR(candles, 3)
	assert.NoError(t, err)
	assert.InDelta(t, 2.0, atr, 1e-9)
}

func TestTrueRange(t *testing.T) {
	current := market.Candle{High: 110, Low: 100, Close: 105}
	previous := market.Candle{Close: 104}
	assert.Equal(t, 10.0, trueRange(current, previous))

	gapUp := market.Candle{High: 120, Low: 115, Close: 118}
	assert.Equal(t, 16.0, trueRange(gapUp, previous))
}

func TestReversalPatterns(t *testing.T) {
	t.Parallel()

	bearish := market.Candle{Open: 1.1000, High: 1.1005, Low: 1.0895, Close: 1.0900}
	engulfUp := market.Candle{Open: 1.0850, High: 1.1060, Low: 1.0840, Close: 1.1050}
	hammer := market.Candle{Open: 1.0990, High: 1.1002, Low: 1.0950, Close: 1.1000}
	star := market.Candle{Open: 1.1000, High: 1.1040, Low: 1.0988, Close: 1.0990}
	plain := market.Candle{Open: 1.0000, High: 1.0110, Low: 0.9990, Close: 1.0100}

	assert.True(t, BullishReversal([]market.Candle{bearish, engulfUp}))
	assert.True(t, BullishReversal([]market.Candle{hammer}))
	assert.False(t, BearishReversal([]market.Candle{hammer}))

	assert.True(t, BearishReversal([]market.Candle{star}))
	assert.False(t, BullishReversal([]market.Candle{star}))

	engulfDown := market.Candle{Open: 1.1060, High: 1.1070, Low: 1.0840, Close: 1.0850}
	bullish := market.Candle{Open: 1.0900, High: 1.1005, Low: 1.0895, Close: 1.1000}
	assert.True(t, BearishReversal([]market.Candle{bullish, engulfDown}))

	assert.False(t, BullishReversal([]market.Candle{plain}))
	assert.False(t, BearishReversal([]market.Candle{plain}))
	assert.False(t, BullishReversal(nil))
	assert.False(t, BearishReversal(nil))
}

func TestEMABias(t *testing.T) {
	t.Parallel()

	rising := closes(1, 2, 3, 4, 5, 6, 7, 8, 9, 10)
	b, ema, err := EMABias(rising, 5, 0)
	require.NoError(t, err)
	assert.Equal(t, Above, b)
	assert.Less(t, ema, 10.0)

	falling := closes(10, 9, 8, 7, 6, 5, 4, 3, 2, 1)
	b, _, err = EMABias(falling, 5, 0)
	require.NoError(t, err)
	assert.Equal(t, Below, b)

	flat := closes(5, 5, 5, 5, 5, 5.001)
	b, _, err = EMABias(flat, 5, 0.01)
	require.NoError(t, err)
	assert.Equal(t, Flat, b)
	assert.Equal(t, "flat", b.String())

	_, _, err = EMABias(flat, 50, 0)
	assert.Error(t, err)
	_, _, err = EMABias(flat, 5, -1)
	assert.Error(t, err)
}
