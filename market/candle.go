package market

import "time"

// Candle represents OHLC (Open, High, Low, Close) candlestick data
type Candle struct {
	Open  float64
	High  float64
	Low   float64
	Close float64
	time.Time
	Volume float64
}

// Bullish reports a close above the open.
func (c Candle) Bullish() bool { return c.Close > c.Open }

// Bearish reports a close below the open.
func (c Candle) Bearish() bool { return c.Close < c.Open }

// Body is the absolute open/close distance.
func (c Candle) Body() float64 {
	if c.Close > c.Open {
		return c.Close - c.Open
	}
	return c.Open - c.Close
}

// Range is the high/low distance.
func (c Candle) Range() float64 { return c.High - c.Low }

// Closes extracts the close series.
func Closes(candles []Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Close
	}
	return out
}

// Timeframe names a candle granularity used by the analysis.
type Timeframe string

const (
	H1 Timeframe = "H1"
	H4 Timeframe = "H4"
	D1 Timeframe = "D1"
)
