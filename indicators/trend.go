package indicators

import (
	"fmt"

	"github.com/rustyeddy/fxplan/market"
)

// Bias is the side of a moving average the market closes on.
type Bias int

const (
	Flat Bias = iota
	Above
	Below
)

func (b Bias) String() string {
	switch b {
	case Above:
		return "above"
	case Below:
		return "below"
	}
	return "flat"
}

// EMABias compares the last close with the EMA of period. Closes within
// band (a fraction of the EMA, e.g. 0.001 for 0.1%) count as Flat.
func EMABias(candles []market.Candle, period int, band float64) (Bias, float64, error) {
	if band < 0 {
		return Flat, 0, fmt.Errorf("band must not be negative, got %v", band)
	}
	ema, err := EMA(candles, period)
	if err != nil {
		return Flat, 0, err
	}
	last := candles[len(candles)-1].Close
	switch {
	case last > ema*(1+band):
		return Above, ema, nil
	case last < ema*(1-band):
		return Below, ema, nil
	}
	return Flat, ema, nil
}
