// Package signal evaluates an indicator snapshot for one currency pair
// against the multi-timeframe checklist and returns a tagged decision.
package signal

import (
	"fmt"
	"strings"

	"github.com/rustyeddy/fxplan/market"
)

// Trend is a timeframe trend classification.
type Trend int

const (
	Unchecked Trend = iota
	Uptrend
	Downtrend
	Sideways
)

func (t Trend) String() string {
	switch t {
	case Uptrend:
		return "uptrend"
	case Downtrend:
		return "downtrend"
	case Sideways:
		return "sideways"
	default:
		return "unchecked"
	}
}

// ParseTrend accepts the lower case names produced by String. The empty
// string parses as Unchecked.
func ParseTrend(s string) (Trend, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "unchecked":
		return Unchecked, nil
	case "uptrend", "up":
		return Uptrend, nil
	case "downtrend", "down":
		return Downtrend, nil
	case "sideways", "flat":
		return Sideways, nil
	}
	return Unchecked, market.Invalid("daily_trend", "unknown trend %q", s)
}

func (t Trend) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *Trend) UnmarshalText(b []byte) error {
	v, err := ParseTrend(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Snapshot holds the indicator readings for one pair. It is replaced
// wholesale on every refresh.
type Snapshot struct {
	CurrentPrice      float64 `json:"current_price" yaml:"current_price"`
	EMAReference      float64 `json:"ema_50_price" yaml:"ema_50_price"`
	RSI               float64 `json:"rsi_14_value" yaml:"rsi_14_value"`
	RawATR            float64 `json:"raw_atr_value" yaml:"raw_atr_value"`
	BullishCandle     bool    `json:"is_bullish_candle" yaml:"is_bullish_candle"`
	BearishCandle     bool    `json:"is_bearish_candle" yaml:"is_bearish_candle"`
	DailyTrend        Trend   `json:"daily_trend" yaml:"daily_trend"`
	NearKeyLevel      bool    `json:"near_key_level" yaml:"near_key_level"`
	MarketStructureOK bool    `json:"market_structure_ok" yaml:"market_structure_ok"`
}

// Validate rejects values that cannot be evaluated at all.
func (s Snapshot) Validate() error {
	fields := []struct {
		name string
		v    float64
	}{
		{"current_price", s.CurrentPrice},
		{"ema_reference_price", s.EMAReference},
		{"rsi_value", s.RSI},
		{"raw_atr_value", s.RawATR},
	}
	for _, f := range fields {
		if !market.Finite(f.v) {
			return market.Invalid(f.name, "must be finite, got %v", f.v)
		}
	}
	if s.CurrentPrice < 0 {
		return market.Invalid("current_price", "must not be negative, got %v", s.CurrentPrice)
	}
	if s.EMAReference < 0 {
		return market.Invalid("ema_reference_price", "must not be negative, got %v", s.EMAReference)
	}
	return nil
}

// Sanitize validates the snapshot and clamps RSI into [0,100]. A negative
// ATR is kept; the planner treats it as a degenerate stop.
func (s Snapshot) Sanitize() (Snapshot, error) {
	if err := s.Validate(); err != nil {
		return s, err
	}
	if s.RSI < 0 {
		s.RSI = 0
	}
	if s.RSI > 100 {
		s.RSI = 100
	}
	return s, nil
}

func (s Snapshot) String() string {
	return fmt.Sprintf("price=%.5f ema=%.5f rsi=%.1f atr=%.5f bull=%t bear=%t d1=%s level=%t structure=%t",
		s.CurrentPrice, s.EMAReference, s.RSI, s.RawATR, s.BullishCandle, s.BearishCandle,
		s.DailyTrend, s.NearKeyLevel, s.MarketStructureOK)
}
