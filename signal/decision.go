package signal

import (
	"fmt"
	"strings"

	"github.com/rustyeddy/fxplan/market"
)

// Direction is a trade side. None is used for a wait without bias.
type Direction int

const (
	None Direction = iota
	Buy
	Sell
)

func (d Direction) String() string {
	switch d {
	case Buy:
		return "Buy"
	case Sell:
		return "Sell"
	default:
		return "None"
	}
}

// ParseDirection accepts "buy"/"long" and "sell"/"short" in any case.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "buy", "long":
		return Buy, nil
	case "sell", "short":
		return Sell, nil
	}
	return None, market.Invalid("direction", "unknown direction %q", s)
}

func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Direction) UnmarshalText(b []byte) error {
	if string(b) == "None" || len(b) == 0 {
		*d = None
		return nil
	}
	v, err := ParseDirection(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// Sign is +1 for Buy, -1 for Sell and 0 otherwise.
func (d Direction) Sign() float64 {
	switch d {
	case Buy:
		return 1
	case Sell:
		return -1
	}
	return 0
}

// Decision is one of Confirmed, Wait or InsufficientData.
type Decision interface {
	Signal() Direction
	Reason() string
	isDecision()
}

// Confirmed means every enabled condition along Direction passed.
type Confirmed struct {
	Direction Direction
	Rationale string
}

func (c Confirmed) Signal() Direction { return c.Direction }
func (c Confirmed) Reason() string    { return c.Rationale }
func (Confirmed) isDecision()         {}

// Wait means the rule set did not confirm a trade. Missing lists the unmet
// conditions along Bias in checklist order.
type Wait struct {
	Bias     Direction
	Missing  []Condition
	Guidance string
}

func (Wait) Signal() Direction { return None }
func (w Wait) Reason() string  { return w.Guidance }
func (Wait) isDecision()       {}

// InsufficientData means higher timeframe analysis has not been run yet.
// It is never a rejection of a trade.
type InsufficientData struct {
	Missing []string
}

func (InsufficientData) Signal() Direction { return None }
func (d InsufficientData) Reason() string {
	return fmt.Sprintf("insufficient data: awaiting analysis (%s)", strings.Join(d.Missing, ", "))
}
func (InsufficientData) isDecision() {}

// Condition names one checklist entry.
type Condition int

const (
	CondTrend Condition = iota
	CondDailyTrend
	CondRSI
	CondCandle
	CondKeyLevel
	CondStructure
)

func (c Condition) String() string {
	switch c {
	case CondTrend:
		return "h4_trend"
	case CondDailyTrend:
		return "daily_trend"
	case CondRSI:
		return "rsi"
	case CondCandle:
		return "candle"
	case CondKeyLevel:
		return "key_level"
	case CondStructure:
		return "market_structure"
	}
	return "unknown"
}

// Label is the rationale text used when the condition passes for dir.
func (c Condition) Label(dir Direction) string {
	up := dir == Buy
	switch c {
	case CondTrend:
		return pick(up, "H4 Uptrend", "H4 Downtrend")
	case CondDailyTrend:
		return pick(up, "D1 Uptrend", "D1 Downtrend")
	case CondRSI:
		return pick(up, "H1 RSI Pullback", "H1 RSI Rally")
	case CondCandle:
		return pick(up, "Bullish Confirmation Candle", "Bearish Confirmation Candle")
	case CondKeyLevel:
		return pick(up, "Near Key Support", "Near Key Resistance")
	case CondStructure:
		return "Market Structure Confirmed"
	}
	return c.String()
}

// Check is one evaluated condition.
type Check struct {
	Condition Condition
	Passed    bool
}

// Checks are the enabled conditions for one direction, in order.
type Checks []Check

// AllPassed reports whether every check passed.
func (c Checks) AllPassed() bool {
	if len(c) == 0 {
		return false
	}
	for _, ch := range c {
		if !ch.Passed {
			return false
		}
	}
	return true
}

// Unmet returns the failed conditions in order.
func (c Checks) Unmet() []Condition {
	var out []Condition
	for _, ch := range c {
		if !ch.Passed {
			out = append(out, ch.Condition)
		}
	}
	return out
}

// Passed looks up a condition. enabled is false when the rule set skips it.
func (c Checks) Passed(cond Condition) (passed, enabled bool) {
	for _, ch := range c {
		if ch.Condition == cond {
			return ch.Passed, true
		}
	}
	return false, false
}

// Checklist holds both directions.
type Checklist struct {
	Buy  Checks
	Sell Checks
}

const neutralGuidance = "No clear trend: price is trading close to the EMA 50 reference. Wait for a definite direction before planning a trade."

func guidance(bias Direction, c Condition) string {
	up := bias == Buy
	switch c {
	case CondTrend:
		return pick(up,
			"H4 trend does not support buying. Wait for price to hold above the EMA 50 reference.",
			"H4 trend does not support selling. Wait for price to hold below the EMA 50 reference.")
	case CondDailyTrend:
		return pick(up,
			"H4 is in an uptrend but the daily trend does not agree. Wait for D1 to align before buying.",
			"H4 is in a downtrend but the daily trend does not agree. Wait for D1 to align before selling.")
	case CondRSI:
		return pick(up,
			"Uptrend, but price has not pulled back yet. Wait for H1 RSI to drop into the 30-45 zone before looking for a buy.",
			"Downtrend, but price has not rallied yet. Wait for H1 RSI to rise into the 55-70 zone before looking for a sell.")
	case CondCandle:
		return pick(up,
			"Almost there: trend and pullback are in place. Only a bullish confirmation candle at support (hammer, bullish engulfing) is missing.",
			"Almost there: trend and rally are in place. Only a bearish confirmation candle at resistance (shooting star, bearish engulfing) is missing.")
	case CondKeyLevel:
		return pick(up,
			"Setup is valid but price is not near a key support level. Wait for a retest of support.",
			"Setup is valid but price is not near a key resistance level. Wait for a retest of resistance.")
	case CondStructure:
		return pick(up,
			"Market structure does not confirm the uptrend yet (no higher high / higher low). Wait for structure to form.",
			"Market structure does not confirm the downtrend yet (no lower high / lower low). Wait for structure to form.")
	}
	return neutralGuidance
}

func pick(cond bool, a, b string) string {
	if cond {
		return a
	}
	return b
}
