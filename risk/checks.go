package risk

import "fmt"

// MinLots is the smallest ticket most retail brokers accept.
const MinLots = 0.01

type Violation struct {
	Code string
	Msg  string
}

// Review flags plans that the operator should not confirm blindly.
// It never changes the plan.
func Review(p TradePlan) []Violation {
	var out []Violation
	add := func(code, format string, args ...any) {
		out = append(out, Violation{Code: code, Msg: fmt.Sprintf(format, args...)})
	}

	if p.StopLossPips <= 0 {
		add("NO_STOP_DISTANCE", "ATR is zero, stop cannot be placed")
	}
	if p.StopLossPips > 0 && p.RiskAmount > 0 && RoundLots(p.LotSize) < MinLots {
		add("SIZE_BELOW_MIN", "lot size %.4f rounds below %.2f", p.LotSize, MinLots)
	}
	if p.StopLossPips > 0 && p.RiskAmount <= 0 {
		add("NO_RISK_BUDGET", "risk amount %.2f leaves nothing to size", p.RiskAmount)
	}
	return out
}
