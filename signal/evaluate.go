package signal

import (
	"math"
	"strings"

	"github.com/rustyeddy/fxplan/market"
)

// RSI windows. Buy is (30, 45], sell is [55, 70).
const (
	BuyRSIMin  = 30.0
	BuyRSIMax  = 45.0
	SellRSIMin = 55.0
	SellRSIMax = 70.0
)

// Options selects which higher timeframe checks are part of the rule set.
type Options struct {
	// DailyTrend requires the D1 trend to agree with the H4 trend.
	DailyTrend bool
	// Advanced requires the key level and market structure flags.
	Advanced bool
	// NeutralTolerancePips is the distance from the EMA reference inside
	// which the trend is reported as having no clear bias.
	NeutralTolerancePips float64
}

// TrendOf classifies the H4 trend. Equal prices resolve to Downtrend.
func TrendOf(price, ema float64) Trend {
	if price > ema {
		return Uptrend
	}
	return Downtrend
}

// BuyRSIOK reports 30 < rsi <= 45.
func BuyRSIOK(rsi float64) bool { return rsi > BuyRSIMin && rsi <= BuyRSIMax }

// SellRSIOK reports 55 <= rsi < 70.
func SellRSIOK(rsi float64) bool { return rsi >= SellRSIMin && rsi < SellRSIMax }

// Result is the outcome of one evaluation.
type Result struct {
	Pair      string
	Trend     Trend
	Checklist Checklist
	Decision  Decision
}

// Evaluate runs the checklist over a fresh snapshot. It keeps no state
// between calls.
func Evaluate(pair string, s Snapshot, opt Options) Result {
	pair = market.NormalizePair(pair)
	res := Result{Pair: pair, Trend: TrendOf(s.CurrentPrice, s.EMAReference)}

	if missing := missingAnalysis(s); len(missing) > 0 {
		res.Decision = InsufficientData{Missing: missing}
		return res
	}

	rsi := math.Min(math.Max(s.RSI, 0), 100)
	res.Checklist = Checklist{
		Buy:  buildChecks(Buy, res.Trend, rsi, s, opt),
		Sell: buildChecks(Sell, res.Trend, rsi, s, opt),
	}

	switch {
	case res.Checklist.Buy.AllPassed():
		res.Decision = Confirmed{Direction: Buy, Rationale: res.Checklist.Buy.rationale(Buy)}
		return res
	case res.Checklist.Sell.AllPassed():
		res.Decision = Confirmed{Direction: Sell, Rationale: res.Checklist.Sell.rationale(Sell)}
		return res
	}

	res.Decision = wait(pair, res.Trend, s, opt, res.Checklist)
	return res
}

// missingAnalysis lists the inputs an operator still has to analyse.
func missingAnalysis(s Snapshot) []string {
	var missing []string
	if s.CurrentPrice <= 0 || s.EMAReference <= 0 {
		missing = append(missing, "h4_trend")
	}
	if s.DailyTrend == Unchecked {
		missing = append(missing, "daily_trend")
	}
	return missing
}

func buildChecks(dir Direction, h4 Trend, rsi float64, s Snapshot, opt Options) Checks {
	want := Uptrend
	rsiOK := BuyRSIOK(rsi)
	candleOK := s.BullishCandle
	if dir == Sell {
		want = Downtrend
		rsiOK = SellRSIOK(rsi)
		candleOK = s.BearishCandle
	}

	checks := Checks{{Condition: CondTrend, Passed: h4 == want}}
	if opt.DailyTrend {
		checks = append(checks, Check{Condition: CondDailyTrend, Passed: s.DailyTrend == want})
	}
	checks = append(checks,
		Check{Condition: CondRSI, Passed: rsiOK},
		Check{Condition: CondCandle, Passed: candleOK},
	)
	if opt.Advanced {
		checks = append(checks,
			Check{Condition: CondKeyLevel, Passed: s.NearKeyLevel},
			Check{Condition: CondStructure, Passed: s.MarketStructureOK},
		)
	}
	return checks
}

func wait(pair string, h4 Trend, s Snapshot, opt Options, cl Checklist) Wait {
	distance := math.Abs(market.ToPips(pair, s.CurrentPrice-s.EMAReference))
	if distance <= opt.NeutralTolerancePips {
		return Wait{Bias: None, Guidance: neutralGuidance}
	}

	bias := Buy
	checks := cl.Buy
	if h4 != Uptrend {
		bias = Sell
		checks = cl.Sell
	}
	missing := checks.Unmet()
	w := Wait{Bias: bias, Missing: missing}
	if len(missing) > 0 {
		w.Guidance = guidance(bias, missing[0])
	}
	return w
}

func (c Checks) rationale(dir Direction) string {
	parts := make([]string, 0, len(c))
	for _, ch := range c {
		parts = append(parts, ch.Condition.Label(dir))
	}
	return strings.Join(parts, ", ")
}
