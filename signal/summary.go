package signal

import (
	"fmt"

	"github.com/rustyeddy/fxplan/market"
)

// Summary renders the situation overview shown above a trade plan.
func Summary(pair string, s Snapshot) string {
	pair = market.NormalizePair(pair)
	trend := TrendOf(s.CurrentPrice, s.EMAReference)
	side := "below"
	if trend == Uptrend {
		side = "above"
	}
	atrPips := market.ToPips(pair, s.RawATR)

	text := fmt.Sprintf("%s is trading at %.5f, %s the H4 EMA 50 at %.5f, which points to an overall %s.\n",
		pair, s.CurrentPrice, side, s.EMAReference, trend)
	text += fmt.Sprintf("Short term momentum (H1) has RSI at %.1f and average volatility (ATR) is %.1f pips.",
		s.RSI, atrPips)
	if s.DailyTrend != Unchecked {
		text += fmt.Sprintf("\nThe daily trend is %s.", s.DailyTrend)
	}
	return text
}
