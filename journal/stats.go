package journal

import "fmt"

// Stats summarises closed trades.
type Stats struct {
	Trades       int     `json:"trades"`
	Open         int     `json:"open"`
	Closed       int     `json:"closed"`
	Wins         int     `json:"wins"`
	Losses       int     `json:"losses"`
	WinRate      float64 `json:"win_rate"`
	NetPL        float64 `json:"net_pl"`
	NetPips      float64 `json:"net_pips"`
	GrossProfit  float64 `json:"gross_profit"`
	GrossLoss    float64 `json:"gross_loss"`
	ProfitFactor float64 `json:"profit_factor"`
}

// Summarize computes performance over records. WinRate is a percentage.
// ProfitFactor is zero when there are no losing dollars.
func Summarize(records []Record) Stats {
	var s Stats
	s.Trades = len(records)
	for _, r := range records {
		if !r.Closed() {
			s.Open++
			continue
		}
		s.Closed++
		switch r.Outcome {
		case Win:
			s.Wins++
		case Loss:
			s.Losses++
		}
		s.NetPL = addMoney(s.NetPL, r.PLUSD)
		s.NetPips = addMoney(s.NetPips, r.PLPips)
		if r.PLUSD > 0 {
			s.GrossProfit = addMoney(s.GrossProfit, r.PLUSD)
		} else {
			s.GrossLoss = addMoney(s.GrossLoss, -r.PLUSD)
		}
	}
	if s.Closed > 0 {
		s.WinRate = float64(s.Wins) / float64(s.Closed) * 100
	}
	if s.GrossLoss > 0 {
		s.ProfitFactor = s.GrossProfit / s.GrossLoss
	}
	return s
}

// Stats summarises the ledger.
func (l *Ledger) Stats() Stats {
	return Summarize(l.List())
}

func (s Stats) String() string {
	return fmt.Sprintf("closed=%d wins=%d losses=%d win_rate=%.1f%% net=$%.2f pf=%.2f",
		s.Closed, s.Wins, s.Losses, s.WinRate, s.NetPL, s.ProfitFactor)
}
