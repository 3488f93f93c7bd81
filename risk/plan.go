// Package risk turns a confirmed signal into a sized trade plan.
package risk

import (
	"fmt"

	"github.com/rustyeddy/fxplan/market"
	"github.com/rustyeddy/fxplan/signal"
)

const (
	// StopATRMultiplier scales ATR pips into the stop distance.
	StopATRMultiplier = 2.0
	// RewardRiskRatio scales the stop distance into the target distance.
	RewardRiskRatio = 1.5
)

// PlanInput is everything the planner needs. Direction must be Buy or Sell.
type PlanInput struct {
	Pair      string
	Direction signal.Direction
	Entry     float64
	RawATR    float64
	Params    Params
	Reason    string
}

// TradePlan is an unconfirmed, sized trade.
type TradePlan struct {
	Pair           string           `json:"pair"`
	Direction      signal.Direction `json:"direction"`
	EntryPrice     float64          `json:"entry_price"`
	StopLossPrice  float64          `json:"stop_loss_price"`
	TakeProfit     float64          `json:"take_profit_price"`
	ATRPips        float64          `json:"atr_pips"`
	StopLossPips   float64          `json:"stop_loss_pips"`
	TakeProfitPips float64          `json:"take_profit_pips"`
	LotSize        float64          `json:"lot_size"`
	RiskAmount     float64          `json:"risk_amount"`
	Reason         string           `json:"reason"`
}

// Plan computes stop, target and size. It has no side effects.
func Plan(in PlanInput) (TradePlan, error) {
	if in.Direction != signal.Buy && in.Direction != signal.Sell {
		return TradePlan{}, market.Invalid("direction", "plan needs buy or sell, got %s", in.Direction)
	}
	if !market.Finite(in.Entry) || in.Entry <= 0 {
		return TradePlan{}, market.Invalid("entry_price", "must be positive, got %v", in.Entry)
	}
	if err := ValidateRiskPct(in.Params.RiskPercentage); err != nil {
		return TradePlan{}, err
	}

	pair := market.NormalizePair(in.Pair)
	mult := market.PipMultiplier(pair)

	atr := in.RawATR
	if !market.Finite(atr) || atr < 0 {
		atr = 0
	}
	atrPips := atr * mult
	stopPips := atrPips * StopATRMultiplier
	tpPips := stopPips * RewardRiskRatio

	sign := in.Direction.Sign()
	p := TradePlan{
		Pair:           pair,
		Direction:      in.Direction,
		EntryPrice:     in.Entry,
		StopLossPrice:  in.Entry - sign*stopPips/mult,
		TakeProfit:     in.Entry + sign*tpPips/mult,
		ATRPips:        atrPips,
		StopLossPips:   stopPips,
		TakeProfitPips: tpPips,
		Reason:         in.Reason,
	}
	// no stop distance or no budget sizes to nothing
	if amount := RiskAmount(in.Params.AccountBalance, in.Params.RiskPercentage); stopPips > 0 && amount > 0 {
		p.RiskAmount = amount
		p.LotSize = PositionSize(amount, stopPips, market.PipValuePerLot(pair))
	}
	return p, nil
}

// FromResult plans the trade for a Confirmed evaluation.
func FromResult(res signal.Result, snap signal.Snapshot, params Params) (TradePlan, error) {
	c, ok := res.Decision.(signal.Confirmed)
	if !ok {
		return TradePlan{}, fmt.Errorf("plan %s: no confirmed signal (%s)", res.Pair, res.Decision.Reason())
	}
	return Plan(PlanInput{
		Pair:      res.Pair,
		Direction: c.Direction,
		Entry:     snap.CurrentPrice,
		RawATR:    snap.RawATR,
		Params:    params,
		Reason:    c.Rationale,
	})
}

// RR returns the plan's reward to risk ratio.
func (p TradePlan) RR() float64 {
	return RR(p.EntryPrice, p.StopLossPrice, p.TakeProfit)
}

func (p TradePlan) String() string {
	return fmt.Sprintf("%s %s entry=%.5f sl=%.5f (%.1f pips) tp=%.5f (%.1f pips) lots=%.4f risk=$%.2f",
		p.Direction, p.Pair, p.EntryPrice, p.StopLossPrice, p.StopLossPips,
		p.TakeProfit, p.TakeProfitPips, p.LotSize, p.RiskAmount)
}
