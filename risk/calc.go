package risk

import "math"

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

// RR is the reward to risk ratio implied by three prices.
func RR(entry, stop, takeProfit float64) float64 {
	risk := abs(entry - stop)
	reward := abs(takeProfit - entry)
	if risk == 0 {
		return 0
	}
	return reward / risk
}

// RiskAmount is the account currency put at risk by one trade.
func RiskAmount(balance, riskPct float64) float64 {
	return balance * (riskPct / 100)
}

// PositionSize returns lots such that a stop of stopPips loses riskAmount.
// A non-positive stop or pip value sizes to zero.
func PositionSize(riskAmount, stopPips, pipValuePerLot float64) float64 {
	if stopPips <= 0 || pipValuePerLot <= 0 || riskAmount <= 0 {
		return 0
	}
	return riskAmount / (stopPips * pipValuePerLot)
}

// RoundLots rounds a lot size to the two decimals a broker ticket accepts.
func RoundLots(lots float64) float64 {
	return math.Round(lots*100) / 100
}
