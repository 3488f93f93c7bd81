package risk

import "github.com/rustyeddy/fxplan/market"

const (
	MinRiskPct = 0.5
	MaxRiskPct = 5.0
)

// Params are the account inputs read from the settings store.
type Params struct {
	AccountBalance float64 `json:"account_balance" yaml:"account_balance"`
	RiskPercentage float64 `json:"risk_percentage" yaml:"risk_percentage"`
}

// DefaultParams matches a freshly initialised settings document.
func DefaultParams() Params {
	return Params{AccountBalance: 1000, RiskPercentage: 1.0}
}

func (p Params) Validate() error {
	if !market.Finite(p.AccountBalance) || p.AccountBalance <= 0 {
		return market.Invalid("account_balance", "must be positive, got %v", p.AccountBalance)
	}
	if err := ValidateRiskPct(p.RiskPercentage); err != nil {
		return err
	}
	return nil
}

// ValidateRiskPct checks the percentage against [MinRiskPct, MaxRiskPct].
func ValidateRiskPct(pct float64) error {
	if !market.Finite(pct) || pct < MinRiskPct || pct > MaxRiskPct {
		return market.Invalid("risk_percentage", "must be between %.1f and %.1f, got %v", MinRiskPct, MaxRiskPct, pct)
	}
	return nil
}
