package strategy

import "fmt"

// RiskSizer bounds opportunistic trade volume by a risk-per-trade cap on the
// asset's current holding value.
type RiskSizer struct {
	MaxRiskPerTrade float64
	MinTradeSize    float64
}

// SizeBuy returns the buy volume for an asset with holding value
// `holdingValue` at `price`, reserving the cost from the cycle funds.
// A zero volume and a diagnostic reason mean the candidate was dropped;
// dropped candidates are never retried.
func (r RiskSizer) SizeBuy(holdingValue, price float64, funds *Funds) (float64, string) {
	if price <= 0 {
		return 0, "no valid price"
	}
	riskAmount := holdingValue * r.MaxRiskPerTrade
	volume := riskAmount / price
	cost := volume * price
	if cost < r.MinTradeSize {
		return 0, fmt.Sprintf("trade size %.2f below minimum %.2f", cost, r.MinTradeSize)
	}
	if !funds.Reserve(cost) {
		return 0, fmt.Sprintf("insufficient base balance for cost %.2f (available %.2f)", cost, funds.Available())
	}
	return volume, ""
}

// SizeSell returns the sell volume, capped at the held amount.
func (r RiskSizer) SizeSell(holdingValue, price, held float64) (float64, string) {
	if price <= 0 {
		return 0, "no valid price"
	}
	riskAmount := holdingValue * r.MaxRiskPerTrade
	volume := riskAmount / price
	if volume > held {
		volume = held
	}
	if volume*price < r.MinTradeSize {
		return 0, fmt.Sprintf("trade size %.2f below minimum %.2f", volume*price, r.MinTradeSize)
	}
	return volume, ""
}
