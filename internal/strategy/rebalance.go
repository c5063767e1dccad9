package strategy

import (
	"fmt"

	"CoinPilot/internal/model"
)

// DefaultTargetAllocation is the flat per-pair share of portfolio value.
// Deliberately not normalized across pairs.
const DefaultTargetAllocation = 0.10

// Rebalancer proposes corrective trades whenever a holding drifts outside
// the dead-band around its target allocation.
type Rebalancer struct {
	TargetAllocation float64
	Threshold        float64
	MinTradeSize     float64
}

// Action is one corrective trade proposed by the rebalancer.
type Action struct {
	Pair   string
	Side   model.Side
	Volume float64
}

// Plan evaluates one pair against its target. It returns nil and a
// diagnostic reason when no action fires: inside the dead-band, below the
// minimum trade size, or out of funds. Buy costs are reserved from the
// cycle's shared funds.
func (r Rebalancer) Plan(pair string, held, price, portfolioValue float64, funds *Funds) (*Action, string) {
	if price <= 0 {
		return nil, "no valid price"
	}
	currentValue := held * price
	targetValue := portfolioValue * r.TargetAllocation

	switch {
	case currentValue > targetValue*(1+r.Threshold):
		volume := (currentValue - targetValue) / price
		if volume*price < r.MinTradeSize {
			return nil, fmt.Sprintf("sell size %.2f below minimum %.2f", volume*price, r.MinTradeSize)
		}
		return &Action{Pair: pair, Side: model.SideSell, Volume: volume}, ""

	case currentValue < targetValue*(1-r.Threshold):
		if funds.Available() <= r.MinTradeSize {
			return nil, fmt.Sprintf("base balance %.2f at or below minimum trade size", funds.Available())
		}
		volume := (targetValue - currentValue) / price
		if maxAffordable := funds.Available() / price; volume > maxAffordable {
			volume = maxAffordable
		}
		cost := volume * price
		if cost < r.MinTradeSize {
			return nil, fmt.Sprintf("buy size %.2f below minimum %.2f", cost, r.MinTradeSize)
		}
		if !funds.Reserve(cost) {
			return nil, fmt.Sprintf("insufficient base balance for cost %.2f", cost)
		}
		return &Action{Pair: pair, Side: model.SideBuy, Volume: volume}, ""

	default:
		return nil, "inside rebalance dead-band"
	}
}
