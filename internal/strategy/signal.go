// Package strategy derives trade decisions from indicators and sentiment and
// sizes them against per-cycle risk and rebalancing constraints.
package strategy

import "CoinPilot/internal/model"

// Evaluate combines indicators and a sentiment score into a directional
// decision. Pure function; Buy takes priority when both conditions hold.
func Evaluate(ind *model.IndicatorSet, sentiment, threshold float64) model.Signal {
	buy := (ind.ShortMA > ind.LongMA && ind.MACD > ind.MACDSignal && ind.RSI < 50) ||
		sentiment > threshold
	sell := (ind.ShortMA < ind.LongMA && ind.MACD < ind.MACDSignal && ind.RSI > 50) ||
		sentiment < -threshold

	switch {
	case buy:
		return model.SignalBuy
	case sell:
		return model.SignalSell
	default:
		return model.SignalHold
	}
}
