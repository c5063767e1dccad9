package calculator

import "errors"

// RSI computes the Relative Strength Index over the trailing `period` window
// of close-to-close deltas. Gains and losses are each averaged as the mean of
// the positive/negative part over the window (plain rolling mean, not Wilder
// smoothing). When the average loss is exactly zero the result is clamped to
// 100 rather than propagating an undefined ratio.
func RSI(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(prices) < period+1 {
		return 0, ErrInsufficientHistory
	}

	var avgGain, avgLoss float64
	for i := len(prices) - period; i < len(prices); i++ {
		change := prices[i] - prices[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss -= change
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	if avgLoss == 0 {
		return 100.0, nil
	}
	rs := avgGain / avgLoss
	return 100.0 - 100.0/(1.0+rs), nil
}
