package calculator

import "errors"

// EMASeries computes the exponential moving average of the whole series with
// alpha = 2/(span+1), seeded with the first value.
func EMASeries(prices []float64, span int) ([]float64, error) {
	if span <= 0 {
		return nil, errors.New("span must be positive")
	}
	if len(prices) == 0 {
		return nil, ErrInsufficientHistory
	}
	alpha := 2.0 / (float64(span) + 1.0)
	out := make([]float64, len(prices))
	out[0] = prices[0]
	for i := 1; i < len(prices); i++ {
		out[i] = alpha*prices[i] + (1-alpha)*out[i-1]
	}
	return out, nil
}

// MACD computes the MACD line, signal line, and histogram for the most recent
// price. Requires at least slow+signal bars so the signal line has a full
// window behind it. The histogram is always line minus signal, exactly.
func MACD(prices []float64, fast, slow, signal int) (line, signalLine, histogram float64, err error) {
	if fast <= 0 || slow <= 0 || signal <= 0 {
		return 0, 0, 0, errors.New("spans must be positive")
	}
	if len(prices) < slow+signal {
		return 0, 0, 0, ErrInsufficientHistory
	}

	fastEMA, err := EMASeries(prices, fast)
	if err != nil {
		return 0, 0, 0, err
	}
	slowEMA, err := EMASeries(prices, slow)
	if err != nil {
		return 0, 0, 0, err
	}

	macdSeries := make([]float64, len(prices))
	for i := range prices {
		macdSeries[i] = fastEMA[i] - slowEMA[i]
	}
	signalSeries, err := EMASeries(macdSeries, signal)
	if err != nil {
		return 0, 0, 0, err
	}

	last := len(prices) - 1
	line = macdSeries[last]
	signalLine = signalSeries[last]
	return line, signalLine, line - signalLine, nil
}
