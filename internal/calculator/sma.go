package calculator

import (
	"errors"

	"CoinPilot/internal/model"
)

// Trailing window sizes required by the indicator set.
const (
	ShortMAPeriod = 20
	LongMAPeriod  = 50
	RSIPeriod     = 14
	MACDFast      = 12
	MACDSlow      = 26
	MACDSignal    = 9
)

// ErrInsufficientHistory is returned when a price series is shorter than the
// largest required indicator window. No indicator is ever computed on a
// partial window.
var ErrInsufficientHistory = errors.New("not enough price history for indicator computation")

// SMA computes the simple moving average of the trailing `period` prices.
func SMA(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(prices) < period {
		return 0, ErrInsufficientHistory
	}
	sum := 0.0
	for i := len(prices) - period; i < len(prices); i++ {
		sum += prices[i]
	}
	return sum / float64(period), nil
}

// Closes extracts closing prices from a bar series.
func Closes(bars []model.PriceBar) []float64 {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	return closes
}

// Compute derives the full indicator set for the most recent bar of a
// chronologically ordered series. Requires at least LongMAPeriod bars.
func Compute(bars []model.PriceBar) (*model.IndicatorSet, error) {
	if len(bars) < LongMAPeriod {
		return nil, ErrInsufficientHistory
	}
	closes := Closes(bars)

	shortMA, err := SMA(closes, ShortMAPeriod)
	if err != nil {
		return nil, err
	}
	longMA, err := SMA(closes, LongMAPeriod)
	if err != nil {
		return nil, err
	}
	rsi, err := RSI(closes, RSIPeriod)
	if err != nil {
		return nil, err
	}
	macd, signal, hist, err := MACD(closes, MACDFast, MACDSlow, MACDSignal)
	if err != nil {
		return nil, err
	}

	return &model.IndicatorSet{
		ShortMA:    shortMA,
		LongMA:     longMA,
		RSI:        rsi,
		MACD:       macd,
		MACDSignal: signal,
		Histogram:  hist,
	}, nil
}
