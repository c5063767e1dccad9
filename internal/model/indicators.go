package model

// RSIClass is the informational classification of an RSI reading.
type RSIClass string

const (
	RSIOversold   RSIClass = "Oversold"
	RSIOverbought RSIClass = "Overbought"
	RSINeutral    RSIClass = "Neutral"
)

// IndicatorSet holds all technical indicators computed for the latest bar.
type IndicatorSet struct {
	ShortMA    float64
	LongMA     float64
	RSI        float64
	MACD       float64
	MACDSignal float64
	Histogram  float64
}

// ClassifyRSI maps an RSI value to its classification band.
func ClassifyRSI(rsi float64) RSIClass {
	switch {
	case rsi < 30:
		return RSIOversold
	case rsi > 70:
		return RSIOverbought
	default:
		return RSINeutral
	}
}
