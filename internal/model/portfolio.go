package model

import "time"

// HistoryPoint is one portfolio valuation sample, kept for a trailing 24 hours.
type HistoryPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

// PortfolioSnapshot is a point-in-time copy of balances and valuation.
type PortfolioSnapshot struct {
	Balances   map[string]float64 `json:"balances"`
	TotalValue float64            `json:"total_value"`
	History    []HistoryPoint     `json:"history"`
	Timestamp  time.Time          `json:"timestamp"`
}
