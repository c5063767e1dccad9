package model

import (
	"fmt"
	"time"
)

// Settings holds the tunable engine parameters shared between the control
// surface and the trading loop. The loop reads an atomic snapshot of these
// once per cycle.
type Settings struct {
	CheckInterval       time.Duration `json:"check_interval"`
	MaxRiskPerTrade     float64       `json:"max_risk_per_trade"`
	SentimentThreshold  float64       `json:"sentiment_threshold"`
	RebalanceThreshold  float64       `json:"rebalance_threshold"`
	VolatilityThreshold float64       `json:"volatility_threshold"`
	MinTradeSize        float64       `json:"min_trade_size"`
}

// DefaultSettings mirrors the documented engine defaults.
func DefaultSettings() Settings {
	return Settings{
		CheckInterval:       5 * time.Minute,
		MaxRiskPerTrade:     0.02,
		SentimentThreshold:  0.2,
		RebalanceThreshold:  0.1,
		VolatilityThreshold: 0.02,
		MinTradeSize:        5,
	}
}

// Validate checks every field; nothing may be applied unless all pass.
func (s Settings) Validate() error {
	if s.CheckInterval < time.Second {
		return fmt.Errorf("check_interval must be at least 1s, got %v", s.CheckInterval)
	}
	if s.MaxRiskPerTrade <= 0 || s.MaxRiskPerTrade > 1 {
		return fmt.Errorf("max_risk_per_trade must be in (0,1], got %v", s.MaxRiskPerTrade)
	}
	if s.SentimentThreshold < 0 || s.SentimentThreshold > 1 {
		return fmt.Errorf("sentiment_threshold must be in [0,1], got %v", s.SentimentThreshold)
	}
	if s.RebalanceThreshold <= 0 || s.RebalanceThreshold > 1 {
		return fmt.Errorf("rebalance_threshold must be in (0,1], got %v", s.RebalanceThreshold)
	}
	if s.VolatilityThreshold < 0 || s.VolatilityThreshold > 1 {
		return fmt.Errorf("volatility_threshold must be in [0,1], got %v", s.VolatilityThreshold)
	}
	if s.MinTradeSize <= 0 {
		return fmt.Errorf("min_trade_size must be positive, got %v", s.MinTradeSize)
	}
	return nil
}
