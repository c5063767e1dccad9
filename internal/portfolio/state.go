// Package portfolio tracks balances, prices, and valuation history for the
// trading engine. All state is mutex-guarded; accessors return copies so the
// control surface never sees a torn view.
package portfolio

import (
	"strings"
	"sync"
	"time"

	"CoinPilot/internal/model"
)

// HistoryWindow is the trailing retention for valuation samples.
const HistoryWindow = 24 * time.Hour

// State holds the current view of the account, refreshed once per cycle by
// the trading loop and read concurrently by the control surface.
type State struct {
	mu           sync.Mutex
	baseCurrency string
	balances     map[string]float64
	prices       map[string]float64 // asset -> last price in base currency
	totalValue   float64
	updatedAt    time.Time
	history      []model.HistoryPoint
}

// NewState creates an empty portfolio state for the given base currency.
func NewState(baseCurrency string) *State {
	return &State{
		baseCurrency: baseCurrency,
		balances:     make(map[string]float64),
		prices:       make(map[string]float64),
	}
}

// IsBase reports whether the asset is the base currency, in either plain or
// venue-prefixed ("Z"+code) spelling.
func (s *State) IsBase(asset string) bool {
	return asset == s.baseCurrency || asset == "Z"+s.baseCurrency
}

// BaseCurrency returns the configured base currency code.
func (s *State) BaseCurrency() string { return s.baseCurrency }

// Update replaces balances and prices and recomputes the total value.
// Assets without a known price contribute nothing to the valuation.
func (s *State) Update(balances, prices map[string]float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.balances = make(map[string]float64, len(balances))
	for k, v := range balances {
		s.balances[k] = v
	}
	s.prices = make(map[string]float64, len(prices))
	for k, v := range prices {
		s.prices[k] = v
	}

	total := 0.0
	for asset, amount := range s.balances {
		if s.IsBase(asset) {
			total += amount
			continue
		}
		if price, ok := s.priceFor(asset); ok {
			total += amount * price
		}
	}
	s.totalValue = total
	s.updatedAt = time.Now()
}

// priceFor resolves a price for an asset, tolerating the venue's "X" prefix.
// Caller must hold the lock.
func (s *State) priceFor(asset string) (float64, bool) {
	if p, ok := s.prices[asset]; ok {
		return p, true
	}
	if p, ok := s.prices[strings.TrimPrefix(asset, "X")]; ok {
		return p, true
	}
	return 0, false
}

// BaseBalance returns the base-currency balance.
func (s *State) BaseBalance() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	for asset, amount := range s.balances {
		if s.IsBase(asset) {
			return amount
		}
	}
	return 0
}

// Balance returns the held amount of one asset.
func (s *State) Balance(asset string) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.balances[asset]
}

// TotalValue returns the last computed portfolio value in base currency.
func (s *State) TotalValue() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalValue
}

// RecordValue appends one valuation sample and prunes everything older than
// the 24-hour window. The pruning invariant holds after every append.
func (s *State) RecordValue(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.history = append(s.history, model.HistoryPoint{Timestamp: now, Value: s.totalValue})
	cutoff := now.Add(-HistoryWindow)
	firstKept := 0
	for firstKept < len(s.history) && !s.history[firstKept].Timestamp.After(cutoff) {
		firstKept++
	}
	if firstKept > 0 {
		s.history = append([]model.HistoryPoint(nil), s.history[firstKept:]...)
	}
}

// Snapshot returns a point-in-time copy of the whole portfolio view.
func (s *State) Snapshot() model.PortfolioSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	balances := make(map[string]float64, len(s.balances))
	for k, v := range s.balances {
		balances[k] = v
	}
	history := append([]model.HistoryPoint(nil), s.history...)
	return model.PortfolioSnapshot{
		Balances:   balances,
		TotalValue: s.totalValue,
		History:    history,
		Timestamp:  s.updatedAt,
	}
}
