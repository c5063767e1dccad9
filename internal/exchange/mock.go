package exchange

import (
	"context"
	"fmt"
	"sync"

	"CoinPilot/internal/model"
)

// PlacedOrder captures one order the mock received.
type PlacedOrder struct {
	Pair   string
	Side   model.Side
	Volume string
}

// Mock is an in-memory venue implementing all three gateway interfaces.
// Zero value is usable; populate the maps to shape responses.
type Mock struct {
	mu sync.Mutex

	Pairs    map[string]model.AssetPairInfo
	Tickers  map[string]model.Ticker
	OHLC     map[string][]model.PriceBar
	Balances map[string]float64
	Trades   []model.TradeRecord

	// Err, when set, is returned by every call (transport failure).
	Err error
	// OrderErrors, when set, is returned in each order result (venue rejection).
	OrderErrors []string
	// OmitTxID simulates an unexpected response shape: no txid, no error.
	OmitTxID bool

	Placed []PlacedOrder
	nextTx int
}

func (m *Mock) ListAssetPairs(_ context.Context) (map[string]model.AssetPairInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	out := make(map[string]model.AssetPairInfo, len(m.Pairs))
	for k, v := range m.Pairs {
		out[k] = v
	}
	return out, nil
}

func (m *Mock) GetTicker(_ context.Context, pair string) (*model.Ticker, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	t, ok := m.Tickers[pair]
	if !ok {
		return nil, fmt.Errorf("ticker for %s: %w", pair, ErrDataMissing)
	}
	return &t, nil
}

func (m *Mock) GetOHLC(_ context.Context, pair string, _ int, _ int64) ([]model.PriceBar, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	bars, ok := m.OHLC[pair]
	if !ok {
		return nil, fmt.Errorf("ohlc for %s: %w", pair, ErrDataMissing)
	}
	return append([]model.PriceBar(nil), bars...), nil
}

func (m *Mock) GetBalance(_ context.Context) (map[string]float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	out := make(map[string]float64, len(m.Balances))
	for k, v := range m.Balances {
		out[k] = v
	}
	return out, nil
}

func (m *Mock) GetRecentTrades(_ context.Context, limit int) ([]model.TradeRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	trades := append([]model.TradeRecord(nil), m.Trades...)
	if limit > 0 && len(trades) > limit {
		trades = trades[:limit]
	}
	return trades, nil
}

func (m *Mock) PlaceOrder(_ context.Context, pair string, side model.Side, volume string) (*OrderResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	m.Placed = append(m.Placed, PlacedOrder{Pair: pair, Side: side, Volume: volume})
	if len(m.OrderErrors) > 0 {
		return &OrderResult{Errors: m.OrderErrors}, nil
	}
	if m.OmitTxID {
		return &OrderResult{}, nil
	}
	m.nextTx++
	return &OrderResult{TxID: fmt.Sprintf("MOCK-TX-%d", m.nextTx)}, nil
}

// PlacedOrders returns a copy of everything the mock received.
func (m *Mock) PlacedOrders() []PlacedOrder {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]PlacedOrder(nil), m.Placed...)
}
