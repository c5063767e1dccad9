// Package exchange defines the venue gateway contracts the core depends on,
// plus a Kraken REST implementation and an in-memory mock. The trading engine
// only ever sees the interfaces.
package exchange

import (
	"context"
	"errors"

	"CoinPilot/internal/model"
)

// ErrDataMissing marks a venue response with a missing or malformed field.
// The affected asset is skipped for the cycle.
var ErrDataMissing = errors.New("missing or malformed field in venue response")

// MarketDataFeed supplies pair metadata, quotes, and price history.
type MarketDataFeed interface {
	// ListAssetPairs returns tradable pairs quoted in the base currency.
	ListAssetPairs(ctx context.Context) (map[string]model.AssetPairInfo, error)
	GetTicker(ctx context.Context, pair string) (*model.Ticker, error)
	// GetOHLC returns chronologically ordered bars at the given interval.
	GetOHLC(ctx context.Context, pair string, intervalMinutes int, since int64) ([]model.PriceBar, error)
}

// AccountGateway supplies balances and trade history for the account.
type AccountGateway interface {
	GetBalance(ctx context.Context) (map[string]float64, error)
	GetRecentTrades(ctx context.Context, limit int) ([]model.TradeRecord, error)
}

// OrderResult is the venue's answer to an order placement. Exactly one of
// TxID or Errors is expected; any other shape is an unexpected response.
type OrderResult struct {
	TxID   string
	Errors []string
}

// OrderGateway dispatches market orders. A non-nil error means the call
// itself failed (transport); venue-level rejections come back in OrderResult.
type OrderGateway interface {
	PlaceOrder(ctx context.Context, pair string, side model.Side, volume string) (*OrderResult, error)
}
