package model

import "time"

// PriceBar represents a single OHLC candlestick bar at a fixed interval.
type PriceBar struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Ticker holds the current quote for an asset pair.
type Ticker struct {
	Last float64
	Bid  float64
	Ask  float64
}

// AssetPairInfo describes a tradable pair quoted in the base currency.
// Refreshed from the venue at the start of every cycle.
type AssetPairInfo struct {
	AltName       string
	MinOrder      float64
	DecimalPlaces int32
}

// TradeRecord is one executed trade from the account history.
type TradeRecord struct {
	Time   time.Time `json:"time"`
	Pair   string    `json:"pair"`
	Type   string    `json:"type"`
	Price  float64   `json:"price"`
	Amount float64   `json:"amount"`
	Cost   float64   `json:"cost"`
}
