package model

// Signal is the directional decision for one asset in one cycle.
type Signal string

const (
	SignalBuy  Signal = "buy"
	SignalSell Signal = "sell"
	SignalHold Signal = "hold"
)

// Side is the order direction sent to the venue.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// OrderStatus tracks what happened to a dispatched order.
type OrderStatus string

const (
	OrderPlaced   OrderStatus = "placed"
	OrderRejected OrderStatus = "rejected"
	OrderFailed   OrderStatus = "failed"
)

// Order is a transient market order: created, dispatched, journaled, discarded.
type Order struct {
	Ref           string
	Pair          string
	Side          Side
	Volume        float64
	RoundedVolume float64
	Status        OrderStatus
	TxID          string
	Reason        string
}

// SignalView is the per-asset signal breakdown exposed on the control surface.
type SignalView struct {
	SMASignal  bool     `json:"sma_signal"`
	RSIClass   RSIClass `json:"rsi_signal"`
	MACDSignal bool     `json:"macd_signal"`
	Sentiment  float64  `json:"sentiment"`
}
