// Package execution validates, rounds, and dispatches orders through an
// order gateway. Gateway failures are logged and absorbed; they never abort
// the calling cycle, and no order is retried after a venue rejection.
package execution

import (
	"context"
	"log"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"CoinPilot/internal/exchange"
	"CoinPilot/internal/model"
	"CoinPilot/internal/recorder"
)

// Scheduler turns sized trade candidates into market orders.
type Scheduler struct {
	Gateway  exchange.OrderGateway
	Recorder recorder.Recorder
}

// NewScheduler creates a scheduler journaling through the given recorder.
func NewScheduler(gateway exchange.OrderGateway, rec recorder.Recorder) *Scheduler {
	return &Scheduler{Gateway: gateway, Recorder: rec}
}

// Place truncates the volume to the pair's declared precision, rejects
// locally when the truncated volume is below the pair minimum (no gateway
// call), and otherwise dispatches a market order. Truncation, never half-up
// rounding: the dispatched volume must not exceed what the sizer reserved
// from the cycle funds. The returned order carries the final status for the
// journal and the caller's logs.
func (s *Scheduler) Place(ctx context.Context, pair string, info model.AssetPairInfo, side model.Side, volume float64) *model.Order {
	order := &model.Order{
		Ref:    uuid.NewString(),
		Pair:   pair,
		Side:   side,
		Volume: volume,
	}

	rounded := decimal.NewFromFloat(volume).RoundDown(info.DecimalPlaces)
	order.RoundedVolume, _ = rounded.Float64()

	if rounded.LessThan(decimal.NewFromFloat(info.MinOrder)) {
		order.Status = model.OrderRejected
		order.Reason = "volume below pair minimum"
		log.Printf("[WARN] order volume %s is below minimum %v for %s", rounded, info.MinOrder, pair)
		s.journal(order)
		return order
	}

	result, err := s.Gateway.PlaceOrder(ctx, pair, side, rounded.String())
	if err != nil {
		order.Status = model.OrderFailed
		order.Reason = err.Error()
		log.Printf("[ERROR] placing order for %s: %v", pair, err)
		s.journal(order)
		return order
	}

	switch {
	case len(result.Errors) > 0:
		order.Status = model.OrderFailed
		order.Reason = result.Errors[0]
		log.Printf("[ERROR] venue rejected order for %s: %v", pair, result.Errors)
	case result.TxID != "":
		order.Status = model.OrderPlaced
		order.TxID = result.TxID
		log.Printf("[INFO] order placed: %s %s %s, txid %s", side, rounded, pair, result.TxID)
	default:
		order.Status = model.OrderFailed
		order.Reason = "unexpected response format"
		log.Printf("[WARN] unexpected order response format for %s", pair)
	}
	s.journal(order)
	return order
}

func (s *Scheduler) journal(order *model.Order) {
	if err := s.Recorder.RecordOrder(order); err != nil {
		log.Printf("[ERROR] record order %s: %v", order.Ref, err)
	}
}
