package recorder

import (
	"time"

	"CoinPilot/internal/model"
)

// CycleEvent summarizes one completed trading cycle.
type CycleEvent struct {
	TotalValue    float64
	OrdersPlaced  int
	AssetsSkipped int
	Duration      time.Duration
}

// Recorder persists the order and cycle journal. Recording failures are a
// logging concern for callers; they must never block trading.
type Recorder interface {
	RecordOrder(order *model.Order) error
	RecordCycle(evt *CycleEvent) error
	PurgeBefore(cutoff time.Time) error
	Close() error
}

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordOrder(_ *model.Order) error { return nil }
func (n *NoopRecorder) RecordCycle(_ *CycleEvent) error  { return nil }
func (n *NoopRecorder) PurgeBefore(_ time.Time) error    { return nil }
func (n *NoopRecorder) Close() error                     { return nil }
