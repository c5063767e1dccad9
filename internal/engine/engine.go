// Package engine runs the trading loop and exposes the control surface. A
// single worker goroutine executes cycles strictly sequentially; the control
// surface reads and mutates shared state only through mutex-guarded
// snapshots, never directly.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"CoinPilot/internal/exchange"
	"CoinPilot/internal/execution"
	"CoinPilot/internal/model"
	"CoinPilot/internal/portfolio"
	"CoinPilot/internal/recorder"
	"CoinPilot/internal/sentiment"
	"CoinPilot/internal/strategy"
)

// Warning-grade sentinels for redundant state transitions. Neither spawns or
// kills a worker.
var (
	ErrAlreadyRunning = errors.New("trading loop is already running")
	ErrNotRunning     = errors.New("trading loop is not running")
)

// Config carries the fixed wiring parameters for an engine.
type Config struct {
	BaseCurrency    string
	OHLCInterval    int // minutes
	InterAssetDelay time.Duration
	ErrorBackoff    time.Duration
	Settings        model.Settings
}

// Deps are the collaborators the engine orchestrates.
type Deps struct {
	Market    exchange.MarketDataFeed
	Account   exchange.AccountGateway
	Executor  *execution.Scheduler
	Strategy  strategy.Strategy
	Feed      sentiment.Feed
	Portfolio *portfolio.State
	Recorder  recorder.Recorder
}

// Status is the control-surface view of the loop state.
type Status struct {
	State     string         `json:"state"`
	StartTime time.Time      `json:"start_time"`
	Uptime    float64        `json:"uptime_seconds"`
	Settings  model.Settings `json:"settings"`
}

// Engine owns all mutable trading state.
type Engine struct {
	cfg  Config
	deps Deps

	mu        sync.Mutex
	running   bool
	startTime time.Time
	settings  model.Settings
	stop      chan struct{}
	done      chan struct{}
}

// New creates a stopped engine.
func New(cfg Config, deps Deps) *Engine {
	if cfg.InterAssetDelay == 0 {
		cfg.InterAssetDelay = time.Second
	}
	if cfg.ErrorBackoff == 0 {
		cfg.ErrorBackoff = 60 * time.Second
	}
	if cfg.OHLCInterval == 0 {
		cfg.OHLCInterval = 1440
	}
	return &Engine{cfg: cfg, deps: deps, settings: cfg.Settings}
}

// Start transitions Stopped -> Running and launches the cycle worker.
// Starting a running engine is a no-op warning, not an error path.
//
// A stop takes effect at the cycle boundary, so a previous worker may still
// be finishing its in-flight cycle here. Start waits for that worker to exit
// before spawning, keeping the loop strictly single-worker. The wait happens
// outside the lock: the exiting worker reads settings under the same mutex.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return ErrAlreadyRunning
	}
	prev := e.done
	e.mu.Unlock()

	if prev != nil {
		<-prev
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.running {
		return ErrAlreadyRunning
	}
	e.running = true
	e.startTime = time.Now()
	e.stop = make(chan struct{})
	e.done = make(chan struct{})
	go e.run(ctx, e.stop, e.done)
	log.Println("[INFO] trading loop started")
	return nil
}

// Stop transitions Running -> Stopped. Takes effect at the next cycle
// boundary; an in-flight cycle always completes.
func (e *Engine) Stop() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.running {
		return ErrNotRunning
	}
	e.running = false
	e.startTime = time.Time{}
	close(e.stop)
	log.Println("[INFO] trading loop stopping at next cycle boundary")
	return nil
}

// Running reports whether the loop is in the Running state.
func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

// Wait blocks until the worker has exited. Only meaningful after Stop.
func (e *Engine) Wait() {
	e.mu.Lock()
	done := e.done
	e.mu.Unlock()
	if done != nil {
		<-done
	}
}

// Status returns the loop state, uptime, and current settings.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	st := Status{State: "stopped", Settings: e.settings}
	if e.running {
		st.State = "running"
		st.StartTime = e.startTime
		st.Uptime = time.Since(e.startTime).Seconds()
	}
	return st
}

// Settings returns an atomic snapshot of the current settings. The worker
// takes exactly one snapshot per cycle so a concurrent update can never tear
// a cycle's view.
func (e *Engine) Settings() model.Settings {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.settings
}

// UpdateSettings validates every field before applying any; a single invalid
// field rejects the whole update and retains the prior settings.
func (e *Engine) UpdateSettings(s model.Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.settings = s
	log.Printf("[INFO] settings updated: interval=%v risk=%.4f sentiment=%.2f rebalance=%.4f", s.CheckInterval, s.MaxRiskPerTrade, s.SentimentThreshold, s.RebalanceThreshold)
	return nil
}

// Portfolio returns a point-in-time copy of balances, valuation, and history.
func (e *Engine) Portfolio() model.PortfolioSnapshot {
	return e.deps.Portfolio.Snapshot()
}

// RecentTrades fetches the latest executed trades from the account gateway.
func (e *Engine) RecentTrades(ctx context.Context, limit int) ([]model.TradeRecord, error) {
	return e.deps.Account.GetRecentTrades(ctx, limit)
}

// run is the loop supervisor: it executes cycles until stopped, backing off
// a fixed interval after a cycle-scope failure. It never terminates itself
// on error.
func (e *Engine) run(ctx context.Context, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	for {
		select {
		case <-stop:
			log.Println("[INFO] trading loop stopped")
			return
		case <-ctx.Done():
			log.Println("[INFO] trading loop cancelled")
			return
		default:
		}

		if err := e.safeCycle(ctx); err != nil {
			log.Printf("[ERROR] trading cycle: %v", err)
			e.sleep(ctx, stop, e.cfg.ErrorBackoff)
			continue
		}

		e.sleep(ctx, stop, e.Settings().CheckInterval)
	}
}

// safeCycle converts a panicking cycle into a cycle-scope error so the
// supervisor can back off and resume.
func (e *Engine) safeCycle(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("cycle panic: %v", r)
		}
	}()
	return e.runCycle(ctx)
}

// sleep waits for d, returning early (false) when stopped or cancelled.
func (e *Engine) sleep(ctx context.Context, stop <-chan struct{}, d time.Duration) bool {
	select {
	case <-time.After(d):
		return true
	case <-stop:
		return false
	case <-ctx.Done():
		return false
	}
}
