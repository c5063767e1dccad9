package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"CoinPilot/internal/calculator"
	"CoinPilot/internal/model"
	"CoinPilot/internal/recorder"
	"CoinPilot/internal/strategy"
)

// tracked is one pair with a held balance, resolved for the current cycle.
type tracked struct {
	asset string
	pair  string
	info  model.AssetPairInfo
	held  float64
}

// resolveTracked maps venue pairs to held assets, trimming the quote suffix
// in both its plain and "Z"-prefixed spellings. Sorted by pair for a
// deterministic cycle order.
func resolveTracked(balances map[string]float64, pairs map[string]model.AssetPairInfo, base string) []tracked {
	out := make([]tracked, 0, len(pairs))
	for name, info := range pairs {
		asset := strings.TrimSuffix(name, "Z"+base)
		if asset == name {
			asset = strings.TrimSuffix(name, base)
		}
		if asset == name || asset == "" {
			continue
		}
		out = append(out, tracked{asset: asset, pair: name, info: info, held: balances[asset]})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].pair < out[j].pair })
	return out
}

// runCycle executes one full trading cycle: refresh metadata and balances,
// rebalance, run the opportunistic strategy per asset, then record the
// valuation sample. Per-asset failures skip the asset only.
func (e *Engine) runCycle(ctx context.Context) error {
	started := time.Now()
	cfg := e.Settings()

	pairs, err := e.deps.Market.ListAssetPairs(ctx)
	if err != nil {
		return fmt.Errorf("refresh asset pairs: %w", err)
	}
	balances, err := e.deps.Account.GetBalance(ctx)
	if err != nil {
		return fmt.Errorf("fetch balances: %w", err)
	}

	assets := resolveTracked(balances, pairs, e.cfg.BaseCurrency)

	// Value the portfolio off one ticker fetch per held pair.
	prices := make(map[string]float64)
	skipped := 0
	for _, t := range assets {
		if t.held <= 0 {
			continue
		}
		tick, err := e.deps.Market.GetTicker(ctx, t.pair)
		if err != nil {
			log.Printf("[WARN] ticker for %s: %v", t.pair, err)
			skipped++
			continue
		}
		prices[t.asset] = tick.Last
	}
	e.deps.Portfolio.Update(balances, prices)
	portfolioValue := e.deps.Portfolio.TotalValue()
	log.Printf("[INFO] portfolio value: %.4f %s", portfolioValue, e.cfg.BaseCurrency)

	// One reserved base-balance view for the whole cycle: rebalancing and
	// the opportunistic strategy spend from the same pot.
	funds := strategy.NewFunds(e.deps.Portfolio.BaseBalance())

	ordersPlaced := e.rebalance(ctx, cfg, assets, prices, portfolioValue, funds)

	placed, skippedAssets := e.opportunisticPass(ctx, cfg, assets, funds)
	ordersPlaced += placed
	skipped += skippedAssets

	e.deps.Portfolio.RecordValue(time.Now())

	if err := e.deps.Recorder.RecordCycle(&recorder.CycleEvent{
		TotalValue:    portfolioValue,
		OrdersPlaced:  ordersPlaced,
		AssetsSkipped: skipped,
		Duration:      time.Since(started),
	}); err != nil {
		log.Printf("[ERROR] record cycle: %v", err)
	}
	return nil
}

// rebalance runs the threshold-based planner over every tracked pair.
func (e *Engine) rebalance(ctx context.Context, cfg model.Settings, assets []tracked, prices map[string]float64, portfolioValue float64, funds *strategy.Funds) int {
	planner := strategy.Rebalancer{
		TargetAllocation: strategy.DefaultTargetAllocation,
		Threshold:        cfg.RebalanceThreshold,
		MinTradeSize:     cfg.MinTradeSize,
	}

	placed := 0
	for _, t := range assets {
		if t.held <= 0 {
			continue
		}
		price, ok := prices[t.asset]
		if !ok {
			continue
		}
		action, reason := planner.Plan(t.pair, t.held, price, portfolioValue, funds)
		if action == nil {
			log.Printf("[INFO] rebalance %s: %s", t.pair, reason)
			continue
		}
		order := e.deps.Executor.Place(ctx, action.Pair, t.info, action.Side, action.Volume)
		if order.Status == model.OrderPlaced {
			placed++
		}
	}
	return placed
}

// opportunisticPass runs the configured strategy one asset at a time with a
// fixed delay between assets to respect the venue's rate budget.
func (e *Engine) opportunisticPass(ctx context.Context, cfg model.Settings, assets []tracked, funds *strategy.Funds) (placed, skipped int) {
	sizer := strategy.RiskSizer{
		MaxRiskPerTrade: cfg.MaxRiskPerTrade,
		MinTradeSize:    cfg.MinTradeSize,
	}

	first := true
	for _, t := range assets {
		if t.held <= 0 {
			continue
		}
		if !first {
			time.Sleep(e.cfg.InterAssetDelay)
		}
		first = false

		bars, err := e.deps.Market.GetOHLC(ctx, t.pair, e.cfg.OHLCInterval, 0)
		if err != nil {
			log.Printf("[ERROR] ohlc for %s: %v", t.pair, err)
			skipped++
			continue
		}
		if len(bars) == 0 {
			log.Printf("[WARN] no price history for %s", t.pair)
			skipped++
			continue
		}

		signal, err := e.deps.Strategy.Evaluate(ctx, t.asset, bars, cfg.SentimentThreshold)
		if err != nil {
			if errors.Is(err, calculator.ErrInsufficientHistory) {
				log.Printf("[INFO] %s: insufficient history, holding", t.asset)
				continue
			}
			log.Printf("[ERROR] evaluate %s: %v", t.asset, err)
			skipped++
			continue
		}

		price := bars[len(bars)-1].Close
		holdingValue := t.held * price

		switch signal {
		case model.SignalBuy:
			volume, reason := sizer.SizeBuy(holdingValue, price, funds)
			if volume == 0 {
				log.Printf("[INFO] buy %s dropped: %s", t.asset, reason)
				continue
			}
			order := e.deps.Executor.Place(ctx, t.pair, t.info, model.SideBuy, volume)
			if order.Status == model.OrderPlaced {
				placed++
				log.Printf("[INFO] placed buy order for %v %s", order.RoundedVolume, t.asset)
			}
		case model.SignalSell:
			volume, reason := sizer.SizeSell(holdingValue, price, t.held)
			if volume == 0 {
				log.Printf("[INFO] sell %s dropped: %s", t.asset, reason)
				continue
			}
			order := e.deps.Executor.Place(ctx, t.pair, t.info, model.SideSell, volume)
			if order.Status == model.OrderPlaced {
				placed++
				log.Printf("[INFO] placed sell order for %v %s", order.RoundedVolume, t.asset)
			}
		default:
			log.Printf("[INFO] no trade action for %s", t.asset)
		}
	}
	return placed, skipped
}

// Signals computes the current per-asset signal breakdown for the control
// surface: trend, RSI class, MACD direction, and sentiment. Assets with
// errors are skipped, not fatal.
func (e *Engine) Signals(ctx context.Context) (map[string]model.SignalView, error) {
	cfgPairs, err := e.deps.Market.ListAssetPairs(ctx)
	if err != nil {
		return nil, fmt.Errorf("refresh asset pairs: %w", err)
	}
	balances, err := e.deps.Account.GetBalance(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch balances: %w", err)
	}

	views := make(map[string]model.SignalView)
	for _, t := range resolveTracked(balances, cfgPairs, e.cfg.BaseCurrency) {
		if t.held <= 0 {
			continue
		}
		bars, err := e.deps.Market.GetOHLC(ctx, t.pair, e.cfg.OHLCInterval, 0)
		if err != nil {
			log.Printf("[ERROR] signals: ohlc for %s: %v", t.pair, err)
			continue
		}
		ind, err := calculator.Compute(bars)
		if err != nil {
			log.Printf("[WARN] signals: %s: %v", t.asset, err)
			continue
		}
		views[t.asset] = model.SignalView{
			SMASignal:  ind.ShortMA > ind.LongMA,
			RSIClass:   model.ClassifyRSI(ind.RSI),
			MACDSignal: ind.MACD > ind.MACDSignal,
			Sentiment:  e.deps.Feed.GetSentiment(ctx, t.asset),
		}
	}
	return views, nil
}
