package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"CoinPilot/internal/config"
	"CoinPilot/internal/engine"
	"CoinPilot/internal/exchange"
	"CoinPilot/internal/execution"
	"CoinPilot/internal/portfolio"
	"CoinPilot/internal/ratelimit"
	"CoinPilot/internal/recorder"
	"CoinPilot/internal/sentiment"
	"CoinPilot/internal/strategy"
	"CoinPilot/internal/web"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] CoinPilot starting...")

	// Load credentials from .env if present
	if err := godotenv.Load(); err == nil {
		log.Println("[INFO] loaded credentials from .env")
	}

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	// Init venue client
	tradingLimiter := ratelimit.NewTradingBucket()
	kraken := exchange.NewKraken(cfg.Kraken.APIKey, cfg.Kraken.APISecret, cfg.Engine.BaseCurrency, tradingLimiter)

	// Init sentiment feed
	var scorer sentiment.Scorer
	if cfg.Engine.Scorer == "keyword" {
		scorer = sentiment.NewKeywordScorer()
	} else {
		scorer = sentiment.NewLexiconScorer()
	}
	var feed sentiment.Feed
	if cfg.GNews.APIKey != "" {
		feed = sentiment.NewGNewsFeed(cfg.GNews.APIKey, scorer, ratelimit.NewSentimentBucket())
	} else {
		log.Println("[WARN] no gnews api key configured, sentiment fixed at 0")
		feed = &sentiment.StaticFeed{}
	}
	log.Printf("[INFO] sentiment scorer: %s", scorer.Name())

	// Init strategy
	var strat strategy.Strategy
	if cfg.Engine.Strategy == "sentiment" {
		strat = &strategy.SentimentStrategy{Feed: feed}
	} else {
		strat = &strategy.TechnicalStrategy{Feed: feed}
	}
	log.Printf("[INFO] strategy: %s", strat.Name())

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	// Shared portfolio state
	state := portfolio.NewState(cfg.Engine.BaseCurrency)

	// Init engine
	eng := engine.New(
		engine.Config{
			BaseCurrency: cfg.Engine.BaseCurrency,
			OHLCInterval: cfg.Engine.OHLCIntervalMins,
			Settings:     cfg.EngineSettings(),
		},
		engine.Deps{
			Market:    kraken,
			Account:   kraken,
			Executor:  execution.NewScheduler(kraken, rec),
			Strategy:  strat,
			Feed:      feed,
			Portfolio: state,
			Recorder:  rec,
		},
	)

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init maintenance cron
	maint, err := engine.NewMaintenance(rec, state, cfg.MaintenanceCron)
	if err != nil {
		log.Fatalf("[FATAL] init maintenance job: %v", err)
	}
	maint.Start()
	defer maint.Stop()

	// Optional: start trading immediately
	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, starting trading loop now")
		if err := eng.Start(ctx); err != nil {
			log.Printf("[WARN] start trading loop: %v", err)
		}
	}

	// Control surface
	srv := web.NewServer(ctx, eng)
	go func() {
		if err := srv.Run(cfg.Web.ListenAddr); err != nil {
			log.Fatalf("[FATAL] control surface: %v", err)
		}
	}()

	log.Println("[INFO] CoinPilot is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	if err := eng.Stop(); err == nil {
		eng.Wait()
	}
	cancel()
	log.Println("[INFO] CoinPilot stopped")
}
