package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"CoinPilot/internal/model"
)

// Config holds all application configuration.
type Config struct {
	Kraken struct {
		APIKey    string `yaml:"api_key"`
		APISecret string `yaml:"api_secret"`
	} `yaml:"kraken"`
	GNews struct {
		APIKey string `yaml:"api_key"`
	} `yaml:"gnews"`
	Engine struct {
		BaseCurrency     string `yaml:"base_currency"`
		Strategy         string `yaml:"strategy"` // "technical" or "sentiment"
		Scorer           string `yaml:"scorer"`   // "lexicon" or "keyword"
		OHLCIntervalMins int    `yaml:"ohlc_interval_minutes"`
	} `yaml:"engine"`
	Settings struct {
		CheckIntervalSecs int     `yaml:"check_interval_seconds"`
		MaxRiskPerTrade   float64 `yaml:"max_risk_per_trade"`
		// Pointers: zero is a valid configured value for these two, so
		// absence must stay distinguishable from an explicit 0.
		SentimentThreshold  *float64 `yaml:"sentiment_threshold"`
		VolatilityThreshold *float64 `yaml:"volatility_threshold"`
		RebalanceThreshold  float64  `yaml:"rebalance_threshold"`
		MinTradeSize        float64  `yaml:"min_trade_size"`
	} `yaml:"settings"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Web struct {
		ListenAddr string `yaml:"listen_addr"`
	} `yaml:"web"`
	MaintenanceCron string `yaml:"maintenance_cron"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides and defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("KRAKEN_API_KEY"); v != "" {
		cfg.Kraken.APIKey = v
	}
	if v := os.Getenv("KRAKEN_API_SECRET"); v != "" {
		cfg.Kraken.APISecret = v
	}
	if v := os.Getenv("GNEWS_API_KEY"); v != "" {
		cfg.GNews.APIKey = v
	}
	if v := os.Getenv("BASE_CURRENCY"); v != "" {
		cfg.Engine.BaseCurrency = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		cfg.Web.ListenAddr = v
	}
	if v := os.Getenv("CHECK_INTERVAL_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Settings.CheckIntervalSecs = n
		}
	}

	// Defaults
	if cfg.Engine.BaseCurrency == "" {
		cfg.Engine.BaseCurrency = "USD"
	}
	if cfg.Engine.Strategy == "" {
		cfg.Engine.Strategy = "technical"
	}
	if cfg.Engine.Scorer == "" {
		cfg.Engine.Scorer = "lexicon"
	}
	if cfg.Engine.OHLCIntervalMins == 0 {
		cfg.Engine.OHLCIntervalMins = 1440
	}
	if cfg.Web.ListenAddr == "" {
		cfg.Web.ListenAddr = ":8080"
	}
	if cfg.MaintenanceCron == "" {
		cfg.MaintenanceCron = "0 0 3 * * *"
	}

	return cfg, nil
}

// Validate checks that all required fields are set. Missing venue
// credentials are fatal; the loop must never start without them.
func (c *Config) Validate() error {
	if c.Kraken.APIKey == "" {
		return fmt.Errorf("kraken.api_key is required")
	}
	if c.Kraken.APISecret == "" {
		return fmt.Errorf("kraken.api_secret is required")
	}
	switch c.Engine.Strategy {
	case "technical", "sentiment":
	default:
		return fmt.Errorf("engine.strategy must be technical or sentiment, got %q", c.Engine.Strategy)
	}
	switch c.Engine.Scorer {
	case "lexicon", "keyword":
	default:
		return fmt.Errorf("engine.scorer must be lexicon or keyword, got %q", c.Engine.Scorer)
	}
	return c.EngineSettings().Validate()
}

// EngineSettings merges the configured settings block over the defaults.
func (c *Config) EngineSettings() model.Settings {
	s := model.DefaultSettings()
	if c.Settings.CheckIntervalSecs > 0 {
		s.CheckInterval = time.Duration(c.Settings.CheckIntervalSecs) * time.Second
	}
	if c.Settings.MaxRiskPerTrade > 0 {
		s.MaxRiskPerTrade = c.Settings.MaxRiskPerTrade
	}
	if c.Settings.SentimentThreshold != nil {
		s.SentimentThreshold = *c.Settings.SentimentThreshold
	}
	if c.Settings.RebalanceThreshold > 0 {
		s.RebalanceThreshold = c.Settings.RebalanceThreshold
	}
	if c.Settings.VolatilityThreshold != nil {
		s.VolatilityThreshold = *c.Settings.VolatilityThreshold
	}
	if c.Settings.MinTradeSize > 0 {
		s.MinTradeSize = c.Settings.MinTradeSize
	}
	return s
}
