package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Engine.BaseCurrency != "USD" {
		t.Errorf("BaseCurrency = %q, want USD", cfg.Engine.BaseCurrency)
	}
	if cfg.Engine.Strategy != "technical" {
		t.Errorf("Strategy = %q, want technical", cfg.Engine.Strategy)
	}
	if cfg.Engine.OHLCIntervalMins != 1440 {
		t.Errorf("OHLCIntervalMins = %d, want 1440", cfg.Engine.OHLCIntervalMins)
	}
	if cfg.Web.ListenAddr != ":8080" {
		t.Errorf("ListenAddr = %q, want :8080", cfg.Web.ListenAddr)
	}
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	path := writeConfig(t, `
kraken:
  api_key: file-key
  api_secret: file-secret
engine:
  base_currency: EUR
settings:
  check_interval_seconds: 60
  max_risk_per_trade: 0.05
`)
	t.Setenv("KRAKEN_API_KEY", "env-key")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Kraken.APIKey != "env-key" {
		t.Errorf("APIKey = %q, want env-key", cfg.Kraken.APIKey)
	}
	if cfg.Kraken.APISecret != "file-secret" {
		t.Errorf("APISecret = %q, want file-secret", cfg.Kraken.APISecret)
	}
	if cfg.Engine.BaseCurrency != "EUR" {
		t.Errorf("BaseCurrency = %q, want EUR", cfg.Engine.BaseCurrency)
	}

	s := cfg.EngineSettings()
	if s.CheckInterval != 60*time.Second {
		t.Errorf("CheckInterval = %v, want 60s", s.CheckInterval)
	}
	if s.MaxRiskPerTrade != 0.05 {
		t.Errorf("MaxRiskPerTrade = %v, want 0.05", s.MaxRiskPerTrade)
	}
	// Unset fields keep defaults.
	if s.SentimentThreshold != 0.2 {
		t.Errorf("SentimentThreshold = %v, want 0.2", s.SentimentThreshold)
	}
}

func TestZeroThresholdsConfigurable(t *testing.T) {
	// 0 is a legal value for both score thresholds; it must not be
	// mistaken for "unset" and silently replaced by the default.
	path := writeConfig(t, `
settings:
  sentiment_threshold: 0
  volatility_threshold: 0
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	s := cfg.EngineSettings()
	if s.SentimentThreshold != 0 {
		t.Errorf("SentimentThreshold = %v, want 0", s.SentimentThreshold)
	}
	if s.VolatilityThreshold != 0 {
		t.Errorf("VolatilityThreshold = %v, want 0", s.VolatilityThreshold)
	}

	// Absent fields still fall back to the defaults.
	empty, err := Load(writeConfig(t, "settings: {}\n"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := empty.EngineSettings().SentimentThreshold; got != 0.2 {
		t.Errorf("default SentimentThreshold = %v, want 0.2", got)
	}
}

func TestValidate(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() = nil, want error for missing credentials")
	}

	cfg.Kraken.APIKey = "k"
	cfg.Kraken.APISecret = "s"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}

	cfg.Engine.Strategy = "martingale"
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() = nil, want error for unknown strategy")
	}
}
