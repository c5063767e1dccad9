package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CoinPilot/internal/engine"
	"CoinPilot/internal/exchange"
	"CoinPilot/internal/execution"
	"CoinPilot/internal/model"
	"CoinPilot/internal/portfolio"
	"CoinPilot/internal/recorder"
	"CoinPilot/internal/sentiment"
	"CoinPilot/internal/strategy"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T, mock *exchange.Mock) (*Server, *engine.Engine) {
	t.Helper()
	feed := &sentiment.StaticFeed{}
	eng := engine.New(
		engine.Config{
			BaseCurrency:    "USD",
			InterAssetDelay: time.Millisecond,
			Settings:        model.DefaultSettings(),
		},
		engine.Deps{
			Market:    mock,
			Account:   mock,
			Executor:  execution.NewScheduler(mock, recorder.NewNoopRecorder()),
			Strategy:  &strategy.SentimentStrategy{Feed: feed},
			Feed:      feed,
			Portfolio: portfolio.NewState("USD"),
			Recorder:  recorder.NewNoopRecorder(),
		},
	)
	return NewServer(context.Background(), eng), eng
}

func doJSON(t *testing.T, srv *Server, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	var parsed map[string]any
	if len(w.Body.Bytes()) > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &parsed))
	}
	return w, parsed
}

func TestLifecycleEndpoints(t *testing.T) {
	mock := &exchange.Mock{
		Pairs:    map[string]model.AssetPairInfo{},
		Balances: map[string]float64{"ZUSD": 100},
	}
	srv, eng := newTestServer(t, mock)
	defer func() {
		_ = eng.Stop()
		eng.Wait()
	}()

	w, resp := doJSON(t, srv, http.MethodPost, "/api/bot/start", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "success", resp["status"])

	w, resp = doJSON(t, srv, http.MethodPost, "/api/bot/start", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "warning", resp["status"])

	w, resp = doJSON(t, srv, http.MethodPost, "/api/bot/stop", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "success", resp["status"])

	w, resp = doJSON(t, srv, http.MethodPost, "/api/bot/stop", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "warning", resp["status"])
}

func TestStatusEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, &exchange.Mock{})

	w, resp := doJSON(t, srv, http.MethodGet, "/api/status", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "stopped", resp["state"])

	settings, ok := resp["settings"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(300), settings["check_interval_seconds"])
	assert.Equal(t, 0.02, settings["max_risk_per_trade"])
}

func TestUpdateSettings(t *testing.T) {
	srv, eng := newTestServer(t, &exchange.Mock{})
	before := eng.Settings()

	// Missing fields are rejected outright.
	w, resp := doJSON(t, srv, http.MethodPost, "/api/settings", map[string]any{
		"max_risk_per_trade": 0.05,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "error", resp["status"])
	assert.Equal(t, before, eng.Settings())

	// One invalid value rejects the whole update.
	w, resp = doJSON(t, srv, http.MethodPost, "/api/settings", map[string]any{
		"check_interval_seconds": 60,
		"max_risk_per_trade":     1.5,
		"sentiment_threshold":    0.3,
		"rebalance_threshold":    0.15,
		"volatility_threshold":   0.03,
		"min_trade_size":         10,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "error", resp["status"])
	assert.Equal(t, before, eng.Settings())

	// A fully valid update applies all six fields.
	w, resp = doJSON(t, srv, http.MethodPost, "/api/settings", map[string]any{
		"check_interval_seconds": 60,
		"max_risk_per_trade":     0.05,
		"sentiment_threshold":    0.3,
		"rebalance_threshold":    0.15,
		"volatility_threshold":   0.03,
		"min_trade_size":         10,
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "success", resp["status"])

	got := eng.Settings()
	assert.Equal(t, time.Minute, got.CheckInterval)
	assert.Equal(t, 0.05, got.MaxRiskPerTrade)
	assert.Equal(t, 10.0, got.MinTradeSize)
}

func TestTradesEndpoint(t *testing.T) {
	mock := &exchange.Mock{
		Trades: []model.TradeRecord{
			{Pair: "XBTUSD", Type: "buy", Amount: 0.5, Price: 50000},
		},
	}
	srv, _ := newTestServer(t, mock)

	w, resp := doJSON(t, srv, http.MethodGet, "/api/trades", nil)
	require.Equal(t, http.StatusOK, w.Code)
	trades, ok := resp["trades"].([]any)
	require.True(t, ok)
	assert.Len(t, trades, 1)

	w, _ = doJSON(t, srv, http.MethodGet, "/api/trades?limit=zero", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTradesEndpointUpstreamFailure(t *testing.T) {
	mock := &exchange.Mock{Err: errors.New("venue unavailable")}
	srv, _ := newTestServer(t, mock)

	w, resp := doJSON(t, srv, http.MethodGet, "/api/trades", nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "error", resp["status"])
}

func TestSignalsEndpointUpstreamFailure(t *testing.T) {
	mock := &exchange.Mock{Err: errors.New("venue unavailable")}
	srv, _ := newTestServer(t, mock)

	w, resp := doJSON(t, srv, http.MethodGet, "/api/signals", nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "error", resp["status"])
}

func TestPortfolioEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, &exchange.Mock{})

	w, resp := doJSON(t, srv, http.MethodGet, "/api/portfolio", nil)
	require.Equal(t, http.StatusOK, w.Code)
	_, ok := resp["total_value"]
	assert.True(t, ok)
}
