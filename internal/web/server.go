package web

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"CoinPilot/internal/engine"
	"CoinPilot/internal/model"
)

const defaultTradeLimit = 50

// Server exposes the control surface over HTTP. All mutable state lives in
// the engine; handlers only translate between JSON and engine calls.
type Server struct {
	ctx    context.Context
	engine *engine.Engine
	router *gin.Engine
}

func NewServer(ctx context.Context, eng *engine.Engine) *Server {
	s := &Server{ctx: ctx, engine: eng}

	router := gin.New()
	router.Use(gin.Recovery())

	api := router.Group("/api")
	api.POST("/bot/start", s.handleStart)
	api.POST("/bot/stop", s.handleStop)
	api.GET("/status", s.handleStatus)
	api.GET("/portfolio", s.handlePortfolio)
	api.GET("/trades", s.handleTrades)
	api.GET("/signals", s.handleSignals)
	api.GET("/settings", s.handleGetSettings)
	api.POST("/settings", s.handleUpdateSettings)

	s.router = router
	return s
}

// Handler returns the HTTP handler for mounting or testing.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until the listener fails.
func (s *Server) Run(addr string) error {
	log.Printf("[INFO] control surface listening on %s", addr)
	return s.router.Run(addr)
}

func (s *Server) handleStart(c *gin.Context) {
	if err := s.engine.Start(s.ctx); err != nil {
		if errors.Is(err, engine.ErrAlreadyRunning) {
			c.JSON(http.StatusOK, gin.H{"status": "warning", "message": "bot is already running"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "bot started"})
}

func (s *Server) handleStop(c *gin.Context) {
	if err := s.engine.Stop(); err != nil {
		if errors.Is(err, engine.ErrNotRunning) {
			c.JSON(http.StatusOK, gin.H{"status": "warning", "message": "bot is not running"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "bot stopped"})
}

func (s *Server) handleStatus(c *gin.Context) {
	st := s.engine.Status()
	c.JSON(http.StatusOK, gin.H{
		"state":          st.State,
		"start_time":     st.StartTime,
		"uptime_seconds": st.Uptime,
		"settings":       settingsView(st.Settings),
	})
}

func (s *Server) handlePortfolio(c *gin.Context) {
	snap := s.engine.Portfolio()
	c.JSON(http.StatusOK, gin.H{
		"balances":    snap.Balances,
		"total_value": snap.TotalValue,
		"history":     snap.History,
		"timestamp":   snap.Timestamp,
		"start_time":  s.engine.Status().StartTime,
	})
}

func (s *Server) handleTrades(c *gin.Context) {
	limit := defaultTradeLimit
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "limit must be a positive integer"})
			return
		}
		limit = n
	}
	trades, err := s.engine.RecentTrades(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"status": "error", "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"trades": trades})
}

func (s *Server) handleSignals(c *gin.Context) {
	signals, err := s.engine.Signals(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"status": "error", "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"signals": signals})
}

func (s *Server) handleGetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, settingsView(s.engine.Settings()))
}

// settingsRequest carries all six tunables; every field is required so a
// partial update can never slip through half-applied.
type settingsRequest struct {
	CheckIntervalSeconds *int     `json:"check_interval_seconds" binding:"required"`
	MaxRiskPerTrade      *float64 `json:"max_risk_per_trade" binding:"required"`
	SentimentThreshold   *float64 `json:"sentiment_threshold" binding:"required"`
	RebalanceThreshold   *float64 `json:"rebalance_threshold" binding:"required"`
	VolatilityThreshold  *float64 `json:"volatility_threshold" binding:"required"`
	MinTradeSize         *float64 `json:"min_trade_size" binding:"required"`
}

func (s *Server) handleUpdateSettings(c *gin.Context) {
	var req settingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "all settings fields are required: " + err.Error()})
		return
	}
	next := model.Settings{
		CheckInterval:       time.Duration(*req.CheckIntervalSeconds) * time.Second,
		MaxRiskPerTrade:     *req.MaxRiskPerTrade,
		SentimentThreshold:  *req.SentimentThreshold,
		RebalanceThreshold:  *req.RebalanceThreshold,
		VolatilityThreshold: *req.VolatilityThreshold,
		MinTradeSize:        *req.MinTradeSize,
	}
	if err := s.engine.UpdateSettings(next); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "settings": settingsView(s.engine.Settings())})
}

func settingsView(s model.Settings) gin.H {
	return gin.H{
		"check_interval_seconds": int(s.CheckInterval / time.Second),
		"max_risk_per_trade":     s.MaxRiskPerTrade,
		"sentiment_threshold":    s.SentimentThreshold,
		"rebalance_threshold":    s.RebalanceThreshold,
		"volatility_threshold":   s.VolatilityThreshold,
		"min_trade_size":         s.MinTradeSize,
	}
}
