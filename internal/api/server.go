package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"fin-advisor-go/internal/advisory"
	"fin-advisor-go/internal/config"
	"fin-advisor-go/internal/gateway"
	"fin-advisor-go/internal/models"
	"fin-advisor-go/internal/snapshot"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Gateway is the data-access surface the API exposes.
type Gateway interface {
	Mode() gateway.Mode
	Simulated() bool
	ListInstruments(ctx context.Context) ([]models.Instrument, error)
	GetQuote(ctx context.Context, ticker string) (models.Quote, error)
	GetHistoricalSeries(ctx context.Context, ticker, rangeStr string) ([]models.HistoricalPoint, error)
	GetYieldCurve(ctx context.Context) ([]models.GovBondYield, error)
	SubmitOrder(ctx context.Context, o models.Order) (models.Order, error)
	ListPositions(ctx context.Context) ([]models.Position, error)
	GetAccountBalance(ctx context.Context) (models.AccountBalance, error)
	InitiateDeposit(ctx context.Context, d models.DepositDetails) (models.TransactionStatus, error)
	InitiateTransfer(ctx context.Context, d models.TransferDetails) (models.TransactionStatus, error)
	InitiateWithdraw(ctx context.Context, d models.WithdrawDetails) (models.TransactionStatus, error)
}

// Journal records submitted orders.
type Journal interface {
	SaveOrder(ctx context.Context, rec *models.OrderRecord) error
	ListOrders(ctx context.Context, limit int) ([]models.OrderRecord, error)
}

// Advisor runs the AI advisory flows.
type Advisor interface {
	SuggestStrategies(ctx context.Context, in advisory.StrategyInput) (advisory.StrategyResponse, error)
	SummarizeMarket(ctx context.Context, tickers []string, focus string) (advisory.SummaryResponse, error)
	Explain(ctx context.Context, req advisory.ExplainRequest) (advisory.ExplainResponse, error)
}

// Snapshots captures and serves stored history snapshots.
type Snapshots interface {
	Capture(ctx context.Context, req snapshot.Request) (models.HistorySnapshot, error)
	Get(ctx context.Context, ticker string) (models.HistorySnapshot, []models.HistoricalPoint, error)
}

var (
	_ Gateway   = (*gateway.Gateway)(nil)
	_ Advisor   = (*advisory.Advisor)(nil)
	_ Snapshots = (*snapshot.Service)(nil)
)

// APIServer provides the HTTP interface to the gateway and advisory flows.
type APIServer struct {
	server    *http.Server
	router    *gin.Engine
	gw        Gateway
	journal   Journal
	advisor   Advisor
	snapshots Snapshots
	logger    *zap.Logger
	startTime time.Time
}

// NewAPIServer wires the router and middleware.
func NewAPIServer(cfg config.Server, gw Gateway, journal Journal, advisor Advisor, snapshots Snapshots, logger *zap.Logger) *APIServer {
	log := logger.Named("api-server")
	r := gin.New()

	// Request logging
	r.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("http_request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.String("ip", c.ClientIP()),
			zap.Duration("latency", time.Since(start)),
		)
	})
	r.Use(gin.Recovery())
	r.Use(cors(cfg.CORSOrigin))

	s := &APIServer{
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		},
		router:    r,
		gw:        gw,
		journal:   journal,
		advisor:   advisor,
		snapshots: snapshots,
		logger:    log,
		startTime: time.Now(),
	}
	s.routes()
	return s
}

func (s *APIServer) routes() {
	s.router.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })

	api := s.router.Group("/api")
	api.GET("/status", s.statusHandler)

	api.GET("/instruments", s.listInstruments)
	api.GET("/quotes/:ticker", s.getQuote)
	api.GET("/history/:ticker", s.getHistory)
	api.GET("/yield-curve", s.getYieldCurve)

	api.POST("/orders", s.submitOrder)
	api.GET("/orders", s.listOrders)
	api.GET("/positions", s.listPositions)
	api.GET("/account", s.getAccount)

	api.POST("/cash/deposits", s.deposit)
	api.POST("/cash/transfers", s.transfer)
	api.POST("/cash/withdrawals", s.withdraw)

	api.POST("/snapshots", s.captureSnapshot)
	api.GET("/snapshots/:ticker", s.getSnapshot)

	api.POST("/advisor/strategies", s.suggestStrategies)
	api.POST("/advisor/summary", s.summarizeMarket)
	api.POST("/advisor/explain", s.explain)
}

// Handler exposes the router, mainly for tests.
func (s *APIServer) Handler() http.Handler {
	return s.router
}

// Start runs the HTTP server in a new goroutine.
func (s *APIServer) Start() {
	s.logger.Info("Starting API server", zap.String("address", s.server.Addr), zap.String("mode", string(s.gw.Mode())))
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server failed", zap.Error(err))
		}
	}()
}

// Stop gracefully shuts down the server.
func (s *APIServer) Stop(ctx context.Context) error {
	s.logger.Info("Stopping API server...")
	return s.server.Shutdown(ctx)
}

func cors(origin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqOrigin := c.GetHeader("Origin")
		c.Writer.Header().Set("Vary", "Origin")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Max-Age", "86400")
		if origin == "*" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		} else if reqOrigin != "" && reqOrigin == origin {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
