// Package simulated is the offline data source: synthetic market data, an
// illustrative portfolio and a cash backend that never moves money.
package simulated

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"fin-advisor-go/internal/marketdata"
	"fin-advisor-go/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// yieldBaseline is the centre of simulated yields in percent.
	yieldBaseline = 3.5
	priceBaseline = 100.0
	// drift bounds each random step as a fraction of the value.
	drift = 0.02
	// depositPendingRate is the share of simulated deposits left pending; the rest fail.
	depositPendingRate = 0.9
)

var priceBaselines = map[string]float64{
	"AGG":    98,
	"BND":    72,
	"TLT":    92,
	"IEF":    95,
	"SHY":    82,
	"TIP":    108,
	"MUB":    107,
	"BIL":    91.5,
	"GOVT":   23,
	"SPY":    520,
	"EURUSD": 1.08,
}

// Source produces synthetic data after a configurable delay.
type Source struct {
	mu      sync.Mutex
	rng     *rand.Rand
	latency time.Duration
	ladder  []models.YieldTicker
	logger  *zap.Logger
	now     func() time.Time
}

// NewSource creates a simulated source. A zero seed seeds from the clock.
func NewSource(latency time.Duration, seed int64, ladder []models.YieldTicker, logger *zap.Logger) *Source {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Source{
		rng:     rand.New(rand.NewSource(seed)),
		latency: latency,
		ladder:  ladder,
		logger:  logger.Named("simulated"),
		now:     time.Now,
	}
}

// wait emulates network latency and honours cancellation.
func (s *Source) wait(ctx context.Context) error {
	if s.latency <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(s.latency)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// noise returns a uniform value in [-1, 1).
func (s *Source) noise() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()*2 - 1
}

func (s *Source) float() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()
}

func (s *Source) baseline(ticker string) float64 {
	if marketdata.IsYieldTicker(ticker, s.ladder) {
		return yieldBaseline
	}
	if b, ok := priceBaselines[ticker]; ok {
		return b
	}
	return priceBaseline
}

// ListInstruments returns the curated catalog.
func (s *Source) ListInstruments(ctx context.Context) ([]models.Instrument, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	return marketdata.Curated(), nil
}

// GetQuote derives a previous close within ±2% of the baseline and a current
// price within ±2% of that.
func (s *Source) GetQuote(ctx context.Context, ticker string) (models.QuoteData, error) {
	if err := s.wait(ctx); err != nil {
		return models.QuoteData{}, err
	}

	prev := s.baseline(ticker) * (1 + s.noise()*drift)
	price := prev * (1 + s.noise()*drift)
	spread := price * 0.0005
	volume := int64(100_000 + s.float()*900_000)

	return models.QuoteData{
		Ticker:        ticker,
		Price:         price,
		PreviousClose: models.Float64(prev),
		Bid:           models.Float64(price - spread),
		Ask:           models.Float64(price + spread),
		Volume:        &volume,
		Timestamp:     s.now().UTC(),
	}, nil
}

// GetHistory returns a day-stepped random walk with exactly r.Points() entries
// ending today.
func (s *Source) GetHistory(ctx context.Context, ticker string, r models.HistoryRange) ([]models.HistoricalPoint, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}

	n := r.Points()
	today := s.now().UTC().Truncate(24 * time.Hour)
	value := s.baseline(ticker)
	points := make([]models.HistoricalPoint, n)
	for i := 0; i < n; i++ {
		value *= 1 + s.noise()*drift/4
		points[i] = models.HistoricalPoint{Date: today.AddDate(0, 0, i-n+1), Value: value}
	}
	return points, nil
}

// SubmitOrder acknowledges every order. Nothing is ever filled.
func (s *Source) SubmitOrder(ctx context.Context, o models.Order) (models.Order, error) {
	if err := s.wait(ctx); err != nil {
		return models.Order{}, err
	}
	now := s.now().UTC()
	o.ID = uuid.NewString()
	o.Status = models.StatusAccepted
	o.CreatedAt = now
	o.UpdatedAt = now
	s.logger.Info("Simulated order accepted", zap.String("order_id", o.ID), zap.String("ticker", o.Ticker))
	return o, nil
}

// portfolio is the fixed illustrative book. Marks are fixed so repeated reads agree.
var portfolio = []models.BrokerPosition{
	{Ticker: "AGG", Quantity: 150, AvgPrice: 96.4, AssetClass: models.AssetIndexETF, MarkPrice: models.Float64(98.12), RealizedPnL: models.Float64(42.5), Duration: models.Float64(6.1)},
	{Ticker: "TLT", Quantity: 40, AvgPrice: 95.1, AssetClass: models.AssetIndexETF, MarkPrice: models.Float64(92.37), Duration: models.Float64(16.4)},
	{Ticker: "SHY", Quantity: 200, AvgPrice: 81.9, AssetClass: models.AssetIndexETF, MarkPrice: models.Float64(82.05), Duration: models.Float64(1.9)},
	{Ticker: "TIP", Quantity: 35, AvgPrice: 106.75, AssetClass: models.AssetInflationLinked, MarkPrice: models.Float64(108.3), Duration: models.Float64(6.7)},
	{Ticker: "MUB", Quantity: 60, AvgPrice: 107.2, AssetClass: models.AssetIndexETF, MarkPrice: models.Float64(106.85), RealizedPnL: models.Float64(-12.3), Duration: models.Float64(6.3)},
}

// ListPositions returns the fixed illustrative portfolio.
func (s *Source) ListPositions(ctx context.Context) ([]models.BrokerPosition, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	out := make([]models.BrokerPosition, len(portfolio))
	copy(out, portfolio)
	return out, nil
}

// GetAccountBalance returns a fixed snapshot.
func (s *Source) GetAccountBalance(ctx context.Context) (models.AccountBalance, error) {
	if err := s.wait(ctx); err != nil {
		return models.AccountBalance{}, err
	}
	return models.AccountBalance{
		Cash:           25_000,
		Currency:       "USD",
		BuyingPower:    50_000,
		PortfolioValue: 70_024.3,
		SettledCash:    models.Float64(24_500),
	}, nil
}

// InitiateDeposit returns pending most of the time and failed otherwise.
func (s *Source) InitiateDeposit(ctx context.Context, d models.DepositDetails) (models.TransactionStatus, error) {
	if err := s.wait(ctx); err != nil {
		return models.TransactionStatus{}, err
	}
	status := models.TransactionStatus{
		TransactionID: uuid.NewString(),
		Status:        models.TxPending,
		Timestamp:     s.now().UTC(),
	}
	if s.float() >= depositPendingRate {
		status.Status = models.TxFailed
		msg := "simulated deposit failure"
		status.Message = &msg
	}
	return status, nil
}
