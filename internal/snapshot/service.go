// Package snapshot captures a ticker's daily history and keeps the latest copy.
package snapshot

import (
	"context"
	"strings"
	"time"

	"fin-advisor-go/internal/apperr"
	"fin-advisor-go/internal/models"
	"go.uber.org/zap"
)

const (
	DefaultSymbol   = "GOOGL"
	DefaultPeriod   = "6m"
	DefaultInterval = "1d"
)

// HistorySource is the gateway operation snapshots are built from.
type HistorySource interface {
	GetHistoricalSeries(ctx context.Context, ticker, rangeStr string) ([]models.HistoricalPoint, error)
}

// Store persists snapshots.
type Store interface {
	UpsertSnapshot(ctx context.Context, snap *models.HistorySnapshot) error
	GetSnapshot(ctx context.Context, ticker string) (models.HistorySnapshot, error)
}

// Request names what to capture. Empty fields take the defaults.
type Request struct {
	Symbol   string `json:"symbol" form:"symbol"`
	Period   string `json:"period" form:"period"`
	Interval string `json:"interval" form:"interval"`
}

type Service struct {
	history HistorySource
	store   Store
	logger  *zap.Logger
	now     func() time.Time
}

func NewService(history HistorySource, store Store, logger *zap.Logger) *Service {
	return &Service{history: history, store: store, logger: logger.Named("snapshot"), now: time.Now}
}

// Capture fetches the series and overwrites the stored snapshot for the ticker.
// Only daily intervals are supported.
func (s *Service) Capture(ctx context.Context, req Request) (models.HistorySnapshot, error) {
	const op = "CaptureSnapshot"
	symbol := models.NormalizeTicker(req.Symbol)
	if symbol == "" {
		symbol = DefaultSymbol
	}
	period := strings.TrimSpace(req.Period)
	if period == "" {
		period = DefaultPeriod
	}
	interval := strings.ToLower(strings.TrimSpace(req.Interval))
	if interval == "" {
		interval = DefaultInterval
	}
	if interval != DefaultInterval {
		return models.HistorySnapshot{}, apperr.Newf(op, symbol, apperr.ErrInvalidArgument, "unsupported interval %q (only 1d)", req.Interval)
	}

	points, err := s.history.GetHistoricalSeries(ctx, symbol, period)
	if err != nil {
		return models.HistorySnapshot{}, err
	}

	r, _ := models.ParseHistoryRange(period)
	snap := models.HistorySnapshot{
		Ticker:     symbol,
		Period:     string(r),
		Interval:   interval,
		Points:     points,
		PointCount: len(points),
		CapturedAt: s.now().UTC(),
	}
	if err := s.store.UpsertSnapshot(ctx, &snap); err != nil {
		s.logger.Error("Failed to store snapshot", zap.String("ticker", symbol), zap.Error(err))
		return models.HistorySnapshot{}, err
	}

	s.logger.Info("Snapshot captured", zap.String("ticker", symbol), zap.Int("points", len(points)))
	return snap, nil
}

// Get returns the stored snapshot for ticker along with its points.
func (s *Service) Get(ctx context.Context, ticker string) (models.HistorySnapshot, []models.HistoricalPoint, error) {
	snap, err := s.store.GetSnapshot(ctx, models.NormalizeTicker(ticker))
	if err != nil {
		return models.HistorySnapshot{}, nil, err
	}
	return snap, snap.Points, nil
}
