// Package gateway is the single entry point for market data, orders, positions
// and cash operations. It normalizes whatever the configured source returns.
package gateway

import (
	"fmt"

	"fin-advisor-go/internal/apperr"
	"fin-advisor-go/internal/brokerage"
	"fin-advisor-go/internal/cashops"
	"fin-advisor-go/internal/config"
	"fin-advisor-go/internal/marketdata"
	"fin-advisor-go/internal/models"
	"fin-advisor-go/internal/simulated"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// maxQuoteJoins bounds concurrent quote lookups while enriching positions.
const maxQuoteJoins = 8

// Gateway routes every operation to one DataSource and normalizes the results.
type Gateway struct {
	mode     Mode
	source   DataSource
	ladder   []models.YieldTicker
	validate *validator.Validate
	logger   *zap.Logger
}

// New creates a Gateway bound to source for its lifetime.
func New(mode Mode, source DataSource, ladder []models.YieldTicker, logger *zap.Logger) *Gateway {
	return &Gateway{
		mode:     mode,
		source:   source,
		ladder:   ladder,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger.Named("gateway"),
	}
}

// NewFromConfig selects the data source once from cfg.UseMock.
func NewFromConfig(cfg *config.Config, logger *zap.Logger) (*Gateway, error) {
	ladder, err := config.NormalizeLadder(cfg.MarketData.YieldLadder)
	if err != nil {
		return nil, err
	}

	mode := ParseMode(cfg.UseMock)
	var source DataSource
	switch mode {
	case ModeLive:
		market, err := marketdata.NewRestClient(&cfg.MarketData, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create market data client: %w", err)
		}
		source = &liveSource{
			market: market,
			broker: brokerage.NewRestClient(&cfg.Brokerage, logger),
			cash:   cashops.NewRestClient(&cfg.Backend, logger),
		}
	default:
		source = simulated.NewSource(cfg.Simulation.Latency, cfg.Simulation.Seed, ladder, logger)
	}

	logger.Info("Data gateway ready", zap.String("mode", string(mode)), zap.Int("yield_ladder", len(ladder)))
	return New(mode, source, ladder, logger), nil
}

// Mode reports the data mode chosen at construction.
func (g *Gateway) Mode() Mode {
	return g.mode
}

// Simulated reports whether results are synthetic.
func (g *Gateway) Simulated() bool {
	return g.mode == ModeSimulated
}

// Ladder is the maturity-to-ticker mapping the yield curve is built from.
func (g *Gateway) Ladder() []models.YieldTicker {
	out := make([]models.YieldTicker, len(g.ladder))
	copy(out, g.ladder)
	return out
}

// classify leaves typed errors alone and marks anything else as DataUnavailable.
func classify(op, subject string, err error) error {
	if apperr.KindOf(err) != nil {
		return err
	}
	return apperr.New(op, subject, apperr.ErrDataUnavailable, err)
}
