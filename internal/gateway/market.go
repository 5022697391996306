package gateway

import (
	"context"
	"sync"

	"fin-advisor-go/internal/apperr"
	"fin-advisor-go/internal/marketdata"
	"fin-advisor-go/internal/models"
	"go.uber.org/zap"
)

// ListInstruments returns the instrument universe, one entry per ticker.
func (g *Gateway) ListInstruments(ctx context.Context) ([]models.Instrument, error) {
	list, err := g.source.ListInstruments(ctx)
	if err != nil {
		g.logger.Error("Failed to list instruments", zap.Error(err))
		return nil, classify("ListInstruments", "", err)
	}
	return models.DedupeInstruments(list), nil
}

// GetQuote returns a rounded quote with change fields derived from the rounded
// price and previous close.
func (g *Gateway) GetQuote(ctx context.Context, ticker string) (models.Quote, error) {
	const op = "GetQuote"
	t := models.NormalizeTicker(ticker)
	if t == "" {
		return models.Quote{}, apperr.Newf(op, "", apperr.ErrInvalidArgument, "ticker is required")
	}

	data, err := g.source.GetQuote(ctx, t)
	if err != nil {
		return models.Quote{}, classify(op, t, err)
	}
	data.Ticker = t
	return models.NewQuote(data, marketdata.UnitFor(t, g.ladder)), nil
}

// GetHistoricalSeries returns daily values for the range, oldest first, one per day.
func (g *Gateway) GetHistoricalSeries(ctx context.Context, ticker, rangeStr string) ([]models.HistoricalPoint, error) {
	const op = "GetHistoricalSeries"
	t := models.NormalizeTicker(ticker)
	if t == "" {
		return nil, apperr.Newf(op, "", apperr.ErrInvalidArgument, "ticker is required")
	}
	r, ok := models.ParseHistoryRange(rangeStr)
	if !ok {
		return nil, apperr.Newf(op, t, apperr.ErrInvalidArgument, "unsupported range %q (use 1m, 6m or 1y)", rangeStr)
	}

	points, err := g.source.GetHistory(ctx, t, r)
	if err != nil {
		return nil, classify(op, t, err)
	}
	points = models.NormalizeSeries(points)
	if len(points) == 0 {
		return nil, apperr.Newf(op, t, apperr.ErrDataUnavailable, "no history for range %s", r)
	}
	return points, nil
}

// GetYieldCurve quotes every ladder maturity concurrently. Maturities that cannot
// be resolved are left out; the call fails only when none resolve.
func (g *Gateway) GetYieldCurve(ctx context.Context) ([]models.GovBondYield, error) {
	ladder := make([]models.YieldTicker, 0, len(g.ladder))
	seen := make(map[models.Maturity]struct{}, len(g.ladder))
	for _, yt := range g.ladder {
		if _, dup := seen[yt.Maturity]; dup {
			continue
		}
		seen[yt.Maturity] = struct{}{}
		ladder = append(ladder, yt)
	}

	var wg sync.WaitGroup
	results := make(chan models.GovBondYield, len(ladder))

	for _, yt := range ladder {
		wg.Add(1)
		go func(yt models.YieldTicker) {
			defer wg.Done()
			q, err := g.GetQuote(ctx, yt.Ticker)
			if err != nil {
				g.logger.Warn("Yield unavailable",
					zap.String("maturity", string(yt.Maturity)),
					zap.String("ticker", yt.Ticker),
					zap.Error(err),
				)
				return
			}
			results <- models.GovBondYield{
				Maturity:  yt.Maturity,
				Yield:     q.Price,
				Change:    q.Change,
				Timestamp: q.Timestamp,
			}
		}(yt)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	curve := make([]models.GovBondYield, 0, len(ladder))
	for y := range results {
		curve = append(curve, y)
	}
	if len(curve) == 0 {
		return nil, apperr.Newf("GetYieldCurve", "", apperr.ErrDataUnavailable, "no maturity could be resolved")
	}

	models.SortYieldCurve(curve)
	return curve, nil
}
