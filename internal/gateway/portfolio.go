package gateway

import (
	"context"

	"fin-advisor-go/internal/models"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// SubmitOrder validates the order's shape and hands it to the source.
func (g *Gateway) SubmitOrder(ctx context.Context, o models.Order) (models.Order, error) {
	o.Normalize()
	if err := o.Validate(); err != nil {
		return models.Order{}, err
	}

	out, err := g.source.SubmitOrder(ctx, o)
	if err != nil {
		g.logger.Warn("Order not placed", zap.String("ticker", o.Ticker), zap.Error(err))
		return models.Order{}, classify("SubmitOrder", o.Ticker, err)
	}
	return out, nil
}

// ListPositions returns holdings with derived fields computed now. Rows without a
// broker mark, and rate instruments, get a quote joined concurrently; a failed
// join leaves that row's derived fields empty without failing the others.
func (g *Gateway) ListPositions(ctx context.Context) ([]models.Position, error) {
	rows, err := g.source.ListPositions(ctx)
	if err != nil {
		return nil, classify("ListPositions", "", err)
	}

	positions := make([]models.Position, len(rows))
	var eg errgroup.Group
	eg.SetLimit(maxQuoteJoins)

	for i, row := range rows {
		p := models.Position{
			Ticker:          row.Ticker,
			Quantity:        row.Quantity,
			AvgPrice:        models.RoundPrice(row.AvgPrice),
			AssetClass:      row.AssetClass,
			CurrentDuration: row.Duration,
		}
		if row.RealizedPnL != nil {
			p.RealizedPnL = models.Float64(models.RoundPrice(*row.RealizedPnL))
		}
		if row.MarkPrice != nil {
			p.ApplyPrice(*row.MarkPrice)
		}
		positions[i] = p

		if row.MarkPrice != nil && !row.AssetClass.IsRate() {
			continue
		}
		i, row := i, row
		eg.Go(func() error {
			q, err := g.GetQuote(ctx, row.Ticker)
			if err != nil {
				g.logger.Warn("Quote join failed", zap.String("ticker", row.Ticker), zap.Error(err))
				return nil
			}
			switch {
			case q.Unit == models.UnitYieldPercent:
				positions[i].CurrentYield = models.Float64(q.Price)
			case positions[i].CurrentPrice == nil:
				positions[i].ApplyPrice(q.Price)
			}
			return nil
		})
	}
	_ = eg.Wait()

	return positions, nil
}

// GetAccountBalance returns the account snapshot with amounts rounded.
func (g *Gateway) GetAccountBalance(ctx context.Context) (models.AccountBalance, error) {
	bal, err := g.source.GetAccountBalance(ctx)
	if err != nil {
		return models.AccountBalance{}, classify("GetAccountBalance", "", err)
	}
	bal.Cash = models.RoundPrice(bal.Cash)
	bal.BuyingPower = models.RoundPrice(bal.BuyingPower)
	bal.PortfolioValue = models.RoundPrice(bal.PortfolioValue)
	if bal.SettledCash != nil {
		bal.SettledCash = models.Float64(models.RoundPrice(*bal.SettledCash))
	}
	return bal, nil
}
