package advisory

import (
	"context"
	"fmt"
	"sync"

	"fin-advisor-go/internal/apperr"
	"fin-advisor-go/internal/models"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	// maxContextQuotes bounds concurrent quote lookups.
	maxContextQuotes = 8
	// maxQuotedTickers bounds how many tickers are quoted for one prompt. A
	// catalog fallback can hold hundreds of tickers.
	maxQuotedTickers = 20
)

// MarketData is the slice of the gateway the advisor reads prompt context from.
type MarketData interface {
	ListInstruments(ctx context.Context) ([]models.Instrument, error)
	GetQuote(ctx context.Context, ticker string) (models.Quote, error)
	GetYieldCurve(ctx context.Context) ([]models.GovBondYield, error)
}

// Advisor assembles prompt context from market data and invokes the flows.
type Advisor struct {
	market   MarketData
	flow     Flow
	validate *validator.Validate
	logger   *zap.Logger
}

func NewAdvisor(market MarketData, flow Flow, logger *zap.Logger) *Advisor {
	return &Advisor{
		market:   market,
		flow:     flow,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger.Named("advisor"),
	}
}

// StrategyInput is what a caller supplies when asking for strategies.
type StrategyInput struct {
	RiskTolerance    string   `json:"risk_tolerance" validate:"required,oneof=low medium high"`
	Horizon          string   `json:"horizon"`
	Goals            string   `json:"goals" validate:"max=2000"`
	PreferredTickers []string `json:"preferred_tickers"`
}

// NormalizeTickers trims and upper-cases preferred tickers, keeps the ones in the
// catalog, and falls back to the whole catalog when none survive.
func NormalizeTickers(preferred []string, catalog []models.Instrument) []string {
	known := make(map[string]struct{}, len(catalog))
	for _, i := range catalog {
		known[i.Ticker] = struct{}{}
	}

	out := make([]string, 0, len(preferred))
	seen := make(map[string]struct{}, len(preferred))
	for _, p := range preferred {
		t := models.NormalizeTicker(p)
		if _, ok := known[t]; !ok {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	if len(out) > 0 {
		return out
	}

	all := make([]string, 0, len(catalog))
	for _, i := range models.DedupeInstruments(catalog) {
		all = append(all, i.Ticker)
	}
	return all
}

// quotes fetches quotes for tickers concurrently. Tickers whose quote fails are
// left out; the result keeps the order of tickers.
func (a *Advisor) quotes(ctx context.Context, tickers []string) []models.Quote {
	got := make([]*models.Quote, len(tickers))
	var eg errgroup.Group
	eg.SetLimit(maxContextQuotes)
	for i, t := range tickers {
		i, t := i, t
		eg.Go(func() error {
			q, err := a.market.GetQuote(ctx, t)
			if err != nil {
				a.logger.Warn("Skipping quote in prompt context", zap.String("ticker", t), zap.Error(err))
				return nil
			}
			got[i] = &q
			return nil
		})
	}
	_ = eg.Wait()

	out := make([]models.Quote, 0, len(tickers))
	for _, q := range got {
		if q != nil {
			out = append(out, *q)
		}
	}
	return out
}

// marketContext loads the catalog, then quotes the first maxQuotedTickers tickers
// and fetches the yield curve concurrently.
// A missing yield curve is tolerated; a missing catalog is not.
func (a *Advisor) marketContext(ctx context.Context, preferred []string) ([]models.Instrument, []string, []models.Quote, []models.GovBondYield, error) {
	catalog, err := a.market.ListInstruments(ctx)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to load instrument catalog: %w", err)
	}
	tickers := NormalizeTickers(preferred, catalog)
	quoted := tickers
	if len(quoted) > maxQuotedTickers {
		quoted = quoted[:maxQuotedTickers]
	}

	var (
		wg     sync.WaitGroup
		quotes []models.Quote
		curve  []models.GovBondYield
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		quotes = a.quotes(ctx, quoted)
	}()
	go func() {
		defer wg.Done()
		c, err := a.market.GetYieldCurve(ctx)
		if err != nil {
			a.logger.Warn("Yield curve unavailable for prompt context", zap.Error(err))
			return
		}
		curve = c
	}()
	wg.Wait()

	return catalog, tickers, quotes, curve, nil
}

func (a *Advisor) checkOutput(op string, out any) error {
	if err := a.validate.Struct(out); err != nil {
		a.logger.Error("Flow returned an invalid response", zap.String("op", op), zap.Error(err))
		return apperr.New(op, "", apperr.ErrDataUnavailable, fmt.Errorf("invalid flow output: %w", err))
	}
	return nil
}

// SuggestStrategies asks the strategy flow for allocations over the caller's
// preferred tickers.
func (a *Advisor) SuggestStrategies(ctx context.Context, in StrategyInput) (StrategyResponse, error) {
	const op = "SuggestStrategies"
	if err := a.validate.Struct(in); err != nil {
		return StrategyResponse{}, apperr.New(op, "", apperr.ErrInvalidArgument, err)
	}

	catalog, tickers, quotes, curve, err := a.marketContext(ctx, in.PreferredTickers)
	if err != nil {
		return StrategyResponse{}, err
	}

	resp, err := a.flow.SuggestStrategies(ctx, StrategyRequest{
		RiskTolerance:    in.RiskTolerance,
		Horizon:          in.Horizon,
		Goals:            in.Goals,
		PreferredTickers: tickers,
		Instruments:      catalog,
		Quotes:           quotes,
		YieldCurve:       curve,
	})
	if err != nil {
		return StrategyResponse{}, err
	}
	if err := a.checkOutput(op, &resp); err != nil {
		return StrategyResponse{}, err
	}
	return resp, nil
}

// SummarizeMarket asks for a narrative summary of current quotes and the yield curve.
func (a *Advisor) SummarizeMarket(ctx context.Context, tickers []string, focus string) (SummaryResponse, error) {
	const op = "SummarizeMarket"
	_, _, quotes, curve, err := a.marketContext(ctx, tickers)
	if err != nil {
		return SummaryResponse{}, err
	}
	if len(quotes) == 0 && len(curve) == 0 {
		return SummaryResponse{}, apperr.Newf(op, "", apperr.ErrDataUnavailable, "no market data to summarize")
	}

	resp, err := a.flow.SummarizeMarket(ctx, SummaryRequest{Quotes: quotes, YieldCurve: curve, Focus: focus})
	if err != nil {
		return SummaryResponse{}, err
	}
	if err := a.checkOutput(op, &resp); err != nil {
		return SummaryResponse{}, err
	}
	return resp, nil
}

// Explain asks for an explanation of a financial topic. No market data is needed.
func (a *Advisor) Explain(ctx context.Context, req ExplainRequest) (ExplainResponse, error) {
	const op = "Explain"
	if err := a.validate.Struct(req); err != nil {
		return ExplainResponse{}, apperr.New(op, "", apperr.ErrInvalidArgument, err)
	}

	resp, err := a.flow.Explain(ctx, req)
	if err != nil {
		return ExplainResponse{}, err
	}
	if err := a.checkOutput(op, &resp); err != nil {
		return ExplainResponse{}, err
	}
	return resp, nil
}
