// Package advisory connects the data gateway to the external AI advisory flows.
// The flows are opaque: a typed request goes out, a validated typed response comes back.
package advisory

import (
	"context"
	"net/http"
	"strings"

	"fin-advisor-go/internal/apperr"
	"fin-advisor-go/internal/config"
	"fin-advisor-go/internal/models"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Flow is the AI advisory collaborator.
type Flow interface {
	SuggestStrategies(ctx context.Context, req StrategyRequest) (StrategyResponse, error)
	SummarizeMarket(ctx context.Context, req SummaryRequest) (SummaryResponse, error)
	Explain(ctx context.Context, req ExplainRequest) (ExplainResponse, error)
}

// StrategyRequest is the prompt context for strategy suggestion.
type StrategyRequest struct {
	RiskTolerance    string                `json:"risk_tolerance"`
	Horizon          string                `json:"horizon,omitempty"`
	Goals            string                `json:"goals,omitempty"`
	PreferredTickers []string              `json:"preferred_tickers"`
	Instruments      []models.Instrument   `json:"instruments"`
	Quotes           []models.Quote        `json:"quotes"`
	YieldCurve       []models.GovBondYield `json:"yield_curve,omitempty"`
}

type Allocation struct {
	Ticker string  `json:"ticker" validate:"required"`
	Weight float64 `json:"weight" validate:"gt=0,lte=100"`
}

type Strategy struct {
	Name        string       `json:"name" validate:"required"`
	Description string       `json:"description" validate:"required"`
	RiskLevel   string       `json:"risk_level" validate:"required,oneof=low medium high"`
	Allocations []Allocation `json:"allocations" validate:"required,min=1,dive"`
	Rationale   string       `json:"rationale,omitempty"`
}

type StrategyResponse struct {
	Strategies []Strategy `json:"strategies" validate:"required,min=1,dive"`
}

// SummaryRequest is the prompt context for a market summary.
type SummaryRequest struct {
	Quotes     []models.Quote        `json:"quotes"`
	YieldCurve []models.GovBondYield `json:"yield_curve"`
	Focus      string                `json:"focus,omitempty"`
}

type SummaryResponse struct {
	Summary    string   `json:"summary" validate:"required"`
	Highlights []string `json:"highlights,omitempty"`
	Sentiment  string   `json:"sentiment" validate:"required,oneof=bullish bearish neutral"`
}

type ExplainRequest struct {
	Topic string `json:"topic" validate:"required,max=500"`
	Level string `json:"level,omitempty" validate:"omitempty,oneof=beginner intermediate expert"`
}

type ExplainResponse struct {
	Explanation string   `json:"explanation" validate:"required"`
	KeyPoints   []string `json:"key_points,omitempty"`
}

// HTTPFlow calls flows hosted behind an HTTP endpoint, one path per flow.
type HTTPFlow struct {
	client *resty.Client
	token  string
	logger *zap.Logger
}

var _ Flow = (*HTTPFlow)(nil)

func NewHTTPFlow(cfg *config.Advisory, logger *zap.Logger) *HTTPFlow {
	return &HTTPFlow{
		client: resty.New().SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).SetTimeout(cfg.Timeout),
		token:  cfg.Token,
		logger: logger.Named("advisory-flow"),
	}
}

// call posts req to path and decodes the answer into out. Output validation is
// the Advisor's job.
func (f *HTTPFlow) call(ctx context.Context, op, path string, req, out any) error {
	if f.client.BaseURL == "" {
		return apperr.Newf(op, "", apperr.ErrNotConfigured, "advisory endpoint missing")
	}

	r := f.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		SetResult(out)
	if f.token != "" {
		r.SetAuthToken(f.token)
	}

	f.logger.Debug("Invoking flow", zap.String("flow", path))
	resp, err := r.Execute(http.MethodPost, path)
	if err != nil {
		return apperr.New(op, "", apperr.ErrDataUnavailable, err)
	}
	if resp.IsError() {
		return apperr.Newf(op, "", apperr.ErrDataUnavailable, "flow failed with status %s: %s", resp.Status(), resp.String())
	}
	return nil
}

func (f *HTTPFlow) SuggestStrategies(ctx context.Context, req StrategyRequest) (StrategyResponse, error) {
	var out StrategyResponse
	if err := f.call(ctx, "SuggestStrategies", "/flows/suggest-strategies", req, &out); err != nil {
		return StrategyResponse{}, err
	}
	return out, nil
}

func (f *HTTPFlow) SummarizeMarket(ctx context.Context, req SummaryRequest) (SummaryResponse, error) {
	var out SummaryResponse
	if err := f.call(ctx, "SummarizeMarket", "/flows/summarize-market", req, &out); err != nil {
		return SummaryResponse{}, err
	}
	return out, nil
}

func (f *HTTPFlow) Explain(ctx context.Context, req ExplainRequest) (ExplainResponse, error) {
	var out ExplainResponse
	if err := f.call(ctx, "Explain", "/flows/explain", req, &out); err != nil {
		return ExplainResponse{}, err
	}
	return out, nil
}
