package advisory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fin-advisor-go/internal/apperr"
	"fin-advisor-go/internal/config"
	"fin-advisor-go/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockMarket is a mock MarketData.
type MockMarket struct {
	mock.Mock
}

func (m *MockMarket) ListInstruments(ctx context.Context) ([]models.Instrument, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Instrument), args.Error(1)
}

func (m *MockMarket) GetQuote(ctx context.Context, ticker string) (models.Quote, error) {
	args := m.Called(ctx, ticker)
	return args.Get(0).(models.Quote), args.Error(1)
}

func (m *MockMarket) GetYieldCurve(ctx context.Context) ([]models.GovBondYield, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.GovBondYield), args.Error(1)
}

// MockFlow is a mock Flow.
type MockFlow struct {
	mock.Mock
}

func (m *MockFlow) SuggestStrategies(ctx context.Context, req StrategyRequest) (StrategyResponse, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(StrategyResponse), args.Error(1)
}

func (m *MockFlow) SummarizeMarket(ctx context.Context, req SummaryRequest) (SummaryResponse, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(SummaryResponse), args.Error(1)
}

func (m *MockFlow) Explain(ctx context.Context, req ExplainRequest) (ExplainResponse, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(ExplainResponse), args.Error(1)
}

var catalog = []models.Instrument{{Ticker: "AGG"}, {Ticker: "TLT"}, {Ticker: "^TNX"}}

func validStrategies() StrategyResponse {
	return StrategyResponse{Strategies: []Strategy{{
		Name:        "Core bond ladder",
		Description: "Spread duration across the curve",
		RiskLevel:   "low",
		Allocations: []Allocation{{Ticker: "AGG", Weight: 60}, {Ticker: "TLT", Weight: 40}},
	}}}
}

func TestNormalizeTickers(t *testing.T) {
	tests := []struct {
		name      string
		preferred []string
		want      []string
	}{
		{"TrimAndUpper", []string{" agg", "tlt "}, []string{"AGG", "TLT"}},
		{"FiltersUnknown", []string{"agg", "DOGE"}, []string{"AGG"}},
		{"Dedupes", []string{"AGG", "agg"}, []string{"AGG"}},
		{"EmptyDefaultsToCatalog", nil, []string{"AGG", "TLT", "^TNX"}},
		{"AllUnknownDefaultsToCatalog", []string{"DOGE", " "}, []string{"AGG", "TLT", "^TNX"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeTickers(tt.preferred, catalog))
		})
	}
}

func TestSuggestStrategies(t *testing.T) {
	t.Run("BuildsContext", func(t *testing.T) {
		// Arrange
		market := new(MockMarket)
		market.On("ListInstruments", mock.Anything).Return(catalog, nil)
		market.On("GetQuote", mock.Anything, "AGG").Return(models.Quote{Ticker: "AGG", Price: 98}, nil)
		market.On("GetQuote", mock.Anything, "TLT").Return(models.Quote{}, apperr.Newf("GetQuote", "TLT", apperr.ErrDataUnavailable, "down"))
		market.On("GetYieldCurve", mock.Anything).Return([]models.GovBondYield{{Maturity: models.Maturity10Y, Yield: 4.2}}, nil)

		flow := new(MockFlow)
		flow.On("SuggestStrategies", mock.Anything, mock.MatchedBy(func(req StrategyRequest) bool {
			return assert.ObjectsAreEqual([]string{"AGG", "TLT"}, req.PreferredTickers) &&
				len(req.Quotes) == 1 && req.Quotes[0].Ticker == "AGG" &&
				len(req.YieldCurve) == 1 && len(req.Instruments) == 3
		})).Return(validStrategies(), nil)

		a := NewAdvisor(market, flow, zap.NewNop())

		// Act
		resp, err := a.SuggestStrategies(context.Background(), StrategyInput{RiskTolerance: "low", PreferredTickers: []string{"agg", "tlt", "nope"}})

		// Assert
		require.NoError(t, err)
		assert.Len(t, resp.Strategies, 1)
		flow.AssertExpectations(t)
	})

	t.Run("CapsQuotedTickers", func(t *testing.T) {
		// Arrange
		large := make([]models.Instrument, 0, 3*maxQuotedTickers)
		for i := 0; i < 3*maxQuotedTickers; i++ {
			large = append(large, models.Instrument{Ticker: fmt.Sprintf("T%03d", i)})
		}
		market := new(MockMarket)
		market.On("ListInstruments", mock.Anything).Return(large, nil)
		market.On("GetQuote", mock.Anything, mock.Anything).Return(models.Quote{Price: 1}, nil)
		market.On("GetYieldCurve", mock.Anything).Return(nil, errors.New("down"))

		flow := new(MockFlow)
		flow.On("SuggestStrategies", mock.Anything, mock.MatchedBy(func(req StrategyRequest) bool {
			return len(req.PreferredTickers) == len(large) && len(req.Quotes) == maxQuotedTickers
		})).Return(validStrategies(), nil)

		// Act
		_, err := NewAdvisor(market, flow, zap.NewNop()).SuggestStrategies(context.Background(), StrategyInput{RiskTolerance: "medium"})

		// Assert
		require.NoError(t, err)
		market.AssertNumberOfCalls(t, "GetQuote", maxQuotedTickers)
		market.AssertNotCalled(t, "GetQuote", mock.Anything, "T059")
		flow.AssertExpectations(t)
	})

	t.Run("InvalidFlowOutput", func(t *testing.T) {
		market := new(MockMarket)
		market.On("ListInstruments", mock.Anything).Return(catalog, nil)
		market.On("GetQuote", mock.Anything, mock.Anything).Return(models.Quote{Price: 1}, nil)
		market.On("GetYieldCurve", mock.Anything).Return(nil, errors.New("down"))

		bad := validStrategies()
		bad.Strategies[0].Allocations = nil
		flow := new(MockFlow)
		flow.On("SuggestStrategies", mock.Anything, mock.Anything).Return(bad, nil)

		resp, err := NewAdvisor(market, flow, zap.NewNop()).SuggestStrategies(context.Background(), StrategyInput{RiskTolerance: "high"})

		assert.True(t, errors.Is(err, apperr.ErrDataUnavailable))
		assert.Empty(t, resp.Strategies)
	})

	t.Run("InvalidInput", func(t *testing.T) {
		market := new(MockMarket)
		flow := new(MockFlow)

		_, err := NewAdvisor(market, flow, zap.NewNop()).SuggestStrategies(context.Background(), StrategyInput{RiskTolerance: "yolo"})

		assert.True(t, errors.Is(err, apperr.ErrInvalidArgument))
		market.AssertNotCalled(t, "ListInstruments", mock.Anything)
	})

	t.Run("CatalogFailure", func(t *testing.T) {
		market := new(MockMarket)
		market.On("ListInstruments", mock.Anything).Return(nil, apperr.Newf("ListInstruments", "", apperr.ErrDataUnavailable, "down"))

		_, err := NewAdvisor(market, new(MockFlow), zap.NewNop()).SuggestStrategies(context.Background(), StrategyInput{RiskTolerance: "low"})

		assert.True(t, errors.Is(err, apperr.ErrDataUnavailable))
	})
}

func TestSummarizeMarket(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		market := new(MockMarket)
		market.On("ListInstruments", mock.Anything).Return(catalog, nil)
		market.On("GetQuote", mock.Anything, mock.Anything).Return(models.Quote{Price: 1}, nil)
		market.On("GetYieldCurve", mock.Anything).Return([]models.GovBondYield{{Maturity: models.Maturity2Y, Yield: 4.7}}, nil)
		flow := new(MockFlow)
		flow.On("SummarizeMarket", mock.Anything, mock.Anything).Return(SummaryResponse{Summary: "Curve inverted", Sentiment: "neutral"}, nil)

		resp, err := NewAdvisor(market, flow, zap.NewNop()).SummarizeMarket(context.Background(), nil, "rates")

		require.NoError(t, err)
		assert.Equal(t, "Curve inverted", resp.Summary)
	})

	t.Run("MissingSentiment", func(t *testing.T) {
		market := new(MockMarket)
		market.On("ListInstruments", mock.Anything).Return(catalog, nil)
		market.On("GetQuote", mock.Anything, mock.Anything).Return(models.Quote{Price: 1}, nil)
		market.On("GetYieldCurve", mock.Anything).Return(nil, errors.New("down"))
		flow := new(MockFlow)
		flow.On("SummarizeMarket", mock.Anything, mock.Anything).Return(SummaryResponse{Summary: "partial"}, nil)

		_, err := NewAdvisor(market, flow, zap.NewNop()).SummarizeMarket(context.Background(), nil, "")

		assert.True(t, errors.Is(err, apperr.ErrDataUnavailable))
	})
}

func TestExplain(t *testing.T) {
	flow := new(MockFlow)
	flow.On("Explain", mock.Anything, ExplainRequest{Topic: "duration"}).Return(ExplainResponse{Explanation: "Sensitivity to rates"}, nil)
	a := NewAdvisor(new(MockMarket), flow, zap.NewNop())

	resp, err := a.Explain(context.Background(), ExplainRequest{Topic: "duration"})
	require.NoError(t, err)
	assert.Equal(t, "Sensitivity to rates", resp.Explanation)

	_, err = a.Explain(context.Background(), ExplainRequest{})
	assert.True(t, errors.Is(err, apperr.ErrInvalidArgument))
}

func TestHTTPFlow(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/flows/explain", r.URL.Path)
			assert.Equal(t, "Bearer flow-token", r.Header.Get("Authorization"))
			var req ExplainRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "yield curve", req.Topic)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"explanation":"A plot of yields by maturity","key_points":["shape","slope"]}`))
		})
		server := httptest.NewServer(handler)
		defer server.Close()
		f := NewHTTPFlow(&config.Advisory{BaseURL: server.URL, Token: "flow-token", Timeout: time.Second}, zap.NewNop())

		resp, err := f.Explain(context.Background(), ExplainRequest{Topic: "yield curve"})

		require.NoError(t, err)
		assert.Equal(t, []string{"shape", "slope"}, resp.KeyPoints)
	})

	t.Run("Failure", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})
		server := httptest.NewServer(handler)
		defer server.Close()
		f := NewHTTPFlow(&config.Advisory{BaseURL: server.URL}, zap.NewNop())

		_, err := f.SummarizeMarket(context.Background(), SummaryRequest{})

		assert.True(t, errors.Is(err, apperr.ErrDataUnavailable))
	})

	t.Run("NotConfigured", func(t *testing.T) {
		f := NewHTTPFlow(&config.Advisory{}, zap.NewNop())

		_, err := f.SuggestStrategies(context.Background(), StrategyRequest{})

		assert.True(t, errors.Is(err, apperr.ErrNotConfigured))
	})
}
