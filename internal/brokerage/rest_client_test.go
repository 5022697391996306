package brokerage

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"fin-advisor-go/internal/apperr"
	"fin-advisor-go/internal/config"
	"fin-advisor-go/internal/models"
	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// setupTestServer creates a new test server and a RestClient configured to use it.
func setupTestServer(handler http.Handler) (*RestClient, *httptest.Server) {
	server := httptest.NewServer(handler)

	rc := &RestClient{
		client:    resty.New().SetBaseURL(server.URL),
		apiKey:    "test_api_key",
		secretKey: "test_secret_key",
		logger:    zap.NewNop(),
		limiter:   rate.NewLimiter(rate.Inf, 1), // Allow all requests in tests
	}
	return rc, server
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func marketOrder() models.Order {
	return models.Order{Ticker: "TLT", Quantity: 10, Side: models.SideBuy, PriceType: models.PriceMarket, TimeInForce: "day"}
}

func TestSubmitOrder(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		// Arrange
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/v2/orders", r.URL.Path)
			assert.Equal(t, "test_api_key", r.Header.Get("APCA-API-KEY-ID"))
			assert.Equal(t, "test_secret_key", r.Header.Get("APCA-API-SECRET-KEY"))

			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "TLT", body["symbol"])
			assert.Equal(t, "10", body["qty"])
			assert.Equal(t, "buy", body["side"])
			assert.Equal(t, "market", body["type"])
			assert.Equal(t, "day", body["time_in_force"])
			_, hasLimit := body["limit_price"]
			assert.False(t, hasLimit)

			writeJSON(w, http.StatusOK, `{"id":"b0b6dd9d","status":"pending_new","symbol":"TLT","qty":"10",
				"created_at":"2024-06-14T15:00:00Z","updated_at":"2024-06-14T15:00:01Z"}`)
		})
		rc, server := setupTestServer(handler)
		defer server.Close()

		// Act
		order, err := rc.SubmitOrder(context.Background(), marketOrder())

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "b0b6dd9d", order.ID)
		assert.Equal(t, models.StatusAccepted, order.Status)
		assert.Equal(t, "TLT", order.Ticker)
		assert.False(t, order.CreatedAt.IsZero())
	})

	t.Run("LimitPriceSent", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "limit", body["type"])
			assert.Equal(t, "91.25", body["limit_price"])
			writeJSON(w, http.StatusOK, `{"id":"x1","status":"new"}`)
		})
		rc, server := setupTestServer(handler)
		defer server.Close()

		o := marketOrder()
		o.PriceType = models.PriceLimit
		o.LimitPrice = models.Float64(91.25)
		order, err := rc.SubmitOrder(context.Background(), o)

		require.NoError(t, err)
		assert.Equal(t, models.StatusNew, order.Status)
	})

	t.Run("Rejected", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusForbidden, `{"code":40310000,"message":"insufficient buying power"}`)
		})
		rc, server := setupTestServer(handler)
		defer server.Close()

		_, err := rc.SubmitOrder(context.Background(), marketOrder())

		assert.True(t, errors.Is(err, apperr.ErrBrokerRejected))
		assert.Equal(t, "insufficient buying power", apperr.ReasonOf(err))
	})

	t.Run("ServerError", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusServiceUnavailable, `{"message":"maintenance"}`)
		})
		rc, server := setupTestServer(handler)
		defer server.Close()

		_, err := rc.SubmitOrder(context.Background(), marketOrder())

		assert.True(t, errors.Is(err, apperr.ErrDataUnavailable))
	})

	t.Run("Unreachable", func(t *testing.T) {
		rc, server := setupTestServer(http.NotFoundHandler())
		server.Close()

		_, err := rc.SubmitOrder(context.Background(), marketOrder())

		assert.True(t, errors.Is(err, apperr.ErrDataUnavailable))
	})

	t.Run("NotConfigured", func(t *testing.T) {
		rc, server := setupTestServer(http.NotFoundHandler())
		defer server.Close()
		rc.secretKey = ""

		_, err := rc.SubmitOrder(context.Background(), marketOrder())

		assert.True(t, errors.Is(err, apperr.ErrNotConfigured))
	})
}

func TestListPositions(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v2/positions", r.URL.Path)
			writeJSON(w, http.StatusOK, `[
				{"symbol":"TLT","asset_class":"us_equity","qty":"10","side":"long","avg_entry_price":"90.5","current_price":"92.1"},
				{"symbol":"XYZ","asset_class":"us_equity","qty":"5","side":"short","avg_entry_price":"20","current_price":""}
			]`)
		})
		rc, server := setupTestServer(handler)
		defer server.Close()

		rows, err := rc.ListPositions(context.Background())

		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, models.AssetIndexETF, rows[0].AssetClass)
		assert.Equal(t, 92.1, *rows[0].MarkPrice)
		assert.Equal(t, -5.0, rows[1].Quantity)
		assert.Equal(t, models.AssetOther, rows[1].AssetClass)
		assert.Nil(t, rows[1].MarkPrice)
	})

	t.Run("Malformed", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, `[{"symbol":"TLT","qty":"ten","avg_entry_price":"1"}]`)
		})
		rc, server := setupTestServer(handler)
		defer server.Close()

		_, err := rc.ListPositions(context.Background())

		assert.True(t, errors.Is(err, apperr.ErrDataUnavailable))
	})

	t.Run("APIError", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusUnauthorized, `{"message":"unauthorized"}`)
		})
		rc, server := setupTestServer(handler)
		defer server.Close()

		_, err := rc.ListPositions(context.Background())

		assert.True(t, errors.Is(err, apperr.ErrDataUnavailable))
	})
}

func TestGetAccountBalance(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v2/account", r.URL.Path)
			writeJSON(w, http.StatusOK, `{"currency":"USD","cash":"1000.123456","buying_power":"2000","portfolio_value":"5000.5"}`)
		})
		rc, server := setupTestServer(handler)
		defer server.Close()

		bal, err := rc.GetAccountBalance(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 1000.1235, bal.Cash)
		assert.Equal(t, 2000.0, bal.BuyingPower)
		assert.Equal(t, 5000.5, bal.PortfolioValue)
		assert.Equal(t, "USD", bal.Currency)
	})

	t.Run("EquityWhenPortfolioValueMissing", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, `{"cash":"10","buying_power":"20","equity":"30.25"}`)
		})
		rc, server := setupTestServer(handler)
		defer server.Close()

		bal, err := rc.GetAccountBalance(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 30.25, bal.PortfolioValue)
		assert.Equal(t, "USD", bal.Currency)
	})

	tests := []struct {
		name string
		body string
	}{
		{"MalformedCash", `{"cash":"x","buying_power":"20","portfolio_value":"30"}`},
		{"MalformedBuyingPower", `{"cash":"1000","buying_power":"n/a","portfolio_value":"5000"}`},
		{"MissingBuyingPower", `{"cash":"1000","portfolio_value":"5000"}`},
		{"MalformedPortfolioValueAndEquity", `{"cash":"1000","buying_power":"2000","portfolio_value":"bad","equity":"also-bad"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusOK, tt.body)
			})
			rc, server := setupTestServer(handler)
			defer server.Close()

			// Act
			bal, err := rc.GetAccountBalance(context.Background())

			// Assert
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperr.ErrDataUnavailable))
			assert.Equal(t, models.AccountBalance{}, bal)
		})
	}
}

func TestMapOrderStatus(t *testing.T) {
	tests := map[string]models.OrderStatus{
		"new":              models.StatusNew,
		"accepted":         models.StatusAccepted,
		"pending_new":      models.StatusAccepted,
		"partially_filled": models.StatusPartiallyFilled,
		"filled":           models.StatusFilled,
		"canceled":         models.StatusCancelled,
		"expired":          models.StatusCancelled,
		"rejected":         models.StatusRejected,
		"held":             models.StatusPending,
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, want, MapOrderStatus(in))
		})
	}
}

func TestNewRestClient(t *testing.T) {
	cfg := &config.Brokerage{BaseURL: "https://broker.test/", APIKey: "k", SecretKey: "s", RateLimit: 1, RateLimitBurst: 1}
	rc := NewRestClient(cfg, zap.NewNop())

	assert.Equal(t, "https://broker.test", rc.client.BaseURL)
	assert.Equal(t, cfg.APIKey, rc.apiKey)
	assert.Equal(t, cfg.SecretKey, rc.secretKey)
}
