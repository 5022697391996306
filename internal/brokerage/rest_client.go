package brokerage

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"fin-advisor-go/internal/apperr"
	"fin-advisor-go/internal/config"
	"fin-advisor-go/internal/marketdata"
	"fin-advisor-go/internal/models"
	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// RestClient is a client for the brokerage trading API.
type RestClient struct {
	client    *resty.Client
	apiKey    string
	secretKey string
	logger    *zap.Logger
	limiter   *rate.Limiter
}

// NewRestClient creates a new brokerage client.
func NewRestClient(cfg *config.Brokerage, logger *zap.Logger) *RestClient {
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout)

	return &RestClient{
		client:    client,
		apiKey:    cfg.APIKey,
		secretKey: cfg.SecretKey,
		logger:    logger.Named("brokerage"),
		limiter:   rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateLimitBurst),
	}
}

// apiError is the brokerage's error body.
type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (c *RestClient) checkConfigured(op, subject string) error {
	if c.apiKey == "" || c.secretKey == "" || c.client.BaseURL == "" {
		return apperr.Newf(op, subject, apperr.ErrNotConfigured, "brokerage credentials or base url missing")
	}
	return nil
}

// doRequest executes one authenticated, rate-limited request. Non-2xx answers are
// returned with the response so callers can decide how to classify them.
func (c *RestClient) doRequest(ctx context.Context, op, subject, method, url string, req *resty.Request) (*resty.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, apperr.New(op, subject, apperr.ErrDataUnavailable, fmt.Errorf("rate limiter wait failed: %w", err))
	}

	c.logger.Debug("Executing request", zap.String("method", method), zap.String("url", c.client.BaseURL+url))
	resp, err := req.
		SetContext(ctx).
		SetHeader("APCA-API-KEY-ID", c.apiKey).
		SetHeader("APCA-API-SECRET-KEY", c.secretKey).
		SetError(&apiError{}).
		Execute(method, url)
	if err != nil {
		return nil, apperr.New(op, subject, apperr.ErrDataUnavailable, err)
	}
	return resp, nil
}

func failure(op, subject string, resp *resty.Response) error {
	return apperr.Newf(op, subject, apperr.ErrDataUnavailable, "request failed with status %s: %s", resp.Status(), resp.String())
}

type orderRequest struct {
	Symbol        string `json:"symbol"`
	Qty           string `json:"qty"`
	Side          string `json:"side"`
	Type          string `json:"type"`
	TimeInForce   string `json:"time_in_force"`
	LimitPrice    string `json:"limit_price,omitempty"`
	ClientOrderID string `json:"client_order_id,omitempty"`
}

type orderResponse struct {
	ID            string    `json:"id"`
	ClientOrderID string    `json:"client_order_id"`
	Status        string    `json:"status"`
	Symbol        string    `json:"symbol"`
	Qty           string    `json:"qty"`
	Side          string    `json:"side"`
	Type          string    `json:"type"`
	TimeInForce   string    `json:"time_in_force"`
	LimitPrice    *string   `json:"limit_price"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// SubmitOrder places an order. A refusal carrying a broker message is BrokerRejected
// with that message as the reason.
func (c *RestClient) SubmitOrder(ctx context.Context, o models.Order) (models.Order, error) {
	const op = "SubmitOrder"
	if err := c.checkConfigured(op, o.Ticker); err != nil {
		return models.Order{}, err
	}

	body := orderRequest{
		Symbol:      o.Ticker,
		Qty:         decimal.NewFromFloat(o.Quantity).String(),
		Side:        string(o.Side),
		Type:        string(o.PriceType),
		TimeInForce: o.TimeInForce,
	}
	if o.LimitPrice != nil {
		body.LimitPrice = decimal.NewFromFloat(*o.LimitPrice).String()
	}
	if o.StrategyID != nil {
		body.ClientOrderID = *o.StrategyID
	}

	req := c.client.R().
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		SetResult(&orderResponse{})

	resp, err := c.doRequest(ctx, op, o.Ticker, http.MethodPost, "/v2/orders", req)
	if err != nil {
		c.logger.Error("Failed to submit order", zap.String("ticker", o.Ticker), zap.Error(err))
		return models.Order{}, err
	}
	if resp.IsError() {
		if e, ok := resp.Error().(*apiError); ok && e.Message != "" && resp.StatusCode() < http.StatusInternalServerError {
			c.logger.Warn("Order rejected by broker", zap.String("ticker", o.Ticker), zap.String("reason", e.Message))
			return models.Order{}, apperr.Rejected(op, o.Ticker, e.Message)
		}
		return models.Order{}, failure(op, o.Ticker, resp)
	}

	r := resp.Result().(*orderResponse)
	if r.ID == "" {
		return models.Order{}, apperr.Newf(op, o.Ticker, apperr.ErrDataUnavailable, "order response has no id")
	}

	out := o
	out.ID = r.ID
	out.Status = MapOrderStatus(r.Status)
	out.CreatedAt = r.CreatedAt
	out.UpdatedAt = r.UpdatedAt
	if out.UpdatedAt.IsZero() {
		out.UpdatedAt = out.CreatedAt
	}
	c.logger.Info("Order submitted", zap.String("order_id", out.ID), zap.String("status", string(out.Status)))
	return out, nil
}

// MapOrderStatus folds the broker's status strings into the fixed vocabulary.
// Unknown statuses read as pending.
func MapOrderStatus(s string) models.OrderStatus {
	switch strings.ToLower(s) {
	case "new":
		return models.StatusNew
	case "accepted", "accepted_for_bidding", "pending_new", "calculated":
		return models.StatusAccepted
	case "partially_filled":
		return models.StatusPartiallyFilled
	case "filled", "done_for_day":
		return models.StatusFilled
	case "canceled", "cancelled", "expired", "replaced":
		return models.StatusCancelled
	case "rejected", "suspended", "stopped":
		return models.StatusRejected
	default:
		return models.StatusPending
	}
}

type positionResponse struct {
	Symbol        string `json:"symbol"`
	AssetClass    string `json:"asset_class"`
	Qty           string `json:"qty"`
	Side          string `json:"side"`
	AvgEntryPrice string `json:"avg_entry_price"`
	CurrentPrice  string `json:"current_price"`
}

// ListPositions returns the account's holdings as the broker reports them.
func (c *RestClient) ListPositions(ctx context.Context) ([]models.BrokerPosition, error) {
	const op = "ListPositions"
	if err := c.checkConfigured(op, ""); err != nil {
		return nil, err
	}

	var rows []positionResponse
	req := c.client.R().SetResult(&rows)

	resp, err := c.doRequest(ctx, op, "", http.MethodGet, "/v2/positions", req)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, failure(op, "", resp)
	}

	result := *resp.Result().(*[]positionResponse)
	out := make([]models.BrokerPosition, 0, len(result))
	for _, r := range result {
		qty, err := parseDecimal(r.Qty)
		if err != nil {
			return nil, apperr.New(op, r.Symbol, apperr.ErrDataUnavailable, fmt.Errorf("failed to parse qty: %w", err))
		}
		avg, err := parseDecimal(r.AvgEntryPrice)
		if err != nil {
			return nil, apperr.New(op, r.Symbol, apperr.ErrDataUnavailable, fmt.Errorf("failed to parse avg_entry_price: %w", err))
		}
		if strings.EqualFold(r.Side, "short") && qty > 0 {
			qty = -qty
		}
		p := models.BrokerPosition{
			Ticker:     models.NormalizeTicker(r.Symbol),
			Quantity:   qty,
			AvgPrice:   avg,
			AssetClass: InferAssetClass(r.Symbol, r.AssetClass),
		}
		if mark, err := parseDecimal(r.CurrentPrice); err == nil && mark > 0 {
			p.MarkPrice = models.Float64(mark)
		}
		out = append(out, p)
	}
	return out, nil
}

// InferAssetClass classifies a broker holding. Known instruments keep their
// catalog class; everything else is AssetOther.
func InferAssetClass(symbol, brokerClass string) models.AssetClass {
	if i, ok := marketdata.Lookup(models.NormalizeTicker(symbol)); ok && i.AssetClass != nil {
		return *i.AssetClass
	}
	return models.ParseAssetClass(brokerClass)
}

type accountResponse struct {
	Currency       string `json:"currency"`
	Cash           string `json:"cash"`
	BuyingPower    string `json:"buying_power"`
	PortfolioValue string `json:"portfolio_value"`
	Equity         string `json:"equity"`
}

// GetAccountBalance returns the account's cash and buying power.
func (c *RestClient) GetAccountBalance(ctx context.Context) (models.AccountBalance, error) {
	const op = "GetAccountBalance"
	if err := c.checkConfigured(op, ""); err != nil {
		return models.AccountBalance{}, err
	}

	req := c.client.R().SetResult(&accountResponse{})
	resp, err := c.doRequest(ctx, op, "", http.MethodGet, "/v2/account", req)
	if err != nil {
		return models.AccountBalance{}, err
	}
	if resp.IsError() {
		return models.AccountBalance{}, failure(op, "", resp)
	}

	r := resp.Result().(*accountResponse)
	cash, err := parseDecimal(r.Cash)
	if err != nil {
		return models.AccountBalance{}, apperr.New(op, "", apperr.ErrDataUnavailable, fmt.Errorf("failed to parse cash: %w", err))
	}
	bp, err := parseDecimal(r.BuyingPower)
	if err != nil {
		return models.AccountBalance{}, apperr.New(op, "", apperr.ErrDataUnavailable, fmt.Errorf("failed to parse buying_power: %w", err))
	}
	pv, err := parseDecimal(r.PortfolioValue)
	if err != nil {
		// older accounts only report equity
		if pv, err = parseDecimal(r.Equity); err != nil {
			return models.AccountBalance{}, apperr.New(op, "", apperr.ErrDataUnavailable, fmt.Errorf("failed to parse portfolio_value or equity: %w", err))
		}
	}
	currency := r.Currency
	if currency == "" {
		currency = "USD"
	}

	return models.AccountBalance{
		Cash:           models.RoundPrice(cash),
		Currency:       currency,
		BuyingPower:    models.RoundPrice(bp),
		PortfolioValue: models.RoundPrice(pv),
	}, nil
}

func parseDecimal(s string) (float64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, err
	}
	f, _ := d.Float64()
	return f, nil
}
