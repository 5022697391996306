package marketdata

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"fin-advisor-go/internal/apperr"
	"fin-advisor-go/internal/config"
	"fin-advisor-go/internal/models"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const catalogCacheKey = "catalog"

// RestClient is a client for the market data provider's REST API.
type RestClient struct {
	client       *resty.Client
	apiKey       string
	logger       *zap.Logger
	limiter      *rate.Limiter
	cache        *Cache
	ladder       []models.YieldTicker
	catalogLimit int
	historyLimit int
	now          func() time.Time
}

// NewRestClient creates a new market data client. Missing credentials are not
// an error here; every call reports NotConfigured instead.
func NewRestClient(cfg *config.MarketData, logger *zap.Logger) (*RestClient, error) {
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json")

	// rate.Limit is requests per second.
	limiter := rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateLimitBurst)

	rc := &RestClient{
		client:       client,
		apiKey:       cfg.APIKey,
		logger:       logger.Named("market-data"),
		limiter:      limiter,
		ladder:       cfg.YieldLadder,
		catalogLimit: cfg.CatalogLimit,
		historyLimit: cfg.HistoryLimit,
		now:          time.Now,
	}

	if cfg.CatalogTTL > 0 {
		c, err := NewCache(16, cfg.CatalogTTL)
		if err != nil {
			return nil, fmt.Errorf("failed to create catalog cache: %w", err)
		}
		rc.cache = c
	}
	return rc, nil
}

func (c *RestClient) checkConfigured(op, subject string) error {
	if c.apiKey == "" || c.client.BaseURL == "" {
		return apperr.Newf(op, subject, apperr.ErrNotConfigured, "market data api key or base url missing")
	}
	return nil
}

// doRequest executes a single rate-limited request. There is no retry: transport
// failures and non-2xx answers surface as DataUnavailable.
func (c *RestClient) doRequest(ctx context.Context, op, subject, url string, req *resty.Request) (*resty.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, apperr.New(op, subject, apperr.ErrDataUnavailable, fmt.Errorf("rate limiter wait failed: %w", err))
	}

	c.logger.Debug("Executing request", zap.String("url", c.client.BaseURL+url), zap.String("subject", subject))
	resp, err := req.
		SetContext(ctx).
		SetAuthToken(c.apiKey).
		Execute("GET", url)
	if err != nil {
		return nil, apperr.New(op, subject, apperr.ErrDataUnavailable, err)
	}
	if resp.IsError() {
		return nil, apperr.Newf(op, subject, apperr.ErrDataUnavailable, "request failed with status %s: %s", resp.Status(), resp.String())
	}
	return resp, nil
}

type tickerRef struct {
	Ticker   string `json:"ticker"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	Locale   string `json:"locale"`
	Currency string `json:"currency_name"`
}

type tickersResponse struct {
	Results []tickerRef `json:"results"`
	Status  string      `json:"status"`
}

// listedTypes maps the provider's security types we expose to asset classes.
var listedTypes = map[string]models.AssetClass{
	"CS":    models.AssetOther,
	"ETF":   models.AssetIndexETF,
	"ETN":   models.AssetIndexETF,
	"INDEX": models.AssetOther,
}

// ListInstruments fetches the provider catalog, filtered to listed types and
// supplemented with the must-have yield tickers.
func (c *RestClient) ListInstruments(ctx context.Context) ([]models.Instrument, error) {
	const op = "ListInstruments"
	if err := c.checkConfigured(op, ""); err != nil {
		return nil, err
	}
	if c.cache != nil {
		if v, ok := c.cache.Get(catalogCacheKey); ok {
			cached := v.([]models.Instrument)
			out := make([]models.Instrument, len(cached))
			copy(out, cached)
			return out, nil
		}
	}

	req := c.client.R().
		SetQueryParam("active", "true").
		SetQueryParam("limit", fmt.Sprintf("%d", c.catalogLimit)).
		SetResult(&tickersResponse{})

	resp, err := c.doRequest(ctx, op, "", "/v3/reference/tickers", req)
	if err != nil {
		c.logger.Error("Failed to list instruments", zap.Error(err))
		return nil, err
	}

	result := resp.Result().(*tickersResponse)
	if result.Results == nil {
		return nil, apperr.Newf(op, "", apperr.ErrDataUnavailable, "response has no results")
	}

	list := make([]models.Instrument, 0, len(result.Results)+len(MustHave))
	for _, r := range result.Results {
		ac, ok := listedTypes[r.Type]
		if !ok || r.Ticker == "" {
			continue
		}
		inst := models.Instrument{Ticker: models.NormalizeTicker(r.Ticker), Name: r.Name, AssetClass: class(ac)}
		if strings.EqualFold(r.Locale, "us") {
			inst.Country = country("US")
		}
		list = append(list, inst)
	}
	list = supplement(list, c.ladder)

	if c.cache != nil {
		c.cache.Set(catalogCacheKey, list)
	}
	c.logger.Info("Fetched instrument catalog", zap.Int("count", len(list)))
	return list, nil
}

type snapshotResponse struct {
	Status string `json:"status"`
	Ticker *struct {
		Ticker string `json:"ticker"`
		Day    struct {
			Close  float64 `json:"c"`
			Volume float64 `json:"v"`
		} `json:"day"`
		LastTrade struct {
			Price float64 `json:"p"`
		} `json:"lastTrade"`
		LastQuote struct {
			Bid float64 `json:"p"`
			Ask float64 `json:"P"`
		} `json:"lastQuote"`
		PrevDay struct {
			Close float64 `json:"c"`
		} `json:"prevDay"`
		Updated int64 `json:"updated"`
	} `json:"ticker"`
}

type aggregate struct {
	Close     float64 `json:"c"`
	Timestamp int64   `json:"t"`
}

type aggregatesResponse struct {
	Ticker  string      `json:"ticker"`
	Status  string      `json:"status"`
	Results []aggregate `json:"results"`
}

// GetQuote fetches the latest snapshot and the previous close concurrently.
func (c *RestClient) GetQuote(ctx context.Context, ticker string) (models.QuoteData, error) {
	const op = "GetQuote"
	if err := c.checkConfigured(op, ticker); err != nil {
		return models.QuoteData{}, err
	}

	var (
		wg      sync.WaitGroup
		snap    *snapshotResponse
		snapErr error
		prev    *aggregatesResponse
		prevErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		req := c.client.R().SetPathParam("ticker", ticker).SetResult(&snapshotResponse{})
		resp, err := c.doRequest(ctx, op, ticker, "/v2/snapshot/locale/us/markets/stocks/tickers/{ticker}", req)
		if err != nil {
			snapErr = err
			return
		}
		snap = resp.Result().(*snapshotResponse)
	}()
	go func() {
		defer wg.Done()
		req := c.client.R().SetPathParam("ticker", ticker).SetResult(&aggregatesResponse{})
		resp, err := c.doRequest(ctx, op, ticker, "/v2/aggs/ticker/{ticker}/prev", req)
		if err != nil {
			prevErr = err
			return
		}
		prev = resp.Result().(*aggregatesResponse)
	}()
	wg.Wait()

	if snapErr != nil {
		c.logger.Warn("Failed to fetch snapshot", zap.String("ticker", ticker), zap.Error(snapErr))
		return models.QuoteData{}, snapErr
	}
	if snap.Ticker == nil {
		return models.QuoteData{}, apperr.Newf(op, ticker, apperr.ErrDataUnavailable, "snapshot has no ticker data")
	}

	s := snap.Ticker
	data := models.QuoteData{Ticker: ticker, Timestamp: c.now().UTC()}
	if s.Updated > 0 {
		data.Timestamp = time.Unix(0, s.Updated).UTC()
	}
	switch {
	case s.LastTrade.Price > 0:
		data.Price = s.LastTrade.Price
	case s.LastQuote.Bid > 0:
		data.Price = s.LastQuote.Bid
	case s.Day.Close > 0:
		data.Price = s.Day.Close
	default:
		return models.QuoteData{}, apperr.Newf(op, ticker, apperr.ErrDataUnavailable, "no price in snapshot")
	}
	if s.LastQuote.Bid > 0 {
		data.Bid = models.Float64(s.LastQuote.Bid)
	}
	if s.LastQuote.Ask > 0 {
		data.Ask = models.Float64(s.LastQuote.Ask)
	}
	if s.Day.Volume > 0 {
		v := int64(s.Day.Volume)
		data.Volume = &v
	}

	// The snapshot's own baseline wins; the prev aggregate only fills a gap.
	switch {
	case s.PrevDay.Close > 0:
		data.PreviousClose = models.Float64(s.PrevDay.Close)
	case prevErr == nil && len(prev.Results) > 0 && prev.Results[0].Close > 0:
		data.PreviousClose = models.Float64(prev.Results[0].Close)
	case prevErr != nil:
		c.logger.Warn("Previous close unavailable", zap.String("ticker", ticker), zap.Error(prevErr))
	}

	return data, nil
}

// GetHistory fetches daily closes for the range ending today.
func (c *RestClient) GetHistory(ctx context.Context, ticker string, r models.HistoryRange) ([]models.HistoricalPoint, error) {
	const op = "GetHistoricalSeries"
	if err := c.checkConfigured(op, ticker); err != nil {
		return nil, err
	}

	now := c.now().UTC()
	req := c.client.R().
		SetPathParams(map[string]string{
			"ticker": ticker,
			"from":   r.Start(now).Format(time.DateOnly),
			"to":     now.Format(time.DateOnly),
		}).
		SetQueryParam("adjusted", "true").
		SetQueryParam("sort", "asc").
		SetQueryParam("limit", fmt.Sprintf("%d", c.historyLimit)).
		SetResult(&aggregatesResponse{})

	resp, err := c.doRequest(ctx, op, ticker, "/v2/aggs/ticker/{ticker}/range/1/day/{from}/{to}", req)
	if err != nil {
		return nil, err
	}

	result := resp.Result().(*aggregatesResponse)
	if result.Results == nil {
		return nil, apperr.Newf(op, ticker, apperr.ErrDataUnavailable, "response has no results")
	}

	points := make([]models.HistoricalPoint, 0, len(result.Results))
	for _, a := range result.Results {
		points = append(points, models.HistoricalPoint{Date: time.UnixMilli(a.Timestamp).UTC(), Value: a.Close})
	}
	return points, nil
}
