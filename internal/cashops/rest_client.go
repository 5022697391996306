package cashops

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"fin-advisor-go/internal/apperr"
	"fin-advisor-go/internal/config"
	"fin-advisor-go/internal/models"
	"github.com/go-playground/validator/v10"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// RestClient talks to the backend that owns money movement.
type RestClient struct {
	client   *resty.Client
	token    string
	logger   *zap.Logger
	validate *validator.Validate
}

func NewRestClient(cfg *config.Backend, logger *zap.Logger) *RestClient {
	return &RestClient{
		client:   resty.New().SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).SetTimeout(cfg.Timeout),
		token:    cfg.Token,
		logger:   logger.Named("cash-ops"),
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// InitiateDeposit posts the deposit intent and returns the backend's status as-is.
// A response missing an id, a known status or a timestamp is DataUnavailable.
func (c *RestClient) InitiateDeposit(ctx context.Context, d models.DepositDetails) (models.TransactionStatus, error) {
	const op = "InitiateDeposit"
	if c.client.BaseURL == "" || c.token == "" {
		return models.TransactionStatus{}, apperr.Newf(op, "", apperr.ErrNotConfigured, "cash backend url or token missing")
	}

	c.logger.Debug("Executing request", zap.String("url", c.client.BaseURL+"/deposits"))
	resp, err := c.client.R().
		SetContext(ctx).
		SetAuthToken(c.token).
		SetHeader("Content-Type", "application/json").
		SetBody(d).
		SetResult(&models.TransactionStatus{}).
		Execute(http.MethodPost, "/deposits")
	if err != nil {
		c.logger.Error("Failed to initiate deposit", zap.Error(err))
		return models.TransactionStatus{}, apperr.New(op, "", apperr.ErrDataUnavailable, err)
	}
	if resp.IsError() {
		return models.TransactionStatus{}, apperr.Newf(op, "", apperr.ErrDataUnavailable, "request failed with status %s: %s", resp.Status(), resp.String())
	}

	status := *resp.Result().(*models.TransactionStatus)
	if err := c.validate.Struct(status); err != nil {
		return models.TransactionStatus{}, apperr.New(op, "", apperr.ErrDataUnavailable, fmt.Errorf("incomplete deposit response: %w", err))
	}
	if !status.Status.Valid() {
		return models.TransactionStatus{}, apperr.Newf(op, status.TransactionID, apperr.ErrDataUnavailable, "unknown transaction status %q", status.Status)
	}

	c.logger.Info("Deposit initiated", zap.String("transaction_id", status.TransactionID), zap.String("status", string(status.Status)))
	return status, nil
}
