package gateway

import (
	"context"

	"fin-advisor-go/internal/models"
)

// MarketDataSource supplies raw market observations.
type MarketDataSource interface {
	ListInstruments(ctx context.Context) ([]models.Instrument, error)
	GetQuote(ctx context.Context, ticker string) (models.QuoteData, error)
	GetHistory(ctx context.Context, ticker string, r models.HistoryRange) ([]models.HistoricalPoint, error)
}

// BrokerageSource executes orders and reports holdings.
type BrokerageSource interface {
	SubmitOrder(ctx context.Context, o models.Order) (models.Order, error)
	ListPositions(ctx context.Context) ([]models.BrokerPosition, error)
	GetAccountBalance(ctx context.Context) (models.AccountBalance, error)
}

// CashSource initiates money movement.
type CashSource interface {
	InitiateDeposit(ctx context.Context, d models.DepositDetails) (models.TransactionStatus, error)
}

// DataSource is everything a Gateway reads from. Exactly one implementation
// backs a Gateway for its whole life.
type DataSource interface {
	MarketDataSource
	BrokerageSource
	CashSource
}

// liveSource composes the three upstream clients into one DataSource.
type liveSource struct {
	market MarketDataSource
	broker BrokerageSource
	cash   CashSource
}

var _ DataSource = (*liveSource)(nil)

func (l *liveSource) ListInstruments(ctx context.Context) ([]models.Instrument, error) {
	return l.market.ListInstruments(ctx)
}

func (l *liveSource) GetQuote(ctx context.Context, ticker string) (models.QuoteData, error) {
	return l.market.GetQuote(ctx, ticker)
}

func (l *liveSource) GetHistory(ctx context.Context, ticker string, r models.HistoryRange) ([]models.HistoricalPoint, error) {
	return l.market.GetHistory(ctx, ticker, r)
}

func (l *liveSource) SubmitOrder(ctx context.Context, o models.Order) (models.Order, error) {
	return l.broker.SubmitOrder(ctx, o)
}

func (l *liveSource) ListPositions(ctx context.Context) ([]models.BrokerPosition, error) {
	return l.broker.ListPositions(ctx)
}

func (l *liveSource) GetAccountBalance(ctx context.Context) (models.AccountBalance, error) {
	return l.broker.GetAccountBalance(ctx)
}

func (l *liveSource) InitiateDeposit(ctx context.Context, d models.DepositDetails) (models.TransactionStatus, error) {
	return l.cash.InitiateDeposit(ctx, d)
}
