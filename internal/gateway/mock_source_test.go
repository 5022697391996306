package gateway

import (
	"context"

	"fin-advisor-go/internal/models"
	"github.com/stretchr/testify/mock"
)

// MockSource is a mock DataSource.
type MockSource struct {
	mock.Mock
}

var _ DataSource = (*MockSource)(nil)

func (m *MockSource) ListInstruments(ctx context.Context) ([]models.Instrument, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Instrument), args.Error(1)
}

func (m *MockSource) GetQuote(ctx context.Context, ticker string) (models.QuoteData, error) {
	args := m.Called(ctx, ticker)
	return args.Get(0).(models.QuoteData), args.Error(1)
}

func (m *MockSource) GetHistory(ctx context.Context, ticker string, r models.HistoryRange) ([]models.HistoricalPoint, error) {
	args := m.Called(ctx, ticker, r)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.HistoricalPoint), args.Error(1)
}

func (m *MockSource) SubmitOrder(ctx context.Context, o models.Order) (models.Order, error) {
	args := m.Called(ctx, o)
	return args.Get(0).(models.Order), args.Error(1)
}

func (m *MockSource) ListPositions(ctx context.Context) ([]models.BrokerPosition, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.BrokerPosition), args.Error(1)
}

func (m *MockSource) GetAccountBalance(ctx context.Context) (models.AccountBalance, error) {
	args := m.Called(ctx)
	return args.Get(0).(models.AccountBalance), args.Error(1)
}

func (m *MockSource) InitiateDeposit(ctx context.Context, d models.DepositDetails) (models.TransactionStatus, error) {
	args := m.Called(ctx, d)
	return args.Get(0).(models.TransactionStatus), args.Error(1)
}
