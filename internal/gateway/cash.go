package gateway

import (
	"context"

	"fin-advisor-go/internal/apperr"
	"fin-advisor-go/internal/models"
	"go.uber.org/zap"
)

// InitiateDeposit validates the request and starts a deposit.
func (g *Gateway) InitiateDeposit(ctx context.Context, d models.DepositDetails) (models.TransactionStatus, error) {
	const op = "InitiateDeposit"
	if err := g.validate.Struct(d); err != nil {
		return models.TransactionStatus{}, apperr.New(op, "", apperr.ErrInvalidArgument, err)
	}

	status, err := g.source.InitiateDeposit(ctx, d)
	if err != nil {
		g.logger.Error("Deposit failed", zap.Error(err))
		return models.TransactionStatus{}, classify(op, "", err)
	}
	return status, nil
}

// InitiateTransfer is not available in any mode.
func (g *Gateway) InitiateTransfer(_ context.Context, _ models.TransferDetails) (models.TransactionStatus, error) {
	return models.TransactionStatus{}, apperr.Newf("InitiateTransfer", "", apperr.ErrNotImplemented, "transfers are not supported")
}

// InitiateWithdraw is not available in any mode.
func (g *Gateway) InitiateWithdraw(_ context.Context, _ models.WithdrawDetails) (models.TransactionStatus, error) {
	return models.TransactionStatus{}, apperr.Newf("InitiateWithdraw", "", apperr.ErrNotImplemented, "withdrawals are not supported")
}
