package models

import "time"

// DepositDetails is the intent to move money into the account.
type DepositDetails struct {
	Amount    float64 `json:"amount" validate:"gt=0"`
	Currency  string  `json:"currency" validate:"required,iso4217"`
	Method    string  `json:"method" validate:"required,oneof=ach wire card"`
	AccountID string  `json:"account_id,omitempty"`
	Reference string  `json:"reference,omitempty" validate:"max=140"`
}

// TransferDetails moves money between accounts.
type TransferDetails struct {
	Amount        float64 `json:"amount" validate:"gt=0"`
	Currency      string  `json:"currency" validate:"required,iso4217"`
	FromAccountID string  `json:"from_account_id" validate:"required"`
	ToAccountID   string  `json:"to_account_id" validate:"required,nefield=FromAccountID"`
}

// WithdrawDetails moves money out of the account.
type WithdrawDetails struct {
	Amount      float64 `json:"amount" validate:"gt=0"`
	Currency    string  `json:"currency" validate:"required,iso4217"`
	Destination string  `json:"destination" validate:"required"`
}

type TransactionState string

const (
	TxPending        TransactionState = "pending"
	TxProcessing     TransactionState = "processing"
	TxCompleted      TransactionState = "completed"
	TxFailed         TransactionState = "failed"
	TxCancelled      TransactionState = "cancelled"
	TxRequiresAction TransactionState = "requires_action"
)

func (s TransactionState) Valid() bool {
	switch s {
	case TxPending, TxProcessing, TxCompleted, TxFailed, TxCancelled, TxRequiresAction:
		return true
	}
	return false
}

// TransactionStatus is the outcome of initiating a cash movement.
type TransactionStatus struct {
	TransactionID string           `json:"transaction_id" validate:"required"`
	Status        TransactionState `json:"status" validate:"required"`
	Message       *string          `json:"message,omitempty"`
	Timestamp     time.Time        `json:"timestamp" validate:"required"`
}
