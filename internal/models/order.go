package models

import (
	"time"

	"fin-advisor-go/internal/apperr"
)

type OrderSide string

const (
	SideBuy  OrderSide = "buy"
	SideSell OrderSide = "sell"
)

type PriceType string

const (
	PriceMarket PriceType = "market"
	PriceLimit  PriceType = "limit"
)

// OrderStatus is the fixed status vocabulary. Broker statuses are mapped onto it.
type OrderStatus string

const (
	StatusPending         OrderStatus = "pending"
	StatusAccepted        OrderStatus = "accepted"
	StatusNew             OrderStatus = "new"
	StatusPartiallyFilled OrderStatus = "partially_filled"
	StatusFilled          OrderStatus = "filled"
	StatusCancelled       OrderStatus = "cancelled"
	StatusRejected        OrderStatus = "rejected"
)

// Order is an instruction to buy or sell. ID and Status are assigned on submission.
type Order struct {
	ID          string      `json:"id,omitempty"`
	Ticker      string      `json:"ticker"`
	Quantity    float64     `json:"quantity"`
	Side        OrderSide   `json:"side"`
	PriceType   PriceType   `json:"price_type"`
	LimitPrice  *float64    `json:"limit_price,omitempty"`
	Status      OrderStatus `json:"status,omitempty"`
	TimeInForce string      `json:"time_in_force,omitempty"`
	StrategyID  *string     `json:"strategy_id,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// Validate checks the order's shape only. Market hours, buying power and the like are
// the broker's call.
func (o *Order) Validate() error {
	const op = "ValidateOrder"
	if o.Ticker == "" {
		return apperr.Newf(op, "", apperr.ErrInvalidArgument, "ticker is required")
	}
	if o.Quantity <= 0 {
		return apperr.Newf(op, o.Ticker, apperr.ErrInvalidArgument, "quantity must be positive")
	}
	if o.Side != SideBuy && o.Side != SideSell {
		return apperr.Newf(op, o.Ticker, apperr.ErrInvalidArgument, "side must be buy or sell, got %q", o.Side)
	}
	switch o.PriceType {
	case PriceMarket:
		if o.LimitPrice != nil {
			return apperr.Newf(op, o.Ticker, apperr.ErrInvalidArgument, "limit price given for market order")
		}
	case PriceLimit:
		if o.LimitPrice == nil || *o.LimitPrice <= 0 {
			return apperr.Newf(op, o.Ticker, apperr.ErrInvalidArgument, "limit order requires a positive limit price")
		}
	default:
		return apperr.Newf(op, o.Ticker, apperr.ErrInvalidArgument, "price type must be market or limit, got %q", o.PriceType)
	}
	return nil
}

// Normalize fills defaults and canonicalises the ticker.
func (o *Order) Normalize() {
	o.Ticker = NormalizeTicker(o.Ticker)
	if o.PriceType == "" {
		o.PriceType = PriceMarket
	}
	if o.TimeInForce == "" {
		o.TimeInForce = "day"
	}
}
