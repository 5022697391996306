package models

import (
	"time"

	"gorm.io/gorm"
)

// OrderRecord is a submitted order kept in the local journal.
type OrderRecord struct {
	gorm.Model
	OrderID      string    `gorm:"uniqueIndex" json:"order_id"`
	Ticker       string    `gorm:"index" json:"ticker"`
	Side         string    `json:"side"`
	PriceType    string    `json:"price_type"`
	Quantity     float64   `json:"quantity"`
	LimitPrice   *float64  `json:"limit_price,omitempty"`
	Status       string    `json:"status"`
	StrategyID   *string   `json:"strategy_id,omitempty"`
	SubmittedAt  time.Time `json:"submitted_at"`
	IsSimulation bool      `json:"is_simulation"`
}

// NewOrderRecord captures a submitted order for the journal.
func NewOrderRecord(o Order, simulated bool) OrderRecord {
	return OrderRecord{
		OrderID:      o.ID,
		Ticker:       o.Ticker,
		Side:         string(o.Side),
		PriceType:    string(o.PriceType),
		Quantity:     o.Quantity,
		LimitPrice:   o.LimitPrice,
		Status:       string(o.Status),
		StrategyID:   o.StrategyID,
		SubmittedAt:  o.CreatedAt,
		IsSimulation: simulated,
	}
}
