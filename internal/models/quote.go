package models

import "time"

// QuoteUnit says how Quote.Price should be read.
type QuoteUnit string

const (
	UnitPrice        QuoteUnit = "price"
	UnitYieldPercent QuoteUnit = "yield_percent"
)

// QuoteData is a raw, un-rounded observation as a data source reports it.
type QuoteData struct {
	Ticker        string
	Price         float64
	PreviousClose *float64
	Bid           *float64
	Ask           *float64
	Volume        *int64
	Timestamp     time.Time
}

// Quote is the normalized market observation handed to callers.
// For rate instruments Price holds a yield in percent and Unit says so.
type Quote struct {
	Ticker        string    `json:"ticker"`
	Price         float64   `json:"price"`
	Unit          QuoteUnit `json:"unit"`
	Timestamp     time.Time `json:"timestamp"`
	PreviousClose *float64  `json:"previous_close,omitempty"`
	Change        *float64  `json:"change,omitempty"`
	ChangePercent *float64  `json:"change_percent,omitempty"`
	Bid           *float64  `json:"bid,omitempty"`
	Ask           *float64  `json:"ask,omitempty"`
	Volume        *int64    `json:"volume,omitempty"`
}

// NewQuote rounds a raw observation and derives change fields from the rounded values.
// Change and ChangePercent stay nil without a usable previous close.
func NewQuote(d QuoteData, unit QuoteUnit) Quote {
	q := Quote{
		Ticker:        d.Ticker,
		Price:         RoundPrice(d.Price),
		Unit:          unit,
		Timestamp:     d.Timestamp,
		PreviousClose: roundPtr(d.PreviousClose, 4),
		Bid:           roundPtr(d.Bid, 4),
		Ask:           roundPtr(d.Ask, 4),
		Volume:        d.Volume,
	}
	if q.PreviousClose != nil {
		change := RoundPrice(q.Price - *q.PreviousClose)
		q.Change = &change
		if *q.PreviousClose != 0 {
			pct := RoundPercent(change / *q.PreviousClose * 100)
			q.ChangePercent = &pct
		}
	}
	return q
}
