package models

// BrokerPosition is a holding as the brokerage reports it, before any market data is joined.
type BrokerPosition struct {
	Ticker      string
	Quantity    float64
	AvgPrice    float64
	AssetClass  AssetClass
	MarkPrice   *float64
	RealizedPnL *float64
	Duration    *float64
}

// Position is a holding with derived fields computed at read time. The derived
// fields are nil when the market data needed for them could not be obtained.
type Position struct {
	Ticker          string     `json:"ticker"`
	Quantity        float64    `json:"quantity"`
	AvgPrice        float64    `json:"avg_price"`
	AssetClass      AssetClass `json:"asset_class"`
	CurrentPrice    *float64   `json:"current_price,omitempty"`
	MarketValue     *float64   `json:"market_value,omitempty"`
	UnrealizedPnL   *float64   `json:"unrealized_pnl,omitempty"`
	RealizedPnL     *float64   `json:"realized_pnl,omitempty"`
	CurrentYield    *float64   `json:"current_yield,omitempty"`
	CurrentDuration *float64   `json:"current_duration,omitempty"`
}

// ApplyPrice fills the price-derived fields from a mark.
func (p *Position) ApplyPrice(price float64) {
	price = RoundPrice(price)
	mv := RoundPrice(price * p.Quantity)
	pnl := RoundPrice((price - p.AvgPrice) * p.Quantity)
	p.CurrentPrice = &price
	p.MarketValue = &mv
	p.UnrealizedPnL = &pnl
}
