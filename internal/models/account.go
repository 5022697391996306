package models

// AccountBalance is a point-in-time view of the brokerage account.
type AccountBalance struct {
	Cash           float64  `json:"cash"`
	Currency       string   `json:"currency"`
	BuyingPower    float64  `json:"buying_power"`
	PortfolioValue float64  `json:"portfolio_value"`
	SettledCash    *float64 `json:"settled_cash,omitempty"`
}
