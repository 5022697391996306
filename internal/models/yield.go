package models

import (
	"sort"
	"strings"
	"time"
)

// Maturity is a point on the government yield curve.
type Maturity string

const (
	Maturity1M  Maturity = "1m"
	Maturity3M  Maturity = "3m"
	Maturity6M  Maturity = "6m"
	Maturity1Y  Maturity = "1y"
	Maturity2Y  Maturity = "2y"
	Maturity5Y  Maturity = "5y"
	Maturity10Y Maturity = "10y"
	Maturity30Y Maturity = "30y"
)

var maturityOrder = []Maturity{
	Maturity1M, Maturity3M, Maturity6M, Maturity1Y, Maturity2Y, Maturity5Y, Maturity10Y, Maturity30Y,
}

// Maturities lists every maturity in canonical order.
func Maturities() []Maturity {
	out := make([]Maturity, len(maturityOrder))
	copy(out, maturityOrder)
	return out
}

// Rank is the canonical position of m, or -1 when unknown.
func (m Maturity) Rank() int {
	for i, v := range maturityOrder {
		if v == m {
			return i
		}
	}
	return -1
}

func ParseMaturity(s string) (Maturity, bool) {
	m := Maturity(strings.ToLower(strings.TrimSpace(s)))
	return m, m.Rank() >= 0
}

// YieldTicker binds a maturity to the ticker whose quote is its yield.
type YieldTicker struct {
	Maturity Maturity `json:"maturity" mapstructure:"maturity"`
	Ticker   string   `json:"ticker" mapstructure:"ticker"`
}

// GovBondYield is one resolved point of the curve. Change is in percentage points.
type GovBondYield struct {
	Maturity  Maturity  `json:"maturity"`
	Yield     float64   `json:"yield"`
	Change    *float64  `json:"change,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// SortYieldCurve orders points shortest maturity first.
func SortYieldCurve(curve []GovBondYield) {
	sort.Slice(curve, func(i, j int) bool { return curve[i].Maturity.Rank() < curve[j].Maturity.Rank() })
}
