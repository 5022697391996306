package models

import (
	"strings"
	"time"
)

// AssetClass classifies an instrument.
type AssetClass string

const (
	AssetSovereignBond   AssetClass = "sovereign_bond"
	AssetTreasuryBill    AssetClass = "treasury_bill"
	AssetMunicipalBond   AssetClass = "municipal_bond"
	AssetAgencyBond      AssetClass = "agency_bond"
	AssetInflationLinked AssetClass = "inflation_linked"
	AssetIndexETF        AssetClass = "index_etf"
	AssetCurrencyPair    AssetClass = "currency_pair"
	AssetOther           AssetClass = "other"
)

func (a AssetClass) Valid() bool {
	switch a {
	case AssetSovereignBond, AssetTreasuryBill, AssetMunicipalBond, AssetAgencyBond,
		AssetInflationLinked, AssetIndexETF, AssetCurrencyPair, AssetOther:
		return true
	}
	return false
}

// IsRate reports whether quotes for this class are yields rather than prices.
func (a AssetClass) IsRate() bool {
	switch a {
	case AssetSovereignBond, AssetTreasuryBill, AssetMunicipalBond, AssetAgencyBond, AssetInflationLinked:
		return true
	}
	return false
}

// ParseAssetClass maps free-form broker/provider labels onto the fixed vocabulary.
// Unknown labels become AssetOther.
func ParseAssetClass(s string) AssetClass {
	a := AssetClass(strings.ToLower(strings.TrimSpace(s)))
	if a.Valid() {
		return a
	}
	return AssetOther
}

// Instrument is a tradable or quotable security.
type Instrument struct {
	Ticker       string      `json:"ticker"`
	Name         string      `json:"name"`
	AssetClass   *AssetClass `json:"asset_class,omitempty"`
	Country      *string     `json:"country,omitempty"`
	MaturityDate *time.Time  `json:"maturity_date,omitempty"`
}

// NormalizeTicker trims and upper-cases a ticker symbol.
func NormalizeTicker(t string) string {
	return strings.ToUpper(strings.TrimSpace(t))
}

// DedupeInstruments keeps the first occurrence of each ticker, preserving order.
func DedupeInstruments(in []Instrument) []Instrument {
	seen := make(map[string]struct{}, len(in))
	out := make([]Instrument, 0, len(in))
	for _, i := range in {
		if _, ok := seen[i.Ticker]; ok {
			continue
		}
		seen[i.Ticker] = struct{}{}
		out = append(out, i)
	}
	return out
}
