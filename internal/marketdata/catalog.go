package marketdata

import (
	"strings"

	"fin-advisor-go/internal/models"
)

// MustHave are the constant-maturity treasury yield indices every catalog carries,
// whatever the provider's listing returns.
var MustHave = []string{"^IRX", "^FVX", "^TNX", "^TYX"}

func class(a models.AssetClass) *models.AssetClass { return &a }

func country(c string) *string { return &c }

var curated = []models.Instrument{
	{Ticker: "^IRX", Name: "13 Week Treasury Bill Yield", AssetClass: class(models.AssetTreasuryBill), Country: country("US")},
	{Ticker: "^FVX", Name: "Treasury Yield 5 Years", AssetClass: class(models.AssetSovereignBond), Country: country("US")},
	{Ticker: "^TNX", Name: "Treasury Yield 10 Years", AssetClass: class(models.AssetSovereignBond), Country: country("US")},
	{Ticker: "^TYX", Name: "Treasury Yield 30 Years", AssetClass: class(models.AssetSovereignBond), Country: country("US")},
	{Ticker: "US1M", Name: "US 1 Month Treasury Bill Yield", AssetClass: class(models.AssetTreasuryBill), Country: country("US")},
	{Ticker: "US6M", Name: "US 6 Month Treasury Bill Yield", AssetClass: class(models.AssetTreasuryBill), Country: country("US")},
	{Ticker: "US1Y", Name: "US 1 Year Treasury Yield", AssetClass: class(models.AssetTreasuryBill), Country: country("US")},
	{Ticker: "US2Y", Name: "US 2 Year Treasury Note Yield", AssetClass: class(models.AssetSovereignBond), Country: country("US")},
	{Ticker: "AGG", Name: "iShares Core US Aggregate Bond ETF", AssetClass: class(models.AssetIndexETF), Country: country("US")},
	{Ticker: "BND", Name: "Vanguard Total Bond Market ETF", AssetClass: class(models.AssetIndexETF), Country: country("US")},
	{Ticker: "TLT", Name: "iShares 20+ Year Treasury Bond ETF", AssetClass: class(models.AssetIndexETF), Country: country("US")},
	{Ticker: "IEF", Name: "iShares 7-10 Year Treasury Bond ETF", AssetClass: class(models.AssetIndexETF), Country: country("US")},
	{Ticker: "SHY", Name: "iShares 1-3 Year Treasury Bond ETF", AssetClass: class(models.AssetIndexETF), Country: country("US")},
	{Ticker: "TIP", Name: "iShares TIPS Bond ETF", AssetClass: class(models.AssetInflationLinked), Country: country("US")},
	{Ticker: "MUB", Name: "iShares National Muni Bond ETF", AssetClass: class(models.AssetIndexETF), Country: country("US")},
	{Ticker: "BIL", Name: "SPDR Bloomberg 1-3 Month T-Bill ETF", AssetClass: class(models.AssetIndexETF), Country: country("US")},
	{Ticker: "GOVT", Name: "iShares US Treasury Bond ETF", AssetClass: class(models.AssetIndexETF), Country: country("US")},
	{Ticker: "SPY", Name: "SPDR S&P 500 ETF Trust", AssetClass: class(models.AssetIndexETF), Country: country("US")},
	{Ticker: "EURUSD", Name: "Euro / US Dollar", AssetClass: class(models.AssetCurrencyPair)},
}

// Curated returns a copy of the built-in instrument set.
func Curated() []models.Instrument {
	out := make([]models.Instrument, len(curated))
	copy(out, curated)
	return out
}

// Lookup finds a curated instrument by ticker.
func Lookup(ticker string) (models.Instrument, bool) {
	for _, i := range curated {
		if i.Ticker == ticker {
			return i, true
		}
	}
	return models.Instrument{}, false
}

// IsYieldTicker reports whether quotes for ticker are yields in percent: index
// tickers, ladder tickers, and curated rate instruments.
func IsYieldTicker(ticker string, ladder []models.YieldTicker) bool {
	if strings.HasPrefix(ticker, "^") {
		return true
	}
	for _, yt := range ladder {
		if yt.Ticker == ticker {
			return true
		}
	}
	// TIP is an inflation-linked fund quoted in dollars.
	if i, ok := Lookup(ticker); ok && i.AssetClass != nil && *i.AssetClass != models.AssetInflationLinked {
		return i.AssetClass.IsRate()
	}
	return false
}

// UnitFor is the quote unit for ticker.
func UnitFor(ticker string, ladder []models.YieldTicker) models.QuoteUnit {
	if IsYieldTicker(ticker, ladder) {
		return models.UnitYieldPercent
	}
	return models.UnitPrice
}

// supplement appends the must-have and ladder tickers missing from list and dedupes.
func supplement(list []models.Instrument, ladder []models.YieldTicker) []models.Instrument {
	extra := make([]string, 0, len(MustHave)+len(ladder))
	extra = append(extra, MustHave...)
	for _, yt := range ladder {
		extra = append(extra, yt.Ticker)
	}
	for _, t := range extra {
		if i, ok := Lookup(t); ok {
			list = append(list, i)
			continue
		}
		list = append(list, models.Instrument{Ticker: t, Name: t, AssetClass: class(models.AssetSovereignBond)})
	}
	return models.DedupeInstruments(list)
}
