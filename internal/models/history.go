package models

import (
	"sort"
	"strings"
	"time"
)

// HistoryRange is a look-back window for historical series.
type HistoryRange string

const (
	Range1M HistoryRange = "1m"
	Range6M HistoryRange = "6m"
	Range1Y HistoryRange = "1y"
)

// ParseHistoryRange accepts 1m, 6m, 1y and their month spellings.
func ParseHistoryRange(s string) (HistoryRange, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1m", "1mo":
		return Range1M, true
	case "6m", "6mo":
		return Range6M, true
	case "1y", "12m", "12mo":
		return Range1Y, true
	}
	return "", false
}

// Points is the number of trading days a simulated series of this range holds.
func (r HistoryRange) Points() int {
	switch r {
	case Range1M:
		return 30
	case Range6M:
		return 126
	case Range1Y:
		return 252
	}
	return 0
}

// Start returns the first calendar day of the window ending at now.
func (r HistoryRange) Start(now time.Time) time.Time {
	switch r {
	case Range1M:
		return now.AddDate(0, -1, 0)
	case Range6M:
		return now.AddDate(0, -6, 0)
	default:
		return now.AddDate(-1, 0, 0)
	}
}

// HistoricalPoint is one daily observation.
type HistoricalPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// NormalizeSeries sorts points by date ascending, keeps one point per calendar day
// (the last one reported) and rounds values.
func NormalizeSeries(in []HistoricalPoint) []HistoricalPoint {
	byDay := make(map[string]int, len(in))
	out := make([]HistoricalPoint, 0, len(in))
	for _, p := range in {
		day := p.Date.UTC().Format(time.DateOnly)
		pt := HistoricalPoint{Date: p.Date, Value: RoundPrice(p.Value)}
		if idx, ok := byDay[day]; ok {
			out[idx] = pt
			continue
		}
		byDay[day] = len(out)
		out = append(out, pt)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}
