package models

import "github.com/shopspring/decimal"

// RoundPrice rounds prices, yields and absolute changes to 4 decimal places.
func RoundPrice(v float64) float64 {
	return round(v, 4)
}

// RoundPercent rounds percentage changes to 2 decimal places.
func RoundPercent(v float64) float64 {
	return round(v, 2)
}

func round(v float64, places int32) float64 {
	f, _ := decimal.NewFromFloat(v).Round(places).Float64()
	return f
}

func roundPtr(v *float64, places int32) *float64 {
	if v == nil {
		return nil
	}
	r := round(*v, places)
	return &r
}

// Float64 returns a pointer to v.
func Float64(v float64) *float64 {
	return &v
}
