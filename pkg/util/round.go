// Package util provides numeric presentation helpers shared by the engines.
//
// Rounding here is a display contract, not a computation-precision rule:
// engines keep full float64 precision internally and round only when
// populating the api contract structs.
package util

import (
	"math"

	"github.com/shopspring/decimal"
)

// RoundMoney rounds a monetary value to 2 decimals using decimal arithmetic
// to avoid float artifacts on currency fields.
func RoundMoney(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

// RoundScore rounds scores and ratios to 3 decimals.
func RoundScore(v float64) float64 {
	return roundTo(v, 3)
}

// RoundRate rounds rate fields to 4 decimals.
func RoundRate(v float64) float64 {
	return roundTo(v, 4)
}

// Round1 rounds to 1 decimal (ages and year spans).
func Round1(v float64) float64 {
	return roundTo(v, 1)
}

func roundTo(v float64, places int) float64 {
	pow := math.Pow10(places)
	return math.Round(v*pow) / pow
}

// Sanitize maps NaN and +/-Inf to 0 so undefined ratios never leak into the
// output contract.
func Sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
