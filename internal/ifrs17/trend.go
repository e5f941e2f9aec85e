package ifrs17

import (
	"math"

	"github.com/shopspring/decimal"
)

// percentPlaces is the precision of every percentage the engine reports.
const percentPlaces = 1

// TrendPct returns the percentage change of current against opening, rounded
// to one decimal place. It returns nil when opening is zero: the trend is
// undefined rather than infinite.
func TrendPct(current, opening float64) *float64 {
	if opening == 0 {
		return nil
	}
	return roundPercent((current - opening) / opening * 100)
}

// RatioPct returns numerator/denominator as a percentage rounded to one
// decimal place, or nil when the denominator is zero.
func RatioPct(numerator, denominator float64) *float64 {
	if denominator == 0 {
		return nil
	}
	return roundPercent(numerator / denominator * 100)
}

// roundPercent rounds the float's binary value, sending exact ties to the
// even digit, so 0.25 becomes 0.2 and 12.35 (stored just below) becomes 12.3.
// Non-finite values (an opening balance small enough to overflow the ratio)
// have no meaningful percentage.
func roundPercent(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	// The lowest exponent makes the conversion exact instead of shortest-string.
	r, _ := decimal.NewFromFloatWithExponent(v, math.MinInt32).RoundBank(percentPlaces).Float64()
	return &r
}
