// Package mathutil provides common mathematical utility functions.
package mathutil

import (
	"math"

	"github.com/iwvelando/loan-calculator/pkg/constants"
	"github.com/shopspring/decimal"
)

// Round rounds a value to two decimals, i.e. to represent real currency.
// Halves round away from zero. Used at the presentation boundary only.
func Round(val float64) float64 {
	return RoundDecimal(val).InexactFloat64()
}

// RoundDecimal converts a value into a decimal rounded to cents.
func RoundDecimal(val float64) decimal.Decimal {
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(val).Round(constants.DecimalPlaces)
}

// IsZero checks if a value is effectively zero (within tolerance)
func IsZero(val float64) bool {
	return math.Abs(val) <= constants.CurrencyTolerance
}

// WithinTolerance checks if two values are within a specified tolerance
func WithinTolerance(val1, val2, tolerance float64) bool {
	return math.Abs(val1-val2) <= tolerance
}

// Sum adds values using compensated summation so long schedules do not
// accumulate visible drift.
func Sum(values ...float64) float64 {
	var sum, c float64
	for _, v := range values {
		y := v - c
		t := sum + y
		c = (t - sum) - y
		sum = t
	}
	return sum
}
