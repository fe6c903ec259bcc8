// Package mathutil provides common mathematical utility functions.
package mathutil

import (
	"github.com/iwvelando/loan-gauge/pkg/constants"
	"github.com/shopspring/decimal"
)

var currencyTolerance = decimal.NewFromFloat(constants.CurrencyTolerance)

// RoundCurrency rounds a decimal to cents using round-half-to-even.
func RoundCurrency(val decimal.Decimal) decimal.Decimal {
	return val.RoundBank(constants.CurrencyPlaces)
}

// CurrencyFromFloat converts a float64 amount to a decimal rounded to cents.
func CurrencyFromFloat(val float64) decimal.Decimal {
	return RoundCurrency(decimal.NewFromFloat(val))
}

// DecimalWithinCent reports whether two amounts differ by at most one cent.
func DecimalWithinCent(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(currencyTolerance)
}

// MaxDecimal returns the larger of two decimals.
func MaxDecimal(a, b decimal.Decimal) decimal.Decimal {
	if a.GreaterThan(b) {
		return a
	}
	return b
}
