// Package money provides rounding and formatting for monetary values.
//
// Invariants:
//   - Amounts are rounded half away from zero to the currency's minor-unit count.
//   - Exchange rates are reported with RatePrecision fractional digits.
//   - Arithmetic is done on decimal.Decimal; float64 only appears at the edges.
package money

import (
	"math"

	"github.com/leekchan/accounting"
	"github.com/shopspring/decimal"
)

// RatePrecision is the number of fractional digits reported for exchange rates.
const RatePrecision = 6

// DefaultDecimals is used when a currency has no configured precision.
const DefaultDecimals = 2

// FromFloat converts a float64 amount to a decimal using its shortest representation.
func FromFloat(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}

// RoundDecimal rounds d half away from zero to the given number of decimals.
func RoundDecimal(d decimal.Decimal, decimals int) decimal.Decimal {
	if decimals < 0 {
		decimals = 0
	}
	return d.Round(int32(decimals))
}

func round(v float64, decimals int) float64 {
	return RoundDecimal(FromFloat(v), decimals).InexactFloat64()
}

// IsFinitePositive reports whether v is a usable amount.
func IsFinitePositive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

// Format renders an amount with a currency symbol and thousands separators,
// e.g. Format(10000, "$", 0) == "$10,000".
func Format(amount float64, symbol string, precision int) string {
	ac := accounting.Accounting{Symbol: symbol, Precision: precision}
	return ac.FormatMoneyFloat64(round(amount, precision))
}
