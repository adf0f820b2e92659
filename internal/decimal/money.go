// Package decimal wraps shopspring/decimal with helpers for 2-minor-unit
// currencies. All rounding is half-up to 2 fractional digits.
package decimal

import (
	"github.com/shopspring/decimal"
)

// Zero is decimal zero
var Zero = decimal.Zero

// FromString parses decimal from string
func FromString(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(s)
}

// MustFromString parses decimal from string, panics on error
func MustFromString(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Round2 rounds to 2 fractional digits, half-up
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// LineNet computes quantity * unitPrice rounded to 2 places
func LineNet(quantity, unitPrice decimal.Decimal) decimal.Decimal {
	return quantity.Mul(unitPrice).Round(2)
}

// TaxAmount computes basis * rate / 100 rounded to 2 places
func TaxAmount(basis, ratePercent decimal.Decimal) decimal.Decimal {
	hundred := decimal.NewFromInt(100)
	return basis.Mul(ratePercent).Div(hundred).Round(2)
}

// Sum sums a slice of decimals
func Sum(values []decimal.Decimal) decimal.Decimal {
	result := Zero
	for _, v := range values {
		result = result.Add(v)
	}
	return result
}

// Format renders a monetary amount with exactly 2 fractional digits
func Format(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// IsNonNegative returns true if decimal is >= zero
func IsNonNegative(d decimal.Decimal) bool {
	return d.GreaterThanOrEqual(Zero)
}
