package model

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// AmountPlaces is the number of fractional digits kept for every money value
const AmountPlaces = 2

// MaxAmountDigits caps the integer part of an amount
const MaxAmountDigits = 12

// amountPattern is the only accepted amount form: digits with an optional
// one or two digit fraction. Signs and exponents are rejected.
var amountPattern = regexp.MustCompile(`^([0-9]+)(\.[0-9]{1,2})?$`)

// ParseAmount parses a money string. The value must be non-negative and
// carry at most two fractional digits.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, Validationf("amount is required")
	}
	if strings.HasPrefix(s, "-") {
		return decimal.Zero, Validationf("amount %q is negative", s)
	}
	m := amountPattern.FindStringSubmatch(s)
	if m == nil {
		if strings.ContainsAny(s, "eE") {
			return decimal.Zero, Validationf("amount %q must not use exponent notation", s)
		}
		if i := strings.IndexByte(s, '.'); i >= 0 && len(s)-i-1 > AmountPlaces {
			return decimal.Zero, Validationf("amount %q has more than %d decimal places", s, AmountPlaces)
		}
		return decimal.Zero, Validationf("amount %q is not a number", s)
	}
	if len(strings.TrimLeft(m[1], "0")) > MaxAmountDigits {
		return decimal.Zero, Validationf("amount %q exceeds %d digits", s, MaxAmountDigits)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, Validationf("amount %q is not a number", s)
	}
	return d, nil
}

// FormatAmount renders a money value with exactly two fractional digits
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(AmountPlaces)
}
