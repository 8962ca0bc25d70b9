package utils

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// leadingNumber matches a decimal or exponent literal at the start of a string
var leadingNumber = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)(?:[eE]([+-]?\d+))?`)

// maxExponent bounds the exponent of a price literal; beyond it the value is
// treated as malformed.
const maxExponent = 20

// maxScale bounds the exponent of decimals read back from storage
const maxScale = 64

// WithinScale reports whether d can be added to other amounts cheaply
func WithinScale(d decimal.Decimal) bool {
	exp := d.Exponent()
	return exp <= maxScale && exp >= -maxScale
}

// ParseLenientDecimal reads the longest numeric prefix of s.
// Blank or non-numeric input yields zero, never an error.
func ParseLenientDecimal(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}

	match := leadingNumber.FindStringSubmatch(s)
	if match == nil {
		return decimal.Zero
	}

	if match[2] != "" {
		exp, err := strconv.Atoi(match[2])
		if err != nil || exp > maxExponent || exp < -maxExponent {
			return decimal.Zero
		}
	}

	d, err := decimal.NewFromString(strings.TrimSuffix(match[0], "."))
	if err != nil {
		return decimal.Zero
	}

	return d
}

func RoundWithTwoDecimalPlace(d decimal.Decimal) decimal.Decimal {
	if d.IsZero() {
		return decimal.Zero
	}

	return d.Round(2)
}
