// Package currencyutils converts decimal money strings to minor currency
// units (cents) without rounding.
package currencyutils

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var symbolPattern = regexp.MustCompile(`[€$£¥\s]`)

// ParseCents parses a decimal money string like "$ 12.34" into minor units
// (1234). Exactly two fractional digits are expected; the conversion only
// removes punctuation and never rounds.
func ParseCents(amountStr string) (int64, error) {
	standardized := StandardizeAmount(amountStr)
	if standardized == "" {
		return 0, fmt.Errorf("empty amount string %q", amountStr)
	}

	dot := strings.Index(standardized, ".")
	if dot < 0 || len(standardized)-dot-1 != 2 {
		return 0, fmt.Errorf("amount %q does not have a two-digit fractional part", amountStr)
	}

	amount, err := decimal.NewFromString(standardized)
	if err != nil {
		return 0, fmt.Errorf("failed to parse amount %q: %w", amountStr, err)
	}

	return amount.Shift(2).IntPart(), nil
}

// StandardizeAmount strips currency symbols, whitespace and thousands
// separators so decimal.NewFromString accepts the result.
func StandardizeAmount(amountStr string) string {
	amountStr = symbolPattern.ReplaceAllString(amountStr, "")
	amountStr = strings.ReplaceAll(amountStr, ",", "")
	return amountStr
}

// FormatCents renders a minor-unit amount back to a decimal string, e.g.
// -123 -> "-1.23". Used for display and export.
func FormatCents(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}
