// Package money parses and formats user-entered monetary amounts. All
// arithmetic elsewhere uses shopspring decimals; this package is the only
// place free text is turned into one.
package money

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/punchamoorthee/ledgerbot/internal/domain"
)

// Parse converts user input into a positive scale-2 decimal. It accepts
// either "." or "," as the decimal separator and ignores embedded spaces
// (thousands grouping). Values with more than two fractional digits are
// rounded half-up.
func Parse(text string) (decimal.Decimal, error) {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.ReplaceAll(cleaned, " ", "")
	cleaned = strings.ReplaceAll(cleaned, " ", "")
	cleaned = strings.ReplaceAll(cleaned, ",", ".")

	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, domain.ErrMalformedAmount
	}
	if amount.Sign() <= 0 {
		return decimal.Zero, domain.ErrInvalidAmount
	}
	if amount.Exponent() < -2 {
		// Round half away from zero; equivalent to half-up for positive values.
		amount = amount.Round(2)
	}
	return amount, nil
}

// Format renders a decimal with exactly two fraction digits.
func Format(d decimal.Decimal) string {
	return d.StringFixed(2)
}
