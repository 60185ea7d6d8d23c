package statement

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// glyphStripper removes currency symbols, thousands separators and inner
// whitespace from an amount string before decimal parsing.
var glyphStripper = strings.NewReplacer(
	"$", "",
	"£", "",
	"€", "",
	"¥", "",
	",", "",
	" ", "",
	"\t", "",
)

// ParseAmount resolves a currency-formatted string to a signed decimal.
// The accounting-negative convention is detected on the original string:
// if it contains both an opening and a closing parenthesis the result is
// forced negative, whatever sign the digits parsed to. A non-numeric residue
// is an explicit error, never zero.
func ParseAmount(s string) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return decimal.Zero, fmt.Errorf("empty amount")
	}

	negative := strings.Contains(trimmed, "(") && strings.Contains(trimmed, ")")

	cleaned := glyphStripper.Replace(trimmed)
	cleaned = strings.ReplaceAll(cleaned, "(", "")
	cleaned = strings.ReplaceAll(cleaned, ")", "")

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("unparsable amount: %q", s)
	}

	if negative {
		d = d.Abs().Neg()
	}
	return d, nil
}
