package statement

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// defaultDescription replaces an empty source description; the canonical
// record never carries a null description.
const defaultDescription = "Unknown transaction"

// Transaction is one normalized statement line before it is attributed to an
// owner and account. Amount is the absolute value of whichever side of the
// row was non-zero; IsIncome records which side that was.
type Transaction struct {
	Date        time.Time
	Description string
	Amount      decimal.Decimal
	IsIncome    bool
}

// MapRow turns a tokenized row into a normalized transaction using the given
// layout. A row whose credit and debit (or single amount) fields both resolve
// to zero yields (nil, nil) and is dropped rather than recorded as a
// zero-value transaction. Structural problems - too few columns, an
// unparsable date or amount - yield a descriptive error for that row only.
func MapRow(format Format, fields []string) (*Transaction, error) {
	switch format {
	case FormatCommonwealth:
		return mapCreditDebitRow(fields, 2, 3, "commonwealth")
	case FormatWestpac:
		return mapCreditDebitRow(fields, 3, 2, "westpac")
	case FormatANZ:
		return mapSignedAmountRow(fields)
	default:
		return nil, fmt.Errorf("unsupported statement format: %v", format)
	}
}

// mapCreditDebitRow handles the layouts with separate credit and debit
// columns. Commonwealth puts credit before debit, Westpac the other way
// around; both carry date and description in the first two columns.
func mapCreditDebitRow(fields []string, creditIdx, debitIdx int, layout string) (*Transaction, error) {
	if len(fields) < 5 {
		return nil, fmt.Errorf("invalid %s row: %d fields, want at least 5", layout, len(fields))
	}

	date, err := ParseDate(fields[0])
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", fields[0], err)
	}

	credit := sideAmount(fields[creditIdx])
	debit := sideAmount(fields[debitIdx])

	if credit.IsZero() && debit.IsZero() {
		return nil, nil
	}

	amount := debit
	isIncome := false
	if credit.Sign() > 0 {
		amount = credit
		isIncome = true
	}

	return &Transaction{
		Date:        date,
		Description: descriptionOrDefault(fields[1]),
		Amount:      amount.Abs(),
		IsIncome:    isIncome,
	}, nil
}

// mapSignedAmountRow handles the ANZ layout: a single signed amount in the
// second column, description in the third.
func mapSignedAmountRow(fields []string) (*Transaction, error) {
	if len(fields) < 4 {
		return nil, fmt.Errorf("invalid anz row: %d fields, want at least 4", len(fields))
	}

	date, err := ParseDate(fields[0])
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", fields[0], err)
	}

	amount, err := ParseAmount(fields[1])
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", fields[1], err)
	}

	if amount.IsZero() {
		return nil, nil
	}

	return &Transaction{
		Date:        date,
		Description: descriptionOrDefault(fields[2]),
		Amount:      amount.Abs(),
		IsIncome:    amount.Sign() > 0,
	}, nil
}

// sideAmount parses one side of a credit/debit pair. An empty or unparsable
// cell counts as zero; the row is only dropped when both sides resolve to
// zero.
func sideAmount(s string) decimal.Decimal {
	d, err := ParseAmount(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func descriptionOrDefault(s string) string {
	if s == "" {
		return defaultDescription
	}
	return s
}
