package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is the canonical, bank-agnostic record produced by the
// statement pipeline. Amount is always non-negative; the direction of the
// money movement is carried by IsIncome alone. Categorization fields are
// filled in later by a separate process and are never touched here.
type Transaction struct {
	TransactionID string
	UserID        string
	BankAccountID string

	Date        time.Time // statement date, day precision
	Description string
	Amount      decimal.Decimal // >= 0
	IsIncome    bool

	CategoryID      *string
	IsCategorized   bool
	ConfidenceScore *float64

	IsDebt              bool
	DebtCreditorID      *string
	DebtDebtorID        *string
	DebtSplitPercentage *float64
	DebtStatus          *string
	DebtRemainingAmount *decimal.Decimal
}
