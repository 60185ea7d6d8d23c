package bigquery

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"

	"github.com/finbase/statement-sync/internal/domain"
)

// TransactionRow is the transactions table schema.
type TransactionRow struct {
	TransactionID string `bigquery:"transaction_id"` // REQUIRED
	UserID        string `bigquery:"user_id"`        // REQUIRED
	BankAccountID string `bigquery:"bank_account_id"` // REQUIRED

	TransactionDate civil.Date `bigquery:"transaction_date"` // REQUIRED
	Description     string     `bigquery:"description"`      // REQUIRED
	Amount          *big.Rat   `bigquery:"amount"`           // REQUIRED NUMERIC, >= 0
	IsIncome        bool       `bigquery:"is_income"`        // REQUIRED

	CategoryID      bigquery.NullString  `bigquery:"category_id"`      // NULLABLE
	IsCategorized   bool                 `bigquery:"is_categorized"`   // REQUIRED
	ConfidenceScore bigquery.NullFloat64 `bigquery:"confidence_score"` // NULLABLE

	IsDebt              bool                 `bigquery:"is_debt"`
	DebtCreditorID      bigquery.NullString  `bigquery:"debt_creditor_id"`
	DebtDebtorID        bigquery.NullString  `bigquery:"debt_debtor_id"`
	DebtSplitPercentage bigquery.NullFloat64 `bigquery:"debt_split_percentage"`
	DebtStatus          bigquery.NullString  `bigquery:"debt_status"`
	DebtRemainingAmount *big.Rat             `bigquery:"debt_remaining_amount"` // NULLABLE NUMERIC

	CreatedTS time.Time `bigquery:"created_ts"` // REQUIRED
}

// InsertTransactions bulk-inserts normalized transactions via the streaming
// inserter. The call is all-or-nothing from the caller's perspective.
func (s *Store) InsertTransactions(ctx context.Context, txs []*domain.Transaction) error {
	if len(txs) == 0 {
		return nil
	}

	rows := make([]*TransactionRow, 0, len(txs))
	for _, tx := range txs {
		rows = append(rows, toTransactionRow(tx))
	}

	inserter := s.client.Dataset(s.dataset).Table("transactions").Inserter()
	if err := inserter.Put(ctx, rows); err != nil {
		return fmt.Errorf("InsertTransactions: inserting %d rows: %w", len(rows), err)
	}
	return nil
}

func toTransactionRow(tx *domain.Transaction) *TransactionRow {
	row := &TransactionRow{
		TransactionID:   tx.TransactionID,
		UserID:          tx.UserID,
		BankAccountID:   tx.BankAccountID,
		TransactionDate: civil.DateOf(tx.Date),
		Description:     tx.Description,
		Amount:          tx.Amount.Rat(),
		IsIncome:        tx.IsIncome,
		IsCategorized:   tx.IsCategorized,
		IsDebt:          tx.IsDebt,
		CreatedTS:       time.Now().UTC(),
	}

	if tx.CategoryID != nil {
		row.CategoryID = bigquery.NullString{StringVal: *tx.CategoryID, Valid: true}
	}
	if tx.ConfidenceScore != nil {
		row.ConfidenceScore = bigquery.NullFloat64{Float64: *tx.ConfidenceScore, Valid: true}
	}
	if tx.DebtCreditorID != nil {
		row.DebtCreditorID = bigquery.NullString{StringVal: *tx.DebtCreditorID, Valid: true}
	}
	if tx.DebtDebtorID != nil {
		row.DebtDebtorID = bigquery.NullString{StringVal: *tx.DebtDebtorID, Valid: true}
	}
	if tx.DebtSplitPercentage != nil {
		row.DebtSplitPercentage = bigquery.NullFloat64{Float64: *tx.DebtSplitPercentage, Valid: true}
	}
	if tx.DebtStatus != nil {
		row.DebtStatus = bigquery.NullString{StringVal: *tx.DebtStatus, Valid: true}
	}
	if tx.DebtRemainingAmount != nil {
		row.DebtRemainingAmount = tx.DebtRemainingAmount.Rat()
	}

	return row
}
