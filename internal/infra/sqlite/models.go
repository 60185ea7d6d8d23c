package sqlite

import (
	"time"

	"gorm.io/gorm"
)

// Transaction is the stored form of a normalized transaction. Amount is kept
// as its exact decimal string; the pipeline never reads it back.
type Transaction struct {
	gorm.Model
	TransactionID string `gorm:"uniqueIndex"`
	UserID        string
	BankAccountID string `gorm:"index"`
	Date          time.Time
	Description   string
	Amount        string
	IsIncome      bool

	CategoryID      *string
	IsCategorized   bool
	ConfidenceScore *float64

	IsDebt              bool
	DebtCreditorID      *string
	DebtDebtorID        *string
	DebtSplitPercentage *float64
	DebtStatus          *string
	DebtRemainingAmount *string
}

// ProcessingLog is the dedup registry row; the unique index on FileName is
// what makes a second import of the same file fail closed.
type ProcessingLog struct {
	gorm.Model
	FileName         string `gorm:"uniqueIndex"`
	FileHash         string
	TransactionCount int
	ProcessedAt      time.Time
}

// BankAccount is the owning account row.
type BankAccount struct {
	ID            string `gorm:"primaryKey"`
	UserID        string
	Name          string
	DriveFolderID string
	LastSyncAt    *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
