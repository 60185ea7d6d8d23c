// Package sqlite is the local store behind the CLI and single-binary
// deployments. It implements the same sink, registry and account interfaces
// as the BigQuery store.
package sqlite

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/finbase/statement-sync/internal/domain"
	"github.com/finbase/statement-sync/internal/syncer"
)

type Database struct {
	db *gorm.DB
}

func NewDatabase(dbPath string) (*Database, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("NewDatabase: connecting to %s: %w", dbPath, err)
	}
	if err := db.AutoMigrate(&Transaction{}, &ProcessingLog{}, &BankAccount{}); err != nil {
		return nil, fmt.Errorf("NewDatabase: migrating schema: %w", err)
	}
	return &Database{db: db}, nil
}

// InsertTransactions persists a batch inside one transaction, all-or-nothing.
func (d *Database) InsertTransactions(ctx context.Context, txs []*domain.Transaction) error {
	if len(txs) == 0 {
		return nil
	}

	rows := make([]*Transaction, 0, len(txs))
	for _, tx := range txs {
		row := &Transaction{
			TransactionID:       tx.TransactionID,
			UserID:              tx.UserID,
			BankAccountID:       tx.BankAccountID,
			Date:                tx.Date,
			Description:         tx.Description,
			Amount:              tx.Amount.String(),
			IsIncome:            tx.IsIncome,
			CategoryID:          tx.CategoryID,
			IsCategorized:       tx.IsCategorized,
			ConfidenceScore:     tx.ConfidenceScore,
			IsDebt:              tx.IsDebt,
			DebtCreditorID:      tx.DebtCreditorID,
			DebtDebtorID:        tx.DebtDebtorID,
			DebtSplitPercentage: tx.DebtSplitPercentage,
			DebtStatus:          tx.DebtStatus,
		}
		if tx.DebtRemainingAmount != nil {
			s := tx.DebtRemainingAmount.String()
			row.DebtRemainingAmount = &s
		}
		rows = append(rows, row)
	}

	if err := d.db.WithContext(ctx).Create(rows).Error; err != nil {
		return fmt.Errorf("InsertTransactions: saving %d rows: %w", len(rows), err)
	}
	return nil
}

// Exists reports whether a processing-log entry exists for the file name.
func (d *Database) Exists(ctx context.Context, fileName string) (bool, error) {
	var entry ProcessingLog
	err := d.db.WithContext(ctx).Where("file_name = ?", fileName).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("Exists: looking up %s: %w", fileName, err)
	}
	return true, nil
}

// Record writes the processing-log entry for a file. The unique index on
// file_name rejects a second entry for the same file.
func (d *Database) Record(ctx context.Context, entry *domain.ProcessingLogEntry) error {
	row := &ProcessingLog{
		FileName:         entry.FileName,
		FileHash:         entry.FileHash,
		TransactionCount: entry.TransactionCount,
		ProcessedAt:      entry.ProcessedAt,
	}
	if err := d.db.WithContext(ctx).Create(row).Error; err != nil {
		return fmt.Errorf("Record: saving log entry for %s: %w", entry.FileName, err)
	}
	return nil
}

// CreateAccount registers a bank account; used by the CLI to bootstrap a
// local database.
func (d *Database) CreateAccount(ctx context.Context, account *domain.BankAccount) error {
	row := &BankAccount{
		ID:            account.ID,
		UserID:        account.UserID,
		Name:          account.Name,
		DriveFolderID: account.DriveFolderID,
		LastSyncAt:    account.LastSyncAt,
	}
	if err := d.db.WithContext(ctx).Create(row).Error; err != nil {
		return fmt.Errorf("CreateAccount: saving account %s: %w", account.ID, err)
	}
	return nil
}

func (d *Database) GetAccount(ctx context.Context, accountID string) (*domain.BankAccount, error) {
	var row BankAccount
	err := d.db.WithContext(ctx).Where("id = ?", accountID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("GetAccount: %s: %w", accountID, syncer.ErrAccountNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("GetAccount: loading account %s: %w", accountID, err)
	}
	return &domain.BankAccount{
		ID:            row.ID,
		UserID:        row.UserID,
		Name:          row.Name,
		DriveFolderID: row.DriveFolderID,
		LastSyncAt:    row.LastSyncAt,
	}, nil
}

func (d *Database) SetDriveFolder(ctx context.Context, accountID, folderID string) error {
	res := d.db.WithContext(ctx).Model(&BankAccount{}).Where("id = ?", accountID).
		Update("drive_folder_id", folderID)
	if res.Error != nil {
		return fmt.Errorf("SetDriveFolder: updating account %s: %w", accountID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("SetDriveFolder: %s: %w", accountID, syncer.ErrAccountNotFound)
	}
	return nil
}

func (d *Database) UpdateLastSyncAt(ctx context.Context, accountID string, ts time.Time) error {
	res := d.db.WithContext(ctx).Model(&BankAccount{}).Where("id = ?", accountID).
		Update("last_sync_at", ts)
	if res.Error != nil {
		return fmt.Errorf("UpdateLastSyncAt: updating account %s: %w", accountID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("UpdateLastSyncAt: %s: %w", accountID, syncer.ErrAccountNotFound)
	}
	return nil
}

var (
	_ syncer.TransactionSink = (*Database)(nil)
	_ syncer.ProcessingLog   = (*Database)(nil)
	_ syncer.AccountStore    = (*Database)(nil)
)
