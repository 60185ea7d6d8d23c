package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finbase/statement-sync/internal/domain"
	"github.com/finbase/statement-sync/internal/syncer"
)

func newTestDB(t *testing.T) *Database {
	t.Helper()
	db, err := NewDatabase(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	return db
}

func TestProcessingLogRoundTrip(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	seen, err := db.Exists(ctx, "jan.csv")
	require.NoError(t, err)
	assert.False(t, seen)

	err = db.Record(ctx, &domain.ProcessingLogEntry{
		FileName:         "jan.csv",
		FileHash:         "drive_f1",
		TransactionCount: 2,
		ProcessedAt:      time.Now().UTC(),
	})
	require.NoError(t, err)

	seen, err = db.Exists(ctx, "jan.csv")
	require.NoError(t, err)
	assert.True(t, seen)

	// At most one entry per file name.
	err = db.Record(ctx, &domain.ProcessingLogEntry{FileName: "jan.csv"})
	assert.Error(t, err)
}

func TestInsertTransactions(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	txs := []*domain.Transaction{
		{
			TransactionID: "tx-1",
			UserID:        "user-1",
			BankAccountID: "acc-1",
			Date:          time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
			Description:   "SALARY",
			Amount:        decimal.RequireFromString("3500.00"),
			IsIncome:      true,
		},
		{
			TransactionID: "tx-2",
			UserID:        "user-1",
			BankAccountID: "acc-1",
			Date:          time.Date(2024, 2, 2, 0, 0, 0, 0, time.UTC),
			Description:   "SHOP",
			Amount:        decimal.RequireFromString("85.50"),
			IsIncome:      false,
		},
	}
	require.NoError(t, db.InsertTransactions(ctx, txs))
	require.NoError(t, db.InsertTransactions(ctx, nil), "empty batch is a no-op")

	var count int64
	require.NoError(t, db.db.Model(&Transaction{}).Count(&count).Error)
	assert.EqualValues(t, 2, count)
}

func TestAccountLifecycle(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	_, err := db.GetAccount(ctx, "missing")
	assert.ErrorIs(t, err, syncer.ErrAccountNotFound)

	require.NoError(t, db.CreateAccount(ctx, &domain.BankAccount{
		ID: "acc-1", UserID: "user-1", Name: "Everyday",
	}))

	require.NoError(t, db.SetDriveFolder(ctx, "acc-1", "folder-1"))
	assert.ErrorIs(t, db.SetDriveFolder(ctx, "missing", "folder-1"), syncer.ErrAccountNotFound)

	now := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, db.UpdateLastSyncAt(ctx, "acc-1", now))

	account, err := db.GetAccount(ctx, "acc-1")
	require.NoError(t, err)
	assert.Equal(t, "folder-1", account.DriveFolderID)
	require.NotNil(t, account.LastSyncAt)
	assert.WithinDuration(t, now, *account.LastSyncAt, time.Second)
}
