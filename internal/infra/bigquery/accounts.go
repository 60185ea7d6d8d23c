package bigquery

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"

	"github.com/finbase/statement-sync/internal/domain"
	"github.com/finbase/statement-sync/internal/syncer"
)

// bankAccountRow is the bank_accounts table schema, limited to the columns
// the sync pipeline touches.
type bankAccountRow struct {
	ID            string                 `bigquery:"id"`
	UserID        string                 `bigquery:"user_id"`
	Name          string                 `bigquery:"name"`
	DriveFolderID bigquery.NullString    `bigquery:"drive_folder_id"`
	LastSyncTS    bigquery.NullTimestamp `bigquery:"last_sync_ts"`
}

// GetAccount loads one bank account by ID. An unknown ID yields
// syncer.ErrAccountNotFound.
func (s *Store) GetAccount(ctx context.Context, accountID string) (*domain.BankAccount, error) {
	q := s.client.Query(fmt.Sprintf(`
		SELECT id, user_id, name, drive_folder_id, last_sync_ts
		FROM %s.bank_accounts
		WHERE id = @id
	`, s.dataset))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "id", Value: accountID},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("GetAccount: querying account %s: %w", accountID, err)
	}

	var row bankAccountRow
	if err := it.Next(&row); err != nil {
		if err == iterator.Done {
			return nil, fmt.Errorf("GetAccount: %s: %w", accountID, syncer.ErrAccountNotFound)
		}
		return nil, fmt.Errorf("GetAccount: reading account %s: %w", accountID, err)
	}

	account := &domain.BankAccount{
		ID:     row.ID,
		UserID: row.UserID,
		Name:   row.Name,
	}
	if row.DriveFolderID.Valid {
		account.DriveFolderID = row.DriveFolderID.StringVal
	}
	if row.LastSyncTS.Valid {
		ts := row.LastSyncTS.Timestamp
		account.LastSyncAt = &ts
	}
	return account, nil
}

// SetDriveFolder overwrites the account's folder association. Re-connecting
// an account to a new folder is idempotent.
func (s *Store) SetDriveFolder(ctx context.Context, accountID, folderID string) error {
	err := s.runDML(ctx, fmt.Sprintf(`
		UPDATE %s.bank_accounts
		SET drive_folder_id = @folder_id
		WHERE id = @id
	`, s.dataset), []bigquery.QueryParameter{
		{Name: "folder_id", Value: folderID},
		{Name: "id", Value: accountID},
	})
	if err != nil {
		return fmt.Errorf("SetDriveFolder: updating account %s: %w", accountID, err)
	}
	return nil
}

// UpdateLastSyncAt moves the account's last-synced marker.
func (s *Store) UpdateLastSyncAt(ctx context.Context, accountID string, ts time.Time) error {
	err := s.runDML(ctx, fmt.Sprintf(`
		UPDATE %s.bank_accounts
		SET last_sync_ts = @last_sync_ts
		WHERE id = @id
	`, s.dataset), []bigquery.QueryParameter{
		{Name: "last_sync_ts", Value: ts},
		{Name: "id", Value: accountID},
	})
	if err != nil {
		return fmt.Errorf("UpdateLastSyncAt: updating account %s: %w", accountID, err)
	}
	return nil
}
