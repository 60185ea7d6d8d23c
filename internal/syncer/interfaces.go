package syncer

import (
	"context"
	"time"

	"github.com/finbase/statement-sync/internal/domain"
)

// FileSource enumerates and downloads statement files from a linked folder.
// Implementations exist for Google Drive and for a GCS upload bucket; both
// return files newest-modified-first with trashed items excluded.
type FileSource interface {
	ListFolder(ctx context.Context, folderID string) ([]domain.RemoteFile, error)
	Download(ctx context.Context, fileID string) ([]byte, error)
}

// FolderSearcher finds candidate folders by free-text query. Only the Drive
// source implements this; the result page is small and unpaginated.
type FolderSearcher interface {
	SearchFolders(ctx context.Context, query string) ([]domain.RemoteFolder, error)
}

// TransactionSink persists normalized transactions. InsertTransactions is
// bulk and all-or-nothing per call.
type TransactionSink interface {
	InsertTransactions(ctx context.Context, txs []*domain.Transaction) error
}

// ProcessingLog is the dedup registry: at most one entry per file name, and
// existence of an entry is the sole signal that a file was already ingested.
// Exists and Record are separate calls; the design assumes a single in-flight
// run per account, two concurrent runs could both pass Exists before either
// records.
type ProcessingLog interface {
	Exists(ctx context.Context, fileName string) (bool, error)
	Record(ctx context.Context, entry *domain.ProcessingLogEntry) error
}

// AccountStore reads and updates the owning bank account.
type AccountStore interface {
	GetAccount(ctx context.Context, accountID string) (*domain.BankAccount, error)
	SetDriveFolder(ctx context.Context, accountID, folderID string) error
	UpdateLastSyncAt(ctx context.Context, accountID string, ts time.Time) error
}
