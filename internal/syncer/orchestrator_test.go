package syncer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finbase/statement-sync/internal/domain"
)

const goodCSV = `Date,Description,Credit Amount,Debit Amount,Balance
01/02/2024,"SALARY",3500.00,,3500.00
02/02/2024,"SHOP",,85.50,3414.50`

type mockSource struct {
	ListFolderFunc func(ctx context.Context, folderID string) ([]domain.RemoteFile, error)
	DownloadFunc   func(ctx context.Context, fileID string) ([]byte, error)
}

func (m *mockSource) ListFolder(ctx context.Context, folderID string) ([]domain.RemoteFile, error) {
	return m.ListFolderFunc(ctx, folderID)
}

func (m *mockSource) Download(ctx context.Context, fileID string) ([]byte, error) {
	return m.DownloadFunc(ctx, fileID)
}

type mockSink struct {
	mu       sync.Mutex
	inserted [][]*domain.Transaction
	err      error
}

func (m *mockSink) InsertTransactions(ctx context.Context, txs []*domain.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.inserted = append(m.inserted, txs)
	return nil
}

// mockRegistry is an in-memory processing log keyed by file name.
type mockRegistry struct {
	mu      sync.Mutex
	entries map[string]*domain.ProcessingLogEntry
}

func newMockRegistry() *mockRegistry {
	return &mockRegistry{entries: make(map[string]*domain.ProcessingLogEntry)}
}

func (m *mockRegistry) Exists(ctx context.Context, fileName string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.entries[fileName]
	return ok, nil
}

func (m *mockRegistry) Record(ctx context.Context, entry *domain.ProcessingLogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[entry.FileName] = entry
	return nil
}

type mockAccounts struct {
	account    *domain.BankAccount
	lastSyncAt *time.Time
	folderSet  string
}

func (m *mockAccounts) GetAccount(ctx context.Context, accountID string) (*domain.BankAccount, error) {
	if m.account == nil || m.account.ID != accountID {
		return nil, ErrAccountNotFound
	}
	return m.account, nil
}

func (m *mockAccounts) SetDriveFolder(ctx context.Context, accountID, folderID string) error {
	m.folderSet = folderID
	return nil
}

func (m *mockAccounts) UpdateLastSyncAt(ctx context.Context, accountID string, ts time.Time) error {
	m.lastSyncAt = &ts
	return nil
}

func testAccount() *domain.BankAccount {
	return &domain.BankAccount{ID: "acc-1", UserID: "user-1", Name: "Everyday", DriveFolderID: "folder-1"}
}

func remoteCSV(id, name string) domain.RemoteFile {
	return domain.RemoteFile{ID: id, Name: name, MimeType: "text/csv"}
}

func newTestOrchestrator(source FileSource, sink TransactionSink, registry ProcessingLog, accounts AccountStore) *Orchestrator {
	return New(source, sink, registry, accounts, zerolog.Nop())
}

func TestSyncAccountHappyPath(t *testing.T) {
	source := &mockSource{
		ListFolderFunc: func(ctx context.Context, folderID string) ([]domain.RemoteFile, error) {
			assert.Equal(t, "folder-1", folderID)
			return []domain.RemoteFile{remoteCSV("f1", "jan.csv")}, nil
		},
		DownloadFunc: func(ctx context.Context, fileID string) ([]byte, error) {
			return []byte(goodCSV), nil
		},
	}
	sink := &mockSink{}
	registry := newMockRegistry()
	accounts := &mockAccounts{account: testAccount()}

	result, err := newTestOrchestrator(source, sink, registry, accounts).SyncAccount(context.Background(), "acc-1")
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, 1, result.FilesConsidered)
	assert.Equal(t, 2, result.TransactionsProcessed)
	assert.Equal(t, 0, result.DuplicatesSkipped)
	assert.Empty(t, result.Errors)
	assert.Equal(t, "Processed 1 files", result.Message)

	require.Len(t, sink.inserted, 1)
	for _, tx := range sink.inserted[0] {
		assert.NotEmpty(t, tx.TransactionID)
		assert.Equal(t, "user-1", tx.UserID)
		assert.Equal(t, "acc-1", tx.BankAccountID)
		assert.False(t, tx.Amount.IsNegative())
		assert.False(t, tx.IsCategorized)
	}

	entry := registry.entries["jan.csv"]
	require.NotNil(t, entry, "exactly one processing log entry per file")
	assert.Equal(t, "drive_f1", entry.FileHash)
	assert.Equal(t, 2, entry.TransactionCount)

	require.NotNil(t, accounts.lastSyncAt)
}

func TestSyncAccountIdempotence(t *testing.T) {
	files := []domain.RemoteFile{remoteCSV("f1", "jan.csv"), remoteCSV("f2", "feb.csv")}
	source := &mockSource{
		ListFolderFunc: func(ctx context.Context, folderID string) ([]domain.RemoteFile, error) {
			return files, nil
		},
		DownloadFunc: func(ctx context.Context, fileID string) ([]byte, error) {
			return []byte(goodCSV), nil
		},
	}
	sink := &mockSink{}
	registry := newMockRegistry()
	accounts := &mockAccounts{account: testAccount()}
	orch := newTestOrchestrator(source, sink, registry, accounts)

	first, err := orch.SyncAccount(context.Background(), "acc-1")
	require.NoError(t, err)
	assert.Equal(t, 4, first.TransactionsProcessed)
	assert.Equal(t, 0, first.DuplicatesSkipped)

	second, err := orch.SyncAccount(context.Background(), "acc-1")
	require.NoError(t, err)
	assert.True(t, second.Success)
	assert.Equal(t, second.FilesConsidered, second.DuplicatesSkipped,
		"second run over unchanged folder skips every file")
	assert.Equal(t, 0, second.TransactionsProcessed)
	assert.Len(t, sink.inserted, 2, "no new inserts on the second run")
}

func TestSyncAccountPartialFailure(t *testing.T) {
	source := &mockSource{
		ListFolderFunc: func(ctx context.Context, folderID string) ([]domain.RemoteFile, error) {
			return []domain.RemoteFile{remoteCSV("good", "jan.csv"), remoteCSV("bad", "broken.csv")}, nil
		},
		DownloadFunc: func(ctx context.Context, fileID string) ([]byte, error) {
			if fileID == "bad" {
				return []byte("Date,Description,Credit Amount,Debit Amount,Balance\n"), nil
			}
			return []byte(goodCSV), nil
		},
	}
	sink := &mockSink{}
	registry := newMockRegistry()
	accounts := &mockAccounts{account: testAccount()}

	result, err := newTestOrchestrator(source, sink, registry, accounts).SyncAccount(context.Background(), "acc-1")
	require.NoError(t, err)

	assert.True(t, result.Success, "run-level success despite one file failing")
	assert.Equal(t, 2, result.TransactionsProcessed)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "Failed to process broken.csv")

	_, failedLogged := registry.entries["broken.csv"]
	assert.False(t, failedLogged, "failed file must not be recorded as processed")
	require.NotNil(t, accounts.lastSyncAt, "last sync moves even with file failures")
}

func TestSyncAccountDownloadFailureContinues(t *testing.T) {
	source := &mockSource{
		ListFolderFunc: func(ctx context.Context, folderID string) ([]domain.RemoteFile, error) {
			return []domain.RemoteFile{remoteCSV("f1", "jan.csv"), remoteCSV("f2", "feb.csv")}, nil
		},
		DownloadFunc: func(ctx context.Context, fileID string) ([]byte, error) {
			if fileID == "f1" {
				return nil, errors.New("network timeout")
			}
			return []byte(goodCSV), nil
		},
	}
	sink := &mockSink{}
	registry := newMockRegistry()
	accounts := &mockAccounts{account: testAccount()}

	result, err := newTestOrchestrator(source, sink, registry, accounts).SyncAccount(context.Background(), "acc-1")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 2, result.TransactionsProcessed, "second file still processed")
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "Failed to process jan.csv")
	assert.Contains(t, result.Errors[0], "network timeout")
}

func TestSyncAccountSinkFailure(t *testing.T) {
	source := &mockSource{
		ListFolderFunc: func(ctx context.Context, folderID string) ([]domain.RemoteFile, error) {
			return []domain.RemoteFile{remoteCSV("f1", "jan.csv")}, nil
		},
		DownloadFunc: func(ctx context.Context, fileID string) ([]byte, error) {
			return []byte(goodCSV), nil
		},
	}
	sink := &mockSink{err: errors.New("insert rejected")}
	registry := newMockRegistry()
	accounts := &mockAccounts{account: testAccount()}

	result, err := newTestOrchestrator(source, sink, registry, accounts).SyncAccount(context.Background(), "acc-1")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 0, result.TransactionsProcessed)
	require.Len(t, result.Errors, 1)

	_, logged := registry.entries["jan.csv"]
	assert.False(t, logged, "no log entry when the insert failed")
}

func TestSyncAccountRowErrorsSurfaceAsWarnings(t *testing.T) {
	csv := "Date,Description,Credit Amount,Debit Amount,Balance\n" +
		"01/02/2024,\"SALARY\",3500.00,,3500.00\n" +
		"garbage,\"BROKEN\",1.00,,3501.00\n"
	source := &mockSource{
		ListFolderFunc: func(ctx context.Context, folderID string) ([]domain.RemoteFile, error) {
			return []domain.RemoteFile{remoteCSV("f1", "jan.csv")}, nil
		},
		DownloadFunc: func(ctx context.Context, fileID string) ([]byte, error) {
			return []byte(csv), nil
		},
	}
	sink := &mockSink{}
	registry := newMockRegistry()
	accounts := &mockAccounts{account: testAccount()}

	result, err := newTestOrchestrator(source, sink, registry, accounts).SyncAccount(context.Background(), "acc-1")
	require.NoError(t, err)
	assert.True(t, result.Success, "bad rows are partial success, not file failure")
	assert.Equal(t, 1, result.TransactionsProcessed)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "jan.csv: line 3:")

	_, logged := registry.entries["jan.csv"]
	assert.True(t, logged, "file with surviving rows still gets its log entry")
}

func TestSyncAccountNoFiles(t *testing.T) {
	source := &mockSource{
		ListFolderFunc: func(ctx context.Context, folderID string) ([]domain.RemoteFile, error) {
			// A folder with only non-CSV content is the same as an empty one.
			return []domain.RemoteFile{{ID: "p1", Name: "statement.pdf", MimeType: "application/pdf"}}, nil
		},
	}
	result, err := newTestOrchestrator(source, &mockSink{}, newMockRegistry(), &mockAccounts{account: testAccount()}).
		SyncAccount(context.Background(), "acc-1")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 0, result.FilesConsidered)
	assert.Equal(t, 0, result.TransactionsProcessed)
	assert.Equal(t, 0, result.DuplicatesSkipped)
	assert.Equal(t, "No CSV files found in folder", result.Message)
}

func TestSyncAccountPreconditions(t *testing.T) {
	t.Run("unknown account", func(t *testing.T) {
		_, err := newTestOrchestrator(&mockSource{}, &mockSink{}, newMockRegistry(), &mockAccounts{}).
			SyncAccount(context.Background(), "missing")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrAccountNotFound)
	})

	t.Run("folder not linked", func(t *testing.T) {
		account := testAccount()
		account.DriveFolderID = ""
		_, err := newTestOrchestrator(&mockSource{}, &mockSink{}, newMockRegistry(), &mockAccounts{account: account}).
			SyncAccount(context.Background(), "acc-1")
		assert.ErrorIs(t, err, ErrFolderNotLinked)
	})

	t.Run("enumeration failure is fatal", func(t *testing.T) {
		source := &mockSource{
			ListFolderFunc: func(ctx context.Context, folderID string) ([]domain.RemoteFile, error) {
				return nil, fmt.Errorf("drive unreachable")
			},
		}
		_, err := newTestOrchestrator(source, &mockSink{}, newMockRegistry(), &mockAccounts{account: testAccount()}).
			SyncAccount(context.Background(), "acc-1")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "drive unreachable")
	})
}

func TestConnectFolder(t *testing.T) {
	accounts := &mockAccounts{account: testAccount()}
	orch := newTestOrchestrator(&mockSource{}, &mockSink{}, newMockRegistry(), accounts)

	require.NoError(t, orch.ConnectFolder(context.Background(), "acc-1", "folder-9"))
	assert.Equal(t, "folder-9", accounts.folderSet)

	// Re-connecting overwrites.
	require.NoError(t, orch.ConnectFolder(context.Background(), "acc-1", "folder-10"))
	assert.Equal(t, "folder-10", accounts.folderSet)

	require.Error(t, orch.ConnectFolder(context.Background(), "acc-1", ""))
}

func TestStatus(t *testing.T) {
	now := time.Now().UTC()
	account := testAccount()
	account.LastSyncAt = &now
	orch := newTestOrchestrator(&mockSource{}, &mockSink{}, newMockRegistry(), &mockAccounts{account: account})

	status, err := orch.Status(context.Background(), "acc-1")
	require.NoError(t, err)
	assert.True(t, status.Connected)
	assert.Equal(t, "folder-1", status.FolderID)
	require.NotNil(t, status.LastSyncAt)
	assert.Equal(t, now, *status.LastSyncAt)
}
