package syncer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/finbase/statement-sync/internal/domain"
	"github.com/finbase/statement-sync/internal/statement"
)

// ErrFolderNotLinked is returned when a sync is requested for an account that
// has no statement folder associated. It is a precondition failure: nothing
// is enumerated, downloaded or written.
var ErrFolderNotLinked = errors.New("bank account not connected to a statement folder")

// ErrAccountNotFound is returned by AccountStore implementations when the
// account ID is unknown.
var ErrAccountNotFound = errors.New("bank account not found")

// Orchestrator runs the ingestion pipeline over one account's linked folder:
// enumerate, filter to CSV, dedup, download, parse, insert, record. Files are
// processed strictly one at a time in source order; one bad file never aborts
// the run.
type Orchestrator struct {
	source   FileSource
	sink     TransactionSink
	registry ProcessingLog
	accounts AccountStore
	log      zerolog.Logger
}

func New(source FileSource, sink TransactionSink, registry ProcessingLog, accounts AccountStore, log zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		source:   source,
		sink:     sink,
		registry: registry,
		accounts: accounts,
		log:      log,
	}
}

// ConnectFolder associates an account with a statement folder. Re-connecting
// overwrites the previous association.
func (o *Orchestrator) ConnectFolder(ctx context.Context, accountID, folderID string) error {
	if folderID == "" {
		return fmt.Errorf("ConnectFolder: folder ID is required")
	}
	if err := o.accounts.SetDriveFolder(ctx, accountID, folderID); err != nil {
		return fmt.Errorf("ConnectFolder: updating account %s: %w", accountID, err)
	}
	o.log.Info().Str("account_id", accountID).Str("folder_id", folderID).Msg("Account connected to statement folder")
	return nil
}

// Status reports whether an account has a linked folder and when it last
// synced.
type Status struct {
	Connected  bool       `json:"connected"`
	FolderID   string     `json:"folderId,omitempty"`
	LastSyncAt *time.Time `json:"lastSync,omitempty"`
}

func (o *Orchestrator) Status(ctx context.Context, accountID string) (*Status, error) {
	account, err := o.accounts.GetAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("Status: loading account %s: %w", accountID, err)
	}
	return &Status{
		Connected:  account.DriveFolderID != "",
		FolderID:   account.DriveFolderID,
		LastSyncAt: account.LastSyncAt,
	}, nil
}

// SyncAccount runs one sync over the account's linked folder and returns the
// aggregated result. Enumeration failures and missing preconditions are
// returned as errors; everything past that point is captured per file in the
// result's error list and the loop continues.
func (o *Orchestrator) SyncAccount(ctx context.Context, accountID string) (*domain.SyncResult, error) {
	account, err := o.accounts.GetAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("SyncAccount: loading account %s: %w", accountID, err)
	}
	if account.DriveFolderID == "" {
		return nil, ErrFolderNotLinked
	}

	files, err := o.source.ListFolder(ctx, account.DriveFolderID)
	if err != nil {
		return nil, fmt.Errorf("SyncAccount: listing folder %s: %w", account.DriveFolderID, err)
	}

	candidates := filterStatementFiles(files)
	if len(candidates) == 0 {
		o.log.Info().Str("account_id", accountID).Msg("No CSV files found in folder")
		return &domain.SyncResult{Success: true, Message: "No CSV files found in folder"}, nil
	}

	result := &domain.SyncResult{FilesConsidered: len(candidates)}

	for _, file := range candidates {
		seen, err := o.registry.Exists(ctx, file.Name)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Failed to process %s: checking processing log: %v", file.Name, err))
			continue
		}
		if seen {
			result.DuplicatesSkipped++
			o.log.Debug().Str("file", file.Name).Msg("Skipping already processed file")
			continue
		}

		count, rowErrors, err := o.processFile(ctx, account, file)
		if err != nil {
			o.log.Error().Err(err).Str("file", file.Name).Msg("File processing failed")
			result.Errors = append(result.Errors, fmt.Sprintf("Failed to process %s: %v", file.Name, err))
			continue
		}

		result.TransactionsProcessed += count
		result.Errors = append(result.Errors, rowErrors...)
		o.log.Info().Str("file", file.Name).Int("transactions", count).Msg("File processed")
	}

	// The last-synced marker moves even when every file failed; only an
	// enumeration failure before the loop prevents it.
	if err := o.accounts.UpdateLastSyncAt(ctx, accountID, time.Now().UTC()); err != nil {
		o.log.Error().Err(err).Str("account_id", accountID).Msg("Failed to update last sync time")
	}

	result.Success = true
	result.Message = fmt.Sprintf("Processed %d files", len(candidates))
	return result, nil
}

// processFile downloads, parses and persists one statement file, then writes
// exactly one processing-log entry for it. The returned strings are row-level
// warnings for lines that failed to map; they do not fail the file.
func (o *Orchestrator) processFile(ctx context.Context, account *domain.BankAccount, file domain.RemoteFile) (int, []string, error) {
	data, err := o.source.Download(ctx, file.ID)
	if err != nil {
		return 0, nil, fmt.Errorf("downloading: %w", err)
	}

	format, parsed := statement.ParseAuto(string(data))
	if len(parsed.Transactions) == 0 {
		if len(parsed.Errors) > 0 {
			return 0, nil, fmt.Errorf("no parseable records as %s (%d bad rows, first: %s)", format, len(parsed.Errors), parsed.Errors[0])
		}
		return 0, nil, fmt.Errorf("no parseable records as %s", format)
	}

	txs := make([]*domain.Transaction, 0, len(parsed.Transactions))
	for _, row := range parsed.Transactions {
		txs = append(txs, &domain.Transaction{
			TransactionID: uuid.NewString(),
			UserID:        account.UserID,
			BankAccountID: account.ID,
			Date:          row.Date,
			Description:   row.Description,
			Amount:        row.Amount,
			IsIncome:      row.IsIncome,
			IsCategorized: false,
		})
	}

	if err := o.sink.InsertTransactions(ctx, txs); err != nil {
		return 0, nil, fmt.Errorf("inserting %d transactions: %w", len(txs), err)
	}

	entry := &domain.ProcessingLogEntry{
		FileName:         file.Name,
		FileHash:         "drive_" + file.ID,
		TransactionCount: len(txs),
		ProcessedAt:      time.Now().UTC(),
	}
	if err := o.registry.Record(ctx, entry); err != nil {
		return 0, nil, fmt.Errorf("recording processing log: %w", err)
	}

	rowErrors := make([]string, 0, len(parsed.Errors))
	for _, e := range parsed.Errors {
		rowErrors = append(rowErrors, fmt.Sprintf("%s: %s", file.Name, e))
	}
	return len(txs), rowErrors, nil
}

// filterStatementFiles keeps only delimited-text candidates. Everything else
// is silently excluded from the run, not reported as an error.
func filterStatementFiles(files []domain.RemoteFile) []domain.RemoteFile {
	kept := make([]domain.RemoteFile, 0, len(files))
	for _, f := range files {
		if f.MimeType == "text/csv" || strings.HasSuffix(strings.ToLower(f.Name), ".csv") {
			kept = append(kept, f)
		}
	}
	return kept
}
