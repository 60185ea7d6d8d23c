package domain

import "time"

// BankAccount is the owning account for a statement source. Only the fields
// the sync pipeline reads or writes are modeled here.
type BankAccount struct {
	ID            string
	UserID        string
	Name          string
	DriveFolderID string
	LastSyncAt    *time.Time
}

// ProcessingLogEntry records that a source file has been ingested. Existence
// of an entry for a file name is the sole de-duplication signal; row content
// is never diffed.
type ProcessingLogEntry struct {
	FileName         string
	FileHash         string
	TransactionCount int
	ProcessedAt      time.Time
}

// RemoteFile describes a file available from a statement source folder.
// It is owned and enumerated by the storage collaborator and read-only here.
type RemoteFile struct {
	ID           string
	Name         string
	MimeType     string
	Size         int64
	ModifiedTime time.Time
}

// RemoteFolder is a candidate folder returned by a folder search.
type RemoteFolder struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	WebViewLink string `json:"webViewLink,omitempty"`
}

// SyncResult aggregates the outcome of one sync run. It is returned to the
// caller and never persisted. Success refers to the run as a whole; individual
// file failures land in Errors without flipping the flag.
type SyncResult struct {
	Success               bool     `json:"success"`
	Message               string   `json:"message"`
	FilesConsidered       int      `json:"filesConsidered"`
	TransactionsProcessed int      `json:"transactionsProcessed"`
	DuplicatesSkipped     int      `json:"duplicatesSkipped"`
	Errors                []string `json:"errors,omitempty"`
}
