package bigquery

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"

	"github.com/finbase/statement-sync/internal/domain"
)

// ProcessingLogRow is the processing_log table schema: one row per ingested
// source file, keyed by file name.
type ProcessingLogRow struct {
	FileName         string    `bigquery:"file_name"`
	FileHash         string    `bigquery:"file_hash"`
	TransactionCount int64     `bigquery:"transaction_count"`
	ProcessedTS      time.Time `bigquery:"processed_ts"`
}

// Exists reports whether a file name already has a processing-log entry.
func (s *Store) Exists(ctx context.Context, fileName string) (bool, error) {
	q := s.client.Query(fmt.Sprintf(`
		SELECT COUNT(*) AS cnt
		FROM %s.processing_log
		WHERE file_name = @file_name
	`, s.dataset))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "file_name", Value: fileName},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return false, fmt.Errorf("Exists: querying processing log: %w", err)
	}

	var row struct {
		Cnt int64 `bigquery:"cnt"`
	}
	if err := it.Next(&row); err != nil && err != iterator.Done {
		return false, fmt.Errorf("Exists: reading count: %w", err)
	}
	return row.Cnt > 0, nil
}

// Record writes the single processing-log entry for a file.
func (s *Store) Record(ctx context.Context, entry *domain.ProcessingLogEntry) error {
	row := &ProcessingLogRow{
		FileName:         entry.FileName,
		FileHash:         entry.FileHash,
		TransactionCount: int64(entry.TransactionCount),
		ProcessedTS:      entry.ProcessedAt,
	}

	inserter := s.client.Dataset(s.dataset).Table("processing_log").Inserter()
	if err := inserter.Put(ctx, row); err != nil {
		return fmt.Errorf("Record: inserting log entry for %s: %w", entry.FileName, err)
	}
	return nil
}
