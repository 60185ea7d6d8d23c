// Package bigquery persists the pipeline's durable state - normalized
// transactions, the processing log and bank accounts - in BigQuery.
package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"

	"github.com/finbase/statement-sync/internal/syncer"
)

// Store holds a shared BigQuery client for all repository operations.
// Call Close when the store is no longer needed.
type Store struct {
	client  *bigquery.Client
	dataset string
}

func NewStore(ctx context.Context, projectID, dataset string) (*Store, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("NewStore: creating bigquery client: %w", err)
	}
	return &Store{client: client, dataset: dataset}, nil
}

func (s *Store) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}

// runDML executes a parameterized DML statement and waits for the job.
func (s *Store) runDML(ctx context.Context, query string, params []bigquery.QueryParameter) error {
	q := s.client.Query(query)
	q.Parameters = params

	job, err := q.Run(ctx)
	if err != nil {
		return fmt.Errorf("running query: %w", err)
	}
	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("waiting for job: %w", err)
	}
	if err := status.Err(); err != nil {
		return fmt.Errorf("job error: %w", err)
	}
	return nil
}

var (
	_ syncer.TransactionSink = (*Store)(nil)
	_ syncer.ProcessingLog   = (*Store)(nil)
	_ syncer.AccountStore    = (*Store)(nil)
)
