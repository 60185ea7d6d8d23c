package inmemory

import (
	"context"
	"fmt"
	"sync"

	"github.com/finbase/statement-sync/internal/jobs"
)

// Store keeps job state in memory; it is lost on restart, which matches the
// lifetime of the in-memory queue it backs.
type Store struct {
	mu   sync.RWMutex
	jobs map[string]*jobs.SyncFolderJob
}

func NewStore() *Store {
	return &Store{jobs: make(map[string]*jobs.SyncFolderJob)}
}

func (s *Store) SaveJob(ctx context.Context, job *jobs.SyncFolderJob) error {
	if job.JobID == "" {
		return fmt.Errorf("job ID is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	jobCopy := *job
	s.jobs[job.JobID] = &jobCopy
	return nil
}

func (s *Store) GetJob(ctx context.Context, jobID string) (*jobs.SyncFolderJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[jobID]
	if !ok {
		return nil, fmt.Errorf("job not found: %s", jobID)
	}

	jobCopy := *job
	return &jobCopy, nil
}

func (s *Store) ListJobs(ctx context.Context, filter jobs.JobFilter) ([]*jobs.SyncFolderJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*jobs.SyncFolderJob, 0, len(s.jobs))
	for _, job := range s.jobs {
		if filter.AccountID != "" && job.AccountID != filter.AccountID {
			continue
		}
		if filter.Status != "" && job.Status != filter.Status {
			continue
		}
		jobCopy := *job
		result = append(result, &jobCopy)
	}

	if filter.Limit > 0 && filter.Limit < len(result) {
		result = result[:filter.Limit]
	}
	return result, nil
}

var _ jobs.JobStore = (*Store)(nil)
