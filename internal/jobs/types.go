package jobs

import (
	"context"
	"time"

	"github.com/finbase/statement-sync/internal/domain"
)

// JobStatus represents the current status of a job.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// SyncFolderJob is a request to run one folder sync for an account in the
// background. Result is populated once the run finishes; a run that returns a
// result with per-file errors still completes, only precondition and
// enumeration failures fail the job.
type SyncFolderJob struct {
	JobID     string `json:"job_id"`
	AccountID string `json:"account_id"`

	Status      JobStatus  `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Error       string     `json:"error,omitempty"`

	Result *domain.SyncResult `json:"result,omitempty"`
}

// Publisher enqueues sync jobs. The abstraction keeps the HTTP layer
// independent of the queue implementation.
type Publisher interface {
	PublishSyncFolder(ctx context.Context, job *SyncFolderJob) error
	Close() error
}

// JobHandler processes one job; a returned error marks the job failed.
type JobHandler func(ctx context.Context, job *SyncFolderJob) error

// Consumer drains the queue, invoking the handler per job.
type Consumer interface {
	Start(ctx context.Context, handler JobHandler) error
	Stop(ctx context.Context) error
}

// JobStore tracks job state for status queries.
type JobStore interface {
	SaveJob(ctx context.Context, job *SyncFolderJob) error
	GetJob(ctx context.Context, jobID string) (*SyncFolderJob, error)
	ListJobs(ctx context.Context, filter JobFilter) ([]*SyncFolderJob, error)
}

// JobFilter narrows ListJobs results.
type JobFilter struct {
	AccountID string
	Status    JobStatus
	Limit     int
}
