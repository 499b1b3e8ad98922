// Package store persists applications and automation jobs. Postgres is the
// system of record; the memory implementations back tests and local runs,
// and CachedJobs fronts a JobRepository with Redis.
package store

import (
	"context"

	"service-automation/internal/models"
)

// ApplicationRepository loads and saves applications. ref is either the
// submission id or the numeric id rendered as a string.
type ApplicationRepository interface {
	// Load returns nil, nil when no application matches ref.
	Load(ctx context.Context, ref string) (*models.Application, error)
	// Save writes status, generated drafts and package path back.
	Save(ctx context.Context, app *models.Application) error
}

// JobRepository stores jobs and their log trails.
type JobRepository interface {
	Create(ctx context.Context, job *models.Job) error
	// Get returns nil, nil for an unknown id.
	Get(ctx context.Context, id string) (*models.Job, error)
	// Update writes stage, status and last error. Terminal jobs are
	// refused with a JOB_TERMINAL error.
	Update(ctx context.Context, job *models.Job) error
	AppendLog(ctx context.Context, entry models.JobLogEntry) error
	// LatestForOrder returns the newest job by creation time, or nil, nil.
	LatestForOrder(ctx context.Context, orderID string) (*models.Job, error)
	CountForOrder(ctx context.Context, orderID string) (int, error)
}
