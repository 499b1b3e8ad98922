package store

import (
	"context"
	"strconv"
	"sync"

	"service-automation/internal/common/errors"
	"service-automation/internal/models"
)

// MemoryApplications is an in-process ApplicationRepository. It hands out
// copies so callers never alias stored state.
type MemoryApplications struct {
	mu   sync.RWMutex
	apps map[string]*models.Application
}

func NewMemoryApplications(apps ...*models.Application) *MemoryApplications {
	m := &MemoryApplications{apps: make(map[string]*models.Application)}
	for _, app := range apps {
		m.put(app)
	}
	return m
}

func (m *MemoryApplications) put(app *models.Application) {
	c := app.Clone()
	if c.SubmissionID != "" {
		m.apps[c.SubmissionID] = c
	}
	if c.ID != 0 {
		m.apps[strconv.FormatInt(c.ID, 10)] = c
	}
}

func (m *MemoryApplications) Load(ctx context.Context, ref string) (*models.Application, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	app, ok := m.apps[ref]
	if !ok {
		return nil, nil
	}
	return app.Clone(), nil
}

func (m *MemoryApplications) Save(ctx context.Context, app *models.Application) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.apps[app.Ref()]; !ok {
		return errors.NewNotFoundError("application", app.Ref())
	}
	m.put(app)
	return nil
}

// MemoryJobs is an in-process JobRepository.
type MemoryJobs struct {
	mu    sync.RWMutex
	jobs  map[string]*models.Job
	order []string // creation order, for LatestForOrder ties
}

func NewMemoryJobs() *MemoryJobs {
	return &MemoryJobs{jobs: make(map[string]*models.Job)}
}

func (m *MemoryJobs) Create(ctx context.Context, job *models.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs[job.ID] = job.Clone()
	m.order = append(m.order, job.ID)
	return nil
}

func (m *MemoryJobs) Get(ctx context.Context, id string) (*models.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	job, ok := m.jobs[id]
	if !ok {
		return nil, nil
	}
	return job.Clone(), nil
}

func (m *MemoryJobs) Update(ctx context.Context, job *models.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.jobs[job.ID]
	if !ok {
		return errors.NewNotFoundError("job", job.ID)
	}
	if stored.IsTerminal() {
		return errors.NewJobTerminalError(job.ID)
	}
	stored.CurrentStage = job.CurrentStage
	stored.Status = job.Status
	stored.UpdatedAt = job.UpdatedAt
	if job.LastError != nil {
		msg := *job.LastError
		stored.LastError = &msg
	}
	return nil
}

func (m *MemoryJobs) AppendLog(ctx context.Context, entry models.JobLogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.jobs[entry.JobID]
	if !ok {
		return errors.NewNotFoundError("job", entry.JobID)
	}
	stored.Logs = append(stored.Logs, entry)
	return nil
}

func (m *MemoryJobs) LatestForOrder(ctx context.Context, orderID string) (*models.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var latest *models.Job
	for _, id := range m.order {
		job := m.jobs[id]
		if job.OrderID != orderID {
			continue
		}
		if latest == nil || !job.CreatedAt.Before(latest.CreatedAt) {
			latest = job
		}
	}
	if latest == nil {
		return nil, nil
	}
	return latest.Clone(), nil
}

func (m *MemoryJobs) CountForOrder(ctx context.Context, orderID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, job := range m.jobs {
		if job.OrderID == orderID {
			n++
		}
	}
	return n, nil
}
