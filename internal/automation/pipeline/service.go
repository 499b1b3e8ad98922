package pipeline

import (
	"context"

	"github.com/google/uuid"
	"github.com/juju/clock"

	"service-automation/internal/automation/audit"
	"service-automation/internal/automation/store"
	"service-automation/internal/common/errors"
	"service-automation/internal/common/logger"
	"service-automation/internal/common/metrics"
	"service-automation/internal/models"
)

// Service is the inbound surface of the pipeline. StartAutomation returns
// as soon as the job is recorded; callers poll GetLatestJob for progress.
type Service struct {
	apps    store.ApplicationRepository
	jobs    store.JobRepository
	orch    *Orchestrator
	pool    *Pool
	auditor audit.Auditor
	clock   clock.Clock
	log     logger.Logger
}

func NewService(orch *Orchestrator, pool *Pool, log logger.Logger) *Service {
	return &Service{
		apps:    orch.apps,
		jobs:    orch.jobs,
		orch:    orch,
		pool:    pool,
		auditor: orch.auditor,
		clock:   orch.clock,
		log:     log.Named("automation-service"),
	}
}

// StartAutomation creates a PENDING job for the application and queues it.
// An empty serviceType falls back to the application's own.
func (s *Service) StartAutomation(ctx context.Context, applicationID, serviceType, actorID string) (*models.Job, error) {
	app, err := s.apps.Load(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if app == nil {
		return nil, errors.NewNotFoundError("application", applicationID)
	}
	if serviceType == "" {
		serviceType = app.ServiceType
	}

	orderID := app.Ref()
	prior, err := s.jobs.CountForOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now().UTC()
	job := &models.Job{
		ID:           uuid.NewString(),
		OrderID:      orderID,
		Type:         serviceType,
		CurrentStage: models.StageInitiated,
		Status:       models.JobPending,
		Attempts:     prior + 1,
		Logs:         []models.JobLogEntry{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, err
	}
	metrics.AutomationJobsStarted.WithLabelValues(serviceType).Inc()

	if err := s.auditor.LogEvent(ctx, orderID, audit.EventStarted, actorID, map[string]interface{}{
		"jobId":       job.ID,
		"serviceType": serviceType,
		"attempts":    job.Attempts,
	}); err != nil {
		metrics.AutomationSideEffectFailures.WithLabelValues("audit").Inc()
		s.log.Warn("audit of job start failed", map[string]interface{}{
			"jobId": job.ID,
			"error": err.Error(),
		})
	}

	jobID := job.ID
	if err := s.pool.Submit(func(ctx context.Context) {
		if err := s.orch.RunJob(ctx, jobID); err != nil {
			s.log.Error("automation job could not be recorded", map[string]interface{}{
				"jobId": jobID,
				"error": err.Error(),
			})
		}
	}); err != nil {
		msg := err.Error()
		job.Status = models.JobFailed
		job.LastError = &msg
		job.UpdatedAt = s.clock.Now().UTC()
		if updErr := s.jobs.Update(ctx, job); updErr != nil {
			s.log.Warn("failed to mark unqueued job", map[string]interface{}{
				"jobId": job.ID,
				"error": updErr.Error(),
			})
		}
		return nil, errors.NewInternalError(err)
	}

	s.log.Info("automation job queued", map[string]interface{}{
		"jobId":       job.ID,
		"orderId":     orderID,
		"serviceType": serviceType,
		"attempts":    job.Attempts,
		"actorId":     actorID,
	})
	return job.Clone(), nil
}

// GetLatestJob returns the newest job for the application, or nil when
// automation never ran. applicationID may be either identifier.
func (s *Service) GetLatestJob(ctx context.Context, applicationID string) (*models.Job, error) {
	orderID := applicationID
	app, err := s.apps.Load(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if app != nil {
		orderID = app.Ref()
	}
	return s.jobs.LatestForOrder(ctx, orderID)
}
