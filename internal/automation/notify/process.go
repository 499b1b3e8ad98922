package notify

import (
	"context"
	"errors"

	"service-automation/internal/models"
)

// MessageFinished is the BPMN message a waiting process instance catches.
const MessageFinished = "automation-finished"

type MessagePublisher interface {
	PublishMessage(ctx context.Context, name, correlationKey string, variables interface{}) error
}

// ProcessNotifier correlates the finished job with the process instance
// waiting on the application's external id.
type ProcessNotifier struct {
	publisher MessagePublisher
}

func NewProcessNotifier(publisher MessagePublisher) *ProcessNotifier {
	return &ProcessNotifier{publisher: publisher}
}

func (p *ProcessNotifier) JobFinished(ctx context.Context, app *models.Application, job *models.Job) error {
	if app == nil || job == nil || !job.IsTerminal() {
		return nil
	}
	vars := map[string]interface{}{
		"jobId":        job.ID,
		"jobStatus":    string(job.Status),
		"currentStage": string(job.CurrentStage),
	}
	if job.LastError != nil {
		vars["lastError"] = *job.LastError
	}
	if app.PackagePath != nil {
		vars["packagePath"] = *app.PackagePath
	}
	return p.publisher.PublishMessage(ctx, MessageFinished, app.Ref(), vars)
}

// Multi notifies every sink and joins their errors.
type Multi []Notifier

func (m Multi) JobFinished(ctx context.Context, app *models.Application, job *models.Job) error {
	var errs []error
	for _, n := range m {
		if err := n.JobFinished(ctx, app, job); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
