// Package audit records automation lifecycle events. Sinks are best
// effort: callers log a failed LogEvent and carry on.
package audit

import (
	"context"
	stderrors "errors"
)

const (
	EventStarted   = "AUTOMATION_STARTED"
	EventStage     = "AUTOMATION_STAGE"
	EventCompleted = "AUTOMATION_COMPLETED"
	EventFailed    = "AUTOMATION_FAILED"
)

// SystemActor is recorded when no user triggered the event.
const SystemActor = "system"

// Auditor records one event about an application reference.
type Auditor interface {
	LogEvent(ctx context.Context, refID, eventType, actor string, payload map[string]interface{}) error
}

// Nop discards every event.
type Nop struct{}

func (Nop) LogEvent(context.Context, string, string, string, map[string]interface{}) error {
	return nil
}

// Multi fans an event out to every sink. All sinks are attempted; their
// errors are joined.
type Multi []Auditor

func (m Multi) LogEvent(ctx context.Context, refID, eventType, actor string, payload map[string]interface{}) error {
	var errs []error
	for _, a := range m {
		if err := a.LogEvent(ctx, refID, eventType, actor, payload); err != nil {
			errs = append(errs, err)
		}
	}
	return stderrors.Join(errs...)
}

func actorOrSystem(actor string) string {
	if actor == "" {
		return SystemActor
	}
	return actor
}
