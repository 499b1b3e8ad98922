// internal/models/job.go
package models

import (
	"fmt"
	"strings"
	"time"
)

// Job is one execution attempt of the automation pipeline against an
// application. Only the newest job per OrderID describes the current
// automation state.
type Job struct {
	ID           string        `json:"jobId"`
	OrderID      string        `json:"orderId"`
	Type         string        `json:"type"`
	CurrentStage Stage         `json:"currentStage"`
	Status       JobStatus     `json:"status"`
	Attempts     int           `json:"attempts"`
	LastError    *string       `json:"lastError,omitempty"`
	Logs         []JobLogEntry `json:"logs"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}

// IsTerminal reports whether the job reached COMPLETED or FAILED.
func (j *Job) IsTerminal() bool {
	return j.Status == JobCompleted || j.Status == JobFailed
}

// LogText renders the log trail as newline-joined lines.
func (j *Job) LogText() string {
	lines := make([]string, 0, len(j.Logs))
	for _, e := range j.Logs {
		lines = append(lines, e.String())
	}
	return strings.Join(lines, "\n")
}

// Clone returns a deep copy so callers can't alias repository state.
func (j *Job) Clone() *Job {
	out := *j
	if j.LastError != nil {
		msg := *j.LastError
		out.LastError = &msg
	}
	out.Logs = append([]JobLogEntry(nil), j.Logs...)
	return &out
}

// JobLogEntry is an append-only line in a job's log trail.
type JobLogEntry struct {
	JobID     string    `json:"jobId"`
	Level     LogLevel  `json:"level"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

func (e JobLogEntry) String() string {
	return fmt.Sprintf("[%s] %s %s", e.Timestamp.UTC().Format(time.RFC3339), e.Level, e.Message)
}
