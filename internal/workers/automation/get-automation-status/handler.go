package getautomationstatus

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"service-automation/internal/common/errors"
	"service-automation/internal/common/logger"
	"service-automation/internal/common/metrics"
	"service-automation/internal/common/validation"
	"service-automation/internal/models"
)

const TaskType = "get-automation-status"

var inputValidator = validation.MustValidator(inputSchema)

type StatusReader interface {
	GetLatestJob(ctx context.Context, applicationID string) (*models.Job, error)
}

type Handler struct {
	config  *Config
	service StatusReader
	errors  *errors.ErrorHandler
	logger  logger.Logger
}

func NewHandler(config *Config, service StatusReader, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:  config,
		service: service,
		errors:  errors.NewErrorHandler(l),
		logger:  l,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	startTime := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	variables, err := job.GetVariablesAsMap()
	if err != nil {
		h.failJob(ctx, client, job, errors.NewParseError(err))
		return
	}
	input, err := parseInput(variables)
	if err != nil {
		h.failJob(ctx, client, job, err)
		return
	}

	output, err := h.execute(ctx, input)
	if err != nil {
		h.failJob(ctx, client, job, err)
		return
	}

	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to complete job", map[string]interface{}{
			"error":  err,
			"jobKey": job.GetKey(),
		})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(startTime).Seconds())
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	job, err := h.service.GetLatestJob(ctx, input.ApplicationID)
	if err != nil {
		return nil, err
	}
	if job == nil {
		h.logger.Debug("no automation job", map[string]interface{}{
			"applicationId": input.ApplicationID,
		})
		return &Output{AutomationLogs: []LogEntry{}}, nil
	}

	out := &Output{
		AutomationFound:     true,
		AutomationFinished:  job.IsTerminal(),
		AutomationJobID:     job.ID,
		AutomationStatus:    string(job.Status),
		AutomationStage:     string(job.CurrentStage),
		AutomationAttempts:  job.Attempts,
		AutomationUpdatedAt: job.UpdatedAt.UTC().Format(time.RFC3339),
		AutomationLogs:      tail(job.Logs, h.config.LogTail),
	}
	if job.LastError != nil {
		out.AutomationLastError = *job.LastError
	}
	return out, nil
}

// tail keeps the newest n entries in log order.
func tail(logs []models.JobLogEntry, n int) []LogEntry {
	if n > 0 && len(logs) > n {
		logs = logs[len(logs)-n:]
	}
	out := make([]LogEntry, 0, len(logs))
	for _, l := range logs {
		out = append(out, LogEntry{
			Timestamp: l.Timestamp.UTC().Format(time.RFC3339),
			Level:     string(l.Level),
			Message:   l.Message,
		})
	}
	return out
}

func parseInput(variables map[string]interface{}) (*Input, error) {
	result, err := inputValidator.Validate(variables)
	if err != nil {
		return nil, errors.NewParseError(err)
	}
	if !result.Valid {
		return nil, errors.NewInvalidInputError(result.Summary())
	}

	var id string
	switch v := variables["applicationId"].(type) {
	case string:
		id = strings.TrimSpace(v)
	case float64:
		id = strconv.FormatInt(int64(v), 10)
	}
	if id == "" {
		return nil, errors.NewInvalidInputError("applicationId: must not be blank")
	}
	return &Input{ApplicationID: id}, nil
}

func (h *Handler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(errors.CodeOf(err))).Inc()
	h.errors.HandleJobError(ctx, client, job, err)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
