package startautomation

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

const TaskType = "start-automation"

var inputValidator = validation.MustValidator(inputSchema)

// Starter queues an automation job for an application.
type Starter interface {
	StartAutomation(ctx context.Context, applicationID, serviceType, actorID string) (*models.Job, error)
}

type Handler struct {
	config  *Config
	service Starter
	errors  *errors.ErrorHandler
	logger  logger.Logger
}

func NewHandler(config *Config, service Starter, log logger.Logger) *Handler {
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

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":             job.GetKey(),
		"processInstanceKey": job.GetProcessInstanceKey(),
	})

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

	h.completeJob(ctx, client, job, output)
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(startTime).Seconds())
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	job, err := h.service.StartAutomation(ctx, input.ApplicationID, input.ServiceType, input.ActorID)
	if err != nil {
		return nil, err
	}

	h.logger.Info("automation queued", map[string]interface{}{
		"applicationId": input.ApplicationID,
		"jobId":         job.ID,
		"attempts":      job.Attempts,
	})
	return &Output{
		AutomationJobID:    job.ID,
		AutomationStatus:   string(job.Status),
		AutomationStage:    string(job.CurrentStage),
		AutomationAttempts: job.Attempts,
		OrderID:            job.OrderID,
	}, nil
}

// parseInput validates the job variables and accepts a numeric
// applicationId as well as a string one.
func parseInput(variables map[string]interface{}) (*Input, error) {
	result, err := inputValidator.Validate(variables)
	if err != nil {
		return nil, errors.NewParseError(err)
	}
	if !result.Valid {
		return nil, errors.NewInvalidInputError(result.Summary())
	}

	input := &Input{}
	switch id := variables["applicationId"].(type) {
	case string:
		input.ApplicationID = strings.TrimSpace(id)
	case float64:
		input.ApplicationID = strconv.FormatInt(int64(id), 10)
	}
	if input.ApplicationID == "" {
		return nil, errors.NewInvalidInputError("applicationId: must not be blank")
	}
	input.ServiceType, _ = variables["serviceType"].(string)
	input.ActorID, _ = variables["actorId"].(string)
	return input, nil
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
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
			"error": err,
		})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
}

func (h *Handler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(errors.CodeOf(err))).Inc()
	h.errors.HandleJobError(ctx, client, job, err)
}

// Execute runs the handler logic without a Zeebe client.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
