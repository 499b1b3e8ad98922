package camunda

import (
	"sync"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"

	"service-automation/internal/common/config"
	"service-automation/internal/common/logger"
)

type HandlerFunc func(client worker.JobClient, job entities.Job)

// Workers tracks the job workers opened against one client so they can be
// closed together.
type Workers struct {
	client zbc.Client
	logger logger.Logger

	mu     sync.Mutex
	opened map[string]worker.JobWorker
}

func NewWorkers(client zbc.Client, log logger.Logger) *Workers {
	return &Workers{
		client: client,
		logger: log.Named("workers"),
		opened: make(map[string]worker.JobWorker),
	}
}

// Start opens a worker for taskType unless the worker config disables it.
// It reports whether a worker was opened.
func (w *Workers) Start(taskType string, wcfg config.WorkerConfig, handler HandlerFunc) bool {
	if !wcfg.Enabled {
		w.logger.Info("worker disabled", map[string]interface{}{"taskType": taskType})
		return false
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, exists := w.opened[taskType]; exists {
		w.logger.Warn("worker already started", map[string]interface{}{"taskType": taskType})
		return false
	}

	w.opened[taskType] = w.client.NewJobWorker().
		JobType(taskType).
		Handler(worker.JobHandler(handler)).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(time.Duration(wcfg.Timeout) * time.Millisecond).
		Open()

	w.logger.Info("worker started", map[string]interface{}{
		"taskType":      taskType,
		"maxJobsActive": wcfg.MaxJobsActive,
		"timeout_ms":    wcfg.Timeout,
	})
	return true
}

// Close stops polling and waits for in-flight handlers of every worker.
func (w *Workers) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for taskType, jw := range w.opened {
		jw.Close()
		jw.AwaitClose()
		w.logger.Info("worker stopped", map[string]interface{}{"taskType": taskType})
		delete(w.opened, taskType)
	}
}
