// Package pipeline runs automation jobs: it resolves the strategy for an
// application, drives the job through its stages and records the outcome
// on both the job and the application.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/juju/clock"
	"go.opentelemetry.io/otel/attribute"

	"service-automation/internal/automation/artifacts"
	"service-automation/internal/automation/audit"
	"service-automation/internal/automation/index"
	"service-automation/internal/automation/notify"
	"service-automation/internal/automation/store"
	"service-automation/internal/automation/strategy"
	"service-automation/internal/common/errors"
	"service-automation/internal/common/logger"
	"service-automation/internal/common/metrics"
	"service-automation/internal/common/observability"
	"service-automation/internal/models"
)

// ContextLost is recorded when a job's application no longer exists.
const ContextLost = "context lost"

// Dependencies are the collaborators an Orchestrator drives. Auditor,
// Notifier, Indexer and Observability are optional.
type Dependencies struct {
	Applications  store.ApplicationRepository
	Jobs          store.JobRepository
	Registry      *strategy.Registry
	Artifacts     artifacts.Store
	Auditor       audit.Auditor
	Notifier      notify.Notifier
	Indexer       index.Indexer
	Observability *observability.Observability
	Clock         clock.Clock
}

type Options struct {
	// StageDelay is paused before verification and drafting. Zero disables it.
	StageDelay time.Duration
	// Namespace roots the package path for strategies that don't declare one.
	Namespace string
	// RegistrationFlow routes the flagship registration type through the
	// document verification, generation and quality check stages.
	RegistrationFlow bool
}

type Orchestrator struct {
	apps     store.ApplicationRepository
	jobs     store.JobRepository
	registry *strategy.Registry
	store    artifacts.Store
	auditor  audit.Auditor
	notifier notify.Notifier
	indexer  index.Indexer
	obs      *observability.Observability
	clock    clock.Clock
	opts     Options
	log      logger.Logger
}

func NewOrchestrator(deps Dependencies, opts Options, log logger.Logger) *Orchestrator {
	o := &Orchestrator{
		apps:     deps.Applications,
		jobs:     deps.Jobs,
		registry: deps.Registry,
		store:    deps.Artifacts,
		auditor:  deps.Auditor,
		notifier: deps.Notifier,
		indexer:  deps.Indexer,
		obs:      deps.Observability,
		clock:    deps.Clock,
		opts:     opts,
		log:      log.Named("orchestrator"),
	}
	if o.auditor == nil {
		o.auditor = audit.Nop{}
	}
	if o.notifier == nil {
		o.notifier = notify.Nop{}
	}
	if o.indexer == nil {
		o.indexer = index.Nop{}
	}
	if o.clock == nil {
		o.clock = clock.WallClock
	}
	if o.opts.Namespace == "" {
		o.opts.Namespace = "applications"
	}
	return o
}

// RunJob executes the job with the given id to a terminal status. A missing
// job is a no-op, and so is a job that already finished. Failures inside
// the pipeline are recorded on the job and are not returned; the error
// result only reports that the job itself could not be read or written.
func (o *Orchestrator) RunJob(ctx context.Context, jobID string) (err error) {
	job, err := o.jobs.Get(ctx, jobID)
	if err != nil {
		return err
	}
	if job == nil {
		o.log.Debug("job not found, nothing to run", map[string]interface{}{"jobId": jobID})
		return nil
	}
	if job.IsTerminal() {
		o.log.Debug("job already finished", map[string]interface{}{
			"jobId":  jobID,
			"status": string(job.Status),
		})
		return nil
	}

	metrics.AutomationJobsActive.Inc()
	defer metrics.AutomationJobsActive.Dec()

	ctx, span := o.obs.StartSpan(ctx, "automation.job",
		attribute.String("job.id", job.ID),
		attribute.String("job.order_id", job.OrderID),
		attribute.String("job.type", job.Type),
	)
	r := &run{o: o, job: job, log: o.log.WithFields(map[string]interface{}{
		"jobId":   job.ID,
		"orderId": job.OrderID,
	})}
	defer func() {
		if rec := recover(); rec != nil {
			if r.finished {
				r.sideEffectFailed("pipeline", fmt.Errorf("panic after job finished: %v", rec))
			} else {
				r.log.Error("pipeline panicked", map[string]interface{}{"panic": rec})
				err = r.fail(ctx, errors.NewInternalError(fmt.Errorf("unexpected failure: %v", rec)))
			}
		}
		observability.EndSpan(span, r.failure)
	}()

	job.Status = models.JobInProgress
	r.logf(ctx, models.LevelInfo, "Automation started for %s", job.Type)
	if err := r.save(ctx); err != nil {
		return err
	}

	app, err := o.apps.Load(ctx, job.OrderID)
	if err != nil {
		return r.fail(ctx, err)
	}
	if app == nil {
		return r.failWith(ctx, ContextLost, errors.NewNotFoundError("application", job.OrderID))
	}
	r.app = app

	strat, err := o.registry.Resolve(job.Type)
	if err != nil {
		return r.fail(ctx, err)
	}

	if flagship, ok := strat.(*strategy.PrivateLimited); ok && o.opts.RegistrationFlow && flagship.Engine() != nil {
		return o.runRegistration(ctx, r, flagship)
	}
	return o.runGeneric(ctx, r, strat)
}

func (o *Orchestrator) runGeneric(ctx context.Context, r *run, strat strategy.Strategy) error {
	err := r.runSteps(ctx, []step{
		{stage: models.StageVerification, fn: func(ctx context.Context) error {
			o.pause()
			return strat.Validate(r.app)
		}},
		{stage: models.StageDrafting, fn: func(ctx context.Context) error {
			o.pause()
			drafts, err := strat.GenerateDrafts(ctx, r.app)
			if err != nil {
				return err
			}
			r.app.GeneratedDrafts.MergeMap(drafts)
			r.logf(ctx, models.LevelInfo, "Generated %d drafts", len(drafts))
			return r.saveApplication(ctx)
		}},
		{stage: models.StagePackaging, fn: func(ctx context.Context) error {
			if err := o.buildPackage(ctx, r, strat); err != nil {
				return err
			}
			r.app.Status = models.StatusReadyForFiling
			return r.saveApplication(ctx)
		}},
	})
	if err != nil {
		return r.fail(ctx, err)
	}
	return r.complete(ctx)
}

// buildPackage zips the application's drafts to the deterministic package
// path. Drafts that were never written are left out.
func (o *Orchestrator) buildPackage(ctx context.Context, r *run, strat strategy.Strategy) error {
	namespace := o.opts.Namespace
	if ns, ok := strat.(strategy.Namespaced); ok && ns.Namespace() != "" {
		namespace = ns.Namespace()
	}
	target := artifacts.PackagePath(namespace, r.app.SubmissionID)

	if o.store != nil {
		sources := make([]string, 0, r.app.GeneratedDrafts.Len())
		for _, name := range r.app.GeneratedDrafts.Keys() {
			ref, _ := r.app.GeneratedDrafts.Get(name)
			sources = append(sources, ref)
		}
		ref, skipped, err := artifacts.Bundle(ctx, o.store, target, sources)
		if err != nil {
			return errors.NewStorageError("build package", err)
		}
		if len(skipped) > 0 {
			r.logf(ctx, models.LevelWarn, "Package built without %d unwritten drafts", len(skipped))
		}
		target = ref
	}

	r.app.PackagePath = &target
	r.logf(ctx, models.LevelInfo, "Package ready at %s", target)
	return nil
}

// pause is the simulated per-stage latency. It ignores ctx.
func (o *Orchestrator) pause() {
	if o.opts.StageDelay <= 0 {
		return
	}
	<-o.clock.After(o.opts.StageDelay)
}

func (o *Orchestrator) emit(ctx context.Context, r *run, eventType string, payload map[string]interface{}) {
	r.guard("audit", func() error {
		return o.auditor.LogEvent(ctx, r.job.OrderID, eventType, audit.SystemActor, payload)
	})
}

func (o *Orchestrator) index(ctx context.Context, r *run) {
	r.guard("index", func() error { return o.indexer.IndexJob(ctx, r.job) })
}

func (o *Orchestrator) notify(ctx context.Context, r *run) {
	if r.app == nil {
		return
	}
	r.guard("notify", func() error { return o.notifier.JobFinished(ctx, r.app, r.job) })
}

// step is one named stage of a run.
type step struct {
	stage models.Stage
	fn    func(ctx context.Context) error
}

// run carries the state of a single RunJob call.
type run struct {
	o       *Orchestrator
	job     *models.Job
	app     *models.Application
	log     logger.Logger
	failure error
	// finished is set once the terminal status is stored.
	finished bool
}

// runSteps executes steps in order and stops at the first error. The job's
// current stage is persisted before each step starts, so on failure it
// names the step that was executing.
func (r *run) runSteps(ctx context.Context, steps []step) error {
	for _, s := range steps {
		r.job.CurrentStage = s.stage
		r.logf(ctx, models.LevelInfo, "Stage %s started", s.stage)
		if err := r.save(ctx); err != nil {
			return err
		}
		r.o.emit(ctx, r, audit.EventStage, map[string]interface{}{
			"jobId": r.job.ID,
			"stage": string(s.stage),
		})
		r.o.index(ctx, r)

		stageCtx, span := r.o.obs.StartSpan(ctx, "automation.stage", attribute.String("stage", string(s.stage)))
		start := r.o.clock.Now()
		err := s.fn(stageCtx)
		elapsed := r.o.clock.Now().Sub(start)
		observability.EndSpan(span, err)

		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		metrics.AutomationStageDuration.WithLabelValues(string(s.stage)).Observe(elapsed.Seconds())
		r.o.obs.RecordStage(ctx, string(s.stage), outcome, elapsed)

		if err != nil {
			return err
		}
	}
	return nil
}

func (r *run) logf(ctx context.Context, level models.LogLevel, format string, args ...interface{}) {
	entry := models.JobLogEntry{
		JobID:     r.job.ID,
		Level:     level,
		Message:   fmt.Sprintf(format, args...),
		Timestamp: r.o.clock.Now().UTC(),
	}
	r.job.Logs = append(r.job.Logs, entry)
	if err := r.o.jobs.AppendLog(ctx, entry); err != nil {
		r.log.Warn("failed to append job log", map[string]interface{}{
			"error":   err.Error(),
			"message": entry.Message,
		})
	}
}

func (r *run) save(ctx context.Context) error {
	r.job.UpdatedAt = r.o.clock.Now().UTC()
	return r.o.jobs.Update(ctx, r.job)
}

func (r *run) saveApplication(ctx context.Context) error {
	r.app.UpdatedAt = r.o.clock.Now().UTC()
	return r.o.apps.Save(ctx, r.app)
}

func (r *run) complete(ctx context.Context) error {
	r.job.Status = models.JobCompleted
	r.logf(ctx, models.LevelInfo, "Automation completed")
	if err := r.save(ctx); err != nil {
		return err
	}
	r.finished = true

	metrics.AutomationJobsFinished.WithLabelValues(r.job.Type, string(models.JobCompleted)).Inc()
	r.o.emit(ctx, r, audit.EventCompleted, map[string]interface{}{
		"jobId":       r.job.ID,
		"stage":       string(r.job.CurrentStage),
		"packagePath": r.packagePath(),
	})
	r.o.index(ctx, r)
	r.o.notify(ctx, r)

	r.log.Info("automation job completed", map[string]interface{}{
		"stage": string(r.job.CurrentStage),
	})
	return nil
}

func (r *run) fail(ctx context.Context, cause error) error {
	return r.failWith(ctx, cause.Error(), cause)
}

// failWith marks the job FAILED with message as its last error. Earlier
// writes to the application are kept.
func (r *run) failWith(ctx context.Context, message string, cause error) error {
	r.failure = cause
	r.job.Status = models.JobFailed
	r.job.LastError = &message
	r.logf(ctx, models.LevelError, "%s", message)
	if err := r.save(ctx); err != nil {
		return err
	}
	r.finished = true

	metrics.AutomationJobsFinished.WithLabelValues(r.job.Type, string(models.JobFailed)).Inc()
	r.o.emit(ctx, r, audit.EventFailed, map[string]interface{}{
		"jobId": r.job.ID,
		"stage": string(r.job.CurrentStage),
		"code":  string(errors.CodeOf(cause)),
		"error": message,
	})
	r.o.index(ctx, r)
	r.o.notify(ctx, r)

	r.log.Warn("automation job failed", map[string]interface{}{
		"stage": string(r.job.CurrentStage),
		"code":  string(errors.CodeOf(cause)),
		"error": message,
	})
	return nil
}

func (r *run) packagePath() string {
	if r.app == nil || r.app.PackagePath == nil {
		return ""
	}
	return *r.app.PackagePath
}

// sideEffectFailed counts and logs a best-effort failure. The run goes on.
func (r *run) sideEffectFailed(sink string, err error) {
	metrics.AutomationSideEffectFailures.WithLabelValues(sink).Inc()
	r.log.Warn(sink+" side effect failed", map[string]interface{}{
		"error": err.Error(),
	})
}

// guard runs a best-effort sink call. Errors and panics are both counted
// as side effect failures.
func (r *run) guard(sink string, fn func() error) {
	defer func() {
		if rec := recover(); rec != nil {
			r.sideEffectFailed(sink, fmt.Errorf("panic: %v", rec))
		}
	}()
	if err := fn(); err != nil {
		r.sideEffectFailed(sink, err)
	}
}
