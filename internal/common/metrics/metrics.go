package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AutomationJobsStarted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "automation_jobs_started_total",
			Help: "Total number of automation jobs created",
		},
		[]string{"job_type"},
	)

	AutomationJobsFinished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "automation_jobs_finished_total",
			Help: "Total number of automation jobs that reached a terminal status",
		},
		[]string{"job_type", "status"},
	)

	AutomationStageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "automation_stage_duration_seconds",
			Help:    "Duration of a pipeline stage in seconds",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		},
		[]string{"stage"},
	)

	AutomationJobsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "automation_jobs_active",
			Help: "Number of automation jobs currently executing",
		},
	)

	AutomationSideEffectFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "automation_side_effect_failures_total",
			Help: "Best-effort side effects (audit, notify, index, cache) that failed",
		},
		[]string{"sink"},
	)

	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of Zeebe jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of Zeebe jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Zeebe jobs currently being handled",
		},
		[]string{"task_type"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "worker_job_duration_seconds",
			Help:    "Time spent handling a Zeebe job",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"task_type"},
	)
)
