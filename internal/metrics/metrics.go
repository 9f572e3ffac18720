package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TasksSubmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "media_downloader_tasks_submitted_total",
		Help: "Total number of tasks submitted",
	})

	TasksCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "media_downloader_tasks_completed_total",
		Help: "Total number of tasks completed",
	})

	TasksCancelled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "media_downloader_tasks_cancelled_total",
		Help: "Total number of tasks cancelled by users",
	})

	TasksFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "media_downloader_tasks_failed_total",
		Help: "Total number of tasks failed",
	})

	TasksRunning = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "media_downloader_tasks_running",
		Help: "Number of tasks currently driving the engine",
	})

	TaskDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "media_downloader_task_duration_seconds",
		Help:    "Engine run duration in seconds",
		Buckets: prometheus.ExponentialBuckets(1, 2, 12),
	})

	RetentionDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "media_downloader_retention_deleted_total",
		Help: "Total number of expired entries removed by the sweeper",
	})

	RetentionErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "media_downloader_retention_errors_total",
		Help: "Total number of entries the sweeper failed to remove",
	})

	TasksEvicted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "media_downloader_tasks_evicted_total",
		Help: "Total number of finished task records evicted from the registry",
	})
)
