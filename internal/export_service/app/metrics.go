package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	exportRequestsReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "calltrack",
		Subsystem: "export",
		Name:      "requests_received_total",
		Help:      "Export requests delivered to the worker, by subject.",
	}, []string{"subject"})

	exportJobsProcessedCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "calltrack",
		Subsystem: "export",
		Name:      "jobs_total",
		Help:      "Finished export jobs by kind and outcome.",
	}, []string{"kind", "status"})

	exportJobProcessingDurationHist = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "calltrack",
		Subsystem: "export",
		Name:      "job_duration_seconds",
		Help:      "Time spent writing one export file.",
		Buckets:   []float64{0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
	}, []string{"kind"})

	exportedRowsCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "calltrack",
		Subsystem: "export",
		Name:      "rows_written_total",
		Help:      "CSV rows written, by kind.",
	}, []string{"kind"})

	// status is success or publish_error
	scheduledExportsDispatched = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "calltrack",
		Subsystem: "export",
		Name:      "scheduled_dispatched_total",
		Help:      "Scheduled exports handed to the worker.",
	}, []string{"status"})
)
