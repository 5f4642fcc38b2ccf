// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	// CallEvents counts reconciled events by resolved kind and action taken.
	CallEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "call_events_total",
			Help: "Call lifecycle events processed, by kind and action",
		},
		[]string{"kind", "action"},
	)

	CallEventErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "call_event_errors_total",
			Help: "Call lifecycle events that failed, by error code",
		},
		[]string{"error_code"},
	)

	NotificationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "call_notifications_total",
			Help: "Notification attempts by channel and status",
		},
		[]string{"channel", "status"},
	)

	ExtractionConfidence = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "call_extraction_confidence",
			Help:    "Confidence score of transcript extractions",
			Buckets: []float64{0, 0.25, 0.5, 0.75, 1},
		},
	)

	ExtractionFieldHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "call_extraction_field_hits_total",
			Help: "Extracted fields by name and whether a value was found",
		},
		[]string{"field", "found"},
	)
)

// RecordExtraction records confidence and per-field presence of one extraction.
func RecordExtraction(confidence float64, fields map[string]bool) {
	ExtractionConfidence.Observe(confidence)
	for name, found := range fields {
		label := "false"
		if found {
			label = "true"
		}
		ExtractionFieldHits.WithLabelValues(name, label).Inc()
	}
}
