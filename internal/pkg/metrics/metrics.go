// Package metrics defines the Prometheus collectors exported at /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "folio_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "route", "status"},
	)

	BackendCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "folio_backend_call_duration_seconds",
			Help:    "Record store call duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
		},
		[]string{"collection", "op", "result"},
	)

	ContactMessages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "folio_contact_messages_total",
			Help: "Contact form submissions",
		},
		[]string{"status"}, // stored, failed
	)

	CronRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "folio_cron_runs_total",
			Help: "Scheduled task executions",
		},
		[]string{"task", "status"},
	)
)

func RecordHTTPRequest(method, route string, status int, d time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}

// RecordBackendCall matches repository.Observer.
func RecordBackendCall(collection, op string, d time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	BackendCallDuration.WithLabelValues(collection, op, result).Observe(d.Seconds())
}

func IncContact(status string) {
	ContactMessages.WithLabelValues(status).Inc()
}

func IncCronRun(task string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	CronRuns.WithLabelValues(task, status).Inc()
}
