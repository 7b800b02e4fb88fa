package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"method", "path", "status"},
	)

	awardsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "project_awards_total",
			Help: "Total number of successful bid awards",
		},
	)
)

// RecordHTTPRequestDuration records one served request.
func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	httpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// IncrementAwards counts a successful award transaction.
func IncrementAwards() {
	awardsTotal.Inc()
}
