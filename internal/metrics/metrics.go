package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "requests_total",
			Help: "Total number of requests",
		},
		[]string{"transport", "method", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "request_duration_seconds",
			Help:    "Request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"transport", "method"},
	)

	ModerationActionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moderation_actions_total",
			Help: "Total number of moderation actions by outcome",
		},
		[]string{"action", "result"},
	)

	BulkMaterialsModified = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moderation_bulk_materials_modified_total",
			Help: "Materials actually modified by bulk updates",
		},
		[]string{"action"},
	)
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		ModerationActionsTotal,
		BulkMaterialsModified,
	)
}

// Handler exposes the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordRequest records a served request.
func RecordRequest(transport, method, status string, duration time.Duration) {
	RequestsTotal.WithLabelValues(transport, method, status).Inc()
	RequestDuration.WithLabelValues(transport, method).Observe(duration.Seconds())
}

// RecordModeration records the outcome of a moderation action.
func RecordModeration(action, result string) {
	ModerationActionsTotal.WithLabelValues(action, result).Inc()
}
