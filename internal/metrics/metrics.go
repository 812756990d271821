package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry          *prometheus.Registry
	syncRuns          *prometheus.CounterVec // total sync passes
	syncDuration      prometheus.Histogram   // time per pass
	apiRequests       *prometheus.CounterVec // adguard api requests
	rewriteOperations *prometheus.CounterVec // applied rewrite mutations
}

// Public interface for metrics operations
func (m *Metrics) IncSyncRun(success bool) {
	status := boolToResult(success)
	m.syncRuns.WithLabelValues(status).Inc()
}

func (m *Metrics) SetSyncDuration(duration time.Duration) {
	m.syncDuration.Observe(duration.Seconds())
}

func (m *Metrics) IncAPIRequest(operation, server string, success bool) {
	if !isValidOperation(operation) || server == "" {
		return
	}
	status := boolToResult(success)
	m.apiRequests.WithLabelValues(operation, server, status).Inc()
}

func (m *Metrics) IncRewriteOperation(operation, server string, success bool) {
	if !isValidMutation(operation) || server == "" {
		return
	}
	status := boolToResult(success)
	m.rewriteOperations.WithLabelValues(operation, server, status).Inc()
}

// Validation helpers
func boolToResult(b bool) string {
	if b {
		return "success"
	}
	return "failure"
}

func isValidOperation(op string) bool {
	switch op {
	case "list", "add", "delete":
		return true
	}
	return false
}

func isValidMutation(op string) bool {
	switch op {
	case "add", "delete":
		return true
	}
	return false
}

func New(register bool) *Metrics {
	registry := prometheus.NewRegistry()
	namespace := "adguard_rewrite_sync"

	m := &Metrics{
		registry: registry,

		syncRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_runs_total",
			Help:      "Total number of reconciliation passes",
		}, []string{"status"}),

		syncDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sync_duration_seconds",
			Help:      "Duration of reconciliation passes in seconds",
			Buckets:   prometheus.DefBuckets,
		}),

		apiRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_requests_total",
			Help:      "Total AdGuard Home API requests",
		}, []string{"operation", "server", "status"}),

		rewriteOperations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rewrite_operations_total",
			Help:      "Total rewrite mutations applied by the reconciler",
		}, []string{"operation", "server", "status"}),
	}

	if register {
		registry.MustRegister(
			m.syncRuns,
			m.syncDuration,
			m.apiRequests,
			m.rewriteOperations,
		)
	}
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
