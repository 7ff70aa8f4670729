// Package metrics registers the Prometheus collectors exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RecurringCreated counts occurrences the daily materializer created.
	RecurringCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "financialtracker",
		Subsystem: "recurring",
		Name:      "occurrences_created_total",
		Help:      "Recurring transaction occurrences created by the daily job.",
	})

	// RecurringFailed counts templates the daily materializer failed on.
	RecurringFailed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "financialtracker",
		Subsystem: "recurring",
		Name:      "occurrences_failed_total",
		Help:      "Recurring templates whose daily materialization failed.",
	})

	// HTTPRequests counts handled HTTP requests by method, path and status.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "financialtracker",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Handled HTTP requests.",
	}, []string{"method", "path", "status"})
)
