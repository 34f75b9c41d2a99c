// Package metrics defines all custom Prometheus metrics for the crew API. It is
// the single source of truth for metric names, labels and help strings.
//
// Metrics are registered with the default registry through promauto when the
// package is imported; /metrics serves them alongside the echoprometheus HTTP
// metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "crew"

// ── Resource metrics ──────────────────────────────────────────────────────────

// ResourceOperationsTotal counts resource service calls.
// Labels:
//   - resource: "jobs", "users" or "categories"
//   - operation: "list", "get", "create", "replace" or "delete"
//   - outcome: "ok" or the error kind (e.g. "validation_failed", "not_found")
var ResourceOperationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "resource_operations_total",
		Help:      "Total number of resource operations, by resource, operation and outcome.",
	},
	[]string{"resource", "operation", "outcome"},
)

// ResourceOperationDuration measures a resource operation from decoded request to response.
var ResourceOperationDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "resource_operation_duration_seconds",
		Help:      "Duration of resource operations, validation and persistence included.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"resource", "operation"},
)

// IdempotentReplaysTotal counts creates answered from an earlier request with
// the same Idempotency-Key.
var IdempotentReplaysTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "idempotent_replays_total",
		Help:      "Total number of create requests replayed from an idempotency key.",
	},
	[]string{"resource"},
)

// ── Audit metrics ─────────────────────────────────────────────────────────────

// AuditQueueDepth tracks the number of entries pending in each audit worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var AuditQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "audit_queue_depth",
		Help:      "Current number of audit entries pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// AuditDroppedTotal counts entries discarded because their worker queue was full.
var AuditDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_dropped_total",
		Help:      "Total number of audit entries dropped because the queue was full.",
	},
)

// AuditWriteErrorsTotal counts entries the audit sink failed to persist.
var AuditWriteErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_write_errors_total",
		Help:      "Total number of audit entries that failed to persist, by resource.",
	},
	[]string{"resource"},
)

// ObserveOperation records one resource operation that started at start.
func ObserveOperation(resource, operation, outcome string, start time.Time) {
	ResourceOperationsTotal.WithLabelValues(resource, operation, outcome).Inc()
	ResourceOperationDuration.WithLabelValues(resource, operation).Observe(time.Since(start).Seconds())
}
