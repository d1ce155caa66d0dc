package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Strategy producer metrics.
	TasksProduced = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "glados_strategy_tasks_produced_total",
			Help: "Total number of audit tasks produced, by strategy.",
		},
		[]string{"strategy"},
	)

	TasksDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "glados_strategy_tasks_dropped_total",
			Help: "Total number of audit tasks dropped because a strategy's outbound channel was full.",
		},
		[]string{"strategy"},
	)

	// Collator metrics.
	CollatorIdleCycles = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "glados_collator_idle_cycles_total",
			Help: "Total number of collator passes that forwarded zero tasks across all strategies.",
		},
	)

	// Worker pool metrics.
	WorkerPoolInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "glados_worker_pool_in_flight",
			Help: "Number of audit task fibers currently holding a concurrency permit.",
		},
	)

	AuditsDispatchedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "glados_audits_dispatched_total",
			Help: "Total number of audit tasks dispatched to a Portal client, by strategy.",
		},
		[]string{"strategy"},
	)

	// Audit task outcome metrics.
	AuditResultsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "glados_audit_results_total",
			Help: "Total number of completed audits, by strategy and result.",
		},
		[]string{"strategy", "result"},
	)

	AuditDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "glados_audit_duration_seconds",
			Help:    "Wall-clock duration of a single audit task (fetch + validate + persist).",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"strategy"},
	)

	TransferFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "glados_transfer_failures_total",
			Help: "Total number of per-hop transfer failures extracted from query traces, by kind.",
		},
		[]string{"kind"},
	)

	// Portal client metrics.
	PortalClientBreakerOpen = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "glados_portal_client_breaker_open",
			Help: "Whether the circuit breaker for a Portal client is open (1) or closed (0).",
		},
		[]string{"client"},
	)

	// Stats aggregator / retention metrics.
	StatsSnapshotDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "glados_stats_snapshot_duration_seconds",
			Help:    "Time taken to compute and persist one stats snapshot tick.",
			Buckets: prometheus.DefBuckets,
		},
	)

	RetentionRowsDeletedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "glados_retention_rows_deleted_total",
			Help: "Total number of rows deleted by the retention enforcer, by table.",
		},
		[]string{"table"},
	)

	// Repository query metrics.
	RepositoryQueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "glados_repository_query_duration_seconds",
			Help:    "Duration of repository operations, by operation name.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	RepositoryConflictsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "glados_repository_conflicts_total",
			Help: "Total number of unique-constraint conflicts encountered, by operation.",
		},
		[]string{"operation"},
	)

	// Gauges populated by the periodic Collector.
	ContentKeysTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "glados_content_keys_total",
			Help: "Total known content keys, by sub-protocol.",
		},
		[]string{"sub_protocol"},
	)

	PendingAuditsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "glados_pending_audits_total",
			Help: "Audits currently stuck in the Pending state (stale or in-flight).",
		},
	)
)

func init() {
	prometheus.MustRegister(
		TasksProduced,
		TasksDropped,
		CollatorIdleCycles,
		WorkerPoolInFlight,
		AuditsDispatchedTotal,
		AuditResultsTotal,
		AuditDuration,
		TransferFailuresTotal,
		PortalClientBreakerOpen,
		StatsSnapshotDuration,
		RetentionRowsDeletedTotal,
		RepositoryQueryDuration,
		RepositoryConflictsTotal,
		ContentKeysTotal,
		PendingAuditsTotal,
	)
}

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer is a helper for timing operations against a histogram.
type Timer struct {
	start time.Time
}

// NewTimer starts a timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the elapsed time to a histogram.
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	histogram.Observe(time.Since(t.start).Seconds())
}

// ObserveDurationVec records the elapsed time to a labeled histogram.
func (t *Timer) ObserveDurationVec(histogram prometheus.ObserverVec, labels ...string) {
	histogram.WithLabelValues(labels...).Observe(time.Since(t.start).Seconds())
}

// Duration returns the elapsed time since the timer started.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
