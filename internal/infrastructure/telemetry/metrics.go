package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics bundles the engine's Prometheus instruments. Labels carry category,
// deletion mode and audit operation names only; never content or identifiers.
type Metrics struct {
	RecordsCreated    *prometheus.CounterVec
	RecordsAnonymized prometheus.Counter
	RecordsDeleted    *prometheus.CounterVec
	AuditEntries      *prometheus.CounterVec
	DetectionRuns     prometheus.Counter
	SweepDuration     prometheus.Histogram
	SweepSkips        prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RecordsCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "privacy_engine",
			Name:      "records_created_total",
			Help:      "Data records created, by classified category.",
		}, []string{"category"}),
		RecordsAnonymized: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "privacy_engine",
			Name:      "records_anonymized_total",
			Help:      "Records whose content was anonymized in place.",
		}),
		RecordsDeleted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "privacy_engine",
			Name:      "records_deleted_total",
			Help:      "Records deleted, by mode (soft or hard).",
		}, []string{"mode"}),
		AuditEntries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "privacy_engine",
			Name:      "audit_entries_total",
			Help:      "Audit trail entries appended, by operation.",
		}, []string{"operation"}),
		DetectionRuns: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "privacy_engine",
			Name:      "detection_runs_total",
			Help:      "Detection scans executed, including detection-only calls.",
		}),
		SweepDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "privacy_engine",
			Name:      "cleanup_sweep_duration_seconds",
			Help:      "Duration of expired-data cleanup sweeps.",
			Buckets:   prometheus.DefBuckets,
		}),
		SweepSkips: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "privacy_engine",
			Name:      "cleanup_sweep_skipped_total",
			Help:      "Sweep invocations skipped because a sweep was already running.",
		}),
	}
}
