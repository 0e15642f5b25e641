package observability

import "github.com/prometheus/client_golang/prometheus"

const namespace = "keitaro_sync"

var (
	SyncCycles = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "daemon",
		Name:      "cycles_total",
		Help:      "Number of sync cycles, labeled by outcome (success, error, panic).",
	}, []string{"outcome"})

	CycleDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "daemon",
		Name:      "cycle_duration_seconds",
		Help:      "Time spent on a full pass over the configured campaigns.",
		Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10),
	})

	LastSuccessfulCycle = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "daemon",
		Name:      "last_success_timestamp_seconds",
		Help:      "Unix time of the last cycle that finished without error.",
	})

	RecordsWritten = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "sync",
		Name:      "records_written_total",
		Help:      "Number of metric records submitted to the store, labeled by campaign.",
	}, []string{"campaign_id"})

	FetchResults = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "sync",
		Name:      "fetch_results_total",
		Help:      "Report fetches labeled by campaign and result (ok, empty, failed).",
	}, []string{"campaign_id", "result"})

	EntityErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "sync",
		Name:      "entity_errors_total",
		Help:      "Campaign syncs that failed while normalizing or writing.",
	}, []string{"campaign_id"})

	APIRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "keitaro",
		Name:      "requests_total",
		Help:      "HTTP requests sent to the Keitaro admin API, labeled by endpoint and status code.",
	}, []string{"endpoint", "code"})
)

func init() {
	prometheus.MustRegister(
		SyncCycles,
		CycleDuration,
		LastSuccessfulCycle,
		RecordsWritten,
		FetchResults,
		EntityErrors,
		APIRequests,
	)
}
