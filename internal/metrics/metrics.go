package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Ingestion metrics
	ReadingsIngested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nodewatch_readings_ingested_total",
			Help: "Total readings accepted or rejected at the ingestion gate",
		},
		[]string{"status"},
	)

	IngestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "nodewatch_ingest_duration_seconds",
			Help:    "Duration of one ingestion, payload parse through ledger write",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Read-path metrics
	LatestReads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nodewatch_latest_reads_total",
			Help: "Latest-reading requests by liveness verdict",
		},
		[]string{"verdict"},
	)

	HistoryQueries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nodewatch_history_queries_total",
			Help: "Total history window queries served",
		},
	)

	// Control channel metrics
	FlagWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nodewatch_flag_writes_total",
			Help: "Actuator flag writes by flag name",
		},
		[]string{"flag"},
	)

	FlagWriteErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nodewatch_flag_write_errors_total",
			Help: "Actuator flag writes that failed at the store",
		},
	)

	// Dashboard poller metrics
	WatchdogStaleTransitions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nodewatch_watchdog_stale_transitions_total",
			Help: "Times the client watchdog declared the feed disconnected",
		},
	)

	// Live-tap metrics
	PublishErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nodewatch_publish_errors_total",
			Help: "Reading publications dropped due to bus errors",
		},
	)
)
