package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for GameLedger.
type Metrics struct {
	// --- Engine ---
	OpsApplied     *prometheus.CounterVec
	OpsRejected    *prometheus.CounterVec
	OpDuration     *prometheus.HistogramVec
	EngineSequence prometheus.Gauge
	RecordsLive    prometheus.Gauge

	// --- Ingestion ---
	IngestToApply   *prometheus.HistogramVec
	NATSPullLatency *prometheus.HistogramVec

	// --- Channel & Backpressure ---
	ChannelSize     *prometheus.GaugeVec
	ProjectionDrops *prometheus.CounterVec

	// --- Persistence ---
	PersistOpsWritten       prometheus.Counter
	PersistMutationsWritten prometheus.Counter
	PersistBatchDur         prometheus.Histogram
	PersistErrors           *prometheus.CounterVec
	PersistLastSequence     prometheus.Gauge

	// --- Snapshots ---
	SnapshotTaken    prometheus.Counter
	SnapshotDuration prometheus.Histogram
	SnapshotLastSeq  prometheus.Gauge

	// --- Projections ---
	ProjectionUpdateDur *prometheus.HistogramVec

	// --- Query API ---
	QueryRequests *prometheus.CounterVec
	QueryDuration *prometheus.HistogramVec
	QueryErrors   *prometheus.CounterVec
}

// NewMetrics creates and registers all Prometheus metrics.
func NewMetrics() *Metrics {
	latencyBuckets := []float64{
		0.000001, 0.000005, 0.00001, 0.000025, 0.00005,
		0.0001, 0.00025, 0.0005, 0.001, 0.002, 0.005, 0.01,
	}

	ingestBuckets := []float64{
		0.00001, 0.000025, 0.00005, 0.0001, 0.00025,
		0.0005, 0.001, 0.002, 0.005, 0.01,
	}

	return &Metrics{
		OpsApplied: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "gl_engine_ops_applied_total",
			Help: "Operations successfully applied by the engine",
		}, []string{"op_kind"}),

		OpsRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "gl_engine_ops_rejected_total",
			Help: "Operations rejected (dedup, sequence, validation)",
		}, []string{"op_kind", "reason"}),

		OpDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gl_engine_op_apply_duration_seconds",
			Help:    "Time to apply a single operation",
			Buckets: latencyBuckets,
		}, []string{"op_kind"}),

		EngineSequence: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "gl_engine_sequence",
			Help: "Current global sequence number",
		}),

		RecordsLive: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "gl_engine_records_live",
			Help: "Live records in the store",
		}),

		IngestToApply: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gl_ingest_to_apply_seconds",
			Help:    "NATS receive to engine apply complete",
			Buckets: ingestBuckets,
		}, []string{"op_kind"}),

		NATSPullLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gl_nats_pull_latency_seconds",
			Help:    "NATS pull request latency",
			Buckets: ingestBuckets,
		}, []string{"subject"}),

		ChannelSize: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "gl_channel_size",
			Help: "Current items in channel",
		}, []string{"name"}),

		ProjectionDrops: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "gl_projection_drops_total",
			Help: "Outputs dropped due to full projection channel",
		}, []string{"projection"}),

		PersistOpsWritten: promauto.NewCounter(prometheus.CounterOpts{
			Name: "gl_persist_ops_written_total",
			Help: "Operation envelopes written to Postgres",
		}),

		PersistMutationsWritten: promauto.NewCounter(prometheus.CounterOpts{
			Name: "gl_persist_mutations_written_total",
			Help: "Record mutations written to Postgres",
		}),

		PersistBatchDur: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "gl_persist_batch_duration_seconds",
			Help:    "Postgres batch write duration",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		}),

		PersistErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "gl_persist_errors_total",
			Help: "Postgres write errors by table",
		}, []string{"table"}),

		PersistLastSequence: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "gl_persist_last_sequence",
			Help: "Highest sequence durably written",
		}),

		SnapshotTaken: promauto.NewCounter(prometheus.CounterOpts{
			Name: "gl_snapshot_taken_total",
			Help: "State snapshots written to Postgres",
		}),

		SnapshotDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "gl_snapshot_duration_seconds",
			Help:    "Snapshot capture and write duration",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),

		SnapshotLastSeq: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "gl_snapshot_last_sequence",
			Help: "Sequence of the most recent snapshot",
		}),

		ProjectionUpdateDur: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gl_projection_update_duration_seconds",
			Help:    "Projection table update duration",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1},
		}, []string{"projection"}),

		QueryRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "gl_query_requests_total",
			Help: "Query API requests",
		}, []string{"endpoint"}),

		QueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gl_query_duration_seconds",
			Help:    "Query API request duration",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05},
		}, []string{"endpoint"}),

		QueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "gl_query_errors_total",
			Help: "Query API errors",
		}, []string{"endpoint"}),
	}
}
