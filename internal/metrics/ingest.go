package metrics

import "github.com/prometheus/client_golang/prometheus"

// Ingestion Prometheus metrics.
var (
	PagesFetchedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "guideindex",
			Name:      "pages_fetched_total",
			Help:      "Guide pages fetched, by source and outcome",
		},
		[]string{"source", "status"}, // status: "ok" / "not_found" / "error"
	)

	ChunksCreatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "guideindex",
			Name:      "chunks_created_total",
			Help:      "Document chunks produced by the chunker",
		},
		[]string{"section"},
	)

	IngestPairsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "guideindex",
			Name:      "ingest_pairs_total",
			Help:      "Ingested (place, source) pairs by outcome",
		},
		[]string{"status"}, // "success" / "failure"
	)

	IngestPairDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "guideindex",
			Name:      "ingest_pair_duration_seconds",
			Help:      "Wall time to ingest one (place, source) pair",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"source"},
	)
)

var ingestMetricsRegistered bool

// RegisterIngestMetrics registers Prometheus ingestion metrics. Must be called once from main.
func RegisterIngestMetrics() {
	if ingestMetricsRegistered {
		return
	}
	prometheus.MustRegister(PagesFetchedTotal)
	prometheus.MustRegister(ChunksCreatedTotal)
	prometheus.MustRegister(IngestPairsTotal)
	prometheus.MustRegister(IngestPairDuration)
	ingestMetricsRegistered = true
}
