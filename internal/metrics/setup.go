package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the isolated Prometheus registry, the /metrics server and
// the instruments for the ingestion and search paths.
type Metrics struct {
	// Server exposes the /metrics endpoint for scraping.
	Server *http.Server

	// Registry is isolated per process so metric names cannot collide with
	// other collectors in the same binary.
	Registry *prometheus.Registry

	jobsProcessed    *prometheus.CounterVec
	documentsIndexed prometheus.Counter
	chunksIndexed    prometheus.Counter
	searchDuration   *prometheus.HistogramVec
	queueDepth       *prometheus.GaugeVec
}

// NewMetrics builds the registry with a constant service label, registers
// the application instruments and prepares the HTTP server.
func NewMetrics(cfg Config) *Metrics {
	registry := prometheus.NewRegistry()

	wrappedRegistry := prometheus.WrapRegistererWith(
		prometheus.Labels{"service": cfg.ServiceName},
		registry,
	)

	m := &Metrics{
		Registry: registry,
	}

	m.jobsProcessed = createCounterVec("ingest_jobs_total", "Ingestion jobs by outcome", []string{"outcome"})
	m.documentsIndexed = createCounter("documents_indexed_total", "Documents indexed successfully")
	m.chunksIndexed = createCounter("chunks_indexed_total", "Chunks written to the vector store")
	m.searchDuration = createHistogramVec("search_duration_seconds", "Hybrid search latency in seconds", []string{"status"}, prometheus.DefBuckets)
	m.queueDepth = createGaugeVec("worker_inflight_jobs", "Jobs currently being processed", []string{"queue"})

	wrappedRegistry.MustRegister(
		m.jobsProcessed,
		m.documentsIndexed,
		m.chunksIndexed,
		m.searchDuration,
		m.queueDepth,
	)

	if cfg.EnableDefaultCollectors {
		wrappedRegistry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			collectors.NewBuildInfoCollector(),
		)
	}

	m.Server = &http.Server{
		Addr:    cfg.Address,
		Handler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	}

	return m
}
