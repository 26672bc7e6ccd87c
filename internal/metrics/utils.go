package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// IncrementJobs counts a finished ingestion job by outcome.
// Example: metrics.IncrementJobs("success")
func (m *Metrics) IncrementJobs(outcome string) {
	m.jobsProcessed.WithLabelValues(outcome).Inc()
}

// AddDocumentsIndexed counts documents written to the index.
func (m *Metrics) AddDocumentsIndexed(n int) {
	m.documentsIndexed.Add(float64(n))
}

// AddChunksIndexed counts chunks written to the vector store.
func (m *Metrics) AddChunksIndexed(n int) {
	m.chunksIndexed.Add(float64(n))
}

// RecordSearchDuration records the latency of one hybrid search.
// Example: defer metrics.RecordSearchDuration(time.Now(), "ok")
func (m *Metrics) RecordSearchDuration(start time.Time, status string) {
	m.searchDuration.WithLabelValues(status).Observe(time.Since(start).Seconds())
}

// SetInflightJobs sets the number of jobs currently being processed.
func (m *Metrics) SetInflightJobs(queue string, n int) {
	m.queueDepth.WithLabelValues(queue).Set(float64(n))
}

// CreateCounter registers and returns an additional CounterVec.
func (m *Metrics) CreateCounter(name, help string, labels []string) *prometheus.CounterVec {
	counter := createCounterVec(name, help, labels)
	m.Registry.MustRegister(counter)
	return counter
}

// CreateHistogram registers and returns an additional HistogramVec.
func (m *Metrics) CreateHistogram(name, help string, labels []string, buckets []float64) *prometheus.HistogramVec {
	hist := createHistogramVec(name, help, labels, buckets)
	m.Registry.MustRegister(hist)
	return hist
}

func createCounter(name, help string) prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: name,
		Help: help,
	})
}

func createCounterVec(name, help string, labels []string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: name,
			Help: help,
		},
		labels,
	)
}

func createHistogramVec(name, help string, labels []string, buckets []float64) *prometheus.HistogramVec {
	return prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    name,
			Help:    help,
			Buckets: buckets,
		},
		labels,
	)
}

func createGaugeVec(name, help string, labels []string) *prometheus.GaugeVec {
	return prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: name,
			Help: help,
		},
		labels,
	)
}
