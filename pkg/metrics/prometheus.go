package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	filesAnalyzed *prometheus.CounterVec
	errorsTotal   *prometheus.CounterVec
	wcsDistance   *prometheus.GaugeVec
	latency       *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		filesAnalyzed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wcspull_files_analyzed_total",
				Help: "Total number of velocity exports analysed",
			},
			[]string{"format"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wcspull_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		wcsDistance: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "wcspull_last_wcs_distance_meters",
				Help: "Last worst case scenario distance per search method",
			},
			[]string{"method"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "wcspull_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordFileAnalyzed records one successfully analysed export.
func (r *Recorder) RecordFileAnalyzed(format string) {
	r.filesAnalyzed.WithLabelValues(format).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordWCSDistance records the last WCS distance for a search method.
func (r *Recorder) RecordWCSDistance(method string, meters float64) {
	r.wcsDistance.WithLabelValues(method).Set(meters)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
