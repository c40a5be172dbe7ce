package batch

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Item outcome labels.
const (
	StatusDecoded = "decoded"
	StatusEmpty   = "empty"
	StatusFailed  = "failed"
)

// Metrics collects per-run counters on a private registry so several runs
// in one process never collide. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry       *prometheus.Registry
	items          *prometheus.CounterVec
	codes          *prometheus.CounterVec
	decodeDuration prometheus.Histogram
}

// NewMetrics creates the run collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		items: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "bardec_items_total",
			Help: "Work items processed, by outcome.",
		}, []string{"status"}),
		codes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "bardec_codes_total",
			Help: "Codes decoded, by symbology.",
		}, []string{"type"}),
		decodeDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "bardec_decode_duration_seconds",
			Help:    "Time spent decoding a single image.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// ObserveItem counts one work item with the given outcome.
func (m *Metrics) ObserveItem(status string) {
	if m == nil {
		return
	}
	m.items.WithLabelValues(status).Inc()
}

// ObserveCode counts one decoded code of the given symbology.
func (m *Metrics) ObserveCode(symbology string) {
	if m == nil {
		return
	}
	m.codes.WithLabelValues(symbology).Inc()
}

// ObserveDecode records the duration of one backend call.
func (m *Metrics) ObserveDecode(d time.Duration) {
	if m == nil {
		return
	}
	m.decodeDuration.Observe(d.Seconds())
}

// Gatherer exposes the run registry.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	if m == nil {
		return prometheus.NewRegistry()
	}
	return m.registry
}

// WriteTextfile writes the collected metrics in the node exporter textfile
// format.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.Gatherer())
}
