package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the read pipeline.
type Metrics struct {
	// Terminal outcomes by final state and error code ("" on success)
	Outcomes *prometheus.CounterVec

	// Time spent waiting on the upstream source
	SourceLatency prometheus.Histogram

	// Full read latency including parsing
	ReadLatency prometheus.Histogram
}

// New creates a new Metrics instance registered with reg. A nil reg uses the
// default Prometheus registry.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		Outcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "faultline_pipeline_outcomes_total",
			Help: "Total pipeline reads by terminal state and error code",
		}, []string{"state", "code"}),

		SourceLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "faultline_pipeline_source_duration_seconds",
			Help:    "Duration of upstream source fetches",
			Buckets: []float64{0.005, 0.05, 0.1, 0.25, 0.5, 0.75, 1, 2.5},
		}),

		ReadLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "faultline_pipeline_read_duration_seconds",
			Help:    "Duration of full pipeline reads",
			Buckets: []float64{0.005, 0.05, 0.1, 0.25, 0.5, 0.75, 1, 2.5},
		}),
	}
}

// IncrementOutcome records a terminal outcome.
func (m *Metrics) IncrementOutcome(state, code string) {
	if m != nil {
		m.Outcomes.WithLabelValues(state, code).Inc()
	}
}

// ObserveSourceLatency records the duration of a source fetch.
func (m *Metrics) ObserveSourceLatency(d time.Duration) {
	if m != nil {
		m.SourceLatency.Observe(d.Seconds())
	}
}

// ObserveReadLatency records the duration of a full read.
func (m *Metrics) ObserveReadLatency(d time.Duration) {
	if m != nil {
		m.ReadLatency.Observe(d.Seconds())
	}
}
