package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the HTTP-level Prometheus metrics for the application.
type Metrics struct {
	RequestLatency  *prometheus.HistogramVec
	RequestsTotal   *prometheus.CounterVec
	RateLimited     prometheus.Counter
	PanicsRecovered prometheus.Counter
}

// New creates and registers all HTTP metrics with reg. A nil reg registers
// with the default Prometheus registry.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		RequestLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "faultline_http_request_duration_seconds",
			Help:    "Duration of HTTP requests by route and status",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 0.75, 1, 2.5, 5},
		}, []string{"route", "status"}),

		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "faultline_http_requests_total",
			Help: "Total HTTP requests by route and status",
		}, []string{"route", "status"}),

		RateLimited: factory.NewCounter(prometheus.CounterOpts{
			Name: "faultline_http_rate_limited_total",
			Help: "Total requests rejected by the per-client rate limiter",
		}),

		PanicsRecovered: factory.NewCounter(prometheus.CounterOpts{
			Name: "faultline_http_panics_recovered_total",
			Help: "Total handler panics converted into internal errors",
		}),
	}
}

// ObserveRequest records one finished request.
func (m *Metrics) ObserveRequest(route, status string, d time.Duration) {
	if m != nil {
		m.RequestLatency.WithLabelValues(route, status).Observe(d.Seconds())
		m.RequestsTotal.WithLabelValues(route, status).Inc()
	}
}

// IncrementRateLimited counts a rejected request.
func (m *Metrics) IncrementRateLimited() {
	if m != nil {
		m.RateLimited.Inc()
	}
}

// IncrementPanicsRecovered counts a recovered panic.
func (m *Metrics) IncrementPanicsRecovered() {
	if m != nil {
		m.PanicsRecovered.Inc()
	}
}
