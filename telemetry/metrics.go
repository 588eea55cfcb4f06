package telemetry

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/katalvlaran/lattix/lattice"
)

// Metrics holds the lattix collectors.
type Metrics struct {
	Builds     *prometheus.CounterVec
	Traversals *prometheus.CounterVec
	Visits     *prometheus.CounterVec
	Requests   *prometheus.CounterVec
	Duration   *prometheus.HistogramVec
}

// NewMetrics registers the collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		Builds: f.NewCounterVec(prometheus.CounterOpts{
			Name: "lattix_lattice_builds_total",
			Help: "Lattice graph constructions.",
		}, []string{"model"}),
		Traversals: f.NewCounterVec(prometheus.CounterOpts{
			Name: "lattix_lattice_traversals_total",
			Help: "Lattice updates.",
		}, []string{"model"}),
		Visits: f.NewCounterVec(prometheus.CounterOpts{
			Name: "lattix_lattice_node_visits_total",
			Help: "Nodes processed by lattice updates.",
		}, []string{"model"}),
		Requests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "lattix_http_requests_total",
			Help: "HTTP requests by route and status code.",
		}, []string{"route", "code"}),
		Duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "lattix_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
	}
}

// ObserveLattice adds one engine's counters under model. It has the shape
// of the pricing update hook.
func (m *Metrics) ObserveLattice(model string, s lattice.Stats) {
	m.Builds.WithLabelValues(model).Add(float64(s.Builds))
	m.Traversals.WithLabelValues(model).Add(float64(s.Traversals))
	m.Visits.WithLabelValues(model).Add(float64(s.TotalVisits))
}

// ObserveRequest counts one finished HTTP request.
func (m *Metrics) ObserveRequest(route string, code int, seconds float64) {
	m.Requests.WithLabelValues(route, strconv.Itoa(code)).Inc()
	m.Duration.WithLabelValues(route).Observe(seconds)
}
