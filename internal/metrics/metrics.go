// Package metrics collects and exposes Prometheus metrics for the server.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the server's metric families.
type Collector struct {
	httpRequests   *prometheus.CounterVec
	aiRequests     *prometheus.CounterVec
	aiLatency      *prometheus.HistogramVec
	storeMutations *prometheus.CounterVec
	sessionsActive prometheus.Gauge
}

// NewCollector creates a Collector and registers it with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "resume_builder_http_requests_total",
			Help: "HTTP requests by method and status code.",
		}, []string{"method", "status"}),
		aiRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "resume_builder_ai_requests_total",
			Help: "Writing assistant calls by capability and outcome.",
		}, []string{"capability", "outcome"}),
		aiLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "resume_builder_ai_latency_seconds",
			Help:    "Writing assistant call latency in seconds.",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40, 80},
		}, []string{"capability"}),
		storeMutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "resume_builder_store_mutations_total",
			Help: "Committed document store mutations by operation.",
		}, []string{"operation"}),
		sessionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "resume_builder_sessions_active",
			Help: "Open document sessions.",
		}),
	}

	reg.MustRegister(
		c.httpRequests,
		c.aiRequests,
		c.aiLatency,
		c.storeMutations,
		c.sessionsActive,
	)
	return c
}

// RecordHTTPRequest counts one served request.
func (c *Collector) RecordHTTPRequest(method string, status int) {
	c.httpRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
}

// RecordAICall counts one assistant call and observes its latency. It matches assist.Observer.
func (c *Collector) RecordAICall(capability, outcome string, elapsed time.Duration) {
	c.aiRequests.WithLabelValues(capability, outcome).Inc()
	c.aiLatency.WithLabelValues(capability).Observe(elapsed.Seconds())
}

// RecordMutation counts one committed store operation.
func (c *Collector) RecordMutation(operation string) {
	c.storeMutations.WithLabelValues(operation).Inc()
}

// SetSessions sets the open session gauge.
func (c *Collector) SetSessions(n int) {
	c.sessionsActive.Set(float64(n))
}

// Handler returns the scrape handler for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
