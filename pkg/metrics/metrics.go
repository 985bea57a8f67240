// Package metrics collects and exposes Prometheus metrics for the API server.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector records lifecycle and HTTP metrics against a Prometheus registry.
type Collector struct {
	reports      *prometheus.CounterVec
	restores     prometheus.Counter
	deletes      prometheus.Counter
	httpDuration *prometheus.HistogramVec
}

// NewCollector creates a new Collector and registers its metrics with the
// provided registry.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		reports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "outagepulse_reports_total",
			Help: "Outage reports processed, by outcome (created or confirmed).",
		}, []string{"outcome"}),
		restores: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "outagepulse_restores_total",
			Help: "Outages transitioned to resolved.",
		}),
		deletes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "outagepulse_deletes_total",
			Help: "Outage delete operations performed.",
		}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "outagepulse_http_request_duration_seconds",
			Help:    "HTTP request latency by method and status code.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "status_code"}),
	}

	reg.MustRegister(c.reports, c.restores, c.deletes, c.httpDuration)
	return c
}

// RecordReport records a processed outage report.
func (c *Collector) RecordReport(created bool) {
	outcome := "confirmed"
	if created {
		outcome = "created"
	}
	c.reports.WithLabelValues(outcome).Inc()
}

// RecordRestore records a resolved transition.
func (c *Collector) RecordRestore() {
	c.restores.Inc()
}

// RecordDelete records a delete operation.
func (c *Collector) RecordDelete() {
	c.deletes.Inc()
}

// RecordHTTPRequest records the latency and status of a handled request.
func (c *Collector) RecordHTTPRequest(method string, statusCode int, duration time.Duration) {
	c.httpDuration.WithLabelValues(method, strconv.Itoa(statusCode)).Observe(duration.Seconds())
}

// Handler returns the HTTP handler serving the /metrics scrape endpoint.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
