package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry            *prometheus.Registry
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	syncOperations      *prometheus.CounterVec
}

// New registers the catalog collectors on a dedicated registry along with
// the Go runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests.",
			},
			[]string{"method", "endpoint", "status"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Histogram of HTTP request durations.",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5},
			},
			[]string{"method", "endpoint", "status"},
		),
		syncOperations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "catalog_sync_operations_total",
				Help: "Product create, update and delete operations by outcome.",
			},
			[]string{"operation", "result"},
		),
	}
	m.registry.MustRegister(
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.syncOperations,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// RecordRequest records one served HTTP request.
func (m *Metrics) RecordRequest(method, endpoint string, statusCode int, duration time.Duration) {
	status := classifyStatus(statusCode)
	m.httpRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	m.httpRequestDuration.WithLabelValues(method, endpoint, status).Observe(duration.Seconds())
}

// ObserveSync counts a synchronizer operation as ok or error.
func (m *Metrics) ObserveSync(operation string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.syncOperations.WithLabelValues(operation, result).Inc()
}

// Middleware records every request under its route template, so ids in
// the path do not explode label cardinality.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		m.RecordRequest(c.Request.Method, endpoint, c.Writer.Status(), time.Since(start))
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func classifyStatus(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return "2xx"
	case statusCode >= 300 && statusCode < 400:
		return "3xx"
	case statusCode >= 400 && statusCode < 500:
		return "4xx"
	case statusCode >= 500 && statusCode < 600:
		return "5xx"
	}
	return strconv.Itoa(statusCode)
}

// SyncRecorder is what the synchronizer needs from Metrics.
type SyncRecorder interface {
	ObserveSync(operation string, err error)
}

type Nop struct{}

func (Nop) ObserveSync(string, error) {}
