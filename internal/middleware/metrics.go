package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics instruments HTTP traffic with Prometheus counters and latency
// histograms, labelled by method, route template and status.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	cacheOps *prometheus.CounterVec
}

// NewMetrics registers the HTTP and cache collectors on the given registry.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests processed.",
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		cacheOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cache_requests_total",
			Help: "Cache lookups by outcome.",
		}, []string{"result"}),
	}
	registry.MustRegister(m.requests, m.duration, m.cacheOps)
	return m
}

// CacheHit counts a served cache lookup.
func (m *Metrics) CacheHit() { m.cacheOps.WithLabelValues("hit").Inc() }

// CacheMiss counts a cache lookup that fell through to the database.
func (m *Metrics) CacheMiss() { m.cacheOps.WithLabelValues("miss").Inc() }

// Handler returns the gin middleware recording each request.
func (m *Metrics) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		m.requests.WithLabelValues(c.Request.Method, route, status).Inc()
		m.duration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
