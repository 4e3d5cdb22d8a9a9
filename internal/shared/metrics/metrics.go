package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds the process collectors on a private prometheus registry.
type Registry struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	analysisTotal   *prometheus.CounterVec
	analysisSeconds *prometheus.HistogramVec
	proxyBytes      prometheus.Counter
}

// New registers the core collectors.
func New() *Registry {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	analysisTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "analysis_total",
		Help: "Analyses by outcome (started, completed, failed)",
	}, []string{"outcome"})

	analysisSeconds := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "analysis_duration_seconds",
		Help:    "Analysis pipeline duration in seconds",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
	}, []string{"kind"})

	proxyBytes := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "storage_proxy_bytes_total",
		Help: "Bytes streamed through the storage proxy",
	})

	registry.MustRegister(requestDuration, requestTotal, analysisTotal, analysisSeconds, proxyBytes)

	return &Registry{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		analysisTotal:   analysisTotal,
		analysisSeconds: analysisSeconds,
		proxyBytes:      proxyBytes,
	}
}

// Gatherer exposes the underlying registry for tests.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

// Handler exposes metrics in Prometheus text format.
func (r *Registry) Handler() gin.HandlerFunc {
	if r == nil {
		return func(c *gin.Context) { c.Status(http.StatusServiceUnavailable) }
	}
	return gin.WrapH(r.handler)
}

// Middleware records request count and latency keyed by route template.
func (r *Registry) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if r == nil {
			return
		}
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		r.requestTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		r.requestDuration.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
	}
}

// AnalysisStarted increments the started counter.
func (r *Registry) AnalysisStarted() {
	if r == nil {
		return
	}
	r.analysisTotal.WithLabelValues("started").Inc()
}

// AnalysisCompleted records a completed analysis and its duration.
func (r *Registry) AnalysisCompleted(kind string, d time.Duration) {
	if r == nil {
		return
	}
	r.analysisTotal.WithLabelValues("completed").Inc()
	r.analysisSeconds.WithLabelValues(kind).Observe(d.Seconds())
}

// AnalysisFailed records a failed analysis and its duration.
func (r *Registry) AnalysisFailed(kind string, d time.Duration) {
	if r == nil {
		return
	}
	r.analysisTotal.WithLabelValues("failed").Inc()
	r.analysisSeconds.WithLabelValues(kind).Observe(d.Seconds())
}

// ProxiedBytes adds to the storage proxy byte counter.
func (r *Registry) ProxiedBytes(n int64) {
	if r == nil || n <= 0 {
		return
	}
	r.proxyBytes.Add(float64(n))
}
