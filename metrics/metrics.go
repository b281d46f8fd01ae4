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

// Metrics holds the collectors of one process. Each instance owns its registry so
// tests can build as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	// HTTPRequestsTotal tracks handled requests by method, route and status
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPRequestDuration tracks request latency in seconds by method and route
	HTTPRequestDuration *prometheus.HistogramVec

	// SessionsCreated counts sessions created because the request carried no valid cookie
	SessionsCreated prometheus.Counter

	// SessionSaves counts session persistence attempts by result (ok/error)
	SessionSaves *prometheus.CounterVec

	// MongoConnected mirrors the last database heartbeat: 1 succeeded, 0 failed
	MongoConnected prometheus.Gauge
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total HTTP requests by method, route and status",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			},
			[]string{"method", "route"},
		),
		SessionsCreated: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "sessions_created_total",
				Help: "Total sessions created for requests without a valid session cookie",
			},
		),
		SessionSaves: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "session_saves_total",
				Help: "Total session persistence attempts by result",
			},
			[]string{"result"},
		),
		MongoConnected: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "mongo_connected",
				Help: "Whether the last database heartbeat succeeded (1) or failed (0)",
			},
		),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.SessionsCreated,
		m.SessionSaves,
		m.MongoConnected,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the exposition format for this instance's registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware records request count and latency. Unmatched routes share one label.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.HTTPRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.HTTPRequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
