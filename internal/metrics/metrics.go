// Package metrics provides Prometheus metrics for the portfolio server.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the server.
type Metrics struct {
	RequestsTotal      *prometheus.CounterVec
	RequestDuration    *prometheus.HistogramVec
	CarouselEvents     *prometheus.CounterVec
	SessionsActive     prometheus.Gauge
	ContactSubmissions *prometheus.CounterVec
	VisitsRecorded     prometheus.Counter

	registry *prometheus.Registry
}

// New creates and registers all metrics.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portfolio_http_requests_total",
				Help: "HTTP requests by route, method and status.",
			},
			[]string{"route", "method", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "portfolio_http_request_duration_seconds",
				Help:    "HTTP request latency by route.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		CarouselEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portfolio_carousel_events_total",
				Help: "Applied carousel transitions by event.",
			},
			[]string{"event"},
		),
		SessionsActive: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "portfolio_sessions_active",
				Help: "Visitor sessions holding a live carousel.",
			},
		),
		ContactSubmissions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portfolio_contact_submissions_total",
				Help: "Contact form submissions by result.",
			},
			[]string{"result"},
		),
		VisitsRecorded: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "portfolio_visits_recorded_total",
				Help: "Page visits written to the visitor log.",
			},
		),
		registry: reg,
	}

	reg.MustRegister(m.RequestsTotal)
	reg.MustRegister(m.RequestDuration)
	reg.MustRegister(m.CarouselEvents)
	reg.MustRegister(m.SessionsActive)
	reg.MustRegister(m.ContactSubmissions)
	reg.MustRegister(m.VisitsRecorded)

	return m
}

// Handler returns an http.Handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordCarouselEvent counts one applied carousel transition.
func (m *Metrics) RecordCarouselEvent(event string) {
	m.CarouselEvents.WithLabelValues(event).Inc()
}

// RecordContact counts a contact submission outcome.
func (m *Metrics) RecordContact(result string) {
	m.ContactSubmissions.WithLabelValues(result).Inc()
}

// Middleware records request counts and latency per matched route.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.RequestsTotal.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		m.RequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}
