package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the application's prometheus collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	httpInFlight    prometheus.Gauge
	moderation      *prometheus.CounterVec
	favoriteToggles *prometheus.CounterVec
	registrations   *prometheus.CounterVec
	aiCalls         *prometheus.CounterVec
	aiDuration      *prometheus.HistogramVec
	pendingQueue    prometheus.Gauge
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rezeptapp",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "rezeptapp",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		httpInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "rezeptapp",
			Name:      "http_requests_in_flight",
			Help:      "Requests currently being served.",
		}),
		moderation: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rezeptapp",
			Name:      "moderation_decisions_total",
			Help:      "Moderation decisions by action and outcome.",
		}, []string{"action", "outcome"}),
		favoriteToggles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rezeptapp",
			Name:      "favorite_toggles_total",
			Help:      "Favorite toggles by resulting state.",
		}, []string{"state"}),
		registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rezeptapp",
			Name:      "registrations_total",
			Help:      "Successful registrations by assigned role.",
		}, []string{"role"}),
		aiCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rezeptapp",
			Name:      "ai_calls_total",
			Help:      "AI provider calls by operation and outcome.",
		}, []string{"operation", "outcome"}),
		aiDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "rezeptapp",
			Name:      "ai_call_duration_seconds",
			Help:      "AI provider call latency.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 40, 60},
		}, []string{"operation"}),
		pendingQueue: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "rezeptapp",
			Name:      "pending_recipes",
			Help:      "Moderation entries currently PENDING.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.httpDuration,
		m.httpInFlight,
		m.moderation,
		m.favoriteToggles,
		m.registrations,
		m.aiCalls,
		m.aiDuration,
		m.pendingQueue,
	)
	return m
}

// Handler exposes the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Middleware records request counts and latency per matched route.
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			m.httpInFlight.Inc()
			defer m.httpInFlight.Dec()

			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				} else {
					status = http.StatusInternalServerError
				}
			}
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			m.httpRequests.WithLabelValues(c.Request().Method, route, strconv.Itoa(status)).Inc()
			m.httpDuration.WithLabelValues(c.Request().Method, route).Observe(time.Since(start).Seconds())
			return err
		}
	}
}

// ObserveModeration counts a moderation decision. outcome is "ok" or an error kind.
func (m *Metrics) ObserveModeration(action, outcome string) {
	if m == nil {
		return
	}
	m.moderation.WithLabelValues(action, outcome).Inc()
}

// ObserveFavoriteToggle counts a toggle by its resulting state.
func (m *Metrics) ObserveFavoriteToggle(isFavorite bool) {
	if m == nil {
		return
	}
	state := "removed"
	if isFavorite {
		state = "added"
	}
	m.favoriteToggles.WithLabelValues(state).Inc()
}

// ObserveRegistration counts a registration by role.
func (m *Metrics) ObserveRegistration(role string) {
	if m == nil {
		return
	}
	m.registrations.WithLabelValues(role).Inc()
}

// ObserveAICall records an AI provider call.
func (m *Metrics) ObserveAICall(operation string, d time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.aiCalls.WithLabelValues(operation, outcome).Inc()
	m.aiDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// SetPendingQueue sets the pending moderation gauge.
func (m *Metrics) SetPendingQueue(n int64) {
	if m == nil {
		return
	}
	m.pendingQueue.Set(float64(n))
}
