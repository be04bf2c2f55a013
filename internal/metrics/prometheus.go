// Package metrics provides Prometheus metrics for the adapter and harness
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	registry *prometheus.Registry

	// HTTP request metrics (harness)
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	RequestsInFlight prometheus.Gauge

	// Adapter operation metrics
	SetupsTotal  *prometheus.CounterVec
	LoadsTotal   *prometheus.CounterVec
	LoadDuration *prometheus.HistogramVec
	ShowsTotal   *prometheus.CounterVec
	ShowDuration *prometheus.HistogramVec
	Invalidates  prometheus.Counter

	// Partner callback metrics
	PartnerErrors      *prometheus.CounterVec
	DuplicateCallbacks *prometheus.CounterVec
	LifecycleEvents    *prometheus.CounterVec
	OrphanedEvents     *prometheus.CounterVec

	// Privacy metrics
	ConsentSignals *prometheus.CounterVec

	// State metrics
	ReadyPlacements prometheus.Gauge
}

// NewMetrics creates and registers all Prometheus metrics on a dedicated
// registry so independent instances never collide.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "adbridge"
	}

	m := &Metrics{
		registry: prometheus.NewRegistry(),

		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		RequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "http_requests_in_flight",
				Help:      "Number of HTTP requests currently being served",
			},
		),

		SetupsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "setups_total",
				Help:      "Total adapter setup attempts",
			},
			[]string{"status"},
		),
		LoadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "loads_total",
				Help:      "Total ad load attempts",
			},
			[]string{"format", "status"},
		),
		LoadDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "load_duration_seconds",
				Help:      "Ad load duration in seconds",
				Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"format"},
		),
		ShowsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "shows_total",
				Help:      "Total ad show attempts",
			},
			[]string{"format", "status"},
		),
		ShowDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "show_duration_seconds",
				Help:      "Ad show duration in seconds, from request to show-start",
				Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"format"},
		),
		Invalidates: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "invalidates_total",
				Help:      "Total ad invalidations",
			},
		),

		PartnerErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "partner_errors_total",
				Help:      "Raw partner SDK errors by operation and partner code",
			},
			[]string{"operation", "code"},
		),
		DuplicateCallbacks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "duplicate_callbacks_total",
				Help:      "Partner callbacks dropped because the call was already resolved",
			},
			[]string{"operation"},
		),
		LifecycleEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "lifecycle_events_total",
				Help:      "Listener lifecycle events forwarded to the mediation layer",
			},
			[]string{"event"},
		),
		OrphanedEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "orphaned_events_total",
				Help:      "Partner events that arrived with no registered listener",
			},
			[]string{"event"},
		),

		ConsentSignals: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "consent_signals_total",
				Help:      "Consent flags propagated to the partner SDK",
			},
			[]string{"type", "has_consent"},
		),

		ReadyPlacements: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "ready_placements",
				Help:      "Placements currently holding a loaded, unshown ad",
			},
		),
	}

	m.registry.MustRegister(
		m.RequestsTotal,
		m.RequestDuration,
		m.RequestsInFlight,
		m.SetupsTotal,
		m.LoadsTotal,
		m.LoadDuration,
		m.ShowsTotal,
		m.ShowDuration,
		m.Invalidates,
		m.PartnerErrors,
		m.DuplicateCallbacks,
		m.LifecycleEvents,
		m.OrphanedEvents,
		m.ConsentSignals,
		m.ReadyPlacements,
	)

	return m
}

// Handler returns the Prometheus scrape handler for this instance
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware returns HTTP middleware that records request metrics
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		m.RequestsInFlight.Inc()
		defer m.RequestsInFlight.Dec()

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(wrapped.statusCode)

		m.RequestsTotal.WithLabelValues(r.Method, r.URL.Path, status).Inc()
		m.RequestDuration.WithLabelValues(r.Method, r.URL.Path).Observe(duration)
	})
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// RecordSetup records a setup attempt
func (m *Metrics) RecordSetup(status string) {
	m.SetupsTotal.WithLabelValues(status).Inc()
}

// RecordLoad records a load attempt
func (m *Metrics) RecordLoad(format, status string, duration time.Duration) {
	m.LoadsTotal.WithLabelValues(format, status).Inc()
	m.LoadDuration.WithLabelValues(format).Observe(duration.Seconds())
}

// RecordShow records a show attempt
func (m *Metrics) RecordShow(format, status string, duration time.Duration) {
	m.ShowsTotal.WithLabelValues(format, status).Inc()
	m.ShowDuration.WithLabelValues(format).Observe(duration.Seconds())
}

// RecordInvalidate records an ad invalidation
func (m *Metrics) RecordInvalidate() {
	m.Invalidates.Inc()
}

// RecordPartnerError records a raw partner SDK error
func (m *Metrics) RecordPartnerError(operation, code string) {
	m.PartnerErrors.WithLabelValues(operation, code).Inc()
}

// RecordDuplicateCallback records a partner callback dropped by the
// single-fire guard
func (m *Metrics) RecordDuplicateCallback(operation string) {
	m.DuplicateCallbacks.WithLabelValues(operation).Inc()
}

// RecordLifecycleEvent records a listener event forwarded upstream
func (m *Metrics) RecordLifecycleEvent(event string) {
	m.LifecycleEvents.WithLabelValues(event).Inc()
}

// RecordOrphanedEvent records a partner event with no registered listener
func (m *Metrics) RecordOrphanedEvent(event string) {
	m.OrphanedEvents.WithLabelValues(event).Inc()
}

// RecordConsentSignal records a consent flag write
func (m *Metrics) RecordConsentSignal(signalType string, hasConsent bool) {
	consent := "no"
	if hasConsent {
		consent = "yes"
	}
	m.ConsentSignals.WithLabelValues(signalType, consent).Inc()
}

// SetReadyPlacements sets the ready placement gauge
func (m *Metrics) SetReadyPlacements(n int) {
	m.ReadyPlacements.Set(float64(n))
}
