// Package metrics exposes Prometheus counters for record writes, person
// reassignments and HTTP latency.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/diewo77/go-records/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels for record writes.
const (
	OutcomeOK       = "ok"
	OutcomeNotFound = "not_found"
	OutcomeConflict = "conflict"
	OutcomeError    = "error"
)

// Metrics owns a private registry so several instances can coexist in tests.
type Metrics struct {
	registry        *prometheus.Registry
	writes          *prometheus.CounterVec
	reassignments   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// New registers every collector on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		writes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "records_writes_total",
			Help: "Record writes by entity, operation and outcome.",
		}, []string{"entity", "operation", "outcome"}),
		reassignments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "records_reassignments_total",
			Help: "Person to client association changes made by client edits.",
		}, []string{"direction"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "records_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
	m.registry.MustRegister(
		m.writes,
		m.reassignments,
		m.requestDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry (tests gather from it).
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveWrite counts a create/update/delete attempt.
func (m *Metrics) ObserveWrite(entity, operation string, err error) {
	m.writes.WithLabelValues(entity, operation, Outcome(err)).Inc()
}

// ObserveReassignment counts one association change.
func (m *Metrics) ObserveReassignment(assigned bool) {
	direction := "unassigned"
	if assigned {
		direction = "assigned"
	}
	m.reassignments.WithLabelValues(direction).Inc()
}

// Middleware records request latency labelled with the chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.requestDuration.
			WithLabelValues(r.Method, route, strconv.Itoa(status)).
			Observe(time.Since(start).Seconds())
	})
}

// Outcome maps a store error to its label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, store.ErrNotFound):
		return OutcomeNotFound
	case errors.Is(err, store.ErrConflict):
		return OutcomeConflict
	default:
		return OutcomeError
	}
}
