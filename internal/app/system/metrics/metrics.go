// Package metrics exposes RED metrics for service operations and HTTP
// routes on a private Prometheus registry.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dalemusser/accesshub/internal/app/system/result"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "accesshub"

// Recorder holds the collectors. A nil *Recorder records nothing, which
// keeps services usable in tests without a registry.
type Recorder struct {
	reg *prometheus.Registry

	calls *prometheus.CounterVec
	durs  *prometheus.HistogramVec
	http  *prometheus.CounterVec
	httpD *prometheus.HistogramVec
}

// New registers the collectors on a fresh registry together with the Go
// runtime and process collectors.
func New() *Recorder {
	reg := prometheus.NewRegistry()

	calls := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "service",
		Name:      "call_total",
		Help:      "Number of service operations by outcome kind",
	}, []string{"operation", "kind"})

	durs := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "service",
		Name:      "duration_seconds",
		Help:      "Duration of service operations",
		Buckets:   prometheus.ExponentialBuckets(1e-3, 4, 8),
	}, []string{"operation"})

	httpReqs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Number of HTTP requests by route and status",
	}, []string{"method", "route", "status"})

	httpDurs := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Duration of HTTP requests by route",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	reg.MustRegister(calls, durs, httpReqs, httpDurs,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Recorder{reg: reg, calls: calls, durs: durs, http: httpReqs, httpD: httpDurs}
}

// Registry returns the underlying registry.
func (m *Recorder) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.reg
}

// Start begins timing operation. The returned func records the outcome.
//
//	done := s.Metrics.Start("group.assign_many")
//	defer func() { done(res.Kind) }()
func (m *Recorder) Start(operation string) func(result.Kind) {
	if m == nil {
		return func(result.Kind) {}
	}
	start := time.Now()
	return func(k result.Kind) {
		m.calls.WithLabelValues(operation, k.String()).Inc()
		m.durs.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	}
}

// Middleware records one observation per request, labelled by the chi
// route pattern so path ids do not explode cardinality.
func (m *Recorder) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil {
			if p := rc.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.http.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.httpD.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// Handler serves the registry in the Prometheus text format.
func (m *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}
