package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records solver, render and cache events as Prometheus
// collectors. It implements both [SolverHooks] and [CacheHooks].
type Metrics struct {
	solvesTotal      *prometheus.CounterVec
	solveDuration    prometheus.Histogram
	solveIterations  prometheus.Histogram
	solveMaxError    prometheus.Gauge
	overConstrained  prometheus.Gauge
	renderTotal      *prometheus.CounterVec
	renderDuration   *prometheus.HistogramVec
	cacheRequests    *prometheus.CounterVec
	cacheStoredBytes prometheus.Counter
}

var (
	_ SolverHooks = (*Metrics)(nil)
	_ CacheHooks  = (*Metrics)(nil)
)

// NewMetrics creates the tether collectors and registers them with reg.
// Registering twice with the same registry panics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		solvesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tether_solves_total",
				Help: "Number of solves by outcome (converged, diverged, error) and cache status.",
			},
			[]string{"outcome", "cached"},
		),
		solveDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "tether_solve_duration_seconds",
				Help:    "Time taken to solve a scene, including cache lookups.",
				Buckets: prometheus.DefBuckets,
			},
		),
		solveIterations: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "tether_solve_iterations",
				Help:    "Relaxation passes used per solve.",
				Buckets: prometheus.LinearBuckets(1, 1, 10),
			},
		),
		solveMaxError: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "tether_solve_max_error",
				Help: "Largest remaining constraint error after the last solve.",
			},
		),
		overConstrained: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "tether_over_constrained_objects",
				Help: "Objects flagged as over-constrained in the last solve.",
			},
		),
		renderTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tether_renders_total",
				Help: "Number of renders by format and result.",
			},
			[]string{"format", "result"},
		),
		renderDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tether_render_duration_seconds",
				Help:    "Time taken to render a diagram.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format"},
		),
		cacheRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tether_cache_requests_total",
				Help: "Cache lookups by key type and result (hit, miss).",
			},
			[]string{"type", "result"},
		),
		cacheStoredBytes: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "tether_cache_stored_bytes_total",
				Help: "Bytes written to the cache.",
			},
		),
	}

	reg.MustRegister(
		m.solvesTotal,
		m.solveDuration,
		m.solveIterations,
		m.solveMaxError,
		m.overConstrained,
		m.renderTotal,
		m.renderDuration,
		m.cacheRequests,
		m.cacheStoredBytes,
	)
	return m
}

// OnSolveStart is a no-op; durations come from OnSolveComplete.
func (m *Metrics) OnSolveStart(context.Context, int, int) {}

// OnSolveComplete counts the run by outcome and cache status. Successful
// runs also update the iteration histogram and the last-solve gauges.
func (m *Metrics) OnSolveComplete(_ context.Context, s SolveStats, d time.Duration, err error) {
	outcome := "converged"
	switch {
	case err != nil:
		outcome = "error"
	case !s.Converged:
		outcome = "diverged"
	}
	m.solvesTotal.WithLabelValues(outcome, strconv.FormatBool(s.Cached)).Inc()
	m.solveDuration.Observe(d.Seconds())
	if err != nil {
		return
	}
	m.solveIterations.Observe(float64(s.Iterations))
	m.solveMaxError.Set(s.MaxError)
	m.overConstrained.Set(float64(s.OverConstrained))
}

// OnRenderStart is a no-op.
func (m *Metrics) OnRenderStart(context.Context, string) {}

// OnRenderComplete counts the render and observes its duration.
func (m *Metrics) OnRenderComplete(_ context.Context, format string, _ int, d time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.renderTotal.WithLabelValues(format, result).Inc()
	m.renderDuration.WithLabelValues(format).Observe(d.Seconds())
}

// OnCacheHit counts a cache hit.
func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.cacheRequests.WithLabelValues(keyType, "hit").Inc()
}

// OnCacheMiss counts a cache miss.
func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.cacheRequests.WithLabelValues(keyType, "miss").Inc()
}

// OnCacheSet adds the stored entry size to the byte counter.
func (m *Metrics) OnCacheSet(_ context.Context, _ string, size int) {
	m.cacheStoredBytes.Add(float64(size))
}
