package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the API and
// the conflict engine.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	auditDuration   prometheus.Histogram
	auditConflicts  *prometheus.GaugeVec
	validations     *prometheus.CounterVec
	resolutionRate  prometheus.Gauge
	dbQueryDuration *prometheus.HistogramVec
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
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

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "audit_cache_hits_total",
		Help: "Audit responses served from cache",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "audit_cache_misses_total",
		Help: "Audit responses computed from scratch",
	})

	auditDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "schedule_audit_duration_seconds",
		Help:    "Time spent auditing a full schedule",
		Buckets: prometheus.DefBuckets,
	})

	auditConflicts := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "schedule_conflicts",
		Help: "Conflicts found by the latest schedule audit",
	}, []string{"severity"})

	validations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "candidate_validations_total",
		Help: "Candidate validations by operation mode and verdict",
	}, []string{"mode", "verdict"})

	resolutionRate := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "auto_resolution_success_rate",
		Help: "Success rate of the most recent auto-resolution run",
	})

	dbQueryDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "db_query_duration_seconds",
		Help:    "Duration of database queries",
		Buckets: prometheus.DefBuckets,
	}, []string{"query"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheHits, cacheMisses, auditDuration, auditConflicts, validations, resolutionRate, dbQueryDuration, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:        registry,
		handler:         handler,
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
		auditDuration:   auditDuration,
		auditConflicts:  auditConflicts,
		validations:     validations,
		resolutionRate:  resolutionRate,
		dbQueryDuration: dbQueryDuration,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordAuditCache records whether an audit was served from cache.
func (m *MetricsService) RecordAuditCache(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.cacheHits.Inc()
	} else {
		m.cacheMisses.Inc()
	}
}

// ObserveAudit records the duration and per-severity counts of an audit run.
func (m *MetricsService) ObserveAudit(duration time.Duration, high, medium, low int) {
	if m == nil {
		return
	}
	m.auditDuration.Observe(duration.Seconds())
	m.auditConflicts.WithLabelValues("high").Set(float64(high))
	m.auditConflicts.WithLabelValues("medium").Set(float64(medium))
	m.auditConflicts.WithLabelValues("low").Set(float64(low))
}

// RecordValidation counts a candidate validation by mode and verdict.
func (m *MetricsService) RecordValidation(mode string, canProceed bool) {
	if m == nil {
		return
	}
	verdict := "blocked"
	if canProceed {
		verdict = "clear"
	}
	m.validations.WithLabelValues(mode, verdict).Inc()
}

// RecordResolutionRate stores the success rate of an auto-resolution run.
func (m *MetricsService) RecordResolutionRate(rate float64) {
	if m == nil {
		return
	}
	m.resolutionRate.Set(rate)
}

// ObserveDBQuery records database query timing.
func (m *MetricsService) ObserveDBQuery(label string, duration time.Duration) {
	if m == nil {
		return
	}
	m.dbQueryDuration.WithLabelValues(label).Observe(duration.Seconds())
}
