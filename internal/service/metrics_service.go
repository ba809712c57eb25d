package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/sma-teamwork-api/internal/models"
)

// MetricsService encapsulates Prometheus instrumentation and provides lightweight snapshots for API consumption.
type MetricsService struct {
	registry         *prometheus.Registry
	handler          http.Handler
	requestDuration  *prometheus.HistogramVec
	requestTotal     *prometheus.CounterVec
	cacheLatency     prometheus.Observer
	cacheWrite       prometheus.Observer
	cacheHitRatio    prometheus.Gauge
	cacheHits        prometheus.Counter
	cacheMisses      prometheus.Counter
	sweepDuration    prometheus.Histogram
	sweepFailures    prometheus.Counter
	stageTransitions *prometheus.CounterVec
	autoAssigned     prometheus.Counter
	autoFilledRoles  prometheus.Counter
	notifications    *prometheus.CounterVec

	cacheHitCount        uint64
	cacheMissCount       uint64
	requestCount         uint64
	requestDurationTotal uint64
	sweepCount           uint64
	sweepFailureCount    uint64
	activatedCount       uint64
	completedCount       uint64
	assignedCount        uint64
	filledCount          uint64
	lastSweepUnixNano    int64
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

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_latency_seconds",
		Help:    "Latency for cache operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheWrite := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_write_seconds",
		Help:    "Latency for cache set operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheHitRatio := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cache_hit_ratio",
		Help: "Ratio of cache hits to total cache lookups",
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	sweepDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "stage_sweep_duration_seconds",
		Help:    "Duration of periodic stage sweeps",
		Buckets: prometheus.DefBuckets,
	})

	sweepFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "stage_sweep_failures_total",
		Help: "Stages that failed to advance during a sweep",
	})

	stageTransitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stage_transitions_total",
		Help: "Stage status transitions by target status",
	}, []string{"to"})

	autoAssigned := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "auto_assigned_students_total",
		Help: "Students placed into teams by the auto-assignment sweep",
	})

	autoFilledRoles := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "auto_filled_roles_total",
		Help: "Required division roles filled by the auto-assignment sweep",
	})

	notifications := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notifications_total",
		Help: "Notifications handed to the dispatcher by outcome",
	}, []string{"outcome"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheLatency, cacheWrite, cacheHitRatio, cacheHits, cacheMisses,
		sweepDuration, sweepFailures, stageTransitions, autoAssigned, autoFilledRoles, notifications, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:         registry,
		handler:          handler,
		requestDuration:  requestDuration,
		requestTotal:     requestTotal,
		cacheLatency:     cacheLatency,
		cacheWrite:       cacheWrite,
		cacheHitRatio:    cacheHitRatio,
		cacheHits:        cacheHits,
		cacheMisses:      cacheMisses,
		sweepDuration:    sweepDuration,
		sweepFailures:    sweepFailures,
		stageTransitions: stageTransitions,
		autoAssigned:     autoAssigned,
		autoFilledRoles:  autoFilledRoles,
		notifications:    notifications,
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

// ObserveHTTPRequest records request metrics and aggregates simple stats for snapshots.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
	atomic.AddUint64(&m.requestDurationTotal, uint64(duration.Nanoseconds()))
}

// RecordCacheOperation records cache hit/miss metrics and updates hit ratio.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	if m.cacheLatency != nil {
		m.cacheLatency.Observe(duration.Seconds())
	}
	if hit {
		m.cacheHits.Inc()
		atomic.AddUint64(&m.cacheHitCount, 1)
	} else {
		m.cacheMisses.Inc()
		atomic.AddUint64(&m.cacheMissCount, 1)
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	total := hits + misses
	if total > 0 {
		m.cacheHitRatio.Set(float64(hits) / float64(total))
	}
}

// ObserveCacheWrite tracks the duration for cache write operations.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil || m.cacheWrite == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// ObserveSweep records one completed stage sweep.
func (m *MetricsService) ObserveSweep(result SweepResult, duration time.Duration) {
	if m == nil {
		return
	}
	m.sweepDuration.Observe(duration.Seconds())
	atomic.AddUint64(&m.sweepCount, 1)
	atomic.StoreInt64(&m.lastSweepUnixNano, time.Now().UnixNano())
	if result.Failed > 0 {
		m.sweepFailures.Add(float64(result.Failed))
		atomic.AddUint64(&m.sweepFailureCount, uint64(result.Failed))
	}
}

// RecordStageTransition counts a stage entering status to.
func (m *MetricsService) RecordStageTransition(to models.StageStatus) {
	if m == nil {
		return
	}
	m.stageTransitions.WithLabelValues(string(to)).Inc()
	switch to {
	case models.StageStatusActive:
		atomic.AddUint64(&m.activatedCount, 1)
	case models.StageStatusCompleted:
		atomic.AddUint64(&m.completedCount, 1)
	}
}

// RecordAutoAssigned counts students placed by the ungrouped-student sweep.
func (m *MetricsService) RecordAutoAssigned(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.autoAssigned.Add(float64(n))
	atomic.AddUint64(&m.assignedCount, uint64(n))
}

// RecordAutoFilledRoles counts roles filled by the required-role sweep.
func (m *MetricsService) RecordAutoFilledRoles(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.autoFilledRoles.Add(float64(n))
	atomic.AddUint64(&m.filledCount, uint64(n))
}

// RecordNotification counts dispatcher outcomes: queued, dropped, stored or failed.
func (m *MetricsService) RecordNotification(outcome string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(outcome).Inc()
}

// Snapshot returns aggregated metrics suitable for the status endpoint.
func (m *MetricsService) Snapshot() models.WorkflowMetrics {
	if m == nil {
		return models.WorkflowMetrics{}
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	requests := atomic.LoadUint64(&m.requestCount)
	reqDuration := atomic.LoadUint64(&m.requestDurationTotal)

	var cacheRatio float64
	if totalLookups := hits + misses; totalLookups > 0 {
		cacheRatio = float64(hits) / float64(totalLookups)
	}

	var avgRequestMs float64
	if requests > 0 {
		avgRequestMs = float64(reqDuration) / float64(requests) / float64(time.Millisecond)
	}

	var lastSweep time.Time
	if ns := atomic.LoadInt64(&m.lastSweepUnixNano); ns > 0 {
		lastSweep = time.Unix(0, ns).UTC()
	}

	return models.WorkflowMetrics{
		RequestsTotal:            requests,
		AverageRequestDurationMs: avgRequestMs,
		CacheHitRatio:            cacheRatio,
		StageSweeps:              atomic.LoadUint64(&m.sweepCount),
		StageSweepFailures:       atomic.LoadUint64(&m.sweepFailureCount),
		StagesActivated:          atomic.LoadUint64(&m.activatedCount),
		StagesCompleted:          atomic.LoadUint64(&m.completedCount),
		AutoAssignedStudents:     atomic.LoadUint64(&m.assignedCount),
		AutoFilledRoles:          atomic.LoadUint64(&m.filledCount),
		LastSweepAt:              lastSweep,
		Goroutines:               runtime.NumGoroutine(),
		GeneratedAt:              time.Now().UTC(),
	}
}
