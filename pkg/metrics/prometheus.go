// Package metrics provides Prometheus metrics for the Skill Navigator services.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// latencyBucketsMs covers fast in-memory handlers up to slow generative calls.
var latencyBucketsMs = []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000, 60000} //nolint:gochecknoglobals // static bucket layout

// Manager manages all Prometheus metrics for a service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	registry         prometheus.Registerer

	// Enrollment metrics
	allocations     *prometheus.CounterVec
	batchSize       *prometheus.GaugeVec
	totalCandidates prometheus.Gauge
	progressUpdates *prometheus.CounterVec
	recommendations *prometheus.CounterVec
	uploadsStored   prometheus.Counter

	// External collaborator metrics
	externalLatency *prometheus.HistogramVec
	externalErrors  *prometheus.CounterVec

	// Sentiment metrics
	predictions *prometheus.CounterVec

	// Job pool metrics
	queueSize       prometheus.Gauge
	queueCapacity   prometheus.Gauge
	queueRejections *prometheus.CounterVec
	workerBusy      prometheus.Gauge
	workerCount     prometheus.Gauge
	jobLatency      prometheus.Histogram

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorRateByEndpoint *prometheus.CounterVec
	errorRateByType     *prometheus.CounterVec

	// System metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "skillnav",
		subsystem:        "service",
		histogramBuckets: latencyBucketsMs,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		registry:         prometheus.NewRegistry(),
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)

	m.allocations = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "allocations_total",
		Help:      "Allocation attempts by target batch and outcome",
	}, []string{"batch", "outcome"})

	m.batchSize = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "batch_size",
		Help:      "Current number of candidates enrolled per batch",
	}, []string{"batch"})

	m.totalCandidates = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "total_candidates",
		Help:      "Total number of enrolled candidates",
	})

	m.progressUpdates = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "progress_updates_total",
		Help:      "Progress mutations by kind and outcome",
	}, []string{"kind", "outcome"})

	m.recommendations = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "recommendations_total",
		Help:      "Rule-based recommendations served by focus area",
	}, []string{"focus_area"})

	m.uploadsStored = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "uploads_stored_total",
		Help:      "Uploaded attachment files written to blob storage",
	})

	m.externalLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "external_call_duration_milliseconds",
		Help:      "Latency of calls to external collaborators",
		Buckets:   m.histogramBuckets,
	}, []string{"collaborator", "outcome"})

	m.externalErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "external_call_errors_total",
		Help:      "Failed calls to external collaborators",
	}, []string{"collaborator"})

	m.predictions = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sentiment_predictions_total",
		Help:      "Sentiment predictions by label",
	}, []string{"label"})

	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "job_queue_size",
		Help:      "Current number of queued jobs",
	})

	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "job_queue_capacity",
		Help:      "Maximum number of queued jobs",
	})

	m.queueRejections = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "job_queue_rejections_total",
		Help:      "Jobs rejected by the queue by reason",
	}, []string{"reason"})

	m.workerBusy = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_busy",
		Help:      "Workers currently executing a job",
	})

	m.workerCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_count",
		Help:      "Configured number of workers",
	})

	m.jobLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "job_duration_milliseconds",
		Help:      "End-to-end job execution time",
		Buckets:   m.histogramBuckets,
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests by endpoint and method",
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "HTTP request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.errorRateByEndpoint = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "errors_by_endpoint_total",
		Help:      "HTTP errors by endpoint, method and error type",
	}, []string{"endpoint", "method", "error_type"})

	m.errorRateByType = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "errors_by_type_total",
		Help:      "Errors by type and severity",
	}, []string{"error_type", "severity"})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_bytes",
		Help:      "Allocated heap memory in bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutines",
		Help:      "Current number of goroutines",
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_gc_pause_milliseconds",
		Help:      "Average GC pause time in milliseconds",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 50},
	})
}

// Enrollment helpers.

// RecordAllocation records an allocation attempt for batch with outcome
// "allocated", "batch_full", "no_match" or "duplicate".
func RecordAllocation(batch, outcome string) {
	if !globalManager.enabled {
		return
	}
	globalManager.allocations.WithLabelValues(batch, outcome).Inc()
}

// UpdateBatchSize sets the current size of batch.
func UpdateBatchSize(batch string, size int) {
	if !globalManager.enabled {
		return
	}
	globalManager.batchSize.WithLabelValues(batch).Set(float64(size))
}

// UpdateTotalCandidates sets the total candidate count.
func UpdateTotalCandidates(count int) {
	if !globalManager.enabled {
		return
	}
	globalManager.totalCandidates.Set(float64(count))
}

// RecordProgressUpdate records a progress mutation of kind with outcome.
func RecordProgressUpdate(kind, outcome string) {
	if !globalManager.enabled {
		return
	}
	globalManager.progressUpdates.WithLabelValues(kind, outcome).Inc()
}

// RecordRecommendation records a served recommendation; an empty focus area is "none".
func RecordRecommendation(focusArea string) {
	if !globalManager.enabled {
		return
	}
	if focusArea == "" {
		focusArea = "none"
	}
	globalManager.recommendations.WithLabelValues(focusArea).Inc()
}

// RecordUploadStored increments the stored upload counter.
func RecordUploadStored() {
	if !globalManager.enabled {
		return
	}
	globalManager.uploadsStored.Inc()
}

// External collaborator helpers.

// RecordExternalCall records the latency of a collaborator call; failures also
// increment the error counter.
func RecordExternalCall(collaborator string, latencyMs float64, err error) {
	if !globalManager.enabled {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
		globalManager.externalErrors.WithLabelValues(collaborator).Inc()
	}
	globalManager.externalLatency.WithLabelValues(collaborator, outcome).Observe(latencyMs)
}

// RecordPrediction records a classifier prediction.
func RecordPrediction(label string) {
	if !globalManager.enabled {
		return
	}
	globalManager.predictions.WithLabelValues(label).Inc()
}

// Job pool helpers.

// UpdateQueueSize sets the number of queued jobs.
func UpdateQueueSize(size int) {
	if !globalManager.enabled {
		return
	}
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the queue capacity.
func UpdateQueueCapacity(capacity int) {
	if !globalManager.enabled {
		return
	}
	globalManager.queueCapacity.Set(float64(capacity))
}

// RecordQueueRejection records a rejected enqueue with reason.
func RecordQueueRejection(reason string) {
	if !globalManager.enabled {
		return
	}
	globalManager.queueRejections.WithLabelValues(reason).Inc()
}

// AddWorkerBusy adjusts the busy worker gauge by delta.
func AddWorkerBusy(delta int) {
	if !globalManager.enabled {
		return
	}
	globalManager.workerBusy.Add(float64(delta))
}

// UpdateWorkerCount sets the configured worker count.
func UpdateWorkerCount(count int) {
	if !globalManager.enabled {
		return
	}
	globalManager.workerCount.Set(float64(count))
}

// RecordJobLatency records job execution time.
func RecordJobLatency(latencyMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.jobLatency.Observe(latencyMs)
}

// HTTP helpers.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	if !globalManager.enabled {
		return
	}
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByEndpoint records an error for an endpoint.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	if !globalManager.enabled {
		return
	}
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorByType records an error by type and severity.
func RecordErrorByType(errorType, severity string) {
	if !globalManager.enabled {
		return
	}
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// System helpers.

// UpdateSystemMemoryUsage sets allocated heap bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	if !globalManager.enabled {
		return
	}
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine count.
func UpdateSystemGoroutineCount(count int) {
	if !globalManager.enabled {
		return
	}
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records the average GC pause.
func RecordSystemGCPauseTime(pauseMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the registry backing the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// SetSubsystem rebuilds the global manager under a service-specific subsystem
// on a fresh registry. Call it once during start-up, before serving traffic.
func SetSubsystem(subsystem string) {
	customRegistry = prometheus.NewRegistry()
	globalManager = NewManager(WithSubsystem(subsystem), WithPrometheusRegistry(customRegistry))
}

// Disable turns all recording helpers into no-ops.
func Disable() {
	globalManager.enabled = false
}
