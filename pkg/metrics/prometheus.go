// Package metrics provides Prometheus metrics for the discovery service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Engine label values.
const (
	EngineFeed     = "feed"
	EngineSearch   = "search"
	EngineTrending = "trending"
)

// Manager owns every Prometheus collector of the discovery service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Engine metrics
	engineRequests  *prometheus.CounterVec
	engineLatency   *prometheus.HistogramVec
	itemsScored     *prometheus.CounterVec
	missingTS       prometheus.Counter
	searchMatches   prometheus.Histogram
	rejectedInputs  *prometheus.CounterVec
	velocityClamped prometheus.Counter

	// Interest profile metrics
	interactions          *prometheus.CounterVec
	interactionDuplicates prometheus.Counter
	profileCategories     prometheus.Gauge

	// Snapshot metrics
	snapshotDuration prometheus.Histogram
	snapshotCount    *prometheus.CounterVec

	// Queue and worker metrics
	queueSize     prometheus.Gauge
	queueCapacity prometheus.Gauge
	queueRejected *prometheus.CounterVec
	workerCount   prometheus.Gauge
	workerErrors  prometheus.Counter
	workerLatency prometheus.Histogram

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpErrors          *prometheus.CounterVec

	// Runtime metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

var globalManager *Manager //nolint:gochecknoglobals // singleton used by package-level helpers

// customRegistry keeps the default Go collectors out of /healthz.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // process-wide registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "discovery",
		subsystem:        "engine",
		histogramBuckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50, 100, 250},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	if buckets == nil {
		buckets = m.histogramBuckets
	}
	return prometheus.HistogramOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, Buckets: buckets, ConstLabels: m.constLabels}
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.engineRequests = auto.NewCounterVec(m.counterOpts("requests_total", "Engine invocations by engine"), []string{"engine"})
	m.engineLatency = auto.NewHistogramVec(m.histogramOpts("latency_milliseconds", "Engine latency in milliseconds", nil), []string{"engine"})
	m.itemsScored = auto.NewCounterVec(m.counterOpts("items_scored_total", "Content items scored by engine"), []string{"engine"})
	m.missingTS = auto.NewCounter(m.counterOpts("missing_timestamp_total", "Items ranked without a creation timestamp (defaulted to now)"))
	m.searchMatches = auto.NewHistogram(m.histogramOpts("search_matches", "Number of items kept per search",
		[]float64{0, 1, 5, 10, 50, 100, 500, 1000, 5000, 10000}))
	m.rejectedInputs = auto.NewCounterVec(m.counterOpts("rejected_inputs_total", "Inputs rejected at the boundary by reason"), []string{"reason"})
	m.velocityClamped = auto.NewCounter(m.counterOpts("velocity_clamped_total", "Velocity estimates clamped up to 1.0"))

	m.interactions = auto.NewCounterVec(m.counterOpts("interactions_total", "Interactions applied to the interest profile by kind"), []string{"kind"})
	m.interactionDuplicates = auto.NewCounter(m.counterOpts("interactions_duplicate_total", "Duplicate interaction events dropped"))
	m.profileCategories = auto.NewGauge(m.gaugeOpts("profile_categories", "Categories tracked by the interest profile"))

	m.snapshotDuration = auto.NewHistogram(m.histogramOpts("snapshot_duration_milliseconds", "Profile snapshot write/load duration", nil))
	m.snapshotCount = auto.NewCounterVec(m.counterOpts("snapshots_total", "Profile snapshots by operation and result"), []string{"op", "result"})

	m.queueSize = auto.NewGauge(m.gaugeOpts("queue_size", "Interactions waiting in the ingestion queue"))
	m.queueCapacity = auto.NewGauge(m.gaugeOpts("queue_capacity", "Capacity of the ingestion queue"))
	m.queueRejected = auto.NewCounterVec(m.counterOpts("queue_rejected_total", "Interactions rejected by the queue by reason"), []string{"reason"})
	m.workerCount = auto.NewGauge(m.gaugeOpts("worker_count", "Interaction workers running"))
	m.workerErrors = auto.NewCounter(m.counterOpts("worker_errors_total", "Interactions a worker failed to apply"))
	m.workerLatency = auto.NewHistogram(m.histogramOpts("worker_latency_milliseconds", "Per-interaction worker latency", nil))

	m.httpRequests = auto.NewCounterVec(m.counterOpts("http_requests_total", "HTTP requests by endpoint, method and status"),
		[]string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds", nil),
		[]string{"endpoint", "method", "status_code"})
	m.httpErrors = auto.NewCounterVec(m.counterOpts("http_errors_total", "HTTP error responses by endpoint and error type"),
		[]string{"endpoint", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_usage_bytes", "Heap bytes allocated"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutine_count", "Number of goroutines"))
}

// RecordEngineRequest counts one engine call over n items taking latencyMs.
func RecordEngineRequest(engine string, n int, latencyMs float64) {
	globalManager.engineRequests.WithLabelValues(engine).Inc()
	globalManager.itemsScored.WithLabelValues(engine).Add(float64(n))
	globalManager.engineLatency.WithLabelValues(engine).Observe(latencyMs)
}

// RecordMissingTimestamp counts items ranked without a timestamp.
func RecordMissingTimestamp(n int) {
	globalManager.missingTS.Add(float64(n))
}

// RecordSearchMatches observes the size of a search result.
func RecordSearchMatches(n int) {
	globalManager.searchMatches.Observe(float64(n))
}

// RecordRejectedInput counts a boundary rejection.
func RecordRejectedInput(reason string) {
	globalManager.rejectedInputs.WithLabelValues(reason).Inc()
}

// RecordVelocityClamped counts an estimator result raised to the floor.
func RecordVelocityClamped() {
	globalManager.velocityClamped.Inc()
}

// RecordInteraction counts an interaction applied to the profile.
func RecordInteraction(kind string) {
	globalManager.interactions.WithLabelValues(kind).Inc()
}

// RecordInteractionDuplicate counts a dropped duplicate interaction.
func RecordInteractionDuplicate() {
	globalManager.interactionDuplicates.Inc()
}

// UpdateProfileCategories sets the number of tracked categories.
func UpdateProfileCategories(n int) {
	globalManager.profileCategories.Set(float64(n))
}

// RecordSnapshot records a snapshot operation ("load" or "write").
func RecordSnapshot(op string, err error, latencyMs float64) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	globalManager.snapshotCount.WithLabelValues(op, result).Inc()
	globalManager.snapshotDuration.Observe(latencyMs)
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// RecordQueueRejected counts an enqueue rejection.
func RecordQueueRejected(reason string) {
	globalManager.queueRejected.WithLabelValues(reason).Inc()
}

// UpdateWorkerCount sets the number of running workers.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// RecordWorkerError counts a worker failure.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// RecordWorkerLatency observes per-interaction worker latency.
func RecordWorkerLatency(latencyMs float64) {
	globalManager.workerLatency.Observe(latencyMs)
}

// RecordHTTPRequest records an HTTP request and its duration.
func RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordHTTPError records an HTTP error response.
func RecordHTTPError(endpoint, errorType string) {
	globalManager.httpErrors.WithLabelValues(endpoint, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the heap allocation in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
