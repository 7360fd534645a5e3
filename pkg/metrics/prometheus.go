// Package metrics provides Prometheus metrics for the Kairyx analytics service.
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

// Manager manages all Prometheus metrics for the Kairyx service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Pipeline Metrics - Ingestion and normalization throughput
	eventsIngested   prometheus.Counter
	eventsNormalized prometheus.Counter
	eventsDropped    prometheus.Counter
	normalizeLatency prometheus.Histogram

	// Import Job Metrics - Export/import lifecycle
	importJobsStarted   prometheus.Counter
	importJobsCompleted prometheus.Counter
	importJobsFailed    prometheus.Counter
	importJobDuration   prometheus.Histogram

	// Profile Metrics - Player model construction
	profilesBuilt  prometheus.Counter
	profileLatency prometheus.Histogram

	// AI Metrics - Model call health and churn outcomes
	aiCalls        *prometheus.CounterVec
	aiLatency      *prometheus.HistogramVec
	aiFallbacks    prometheus.Counter
	aiThrottleWait prometheus.Histogram
	churnEstimates *prometheus.CounterVec

	// Cohort Metrics - Segmentation outcomes
	cohortSize       *prometheus.GaugeVec
	cohortUnassigned prometheus.Counter
	segmentationRuns prometheus.Counter

	// Engagement Metrics - Action dispatch and feedback
	actionsDispatched *prometheus.CounterVec
	actionFailures    prometheus.Counter
	feedbackRecorded  *prometheus.CounterVec

	// Warehouse Metrics - Stored event volumes and access latency
	warehouseEvents       prometheus.Gauge
	warehousePlayers      prometheus.Gauge
	warehouseWriteLatency prometheus.Histogram
	warehouseQueryLatency prometheus.Histogram

	// Lake Metrics - Raw blob storage
	lakeObjectsWritten prometheus.Counter
	lakeBytesWritten   prometheus.Counter

	// Queue Metrics - Import notification queue
	queueSize              prometheus.Gauge
	queueCapacity          prometheus.Gauge
	queueUtilization       prometheus.Gauge
	queueEnqueueRate       prometheus.Counter
	queueDequeueRate       prometheus.Counter
	queueEnqueueErrors     prometheus.Counter
	queueProcessingLatency prometheus.Histogram

	// Worker Metrics - Import worker pool
	workerCount             prometheus.Gauge
	workerActiveCount       prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrorRate         prometheus.Counter

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// System Performance Metrics
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
		namespace:        "kairyx",
		subsystem:        "analytics",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		metricPrefix:     "",
		registry:         prometheus.DefaultRegisterer,
	}

	// Apply all options
	for _, opt := range opts {
		opt(m)
	}

	// Initialize metrics
	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	// Ensure metrics are registered on the configured registry (custom by default)
	auto := promauto.With(m.registry)

	// Pipeline Metrics - Ingestion and normalization throughput
	m.eventsIngested = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "events_ingested_total",
		Help:      "Total number of raw events accepted for import",
	})

	m.eventsNormalized = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "events_normalized_total",
		Help:      "Total number of events mapped to the normalized taxonomy",
	})

	m.eventsDropped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "events_dropped_total",
		Help:      "Total number of events discarded during normalization (missing identity or timestamp)",
	})

	m.normalizeLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "normalize_latency_milliseconds",
		Help:      "Histogram of batch normalization latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	// Import Job Metrics - Export/import lifecycle
	m.importJobsStarted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "import_jobs_started_total",
		Help:      "Total number of import jobs kicked off",
	})

	m.importJobsCompleted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "import_jobs_completed_total",
		Help:      "Total number of import jobs that reached the ready state",
	})

	m.importJobsFailed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "import_jobs_failed_total",
		Help:      "Total number of import jobs that ended in failure",
	})

	m.importJobDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "import_job_duration_milliseconds",
		Help:      "End-to-end import job duration in milliseconds",
		Buckets:   []float64{10, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000, 60000},
	})

	// Profile Metrics - Player model construction
	m.profilesBuilt = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "profiles_built_total",
		Help:      "Total number of player profiles reconstructed from events",
	})

	m.profileLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "profile_latency_milliseconds",
		Help:      "Histogram of profile construction latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	// AI Metrics - Model call health and churn outcomes
	m.aiCalls = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "ai_calls_total",
			Help:      "Total number of AI model calls by provider and outcome",
		},
		[]string{"provider", "outcome"},
	)

	m.aiLatency = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "ai_latency_milliseconds",
			Help:      "AI model call latency in milliseconds by provider",
			Buckets:   []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000, 20000},
		},
		[]string{"provider"},
	)

	m.aiFallbacks = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ai_fallbacks_total",
		Help:      "Total number of AI responses replaced by the deterministic fallback",
	})

	m.aiThrottleWait = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ai_throttle_wait_milliseconds",
		Help:      "Time spent waiting on the AI rate limiter in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.churnEstimates = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "churn_estimates_total",
			Help:      "Total number of churn estimates produced by risk level",
		},
		[]string{"risk"},
	)

	// Cohort Metrics - Segmentation outcomes
	m.cohortSize = auto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "cohort_size",
			Help:      "Number of players assigned to each cohort in the latest run",
		},
		[]string{"cohort"},
	)

	m.cohortUnassigned = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cohort_unassigned_total",
		Help:      "Total number of players that matched no cohort rule",
	})

	m.segmentationRuns = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "segmentation_runs_total",
		Help:      "Total number of cohort segmentation runs",
	})

	// Engagement Metrics - Action dispatch and feedback
	m.actionsDispatched = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "actions_dispatched_total",
			Help:      "Total number of engagement actions dispatched by channel",
		},
		[]string{"channel"},
	)

	m.actionFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "action_failures_total",
		Help:      "Total number of engagement actions that failed validation or dispatch",
	})

	m.feedbackRecorded = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "feedback_recorded_total",
			Help:      "Total number of player responses recorded by response type",
		},
		[]string{"response"},
	)

	// Warehouse Metrics - Stored event volumes and access latency
	m.warehouseEvents = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "warehouse_events",
		Help:      "Current number of normalized events held in the warehouse",
	})

	m.warehousePlayers = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "warehouse_players",
		Help:      "Current number of distinct players known to the warehouse",
	})

	m.warehouseWriteLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "warehouse_write_latency_milliseconds",
		Help:      "Warehouse batch write latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.warehouseQueryLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "warehouse_query_latency_milliseconds",
		Help:      "Warehouse query latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	// Lake Metrics - Raw blob storage
	m.lakeObjectsWritten = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "lake_objects_written_total",
		Help:      "Total number of raw event blobs written to the lake",
	})

	m.lakeBytesWritten = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "lake_bytes_written_total",
		Help:      "Total bytes written to the lake",
	})

	// Queue Metrics - Import notification queue
	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_size",
		Help:      "Current size of the import notification queue (backlog indicator)",
	})

	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_capacity",
		Help:      "Maximum capacity of the import notification queue",
	})

	m.queueUtilization = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_utilization_ratio",
		Help:      "Queue utilization as a ratio of size to capacity",
	})

	m.queueEnqueueRate = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_enqueue_total",
		Help:      "Total number of notifications enqueued",
	})

	m.queueDequeueRate = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_dequeue_total",
		Help:      "Total number of notifications dequeued",
	})

	m.queueEnqueueErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_enqueue_errors_total",
		Help:      "Total number of enqueue failures (queue full or closed)",
	})

	m.queueProcessingLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_processing_latency_milliseconds",
		Help:      "Time from enqueue to dequeue in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	// Worker Metrics - Import worker pool
	m.workerCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_count",
		Help:      "Configured number of import workers (processing capacity)",
	})

	m.workerActiveCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_active_count",
		Help:      "Number of workers currently processing a notification",
	})

	m.workerProcessingLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_processing_latency_milliseconds",
		Help:      "Worker processing latency per notification in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.workerErrorRate = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_errors_total",
		Help:      "Total number of worker errors",
	})

	// HTTP Performance Metrics - User experience indicators
	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint and method",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds (user experience)",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	// System Performance Metrics
	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_usage_bytes",
		Help:      "System memory usage in bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutine_count",
		Help:      "Number of goroutines",
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_gc_pause_time_milliseconds",
		Help:      "GC pause time in milliseconds",
		Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
	})
}

// RecordEventIngested adds to the raw events ingested counter.
func RecordEventIngested(count int) {
	globalManager.eventsIngested.Add(float64(count))
}

// RecordEventNormalized adds to the normalized events counter.
func RecordEventNormalized(count int) {
	globalManager.eventsNormalized.Add(float64(count))
}

// RecordEventDropped adds to the dropped events counter.
func RecordEventDropped(count int) {
	globalManager.eventsDropped.Add(float64(count))
}

// RecordNormalizeLatency records batch normalization latency in milliseconds.
func RecordNormalizeLatency(latencyMs float64) {
	globalManager.normalizeLatency.Observe(latencyMs)
}

// Import Job Metrics Functions.

// RecordImportJobStarted increments the started import jobs counter.
func RecordImportJobStarted() {
	globalManager.importJobsStarted.Inc()
}

// RecordImportJobCompleted increments the completed import jobs counter.
func RecordImportJobCompleted() {
	globalManager.importJobsCompleted.Inc()
}

// RecordImportJobFailed increments the failed import jobs counter.
func RecordImportJobFailed() {
	globalManager.importJobsFailed.Inc()
}

// RecordImportJobDuration records end-to-end import job duration in milliseconds.
func RecordImportJobDuration(durationMs float64) {
	globalManager.importJobDuration.Observe(durationMs)
}

// Profile Metrics Functions.

// RecordProfileBuilt increments the profiles built counter.
func RecordProfileBuilt() {
	globalManager.profilesBuilt.Inc()
}

// RecordProfileLatency records profile construction latency in milliseconds.
func RecordProfileLatency(latencyMs float64) {
	globalManager.profileLatency.Observe(latencyMs)
}

// AI Metrics Functions.

// RecordAICall records an AI model call with its outcome (ok, error, timeout, invalid).
func RecordAICall(provider, outcome string) {
	globalManager.aiCalls.WithLabelValues(provider, outcome).Inc()
}

// RecordAILatency records AI call latency in milliseconds for a provider.
func RecordAILatency(provider string, latencyMs float64) {
	globalManager.aiLatency.WithLabelValues(provider).Observe(latencyMs)
}

// RecordAIFallback increments the deterministic fallback counter.
func RecordAIFallback() {
	globalManager.aiFallbacks.Inc()
}

// RecordAIThrottleWait records time spent waiting on the AI rate limiter.
func RecordAIThrottleWait(waitMs float64) {
	globalManager.aiThrottleWait.Observe(waitMs)
}

// RecordChurnEstimate increments the churn estimate counter for a risk level.
func RecordChurnEstimate(risk string) {
	globalManager.churnEstimates.WithLabelValues(risk).Inc()
}

// Cohort Metrics Functions.

// UpdateCohortSize sets the player count for a cohort.
func UpdateCohortSize(cohort string, size int) {
	globalManager.cohortSize.WithLabelValues(cohort).Set(float64(size))
}

// RecordCohortUnassigned adds to the unassigned players counter.
func RecordCohortUnassigned(count int) {
	globalManager.cohortUnassigned.Add(float64(count))
}

// RecordSegmentationRun increments the segmentation runs counter.
func RecordSegmentationRun() {
	globalManager.segmentationRuns.Inc()
}

// Engagement Metrics Functions.

// RecordActionDispatched increments the dispatched actions counter for a channel.
func RecordActionDispatched(channel string) {
	globalManager.actionsDispatched.WithLabelValues(channel).Inc()
}

// RecordActionFailure increments the failed actions counter.
func RecordActionFailure() {
	globalManager.actionFailures.Inc()
}

// RecordFeedback increments the feedback counter for a response type.
func RecordFeedback(response string) {
	globalManager.feedbackRecorded.WithLabelValues(response).Inc()
}

// Warehouse Metrics Functions.

// UpdateWarehouseEvents sets the current warehouse event count.
func UpdateWarehouseEvents(count int) {
	globalManager.warehouseEvents.Set(float64(count))
}

// UpdateWarehousePlayers sets the current distinct player count.
func UpdateWarehousePlayers(count int) {
	globalManager.warehousePlayers.Set(float64(count))
}

// RecordWarehouseWriteLatency records warehouse write latency in milliseconds.
func RecordWarehouseWriteLatency(latencyMs float64) {
	globalManager.warehouseWriteLatency.Observe(latencyMs)
}

// RecordWarehouseQueryLatency records warehouse query latency in milliseconds.
func RecordWarehouseQueryLatency(latencyMs float64) {
	globalManager.warehouseQueryLatency.Observe(latencyMs)
}

// Lake Metrics Functions.

// RecordLakeObjectWritten records a blob written to the lake with its size.
func RecordLakeObjectWritten(sizeBytes int) {
	globalManager.lakeObjectsWritten.Inc()
	globalManager.lakeBytesWritten.Add(float64(sizeBytes))
}

// Queue Metrics Functions.

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueueRate.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeueRate.Inc()
}

// RecordQueueEnqueueError increments the enqueue errors counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// RecordQueueProcessingLatency records enqueue-to-dequeue latency in milliseconds.
func RecordQueueProcessingLatency(latencyMs float64) {
	globalManager.queueProcessingLatency.Observe(latencyMs)
}

// Worker Metrics Functions.

// UpdateWorkerCount sets the configured worker count.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// UpdateWorkerActiveCount sets the number of workers currently busy.
func UpdateWorkerActiveCount(count int) {
	globalManager.workerActiveCount.Set(float64(count))
}

// RecordWorkerProcessingLatency records worker processing latency in milliseconds.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker errors counter.
func RecordWorkerError() {
	globalManager.workerErrorRate.Inc()
}

// HTTP Metrics Functions.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// System Metrics Functions.

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine count.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records a GC pause in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
