// Package metrics provides Prometheus metrics for the rankings client.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the rankings client.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Backend traffic
	backendRequests        *prometheus.CounterVec
	backendRequestDuration *prometheus.HistogramVec
	backendRetries         *prometheus.CounterVec

	// Fetch scheduler
	fetchesScheduled   prometheus.Counter
	fetchesDispatched  *prometheus.CounterVec
	fetchesStale       prometheus.Counter
	fetchesFailed      *prometheus.CounterVec
	fetchLatency       prometheus.Histogram
	debounceCancelled  *prometheus.CounterVec
	loading            prometheus.Gauge
	datasetSize        prometheus.Gauge
	materializeLatency prometheus.Histogram
	resultRows         prometheus.Gauge

	// Session cache
	sessionCacheHits   *prometheus.CounterVec
	sessionCacheMisses *prometheus.CounterVec

	// Intent queue and dispatcher
	queueCapacity          prometheus.Gauge
	queueSize              prometheus.Gauge
	queueEnqueued          prometheus.Counter
	queueDequeued          prometheus.Counter
	queueEnqueueErrors     prometheus.Counter
	intentsProcessed       *prometheus.CounterVec
	intentLatency          prometheus.Histogram

	// Errors
	errorRateByComponent *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec
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
		namespace:        "xcri",
		subsystem:        "rankings",
		histogramBuckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		constLabels:      prometheus.Labels{},
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	})
}

func (m *Manager) histogram(name, help string) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	})
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	m.backendRequests = m.counterVec("backend_requests_total",
		"Total number of ranking backend requests by endpoint and status", "endpoint", "status_code")
	m.backendRequestDuration = promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "backend_request_duration_milliseconds",
		Help:        "Ranking backend request duration in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, []string{"endpoint", "status_code"})
	m.backendRetries = m.counterVec("backend_retries_total",
		"Total number of retried backend requests", "endpoint")

	m.fetchesScheduled = m.counter("fetches_scheduled_total",
		"Total number of list fetches scheduled after a filter change")
	m.fetchesDispatched = m.counterVec("fetches_dispatched_total",
		"Total number of list fetches sent to the backend by view", "view")
	m.fetchesStale = m.counter("fetches_stale_total",
		"Total number of list responses discarded because the filters moved on")
	m.fetchesFailed = m.counterVec("fetches_failed_total",
		"Total number of list fetches that ended in an error state", "kind")
	m.fetchLatency = m.histogram("fetch_latency_milliseconds",
		"Time from dispatch to applied list response in milliseconds")
	m.debounceCancelled = m.counterVec("debounce_cancelled_total",
		"Total number of pending debounced actions replaced before firing", "timer")
	m.loading = m.gauge("loading",
		"1 while a list fetch is pending or in flight")
	m.datasetSize = m.gauge("dataset_size",
		"Number of records in the current raw dataset")
	m.materializeLatency = promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "materialize_latency_microseconds",
		Help:        "Client-side search and pagination latency in microseconds",
		Buckets:     []float64{10, 50, 100, 500, 1000, 5000, 10000, 50000},
		ConstLabels: m.constLabels,
	})
	m.resultRows = m.gauge("result_rows",
		"Number of rows on the currently materialized page")

	m.sessionCacheHits = m.counterVec("session_cache_hits_total",
		"Total number of session cache hits", "store")
	m.sessionCacheMisses = m.counterVec("session_cache_misses_total",
		"Total number of session cache misses", "store")

	m.queueCapacity = m.gauge("intent_queue_capacity", "Maximum intent queue capacity")
	m.queueSize = m.gauge("intent_queue_size", "Current number of queued intents")
	m.queueEnqueued = m.counter("intent_queue_enqueued_total", "Total number of intents enqueued")
	m.queueDequeued = m.counter("intent_queue_dequeued_total", "Total number of intents dequeued")
	m.queueEnqueueErrors = m.counter("intent_queue_enqueue_errors_total", "Total number of rejected intents")
	m.intentsProcessed = m.counterVec("intents_processed_total",
		"Total number of intents applied by kind", "kind")
	m.intentLatency = m.histogram("intent_processing_latency_milliseconds",
		"Time to apply a single intent in milliseconds")

	m.errorRateByComponent = m.counterVec("errors_by_component_total",
		"Total number of errors by component", "component", "error_type")
	m.errorRateByType = m.counterVec("errors_by_type_total",
		"Total number of errors by type", "error_type", "severity")
}

// RecordBackendRequest records a backend request and its duration.
func RecordBackendRequest(endpoint, statusCode string, durationMs float64) {
	globalManager.backendRequests.WithLabelValues(endpoint, statusCode).Inc()
	globalManager.backendRequestDuration.WithLabelValues(endpoint, statusCode).Observe(durationMs)
}

// RecordBackendRetry increments the retry counter for an endpoint.
func RecordBackendRetry(endpoint string) {
	globalManager.backendRetries.WithLabelValues(endpoint).Inc()
}

// RecordFetchScheduled increments the scheduled fetch counter.
func RecordFetchScheduled() {
	globalManager.fetchesScheduled.Inc()
}

// RecordFetchDispatched increments the dispatched fetch counter for a view.
func RecordFetchDispatched(view string) {
	globalManager.fetchesDispatched.WithLabelValues(view).Inc()
}

// RecordFetchStale increments the stale response counter.
func RecordFetchStale() {
	globalManager.fetchesStale.Inc()
}

// RecordFetchFailed increments the failed fetch counter for an error kind.
func RecordFetchFailed(kind string) {
	globalManager.fetchesFailed.WithLabelValues(kind).Inc()
}

// RecordFetchLatency records list fetch latency in milliseconds.
func RecordFetchLatency(latencyMs float64) {
	globalManager.fetchLatency.Observe(latencyMs)
}

// RecordDebounceCancelled increments the replaced debounce counter for a timer.
func RecordDebounceCancelled(timer string) {
	globalManager.debounceCancelled.WithLabelValues(timer).Inc()
}

// UpdateLoading sets the loading gauge.
func UpdateLoading(loading bool) {
	if loading {
		globalManager.loading.Set(1)
		return
	}
	globalManager.loading.Set(0)
}

// UpdateDatasetSize sets the raw dataset size.
func UpdateDatasetSize(size int) {
	globalManager.datasetSize.Set(float64(size))
}

// RecordMaterialize records materialize latency and the resulting page size.
func RecordMaterialize(latencyUs float64, rows int) {
	globalManager.materializeLatency.Observe(latencyUs)
	globalManager.resultRows.Set(float64(rows))
}

// RecordSessionCacheHit increments the hit counter for a store.
func RecordSessionCacheHit(store string) {
	globalManager.sessionCacheHits.WithLabelValues(store).Inc()
}

// RecordSessionCacheMiss increments the miss counter for a store.
func RecordSessionCacheMiss(store string) {
	globalManager.sessionCacheMisses.WithLabelValues(store).Inc()
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueued.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeued.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// RecordIntentProcessed records an applied intent and how long it took.
func RecordIntentProcessed(kind string, latencyMs float64) {
	globalManager.intentsProcessed.WithLabelValues(kind).Inc()
	globalManager.intentLatency.Observe(latencyMs)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
