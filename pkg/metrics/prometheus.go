// Package metrics provides Prometheus metrics for the house price scorer.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Score request outcomes used as the "outcome" label.
const (
	OutcomeOK       = "ok"
	OutcomeInvalid  = "invalid"
	OutcomeNotReady = "not_ready"
	OutcomeError    = "error"
)

// Manager manages all Prometheus metrics for the scorer.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Scoring metrics
	scoreRequests     *prometheus.CounterVec
	rowsScored        prometheus.Counter
	predictionLatency prometheus.Histogram
	validationErrors  prometheus.Counter
	predictionErrors  prometheus.Counter

	// Model lifecycle metrics
	modelLoadDuration prometheus.Histogram
	modelInfo         *prometheus.GaugeVec
	modelReady        prometheus.Gauge

	// Prediction cache metrics
	cacheHits   prometheus.Counter
	cacheMisses prometheus.Counter

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpErrors          *prometheus.CounterVec

	// System metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager registered on the configured registry.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "housescore",
		subsystem:        "scorer",
		histogramBuckets: []float64{0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
		registry:         prometheus.DefaultRegisterer,
	}

	// Apply all options
	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) counter(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) gauge(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.constLabels,
	}
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.scoreRequests = auto.NewCounterVec(
		m.counter("score_requests_total", "Total number of score requests by outcome"),
		[]string{"outcome"},
	)
	m.rowsScored = auto.NewCounter(m.counter("rows_scored_total", "Total number of feature rows scored"))
	m.predictionLatency = auto.NewHistogram(
		m.histogram("prediction_latency_milliseconds", "Model prediction latency per request in milliseconds", m.histogramBuckets),
	)
	m.validationErrors = auto.NewCounter(m.counter("validation_errors_total", "Total number of rejected score requests"))
	m.predictionErrors = auto.NewCounter(m.counter("prediction_errors_total", "Total number of failed model invocations"))

	m.modelLoadDuration = auto.NewHistogram(
		m.histogram("model_load_duration_milliseconds", "Model artifact load duration in milliseconds", m.histogramBuckets),
	)
	m.modelInfo = auto.NewGaugeVec(
		m.gauge("model_info", "Loaded model identity; value is always 1"),
		[]string{"model_name", "model_version", "predictor"},
	)
	m.modelReady = auto.NewGauge(m.gauge("model_ready", "1 once the model is loaded and the scorer accepts requests"))

	m.cacheHits = auto.NewCounter(m.counter("cache_hits_total", "Rows answered from the prediction cache"))
	m.cacheMisses = auto.NewCounter(m.counter("cache_misses_total", "Rows forwarded to the model on cache miss"))

	m.httpRequests = auto.NewCounterVec(
		m.counter("http_requests_total", "Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogram("http_request_duration_milliseconds", "HTTP request duration in milliseconds", m.histogramBuckets),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpErrors = auto.NewCounterVec(
		m.counter("errors_by_endpoint_total", "Total number of errors by endpoint"),
		[]string{"endpoint", "method", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(m.gauge("system_memory_usage_bytes", "System memory usage in bytes"))
	m.systemGoroutineCount = auto.NewGauge(m.gauge("system_goroutine_count", "Number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(
		m.histogram("system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
			[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000}),
	)
}

// RecordScoreRequest counts a score request with the given outcome.
func RecordScoreRequest(outcome string) {
	globalManager.scoreRequests.WithLabelValues(outcome).Inc()
}

// RecordRowsScored adds n to the scored rows counter.
func RecordRowsScored(n int) {
	if n > 0 {
		globalManager.rowsScored.Add(float64(n))
	}
}

// RecordPredictionLatency records model latency in milliseconds.
func RecordPredictionLatency(latencyMs float64) {
	globalManager.predictionLatency.Observe(latencyMs)
}

// RecordValidationError increments the validation errors counter.
func RecordValidationError() {
	globalManager.validationErrors.Inc()
}

// RecordPredictionError increments the prediction errors counter.
func RecordPredictionError() {
	globalManager.predictionErrors.Inc()
}

// RecordModelLoad records how long loading the artifact took.
func RecordModelLoad(durationMs float64) {
	globalManager.modelLoadDuration.Observe(durationMs)
}

// SetModelInfo publishes the loaded model identity and marks the scorer ready.
func SetModelInfo(name, version, predictor string) {
	globalManager.modelInfo.Reset()
	globalManager.modelInfo.WithLabelValues(name, version, predictor).Set(1)
	globalManager.modelReady.Set(1)
}

// RecordCacheHits adds n cache hits.
func RecordCacheHits(n int) {
	if n > 0 {
		globalManager.cacheHits.Add(float64(n))
	}
}

// RecordCacheMisses adds n cache misses.
func RecordCacheMisses(n int) {
	if n > 0 {
		globalManager.cacheMisses.Add(float64(n))
	}
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.httpErrors.WithLabelValues(endpoint, method, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
