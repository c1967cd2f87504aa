// Package metrics provides Prometheus metrics for the SkillMonitor web frontend.
package metrics

import (
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	defaultRefreshInterval = 10 * time.Second
)

// defaultLatencyBuckets cover sub-millisecond loop tasks up to second-long GC pauses.
var defaultLatencyBuckets = []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000} //nolint:gochecknoglobals // bucket layout

// Manager manages all Prometheus metrics for the frontend.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          atomic.Bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// HTTP surface
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Backend calls made through the client facade
	backendRequests *prometheus.CounterVec
	backendLatency  *prometheus.HistogramVec

	// View state
	staleResponses   *prometheus.CounterVec
	alertsShown      *prometheus.CounterVec
	viewsEntered     *prometheus.CounterVec
	activeSessions   prometheus.Gauge
	sessionsEvicted  prometheus.Counter
	sessionsRejected prometheus.Counter

	// Event loops
	loopTasks          prometheus.Counter
	loopTaskPanics     prometheus.Counter
	loopTaskLatency    prometheus.Histogram
	queueSize          prometheus.Gauge
	queueEnqueueErrors *prometheus.CounterVec

	// Errors
	errorRateByType     *prometheus.CounterVec
	errorRateByEndpoint *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "skillmonitor",
		subsystem:        "web",
		histogramBuckets: defaultLatencyBuckets,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}
	m.enabled.Store(true)
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) name(n string) string {
	return m.metricPrefix + n
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every family
	auto := promauto.With(m.registry)
	labels := prometheus.Labels(m.customLabels)

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("http_requests_total"),
		Help: "Total number of HTTP requests by endpoint and method",
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name:    m.name("http_request_duration_milliseconds"),
		Help:    "HTTP request duration in milliseconds",
		Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 15000},
	}, []string{"endpoint", "method", "status_code"})

	m.backendRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("backend_requests_total"),
		Help: "Backend calls by endpoint and outcome (ok, backend, transport)",
	}, []string{"endpoint", "outcome"})

	m.backendLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name:    m.name("backend_latency_milliseconds"),
		Help:    "Backend call latency in milliseconds",
		Buckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
	}, []string{"endpoint"})

	m.staleResponses = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("stale_responses_dropped_total"),
		Help: "Responses discarded because a newer request was issued or the view was left",
	}, []string{"view"})

	m.alertsShown = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("alerts_shown_total"),
		Help: "Alerts shown to users by severity",
	}, []string{"severity"})

	m.viewsEntered = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("views_entered_total"),
		Help: "View entries by view name",
	}, []string{"view"})

	m.activeSessions = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("active_sessions"),
		Help: "Sessions currently held in memory",
	})

	m.sessionsEvicted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("sessions_evicted_total"),
		Help: "Sessions removed after being idle",
	})

	m.sessionsRejected = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("sessions_rejected_total"),
		Help: "Session creations refused because the session cap was reached",
	})

	m.loopTasks = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("loop_tasks_total"),
		Help: "Tasks executed by session event loops",
	})

	m.loopTaskPanics = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("loop_task_panics_total"),
		Help: "Tasks that panicked and were recovered by the event loop",
	})

	m.loopTaskLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name:    m.name("loop_task_duration_milliseconds"),
		Help:    "Time spent running a single loop task",
		Buckets: m.histogramBuckets,
	})

	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("queue_size"),
		Help: "Most recently observed depth of an event loop queue",
	})

	m.queueEnqueueErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("queue_enqueue_errors_total"),
		Help: "Tasks refused by an event loop queue",
	}, []string{"reason"})

	m.errorRateByType = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("errors_by_type_total"),
		Help: "Errors by type and severity",
	}, []string{"error_type", "severity"})

	m.errorRateByEndpoint = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("errors_by_endpoint_total"),
		Help: "Errors by HTTP endpoint",
	}, []string{"endpoint", "method", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("system_memory_usage_bytes"),
		Help: "System memory usage in bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("system_goroutine_count"),
		Help: "Number of goroutines",
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name:    m.name("system_gc_pause_time_milliseconds"),
		Help:    "GC pause time in milliseconds",
		Buckets: m.histogramBuckets,
	})
}

// Enabled reports whether the manager records anything.
func (m *Manager) Enabled() bool { return m.enabled.Load() }

// RefreshInterval is the period at which sampled gauges should be refreshed.
func (m *Manager) RefreshInterval() time.Duration { return m.refreshInterval }

// SetEnabled turns recording through the package helpers on or off.
func SetEnabled(on bool) { globalManager.enabled.Store(on) }

// RefreshInterval is the refresh period of the global manager.
func RefreshInterval() time.Duration { return globalManager.refreshInterval }

func enabled() bool { return globalManager.enabled.Load() }

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	if !enabled() {
		return
	}
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	if !enabled() {
		return
	}
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordBackendRequest counts a backend call with its outcome.
func RecordBackendRequest(endpoint, outcome string) {
	if !enabled() {
		return
	}
	globalManager.backendRequests.WithLabelValues(endpoint, outcome).Inc()
}

// RecordBackendLatency records backend call latency in milliseconds.
func RecordBackendLatency(endpoint string, latencyMs float64) {
	if !enabled() {
		return
	}
	globalManager.backendLatency.WithLabelValues(endpoint).Observe(latencyMs)
}

// RecordStaleResponse counts a response dropped by a view-model.
func RecordStaleResponse(view string) {
	if !enabled() {
		return
	}
	globalManager.staleResponses.WithLabelValues(view).Inc()
}

// RecordAlert counts an alert shown to a user.
func RecordAlert(severity string) {
	if !enabled() {
		return
	}
	globalManager.alertsShown.WithLabelValues(severity).Inc()
}

// RecordViewEntered counts a view entry.
func RecordViewEntered(view string) {
	if !enabled() {
		return
	}
	globalManager.viewsEntered.WithLabelValues(view).Inc()
}

// UpdateActiveSessions sets the number of live sessions.
func UpdateActiveSessions(count int) {
	if !enabled() {
		return
	}
	globalManager.activeSessions.Set(float64(count))
}

// RecordSessionEvicted counts an idle session removal.
func RecordSessionEvicted() {
	if !enabled() {
		return
	}
	globalManager.sessionsEvicted.Inc()
}

// RecordSessionRejected counts a refused session creation.
func RecordSessionRejected() {
	if !enabled() {
		return
	}
	globalManager.sessionsRejected.Inc()
}

// RecordLoopTask counts an executed loop task and its duration.
func RecordLoopTask(latencyMs float64) {
	if !enabled() {
		return
	}
	globalManager.loopTasks.Inc()
	globalManager.loopTaskLatency.Observe(latencyMs)
}

// RecordLoopPanic counts a recovered task panic.
func RecordLoopPanic() {
	if !enabled() {
		return
	}
	globalManager.loopTaskPanics.Inc()
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	if !enabled() {
		return
	}
	globalManager.queueSize.Set(float64(size))
}

// RecordQueueEnqueueError counts a refused enqueue.
func RecordQueueEnqueueError(reason string) {
	if !enabled() {
		return
	}
	globalManager.queueEnqueueErrors.WithLabelValues(reason).Inc()
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	if !enabled() {
		return
	}
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	if !enabled() {
		return
	}
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	if !enabled() {
		return
	}
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	if !enabled() {
		return
	}
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	if !enabled() {
		return
	}
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
