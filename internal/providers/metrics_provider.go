package providers

import (
	"statusdash/internal/structures"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncCacheHits()
	IncCacheMisses()
	IncStoreLookups(key string, outcome string)
	IncDefaultFallbacks(key string)
	IncConfigUpdates(result string)
	ObservePersistenceDuration(duration time.Duration)
}

type MetricsProvider struct {
	requestsTotal       *prometheus.CounterVec
	requestDuration     *prometheus.HistogramVec
	cacheHits           prometheus.Counter
	cacheMisses         prometheus.Counter
	storeLookups        *prometheus.CounterVec
	defaultFallbacks    *prometheus.CounterVec
	configUpdates       *prometheus.CounterVec
	persistenceDuration prometheus.Histogram
}

func (m *MetricsProvider) IncRequestsTotal(endpoint string, status int) {
	m.requestsTotal.WithLabelValues(endpoint, httpStatusBucket(status)).Inc()
}

func (m *MetricsProvider) ObserveRequestDuration(endpoint string, duration time.Duration) {
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncCacheHits() {
	m.cacheHits.Inc()
}

func (m *MetricsProvider) IncCacheMisses() {
	m.cacheMisses.Inc()
}

func (m *MetricsProvider) IncStoreLookups(key string, outcome string) {
	m.storeLookups.WithLabelValues(key, outcome).Inc()
}

func (m *MetricsProvider) IncDefaultFallbacks(key string) {
	m.defaultFallbacks.WithLabelValues(key).Inc()
}

func (m *MetricsProvider) IncConfigUpdates(result string) {
	m.configUpdates.WithLabelValues(result).Inc()
}

func (m *MetricsProvider) ObservePersistenceDuration(duration time.Duration) {
	m.persistenceDuration.Observe(duration.Seconds())
}

func httpStatusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

func NewMetricsProvider(conf *structures.Config) MetricsProviderInterface {
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}

	return &MetricsProvider{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "statusdash_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),

		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "statusdash_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		cacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "statusdash_response_cache_hits_total",
			Help: "Total number of response cache hits",
		}),

		cacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "statusdash_response_cache_misses_total",
			Help: "Total number of response cache misses",
		}),

		storeLookups: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "statusdash_cache_store_lookups_total",
			Help: "Cache store lookups by key and outcome (hit, missing, expired, corrupt)",
		}, []string{"key", "outcome"}),

		defaultFallbacks: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "statusdash_default_fallbacks_total",
			Help: "Number of times a default payload was served and stored",
		}, []string{"key"}),

		configUpdates: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "statusdash_config_updates_total",
			Help: "Configuration update attempts by result",
		}, []string{"result"}),

		persistenceDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "statusdash_persistence_duration_seconds",
			Help:    "Duration of store write operations in seconds",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// noopMetrics is a no-op implementation for when metrics are disabled.
type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncCacheHits()                                    {}
func (n *noopMetrics) IncCacheMisses()                                  {}
func (n *noopMetrics) IncStoreLookups(_ string, _ string)               {}
func (n *noopMetrics) IncDefaultFallbacks(_ string)                     {}
func (n *noopMetrics) IncConfigUpdates(_ string)                        {}
func (n *noopMetrics) ObservePersistenceDuration(_ time.Duration)       {}
