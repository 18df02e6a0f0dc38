package mapping

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// resolutionMetrics contains Prometheus metrics for registry resolution.
type resolutionMetrics struct {
	matched   prometheus.Counter
	unmatched prometheus.Counter
	errored   prometheus.Counter
	duration  prometheus.Histogram
}

var (
	resolutionMetricsInstance *resolutionMetrics
	resolutionMetricsOnce     sync.Once
)

// getResolutionMetrics returns the singleton resolution metrics instance.
func getResolutionMetrics() *resolutionMetrics {
	resolutionMetricsOnce.Do(func() {
		resolutionMetricsInstance = &resolutionMetrics{
			matched: promauto.NewCounter(
				prometheus.CounterOpts{
					Namespace: "dispatchkit",
					Subsystem: "mapping",
					Name:      "resolutions_matched_total",
					Help:      "Total number of requests resolved to a handler",
				},
			),
			unmatched: promauto.NewCounter(
				prometheus.CounterOpts{
					Namespace: "dispatchkit",
					Subsystem: "mapping",
					Name:      "resolutions_unmatched_total",
					Help:      "Total number of requests no mapping matched",
				},
			),
			errored: promauto.NewCounter(
				prometheus.CounterOpts{
					Namespace: "dispatchkit",
					Subsystem: "mapping",
					Name:      "resolution_errors_total",
					Help:      "Total number of internal errors raised during resolution",
				},
			),
			duration: promauto.NewHistogram(
				prometheus.HistogramOpts{
					Namespace: "dispatchkit",
					Subsystem: "mapping",
					Name:      "resolution_duration_seconds",
					Help:      "Time spent resolving a request to a handler",
					Buckets:   prometheus.DefBuckets,
				},
			),
		}
	})
	return resolutionMetricsInstance
}

// regexCacheMetrics contains Prometheus metrics for the regex cache.
type regexCacheMetrics struct {
	cacheHits      prometheus.Counter
	cacheMisses    prometheus.Counter
	cacheEvictions prometheus.Counter
	cacheSize      prometheus.Gauge
}

var (
	regexCacheMetricsInstance *regexCacheMetrics
	regexCacheMetricsOnce     sync.Once
)

// getRegexCacheMetrics returns the singleton regex cache metrics instance.
func getRegexCacheMetrics() *regexCacheMetrics {
	regexCacheMetricsOnce.Do(func() {
		regexCacheMetricsInstance = &regexCacheMetrics{
			cacheHits: promauto.NewCounter(
				prometheus.CounterOpts{
					Namespace: "dispatchkit",
					Subsystem: "mapping",
					Name:      "regex_cache_hits_total",
					Help:      "Total number of regex cache hits",
				},
			),
			cacheMisses: promauto.NewCounter(
				prometheus.CounterOpts{
					Namespace: "dispatchkit",
					Subsystem: "mapping",
					Name:      "regex_cache_misses_total",
					Help:      "Total number of regex cache misses",
				},
			),
			cacheEvictions: promauto.NewCounter(
				prometheus.CounterOpts{
					Namespace: "dispatchkit",
					Subsystem: "mapping",
					Name:      "regex_cache_evictions_total",
					Help:      "Total number of regex cache evictions",
				},
			),
			cacheSize: promauto.NewGauge(
				prometheus.GaugeOpts{
					Namespace: "dispatchkit",
					Subsystem: "mapping",
					Name:      "regex_cache_size",
					Help:      "Current number of entries in the regex cache",
				},
			),
		}
	})
	return regexCacheMetricsInstance
}
