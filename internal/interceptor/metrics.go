package interceptor

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/dispatchkit/dispatchkit/internal/request"
)

// attrMetricsStart holds the request start time between hooks.
const attrMetricsStart = "dispatchkit.interceptor.metrics.start"

// handlerMetrics contains Prometheus metrics for handler execution.
type handlerMetrics struct {
	duration *prometheus.HistogramVec
	inflight prometheus.Gauge
	failures *prometheus.CounterVec
}

var (
	handlerMetricsInstance *handlerMetrics
	handlerMetricsOnce     sync.Once
)

// getHandlerMetrics returns the singleton handler metrics instance.
func getHandlerMetrics() *handlerMetrics {
	handlerMetricsOnce.Do(func() {
		handlerMetricsInstance = &handlerMetrics{
			duration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Namespace: "dispatchkit",
					Subsystem: "dispatch",
					Name:      "handler_duration_seconds",
					Help:      "Handler execution time by method and matched pattern",
					Buckets:   prometheus.DefBuckets,
				},
				[]string{"method", "pattern"},
			),
			inflight: promauto.NewGauge(
				prometheus.GaugeOpts{
					Namespace: "dispatchkit",
					Subsystem: "dispatch",
					Name:      "inflight_requests",
					Help:      "Number of requests currently inside a chain",
				},
			),
			failures: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "dispatchkit",
					Subsystem: "dispatch",
					Name:      "handler_failures_total",
					Help:      "Total number of failed handler executions",
				},
				[]string{"method", "pattern"},
			),
		}
	})
	return handlerMetricsInstance
}

// Metrics records per-pattern handler latency and failure counts. The
// gauge and timer are bracketed by PreHandle and AfterCompletion so
// every exit path is accounted for.
type Metrics struct {
	metrics *handlerMetrics
}

// NewMetrics creates a metrics interceptor.
func NewMetrics() *Metrics {
	return &Metrics{metrics: getHandlerMetrics()}
}

// PreHandle starts the timer.
func (m *Metrics) PreHandle(rc *request.Context, handler any) (bool, error) {
	m.metrics.inflight.Inc()
	rc.Set(attrMetricsStart, time.Now())
	return true, nil
}

// PostHandle is a no-op.
func (m *Metrics) PostHandle(rc *request.Context, handler any, result any) error {
	return nil
}

// AfterCompletion records the observation.
func (m *Metrics) AfterCompletion(rc *request.Context, handler any, cause error) error {
	m.metrics.inflight.Dec()

	pattern, ok := rc.BestMatchingPattern()
	if !ok {
		pattern = "unmatched"
	}

	if start, found := rc.Get(attrMetricsStart); found {
		if t, isTime := start.(time.Time); isTime {
			m.metrics.duration.WithLabelValues(rc.Method(), pattern).
				Observe(time.Since(t).Seconds())
		}
	}

	if cause != nil {
		m.metrics.failures.WithLabelValues(rc.Method(), pattern).Inc()
	}

	return nil
}
