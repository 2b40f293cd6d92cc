package router

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeMatched          = "matched"
	outcomeNotFound         = "not_found"
	outcomeMethodNotAllowed = "method_not_allowed"
	outcomeError            = "error"
)

// routerMetrics contains Prometheus metrics for request dispatch.
type routerMetrics struct {
	dispatched *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

var (
	routerMetricsInstance *routerMetrics
	routerMetricsOnce     sync.Once
)

// dispatchMetrics returns the singleton dispatch metrics instance.
func dispatchMetrics() *routerMetrics {
	routerMetricsOnce.Do(func() {
		routerMetricsInstance = &routerMetrics{
			dispatched: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "cleanshot",
					Subsystem: "router",
					Name:      "dispatch_total",
					Help:      "Total number of dispatched requests by outcome",
				},
				[]string{"outcome"},
			),
			duration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Namespace: "cleanshot",
					Subsystem: "router",
					Name:      "handler_duration_seconds",
					Help:      "Time spent in matched route handlers",
					Buckets:   prometheus.DefBuckets,
				},
				[]string{"route"},
			),
		}
	})
	return routerMetricsInstance
}

func (m *routerMetrics) observe(outcome string) {
	m.dispatched.WithLabelValues(outcome).Inc()
}

func (m *routerMetrics) observeDuration(route string, elapsed time.Duration) {
	m.duration.WithLabelValues(route).Observe(elapsed.Seconds())
}
