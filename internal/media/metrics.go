package media

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	stageReserved  = "reserved"
	stageStored    = "stored"
	stageCompleted = "completed"
)

type mediaMetrics struct {
	uploads *prometheus.CounterVec
}

var (
	mediaMetricsOnce     sync.Once
	mediaMetricsInstance *mediaMetrics
)

func uploadMetrics() *mediaMetrics {
	mediaMetricsOnce.Do(func() {
		mediaMetricsInstance = &mediaMetrics{
			uploads: promauto.NewCounterVec(prometheus.CounterOpts{
				Namespace: "cleanshot",
				Subsystem: "media",
				Name:      "uploads_total",
				Help:      "Uploads by lifecycle stage.",
			}, []string{"stage"}),
		}
	})
	return mediaMetricsInstance
}

func (m *mediaMetrics) observe(stage string) {
	m.uploads.WithLabelValues(stage).Inc()
}
