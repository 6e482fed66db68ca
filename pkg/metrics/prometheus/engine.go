// Package prometheus supplies the concrete Prometheus collectors behind
// pkg/metrics's EngineMetrics interface, in the teacher's
// pkg/metrics/prometheus/s3.go pattern: promauto-registered metrics,
// nil-receiver methods, and a constructor registered through an init().
package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/CloneWith/storageengine/pkg/metrics"
)

func init() {
	metrics.RegisterEngineMetricsConstructor(NewEngineMetrics)
}

// engineMetrics is the Prometheus implementation of metrics.EngineMetrics.
type engineMetrics struct {
	operationsTotal  *prometheus.CounterVec
	bytesTransferred *prometheus.CounterVec
	activeUploads    prometheus.Gauge
	retriesTotal     *prometheus.CounterVec
	quotaExceeded    prometheus.Counter
	tasksQueued      *prometheus.GaugeVec
	uploadProgress   prometheus.Histogram
}

// NewEngineMetrics builds the collector set and registers it against the
// process-wide registry. Returns nil if metrics are not enabled.
func NewEngineMetrics() metrics.EngineMetrics {
	if !metrics.IsEnabled() {
		return nil
	}

	reg := metrics.GetRegistry()

	return &engineMetrics{
		operationsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "storageengine_cloud_operations_total",
				Help: "Total number of cloud operations by operation type and status",
			},
			[]string{"operation", "status"},
		),
		bytesTransferred: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "storageengine_bytes_transferred_total",
				Help: "Total bytes transferred via cloud operations",
			},
			[]string{"operation"},
		),
		activeUploads: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "storageengine_active_uploads",
				Help: "Current number of in-flight multipart uploads",
			},
		),
		retriesTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "storageengine_retries_total",
				Help: "Total number of transient-failure retries by task class",
			},
			[]string{"task_class"},
		),
		quotaExceeded: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "storageengine_quota_exceeded_total",
				Help: "Total number of times the quota_exceeded gate latched",
			},
		),
		tasksQueued: promauto.With(reg).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "storageengine_tasks_queued",
				Help: "Current number of pending tasks by class",
			},
			[]string{"task_class"},
		),
		uploadProgress: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "storageengine_upload_progress_ratio",
				Help:    "Distribution of published upload progress ratios",
				Buckets: []float64{0.1, 0.25, 0.5, 0.75, 0.9, 1.0},
			},
		),
	}
}

func (m *engineMetrics) ObserveOperation(operation string, ok bool) {
	if m == nil {
		return
	}
	status := "success"
	if !ok {
		status = "error"
	}
	m.operationsTotal.WithLabelValues(operation, status).Inc()
}

func (m *engineMetrics) RecordActiveUpload(delta int) {
	if m == nil {
		return
	}
	m.activeUploads.Add(float64(delta))
}

func (m *engineMetrics) RecordBytes(operation string, n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.bytesTransferred.WithLabelValues(operation).Add(float64(n))
}

func (m *engineMetrics) RecordRetry(taskClass string) {
	if m == nil {
		return
	}
	m.retriesTotal.WithLabelValues(taskClass).Inc()
}

func (m *engineMetrics) RecordQuotaExceeded() {
	if m == nil {
		return
	}
	m.quotaExceeded.Inc()
}

func (m *engineMetrics) RecordTaskQueued(taskClass string, delta int) {
	if m == nil {
		return
	}
	m.tasksQueued.WithLabelValues(taskClass).Add(float64(delta))
}

func (m *engineMetrics) ObserveUploadProgress(progress float64) {
	if m == nil {
		return
	}
	m.uploadProgress.Observe(progress)
}
