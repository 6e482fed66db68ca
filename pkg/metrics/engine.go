package metrics

// EngineMetrics is the full set of collectors the upload engine reports
// against. Its first three methods match internal/cloud/s3cloud.Metrics
// structurally, so the value pkg/metrics/prometheus.NewEngineMetrics
// returns satisfies both without an explicit adapter.
type EngineMetrics interface {
	// ObserveOperation records a cloud operation's outcome.
	ObserveOperation(operation string, ok bool)

	// RecordActiveUpload adjusts the in-flight multipart upload gauge.
	RecordActiveUpload(delta int)

	// RecordBytes records bytes transferred for a named operation.
	RecordBytes(operation string, n int64)

	// RecordRetry counts a transient-failure retry by task class.
	RecordRetry(taskClass string)

	// RecordQuotaExceeded counts a quota_exceeded gate latch.
	RecordQuotaExceeded()

	// RecordTaskQueued adjusts the pending-task gauge by class.
	RecordTaskQueued(taskClass string, delta int)

	// ObserveUploadProgress records the last-published progress ratio for a file.
	ObserveUploadProgress(progress float64)
}

// newPrometheusEngineMetrics is installed by pkg/metrics/prometheus's
// init(), mirroring the teacher's newPrometheusS3Metrics indirection
// that avoids an import cycle between metrics and its own backend.
var newPrometheusEngineMetrics func() EngineMetrics

// RegisterEngineMetricsConstructor is called by
// pkg/metrics/prometheus during package initialization.
func RegisterEngineMetricsConstructor(constructor func() EngineMetrics) {
	newPrometheusEngineMetrics = constructor
}

// NewEngineMetrics returns a Prometheus-backed EngineMetrics, or nil when
// metrics are disabled. Callers pass the nil value straight through to
// collaborators that already guard every method against a nil receiver.
func NewEngineMetrics() EngineMetrics {
	if !IsEnabled() || newPrometheusEngineMetrics == nil {
		return nil
	}
	return newPrometheusEngineMetrics()
}
