package logger

import (
	"context"
	"time"
)

// contextKey is a private type for context keys to avoid collisions
type contextKey struct{}

// logContextKey is the key for LogContext in context.Context
var logContextKey = contextKey{}

// LogContext holds request-scoped logging context for an upload operation.
type LogContext struct {
	TraceID     string // OpenTelemetry trace ID
	SpanID      string // OpenTelemetry span ID
	WorkspaceID string // workspace the upload belongs to
	ParentDir   string // parent directory key in the remote object store
	FileID      string // content fingerprint of the local file
	TaskClass   string // immediate, background, recovered
	StartTime   time.Time
}

// WithContext returns a new context with the given LogContext
func WithContext(ctx context.Context, lc *LogContext) context.Context {
	return context.WithValue(ctx, logContextKey, lc)
}

// FromContext retrieves the LogContext from context, or nil if not present
func FromContext(ctx context.Context) *LogContext {
	if ctx == nil {
		return nil
	}
	lc, _ := ctx.Value(logContextKey).(*LogContext)
	return lc
}

// NewLogContext creates a new LogContext for an upload identified by file ID.
func NewLogContext(fileID string) *LogContext {
	return &LogContext{
		FileID:    fileID,
		StartTime: time.Now(),
	}
}

// Clone creates a copy of the LogContext
func (lc *LogContext) Clone() *LogContext {
	if lc == nil {
		return nil
	}
	return &LogContext{
		TraceID:     lc.TraceID,
		SpanID:      lc.SpanID,
		WorkspaceID: lc.WorkspaceID,
		ParentDir:   lc.ParentDir,
		FileID:      lc.FileID,
		TaskClass:   lc.TaskClass,
		StartTime:   lc.StartTime,
	}
}

// WithIdentity returns a copy with the upload's identity fields set.
func (lc *LogContext) WithIdentity(workspaceID, parentDir, fileID string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.WorkspaceID = workspaceID
		clone.ParentDir = parentDir
		clone.FileID = fileID
	}
	return clone
}

// WithTaskClass returns a copy with the task class set.
func (lc *LogContext) WithTaskClass(class string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.TaskClass = class
	}
	return clone
}

// WithTrace returns a copy with trace info set
func (lc *LogContext) WithTrace(traceID, spanID string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.TraceID = traceID
		clone.SpanID = spanID
	}
	return clone
}

// DurationMs returns the duration since StartTime in milliseconds
func (lc *LogContext) DurationMs() float64 {
	if lc == nil || lc.StartTime.IsZero() {
		return 0
	}
	return float64(time.Since(lc.StartTime).Microseconds()) / 1000.0
}
