package logger

import (
	"log/slog"
)

// Standard field keys for structured logging across the upload engine.
// Use these keys consistently across all log statements for log aggregation
// and querying.
const (
	// Distributed tracing
	KeyTraceID = "trace_id"
	KeySpanID  = "span_id"

	// Upload identity
	KeyWorkspaceID = "workspace_id"
	KeyParentDir   = "parent_dir"
	KeyFileID      = "file_id"
	KeyUploadID    = "upload_id"
	KeyTaskClass   = "task_class" // immediate, background, recovered

	// Multipart protocol
	KeyPartNumber = "part_number"
	KeyNumChunk   = "num_chunk"
	KeyChunkSize  = "chunk_size"
	KeyETag       = "e_tag"
	KeyProgress   = "progress"

	// Transfer
	KeySize         = "size"
	KeyBytesRead    = "bytes_read"
	KeyBytesWritten = "bytes_written"

	// Retry / error handling
	KeyAttempt    = "attempt"
	KeyMaxRetries = "max_retries"
	KeyErrorClass = "error_class"
	KeyError      = "error"

	// Operation metadata
	KeyDurationMs = "duration_ms"
	KeyOperation  = "operation"

	// Storage backends
	KeyStoreName = "store_name"
	KeyBucket    = "bucket"
	KeyKey       = "key"
	KeyPath      = "path"
)

// TraceID returns a slog.Attr for OpenTelemetry trace ID
func TraceID(id string) slog.Attr { return slog.String(KeyTraceID, id) }

// SpanID returns a slog.Attr for OpenTelemetry span ID
func SpanID(id string) slog.Attr { return slog.String(KeySpanID, id) }

// WorkspaceID returns a slog.Attr for the workspace identifier
func WorkspaceID(id string) slog.Attr { return slog.String(KeyWorkspaceID, id) }

// ParentDir returns a slog.Attr for the remote parent directory key
func ParentDir(p string) slog.Attr { return slog.String(KeyParentDir, p) }

// FileID returns a slog.Attr for the content fingerprint of a local file
func FileID(id string) slog.Attr { return slog.String(KeyFileID, id) }

// UploadID returns a slog.Attr for the remote multipart session id
func UploadID(id string) slog.Attr { return slog.String(KeyUploadID, id) }

// TaskClass returns a slog.Attr for the upload task class
func TaskClass(class string) slog.Attr { return slog.String(KeyTaskClass, class) }

// PartNumber returns a slog.Attr for a 1-based part number
func PartNumber(n int) slog.Attr { return slog.Int(KeyPartNumber, n) }

// NumChunk returns a slog.Attr for the total number of parts
func NumChunk(n int) slog.Attr { return slog.Int(KeyNumChunk, n) }

// ChunkSize returns a slog.Attr for the configured chunk size
func ChunkSize(n int64) slog.Attr { return slog.Int64(KeyChunkSize, n) }

// ETag returns a slog.Attr for a part's opaque remote identifier
func ETag(tag string) slog.Attr { return slog.String(KeyETag, tag) }

// Progress returns a slog.Attr for an upload progress fraction in [0,1]
func Progress(p float64) slog.Attr { return slog.Float64(KeyProgress, p) }

// Size returns a slog.Attr for a byte size
func Size(s int64) slog.Attr { return slog.Int64(KeySize, s) }

// BytesRead returns a slog.Attr for actual bytes read
func BytesRead(n int) slog.Attr { return slog.Int(KeyBytesRead, n) }

// BytesWritten returns a slog.Attr for actual bytes written
func BytesWritten(n int) slog.Attr { return slog.Int(KeyBytesWritten, n) }

// Attempt returns a slog.Attr for retry attempt number
func Attempt(n int) slog.Attr { return slog.Int(KeyAttempt, n) }

// MaxRetries returns a slog.Attr for maximum retry attempts
func MaxRetries(n int) slog.Attr { return slog.Int(KeyMaxRetries, n) }

// ErrorClass returns a slog.Attr for the classified error category
func ErrorClass(class string) slog.Attr { return slog.String(KeyErrorClass, class) }

// Err returns a slog.Attr for an error
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// DurationMs returns a slog.Attr for duration in milliseconds
func DurationMs(ms float64) slog.Attr { return slog.Float64(KeyDurationMs, ms) }

// Operation returns a slog.Attr for sub-operation type
func Operation(op string) slog.Attr { return slog.String(KeyOperation, op) }

// StoreName returns a slog.Attr for a named store identifier
func StoreName(name string) slog.Attr { return slog.String(KeyStoreName, name) }

// Bucket returns a slog.Attr for a cloud bucket name
func Bucket(name string) slog.Attr { return slog.String(KeyBucket, name) }

// Key returns a slog.Attr for an object key in cloud storage
func Key(k string) slog.Attr { return slog.String(KeyKey, k) }

// Path returns a slog.Attr for a local file path
func Path(p string) slog.Attr { return slog.String(KeyPath, p) }
