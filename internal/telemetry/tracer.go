package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys for upload operations, following OpenTelemetry semantic
// convention style ("<namespace>.<field>").
const (
	AttrWorkspaceID = "upload.workspace_id"
	AttrParentDir   = "upload.parent_dir"
	AttrFileID      = "upload.file_id"
	AttrUploadID    = "upload.upload_id"
	AttrPartNumber  = "upload.part_number"
	AttrNumChunk    = "upload.num_chunk"
	AttrChunkSize   = "upload.chunk_size"
	AttrBytes       = "upload.bytes"
	AttrTaskClass   = "upload.task_class"
	AttrProgress    = "upload.progress"
	AttrBucket      = "storage.bucket"
	AttrKey         = "storage.key"
)

// Span names for the multipart protocol's stages.
const (
	SpanCreateUpload   = "upload.create"
	SpanInitiate       = "upload.initiate"
	SpanUploadPart     = "upload.part"
	SpanCompleteUpload = "upload.complete"
	SpanResumeUpload   = "upload.resume"
)

// WorkspaceID returns an attribute for the workspace a file belongs to.
func WorkspaceID(id string) attribute.KeyValue { return attribute.String(AttrWorkspaceID, id) }

// ParentDir returns an attribute for the remote parent directory key.
func ParentDir(p string) attribute.KeyValue { return attribute.String(AttrParentDir, p) }

// FileID returns an attribute for the local file's content fingerprint.
func FileID(id string) attribute.KeyValue { return attribute.String(AttrFileID, id) }

// UploadID returns an attribute for the remote multipart session id.
func UploadID(id string) attribute.KeyValue { return attribute.String(AttrUploadID, id) }

// PartNumber returns an attribute for a 1-based part number.
func PartNumber(n int) attribute.KeyValue { return attribute.Int(AttrPartNumber, n) }

// NumChunk returns an attribute for the total number of parts.
func NumChunk(n int) attribute.KeyValue { return attribute.Int(AttrNumChunk, n) }

// Bytes returns an attribute for a byte count moved by an operation.
func Bytes(n int) attribute.KeyValue { return attribute.Int(AttrBytes, n) }

// TaskClass returns an attribute for the task class (immediate/background/recovered).
func TaskClass(class string) attribute.KeyValue { return attribute.String(AttrTaskClass, class) }

// Progress returns an attribute for an upload progress fraction in [0,1].
func Progress(p float64) attribute.KeyValue { return attribute.Float64(AttrProgress, p) }

// Bucket returns an attribute for the remote bucket/container name.
func Bucket(name string) attribute.KeyValue { return attribute.String(AttrBucket, name) }

// StorageKey returns an attribute for the remote object key.
func StorageKey(key string) attribute.KeyValue { return attribute.String(AttrKey, key) }

// StartUploadSpan starts a span for a step of the multipart protocol,
// tagged with the upload's identity.
func StartUploadSpan(ctx context.Context, spanName, workspaceID, parentDir, fileID string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := append([]attribute.KeyValue{
		WorkspaceID(workspaceID),
		ParentDir(parentDir),
		FileID(fileID),
	}, attrs...)

	return StartSpan(ctx, spanName, trace.WithAttributes(allAttrs...))
}
