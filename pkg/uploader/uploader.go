// Package uploader implements the cooperative scheduler that dequeues
// UploadTasks, drives the multipart protocol against a CloudService, and
// reacts to the ErrorClassifier's verdict on failures (spec §4.5/§4.5.1).
// It is a single task: across files at most one upload is active at a
// time, and within a file parts are uploaded strictly in ascending order.
package uploader

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/CloneWith/storageengine/internal/classify"
	"github.com/CloneWith/storageengine/internal/logger"
	"github.com/CloneWith/storageengine/internal/notify"
	"github.com/CloneWith/storageengine/internal/telemetry"
	"github.com/CloneWith/storageengine/pkg/chunked"
	"github.com/CloneWith/storageengine/pkg/engine"
	"github.com/CloneWith/storageengine/pkg/progresshub"
	"github.com/CloneWith/storageengine/pkg/taskqueue"
	"github.com/CloneWith/storageengine/pkg/tempstore"
	"github.com/CloneWith/storageengine/pkg/uploadmodel"
	"github.com/CloneWith/storageengine/pkg/uploadstore"
)

// Config tunes the scheduler's behavior.
type Config struct {
	// MinChunkSize is the engine's minimum chunk size; StorageManager's
	// CreateUpload assigns it as the chunk size of every new record.
	// Records reaching the Uploader by other routes are not checked
	// against it. Spec default: 5 MiB.
	MinChunkSize int64
}

// DefaultConfig returns the spec's stated defaults.
func DefaultConfig() Config {
	return Config{MinChunkSize: 5 << 20}
}

// Uploader is the single cooperative scheduler task.
type Uploader struct {
	cfg   Config
	queue *taskqueue.Queue
	store *uploadstore.Store
	cloud engine.CloudService
	hub   *progresshub.Hub
	bus   *notify.Bus
	temp  *tempstore.Store

	gates *gates
}

// New wires an Uploader against its collaborators.
func New(cfg Config, queue *taskqueue.Queue, store *uploadstore.Store, cloud engine.CloudService, hub *progresshub.Hub, bus *notify.Bus, temp *tempstore.Store) *Uploader {
	return &Uploader{
		cfg:   cfg,
		queue: queue,
		store: store,
		cloud: cloud,
		hub:   hub,
		bus:   bus,
		temp:  temp,
		gates: newGates(),
	}
}

// SetNetworkReachable flips the network_reachable gate.
func (u *Uploader) SetNetworkReachable(reachable bool) { u.gates.setNetworkReachable(reachable) }

// SetStorageWriteEnabled flips the storage_write_enabled gate.
func (u *Uploader) SetStorageWriteEnabled(enabled bool) { u.gates.setStorageWriteEnabled(enabled) }

// ClearQuotaExceeded clears the quota_exceeded latch on a quota-refresh event.
func (u *Uploader) ClearQuotaExceeded() { u.gates.clearQuotaExceeded() }

// IsQuotaExceeded reports the current quota_exceeded latch state.
func (u *Uploader) IsQuotaExceeded() bool { return u.gates.isQuotaExceeded() }

// ForbidsProgress reports whether any gate currently blocks the scheduler.
func (u *Uploader) ForbidsProgress() bool { return u.gates.forbidsProgress() }

// Run executes the Uploader's cooperative loop until ctx is cancelled.
// This is the "weak back-reference" shutdown translated into Go:
// cancellation is observed at the top of every iteration.
func (u *Uploader) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return nil
		}

		if u.gates.forbidsProgress() {
			u.queue.Pause()
			if u.gates.forbidsProgress() {
				u.queue.AwaitSignal(ctx)
			} else {
				u.queue.Resume()
			}
			continue
		}

		task, ok := u.queue.Dequeue()
		if !ok {
			u.queue.AwaitSignal(ctx)
			continue
		}

		record, ok := u.resolveRecord(ctx, task)
		if !ok {
			continue // record deleted meanwhile; drop silently
		}

		if err := u.runProtocol(ctx, record); err != nil {
			u.handleFailure(ctx, task, record, err)
		}
	}
}

// resolveRecord loads the UploadRecord a task refers to. For Immediate
// tasks the record is already carried; for the others it is loaded by
// identity, and the task is dropped silently if it was deleted meanwhile.
func (u *Uploader) resolveRecord(ctx context.Context, task uploadmodel.UploadTask) (*uploadmodel.UploadFileRecord, bool) {
	if task.Class == uploadmodel.TaskImmediate {
		return task.Record, true
	}

	record, err := u.store.SelectUploadFile(ctx, task.Identity)
	if err != nil {
		return nil, false
	}
	return record, true
}

func (u *Uploader) handleFailure(ctx context.Context, task uploadmodel.UploadTask, record *uploadmodel.UploadFileRecord, failure error) {
	category := classify.Classify(failure)
	url := u.cloud.GetObjectURLV1(record.WorkspaceID, record.ParentDir, record.FileID)

	switch category {
	case classify.Transient:
		if task.RetryCount > 0 {
			attempt := uploadmodel.InitialRetryCount - task.RetryCount
			task.RetryCount--
			task.Record = record
			u.sleepBeforeRetry(ctx, attempt)
			u.queue.Enqueue(task)
			return
		}
		u.hub.Publish(uploadmodel.ErrorEvent(url, record.FileID, failure.Error()))

	case classify.QuotaExceeded:
		u.gates.latchQuotaExceeded()
		u.bus.Publish(notify.Notification{
			Kind:  notify.FileStorageLimitExceeded,
			Err:   failure,
			Files: notify.NewIdentity(record.WorkspaceID, record.ParentDir, record.FileID),
		})
		// Task remains persisted on disk; it is re-picked once the gate reopens.

	case classify.SingleFileTooLarge:
		_ = u.store.DeleteUploadFile(ctx, record.Identity())
		u.temp.DeleteTempFile(record.LocalFilePath)
		u.bus.Publish(notify.Notification{
			Kind:  notify.SingleFileLimitExceeded,
			Err:   failure,
			Files: notify.NewIdentity(record.WorkspaceID, record.ParentDir, record.FileID),
		})
		u.hub.Publish(uploadmodel.ErrorEvent(url, record.FileID, failure.Error()))

	case classify.MissingLocalFile:
		_ = u.store.DeleteUploadFile(ctx, record.Identity())
		u.hub.Publish(uploadmodel.ErrorEvent(url, record.FileID, failure.Error()))

	case classify.Duplicate:
		// Benign no-op; nothing to surface here — the caller of
		// create_upload already received the Duplicate signal directly.

	case classify.Corrupt:
		logger.ErrorCtx(ctx, "dropping task with corrupted record", logger.FileID(record.FileID), logger.Err(failure))
	}
}

// runProtocol drives the multipart protocol for one file (spec §4.5.1).
func (u *Uploader) runProtocol(ctx context.Context, record *uploadmodel.UploadFileRecord) error {
	ctx, span := telemetry.StartUploadSpan(ctx, telemetry.SpanInitiate, record.WorkspaceID, record.ParentDir, record.FileID)
	defer span.End()

	url := u.cloud.GetObjectURLV1(record.WorkspaceID, record.ParentDir, record.FileID)

	// 1. Load completed parts.
	var offset int
	if record.UploadID != "" {
		parts, err := u.store.SelectUploadParts(ctx, record.UploadID)
		if err != nil {
			return fmt.Errorf("load completed parts: %w", err)
		}
		offset = len(parts)
	}

	// 2. Guard: local file must still exist.
	reader, err := chunked.Open(record.LocalFilePath, record.ChunkSize)
	if err != nil {
		_ = u.store.DeleteUploadFile(ctx, record.Identity())
		return fmt.Errorf("missing local file: %w", err)
	}
	defer reader.Close()

	// 3. Position the reader at the first unacknowledged part.
	if err := reader.SetOffset(offset); err != nil {
		// Per the documented Open Question: treat as terminal, do not
		// fall through into (re-)initiating against a stale upload_id.
		_ = u.store.DeleteUploadFile(ctx, record.Identity())
		u.hub.Publish(uploadmodel.ErrorEvent(url, record.FileID, err.Error()))
		return fmt.Errorf("terminal: set offset past total chunks: %w", err)
	}

	// 4. Initiate if needed.
	if record.UploadID == "" {
		uploadID, err := u.cloud.CreateUpload(ctx, record.WorkspaceID, record.ParentDir, record.FileID, record.ContentType)
		if err != nil {
			return fmt.Errorf("create upload: %w", err)
		}
		if err := u.store.UpdateUploadFileUploadID(ctx, record.Identity(), uploadID); err != nil {
			return fmt.Errorf("persist upload id: %w", err)
		}
		record.UploadID = uploadID
	}

	// 5. Upload loop.
	for partNumber := offset + 1; partNumber <= record.NumChunk; partNumber++ {
		chunk, _, err := reader.NextChunk()
		if err != nil {
			return fmt.Errorf("read chunk %d: %w", partNumber, err)
		}

		ack, err := u.cloud.UploadPart(ctx, record.WorkspaceID, record.ParentDir, record.UploadID, record.FileID, partNumber, chunk)
		if err != nil {
			u.hub.Publish(uploadmodel.ErrorEvent(url, record.FileID, err.Error()))
			return fmt.Errorf("upload part %d: %w", partNumber, err)
		}

		if err := u.store.InsertUploadPart(ctx, record.UploadID, ack.PartNum, ack.ETag); err != nil {
			return fmt.Errorf("persist part %d: %w", partNumber, err)
		}

		// The last 0.1 is reserved for the completion step, so observers
		// never see 1.0 before the remote confirms assembly.
		progress := float64(partNumber) / float64(record.NumChunk)
		if progress > 0.9 {
			progress = 0.9
		}
		u.hub.Publish(uploadmodel.Uploading(url, record.FileID, progress))
	}

	// 6. Complete.
	parts, err := u.store.SelectUploadParts(ctx, record.UploadID)
	if err != nil {
		return fmt.Errorf("load parts for completion: %w", err)
	}
	modelParts := make([]uploadmodel.UploadFilePart, len(parts))
	for i, p := range parts {
		modelParts[i] = *p
	}

	if err := u.cloud.CompleteUpload(ctx, record.WorkspaceID, record.ParentDir, record.UploadID, record.FileID, modelParts); err != nil {
		// The remote typically rejects re-assembly when the part set is
		// inconsistent; wipe parts and the upload_id so the next attempt
		// initiates a fresh session and starts again from part 1.
		_ = u.store.DeleteAllUploadParts(ctx, record.UploadID)
		_ = u.store.UpdateUploadFileUploadID(ctx, record.Identity(), "")
		record.UploadID = ""
		u.hub.Publish(uploadmodel.ErrorEvent(url, record.FileID, err.Error()))
		return fmt.Errorf("complete upload: %w", err)
	}

	u.hub.Publish(uploadmodel.Finished(url, record.FileID))
	if err := u.store.UpdateUploadFileCompleted(ctx, record.UploadID); err != nil {
		return fmt.Errorf("mark completed: %w", err)
	}
	u.temp.DeleteTempFile(record.LocalFilePath)

	return nil
}

// RetryBackoff returns a fresh exponential backoff policy for pacing
// transient-failure retries, shared by sleepBeforeRetry and available to
// callers that want to pace their own repeated resume_upload attempts.
func RetryBackoff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 250 * time.Millisecond
	b.MaxInterval = 10 * time.Second
	b.MaxElapsedTime = 2 * time.Minute
	return b
}

// sleepBeforeRetry paces a transient-failure re-enqueue by fast-forwarding
// a fresh RetryBackoff through attempt prior calls and waiting the
// resulting interval, so retry_count decrementing down from
// InitialRetryCount to 1 produces escalating delays. Returns early if ctx
// is cancelled mid-wait.
func (u *Uploader) sleepBeforeRetry(ctx context.Context, attempt int) {
	b := RetryBackoff()
	var delay time.Duration
	for i := 0; i <= attempt; i++ {
		delay = b.NextBackOff()
	}
	if delay <= 0 {
		return
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
