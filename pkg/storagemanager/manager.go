// Package storagemanager is the facade that wires ChunkedReader,
// TempStore, UploadStore, TaskQueue, Uploader, and ProgressHub together,
// owns the background tasks, and exposes the engine's public operations
// (spec §4.7).
package storagemanager

import (
	"context"
	"fmt"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/CloneWith/storageengine/internal/classify"
	"github.com/CloneWith/storageengine/internal/logger"
	"github.com/CloneWith/storageengine/internal/notify"
	"github.com/CloneWith/storageengine/pkg/chunked"
	"github.com/CloneWith/storageengine/pkg/engine"
	"github.com/CloneWith/storageengine/pkg/progresshub"
	"github.com/CloneWith/storageengine/pkg/taskqueue"
	"github.com/CloneWith/storageengine/pkg/tempstore"
	"github.com/CloneWith/storageengine/pkg/uploader"
	"github.com/CloneWith/storageengine/pkg/uploadmodel"
	"github.com/CloneWith/storageengine/pkg/uploadstore"
)

// Config tunes the facade's background tasks.
type Config struct {
	// RecoveryWarmup is how long Manager waits after construction before
	// scanning for unfinished uploads. The spec calls this value
	// arbitrary and asks that it stay a documented tunable; default 20s.
	RecoveryWarmup time.Duration

	// RecoveryLimit bounds how many unfinished records are recovered per scan.
	RecoveryLimit int

	Uploader uploader.Config
}

// DefaultConfig returns the spec's stated defaults.
func DefaultConfig() Config {
	return Config{
		RecoveryWarmup: 20 * time.Second,
		RecoveryLimit:  100,
		Uploader:       uploader.DefaultConfig(),
	}
}

// Manager is constructed once per user session.
type Manager struct {
	cfg   Config
	store *uploadstore.Store
	cloud engine.CloudService
	temp  *tempstore.Store
	hub   *progresshub.Hub
	queue *taskqueue.Queue
	bus   *notify.Bus
	up    *uploader.Uploader

	cancel context.CancelFunc
	group  *errgroup.Group
}

// New constructs the facade: resolves the caller's app root and database
// handle from users, creates TempStore, UploadStore, ProgressHub,
// TaskQueue, and spawns the Uploader runner and a deferred recovery task
// (spec §4.7, §4.10 for the UserService collaborator). No separate
// progress-forwarder goroutine runs: ProgressHub.Publish updates the
// per-file subscriber entries itself.
func New(ctx context.Context, cfg Config, users engine.UserService, cloud engine.CloudService) (*Manager, error) {
	appRoot, err := users.ApplicationRootDir()
	if err != nil {
		return nil, fmt.Errorf("storagemanager: %w", err)
	}

	db, err := users.SQLiteConnection(users.UserID())
	if err != nil {
		return nil, fmt.Errorf("storagemanager: %w", err)
	}

	store, err := uploadstore.NewFromDB(db)
	if err != nil {
		return nil, fmt.Errorf("storagemanager: %w", err)
	}

	temp, err := tempstore.New(appRoot)
	if err != nil {
		return nil, fmt.Errorf("storagemanager: %w", err)
	}

	bus := notify.New()
	queue := taskqueue.New()
	hub := progresshub.New(func(fileID string) bool {
		done, _ := store.IsUploadCompletedByFileID(ctx, fileID)
		return done
	})

	up := uploader.New(cfg.Uploader, queue, store, cloud, hub, bus, temp)

	runCtx, cancel := context.WithCancel(ctx)
	group, runCtx := errgroup.WithContext(runCtx)

	m := &Manager{
		cfg:    cfg,
		store:  store,
		cloud:  cloud,
		temp:   temp,
		hub:    hub,
		queue:  queue,
		bus:    bus,
		up:     up,
		cancel: cancel,
		group:  group,
	}

	group.Go(func() error { return up.Run(runCtx) })
	group.Go(func() error { return m.recoveryTask(runCtx) })

	return m, nil
}

// Close cancels the background goroutines and waits for them to exit —
// the idiomatic Go replacement for the weak-back-reference shutdown
// described in spec §9.
func (m *Manager) Close() error {
	m.cancel()
	return m.group.Wait()
}

// recoveryTask waits RecoveryWarmup then scans UploadStore for up to
// RecoveryLimit unfinished records and enqueues them as Recovered tasks.
func (m *Manager) recoveryTask(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return nil
	case <-time.After(m.cfg.RecoveryWarmup):
	}

	records, err := m.store.BatchSelectUploadFile(ctx, m.cfg.RecoveryLimit, false)
	if err != nil {
		logger.ErrorCtx(ctx, "recovery scan failed", logger.Err(err))
		return nil
	}

	tasks := make([]uploadmodel.UploadTask, 0, len(records))
	for _, r := range records {
		tasks = append(tasks, uploadmodel.NewRecoveredTask(r.Identity()))
	}
	m.queue.EnqueueBatch(tasks)

	logger.InfoCtx(ctx, "recovered unfinished uploads", logger.Operation("recovery_scan"), "count", len(tasks))
	return nil
}

// CreateUpload validates inputs, rejects if quota_exceeded, copies the
// file into TempStore, hashes it to file_id, persists the record, and
// enqueues an Immediate task (spec §4.7's create_upload sequence).
func (m *Manager) CreateUpload(ctx context.Context, workspaceID, parentDir, localFilePath string) (string, string, <-chan uploadmodel.ProgressEvent, error) {
	if workspaceID == "" || parentDir == "" || localFilePath == "" {
		return "", "", nil, fmt.Errorf("storagemanager: workspace_id, parent_dir, and local_file_path are required")
	}

	if m.up.IsQuotaExceeded() {
		m.bus.Publish(notify.Notification{
			Kind: notify.FileStorageLimitExceeded,
			Err:  fmt.Errorf("storagemanager: %w", classify.ErrQuotaExceeded),
		})
		return "", "", nil, classify.ErrQuotaExceeded
	}

	cachedPath, err := m.temp.CreateTempFileFromExisting(localFilePath)
	if err != nil {
		return "", "", nil, fmt.Errorf("storagemanager: cache source file: %w", err)
	}

	fileID, err := chunked.FileID(cachedPath)
	if err != nil {
		return "", "", nil, fmt.Errorf("storagemanager: fingerprint file: %w", err)
	}

	contentType, err := chunked.DetectContentType(cachedPath)
	if err != nil {
		contentType = "application/octet-stream"
	}

	info, err := fileSize(cachedPath)
	if err != nil {
		return "", "", nil, fmt.Errorf("storagemanager: stat cached file: %w", err)
	}

	chunkSize := m.cfg.Uploader.MinChunkSize
	record := &uploadmodel.UploadFileRecord{
		WorkspaceID:   workspaceID,
		ParentDir:     parentDir,
		FileID:        fileID,
		LocalFilePath: cachedPath,
		ContentType:   contentType,
		ChunkSize:     chunkSize,
		NumChunk:      chunked.TotalChunks(info, chunkSize),
		CreatedAt:     time.Now().Unix(),
	}

	url := m.cloud.GetObjectURLV1(workspaceID, parentDir, fileID)

	if err := m.store.InsertUploadFile(ctx, record); err != nil {
		if category := classify.Classify(err); category == classify.Duplicate {
			return url, fileID, nil, nil
		}
		return "", "", nil, fmt.Errorf("storagemanager: persist record: %w", err)
	}

	m.queue.Enqueue(uploadmodel.NewImmediateTask(record))

	stream, _ := m.hub.Subscribe(fileID)
	return url, fileID, stream, nil
}

// StartUpload enqueues an already-persisted record as an Immediate task.
func (m *Manager) StartUpload(ctx context.Context, record *uploadmodel.UploadFileRecord) error {
	m.queue.Enqueue(uploadmodel.NewImmediateTask(record))
	return nil
}

// ResumeUpload re-enqueues an existing record by identity as a Background task.
func (m *Manager) ResumeUpload(ctx context.Context, workspaceID, parentDir, fileID string) error {
	id := uploadmodel.RecordIdentity{WorkspaceID: workspaceID, ParentDir: parentDir, FileID: fileID}
	if _, err := m.store.SelectUploadFile(ctx, id); err != nil {
		return fmt.Errorf("storagemanager: %w", err)
	}
	m.queue.Enqueue(uploadmodel.NewBackgroundTask(id))
	return nil
}

// SubscribeFileState returns a per-file progress stream, or false if the
// store already marks the file complete.
func (m *Manager) SubscribeFileState(parentDir, fileID string) (<-chan uploadmodel.ProgressEvent, bool) {
	return m.hub.Subscribe(fileID)
}

// GetFileState returns the last-published progress state for a file.
func (m *Manager) GetFileState(fileID string) (uploadmodel.ProgressEvent, bool) {
	return m.hub.Snapshot(fileID)
}

// QueryFileState resolves a remote URL back to its progress state.
func (m *Manager) QueryFileState(url string) (uploadmodel.ProgressEvent, bool) {
	_, _, fileID, ok := m.cloud.ParseObjectURLV1(url)
	if !ok {
		return uploadmodel.ProgressEvent{}, false
	}
	return m.hub.Snapshot(fileID)
}

// IsQuotaExceeded reports the current quota_exceeded latch state.
func (m *Manager) IsQuotaExceeded() bool { return m.up.IsQuotaExceeded() }

// ForbidsProgress reports whether any Uploader gate currently blocks work.
func (m *Manager) ForbidsProgress() bool { return m.up.ForbidsProgress() }

// UpdateNetworkReachable flips the network_reachable gate.
func (m *Manager) UpdateNetworkReachable(reachable bool) {
	m.up.SetNetworkReachable(reachable)
	if reachable {
		m.queue.Resume()
	}
}

// EnableStorageWriteAccess flips the storage_write_enabled gate on.
func (m *Manager) EnableStorageWriteAccess() {
	m.up.SetStorageWriteEnabled(true)
	m.queue.Resume()
}

// DisableStorageWriteAccess flips the storage_write_enabled gate off.
func (m *Manager) DisableStorageWriteAccess() {
	m.up.SetStorageWriteEnabled(false)
}

// RegisterFileProgressStream forwards every published ProgressEvent to w,
// the Go idiom replacing register_file_progress_stream's isolate port.
func (m *Manager) RegisterFileProgressStream(w engine.ProgressWriter) {
	go func() {
		for event := range m.hub.Broadcast() {
			if err := w.WriteProgress(event); err != nil {
				return
			}
		}
	}()
}

var _ engine.StorageService = (*Manager)(nil)

func fileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}
