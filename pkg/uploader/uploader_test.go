package uploader

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CloneWith/storageengine/internal/cloud/fakecloud"
	"github.com/CloneWith/storageengine/internal/notify"
	"github.com/CloneWith/storageengine/pkg/chunked"
	"github.com/CloneWith/storageengine/pkg/progresshub"
	"github.com/CloneWith/storageengine/pkg/taskqueue"
	"github.com/CloneWith/storageengine/pkg/tempstore"
	"github.com/CloneWith/storageengine/pkg/uploadmodel"
	"github.com/CloneWith/storageengine/pkg/uploadstore"
)

type harness struct {
	uploader *Uploader
	store    *uploadstore.Store
	cloud    *fakecloud.Cloud
	hub      *progresshub.Hub
	queue    *taskqueue.Queue
	temp     *tempstore.Store
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	store, err := uploadstore.NewInMemory()
	require.NoError(t, err)

	temp, err := tempstore.New(t.TempDir())
	require.NoError(t, err)

	cloud := fakecloud.New()
	queue := taskqueue.New()
	hub := progresshub.New(func(fileID string) bool { return false })
	bus := notify.New()

	return &harness{
		uploader: New(DefaultConfig(), queue, store, cloud, hub, bus, temp),
		store:    store,
		cloud:    cloud,
		hub:      hub,
		queue:    queue,
		temp:     temp,
	}
}

func writeFile(t *testing.T, size int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "upload.bin")
	data := make([]byte, size)
	for i := range data {
		data[i] = byte(i % 256)
	}
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func buildRecord(t *testing.T, h *harness, size int, chunkSize int64) *uploadmodel.UploadFileRecord {
	t.Helper()
	srcPath := writeFile(t, size)
	cachedPath, err := h.temp.CreateTempFileFromExisting(srcPath)
	require.NoError(t, err)

	fileID, err := chunked.FileID(cachedPath)
	require.NoError(t, err)

	record := &uploadmodel.UploadFileRecord{
		WorkspaceID:   "ws-1",
		ParentDir:     "/docs",
		FileID:        fileID,
		LocalFilePath: cachedPath,
		ContentType:   "application/octet-stream",
		ChunkSize:     chunkSize,
		NumChunk:      chunked.TotalChunks(int64(size), chunkSize),
		CreatedAt:     time.Now().Unix(),
	}
	require.NoError(t, h.store.InsertUploadFile(context.Background(), record))
	return record
}

func TestHappyPathThreeParts(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	record := buildRecord(t, h, 12<<20, 5<<20)
	require.Equal(t, 3, record.NumChunk)

	require.NoError(t, h.uploader.runProtocol(ctx, record))

	done, err := h.store.IsUploadCompleted(ctx, record.Identity())
	require.NoError(t, err)
	assert.True(t, done)

	_, err = os.Stat(record.LocalFilePath)
	assert.True(t, os.IsNotExist(err))
}

func TestRestartMidUploadResumesFromPersistedOffset(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	record := buildRecord(t, h, 15<<20, 5<<20)
	require.Equal(t, 3, record.NumChunk)

	h.cloud.FailCompleteOnce = false
	uploadID, err := h.cloud.CreateUpload(ctx, record.WorkspaceID, record.ParentDir, record.FileID, record.ContentType)
	require.NoError(t, err)
	require.NoError(t, h.store.UpdateUploadFileUploadID(ctx, record.Identity(), uploadID))
	record.UploadID = uploadID

	reader, err := chunked.Open(record.LocalFilePath, record.ChunkSize)
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		chunk, part, err := reader.NextChunk()
		require.NoError(t, err)
		ack, err := h.cloud.UploadPart(ctx, record.WorkspaceID, record.ParentDir, uploadID, record.FileID, part, chunk)
		require.NoError(t, err)
		require.NoError(t, h.store.InsertUploadPart(ctx, uploadID, ack.PartNum, ack.ETag))
	}
	reader.Close()

	reloaded, err := h.store.SelectUploadFile(ctx, record.Identity())
	require.NoError(t, err)

	require.NoError(t, h.uploader.runProtocol(ctx, reloaded))

	done, err := h.store.IsUploadCompleted(ctx, record.Identity())
	require.NoError(t, err)
	assert.True(t, done)
}

func TestCompleteFailureWipesPartsForFreshRetry(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	record := buildRecord(t, h, 6<<20, 5<<20)
	require.Equal(t, 2, record.NumChunk)

	h.cloud.FailCompleteOnce = true
	err := h.uploader.runProtocol(ctx, record)
	assert.Error(t, err)

	reloaded, err := h.store.SelectUploadFile(ctx, record.Identity())
	require.NoError(t, err)
	require.Empty(t, reloaded.UploadID)

	parts, err := h.store.SelectUploadParts(ctx, reloaded.UploadID)
	require.NoError(t, err)
	assert.Empty(t, parts)

	require.NoError(t, h.uploader.runProtocol(ctx, reloaded))
	done, err := h.store.IsUploadCompleted(ctx, record.Identity())
	require.NoError(t, err)
	assert.True(t, done)
}

func TestMissingLocalFileIsTerminal(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	record := buildRecord(t, h, 1<<20, 5<<20)

	require.NoError(t, os.Remove(record.LocalFilePath))

	err := h.uploader.runProtocol(ctx, record)
	assert.Error(t, err)

	_, err = h.store.SelectUploadFile(ctx, record.Identity())
	assert.ErrorIs(t, err, uploadmodel.ErrRecordNotFound)
}

func TestGatesBlockProgress(t *testing.T) {
	h := newHarness(t)
	assert.False(t, h.uploader.gates.forbidsProgress())

	h.uploader.SetNetworkReachable(false)
	assert.True(t, h.uploader.gates.forbidsProgress())

	h.uploader.SetNetworkReachable(true)
	assert.False(t, h.uploader.gates.forbidsProgress())
}
