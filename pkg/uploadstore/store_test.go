package uploadstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CloneWith/storageengine/pkg/uploadmodel"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewInMemory()
	require.NoError(t, err)
	return store
}

func sampleRecord() *uploadmodel.UploadFileRecord {
	return &uploadmodel.UploadFileRecord{
		WorkspaceID: "ws-1",
		ParentDir:   "/docs",
		FileID:      "file-abc",
		ChunkSize:   5 << 20,
		NumChunk:    3,
		CreatedAt:   1000,
	}
}

func TestInsertAndSelectUploadFile(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	record := sampleRecord()

	require.NoError(t, store.InsertUploadFile(ctx, record))

	got, err := store.SelectUploadFile(ctx, record.Identity())
	require.NoError(t, err)
	assert.Equal(t, record.FileID, got.FileID)
	assert.Equal(t, 3, got.NumChunk)
}

func TestInsertUploadFileDuplicate(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	record := sampleRecord()

	require.NoError(t, store.InsertUploadFile(ctx, record))
	err := store.InsertUploadFile(ctx, sampleRecord())
	assert.ErrorIs(t, err, uploadmodel.ErrDuplicateRecord)
}

func TestSelectUploadFileNotFound(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	_, err := store.SelectUploadFile(ctx, uploadmodel.RecordIdentity{WorkspaceID: "x", ParentDir: "y", FileID: "z"})
	assert.ErrorIs(t, err, uploadmodel.ErrRecordNotFound)
}

func TestUploadIDAndPartsLifecycle(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	record := sampleRecord()
	require.NoError(t, store.InsertUploadFile(ctx, record))

	require.NoError(t, store.UpdateUploadFileUploadID(ctx, record.Identity(), "up-1"))

	require.NoError(t, store.InsertUploadPart(ctx, "up-1", 1, "etag-1"))
	require.NoError(t, store.InsertUploadPart(ctx, "up-1", 2, "etag-2"))

	parts, err := store.SelectUploadParts(ctx, "up-1")
	require.NoError(t, err)
	require.Len(t, parts, 2)
	assert.Equal(t, 1, parts[0].PartNum)
	assert.Equal(t, 2, parts[1].PartNum)

	require.NoError(t, store.DeleteAllUploadParts(ctx, "up-1"))
	parts, err = store.SelectUploadParts(ctx, "up-1")
	require.NoError(t, err)
	assert.Empty(t, parts)
}

func TestCompletionIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	record := sampleRecord()
	require.NoError(t, store.InsertUploadFile(ctx, record))
	require.NoError(t, store.UpdateUploadFileUploadID(ctx, record.Identity(), "up-1"))

	require.NoError(t, store.UpdateUploadFileCompleted(ctx, "up-1"))
	done, err := store.IsUploadCompleted(ctx, record.Identity())
	require.NoError(t, err)
	assert.True(t, done)

	require.NoError(t, store.UpdateUploadFileCompleted(ctx, "up-1"))
	done, err = store.IsUploadCompleted(ctx, record.Identity())
	require.NoError(t, err)
	assert.True(t, done)
}

func TestDeleteUploadFileCascadesParts(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	record := sampleRecord()
	require.NoError(t, store.InsertUploadFile(ctx, record))
	require.NoError(t, store.UpdateUploadFileUploadID(ctx, record.Identity(), "up-1"))
	require.NoError(t, store.InsertUploadPart(ctx, "up-1", 1, "etag-1"))

	require.NoError(t, store.DeleteUploadFile(ctx, record.Identity()))

	_, err := store.SelectUploadFile(ctx, record.Identity())
	assert.ErrorIs(t, err, uploadmodel.ErrRecordNotFound)

	parts, err := store.SelectUploadParts(ctx, "up-1")
	require.NoError(t, err)
	assert.Empty(t, parts)
}

func TestBatchSelectUploadFile(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	require.NoError(t, store.InsertUploadFile(ctx, sampleRecord()))

	finished := sampleRecord()
	finished.FileID = "file-def"
	finished.IsFinish = true
	require.NoError(t, store.InsertUploadFile(ctx, finished))

	unfinished, err := store.BatchSelectUploadFile(ctx, 100, false)
	require.NoError(t, err)
	assert.Len(t, unfinished, 1)

	completed, err := store.BatchSelectUploadFile(ctx, 100, true)
	require.NoError(t, err)
	assert.Len(t, completed, 1)
}
