package fakecloud

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CloneWith/storageengine/pkg/uploadmodel"
)

func TestFullUploadRoundTrip(t *testing.T) {
	ctx := context.Background()
	cloud := New()

	uploadID, err := cloud.CreateUpload(ctx, "ws-1", "/docs", "file-1", "application/octet-stream")
	require.NoError(t, err)

	ack1, err := cloud.UploadPart(ctx, "ws-1", "/docs", uploadID, "file-1", 1, []byte("hello "))
	require.NoError(t, err)
	ack2, err := cloud.UploadPart(ctx, "ws-1", "/docs", uploadID, "file-1", 2, []byte("world"))
	require.NoError(t, err)

	parts := []uploadmodel.UploadFilePart{
		{UploadID: uploadID, PartNum: ack1.PartNum, ETag: ack1.ETag},
		{UploadID: uploadID, PartNum: ack2.PartNum, ETag: ack2.ETag},
	}
	require.NoError(t, cloud.CompleteUpload(ctx, "ws-1", "/docs", uploadID, "file-1", parts))

	url := cloud.GetObjectURLV1("ws-1", "/docs", "file-1")
	data, err := cloud.GetObject(ctx, url)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(data))
}

func TestParseObjectURLV1RoundTrips(t *testing.T) {
	cloud := New()
	url := cloud.GetObjectURLV1("ws-1", "/docs/sub", "file-1")

	ws, parent, fileID, ok := cloud.ParseObjectURLV1(url)
	require.True(t, ok)
	assert.Equal(t, "ws-1", ws)
	assert.Equal(t, "/docs/sub", parent)
	assert.Equal(t, "file-1", fileID)
}

func TestFailQuotaOnCreate(t *testing.T) {
	cloud := New()
	cloud.FailQuotaOnCreate = true

	_, err := cloud.CreateUpload(context.Background(), "ws-1", "/d", "file-1", "text/plain")
	assert.Error(t, err)
}

func TestUploadPartNotFoundSession(t *testing.T) {
	cloud := New()
	_, err := cloud.UploadPart(context.Background(), "ws-1", "/d", "missing", "file-1", 1, []byte("x"))
	assert.ErrorIs(t, err, uploadmodel.ErrUploadNotFound)
}
