package s3cloud

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectKeyWithParentDir(t *testing.T) {
	s := &Store{bucket: "bucket"}
	assert.Equal(t, "ws-1/docs/file-1", s.objectKey("ws-1", "/docs", "file-1"))
}

func TestObjectKeyWithoutParentDir(t *testing.T) {
	s := &Store{bucket: "bucket"}
	assert.Equal(t, "ws-1/file-1", s.objectKey("ws-1", "", "file-1"))
}

func TestGetObjectURLV1AndParseRoundTrip(t *testing.T) {
	s := &Store{bucket: "my-bucket"}
	url := s.GetObjectURLV1("ws-1", "/docs/sub", "file-1")
	assert.Equal(t, "s3://my-bucket/ws-1/docs/sub/file-1", url)

	ws, parent, fileID, ok := s.ParseObjectURLV1(url)
	require.True(t, ok)
	assert.Equal(t, "ws-1", ws)
	assert.Equal(t, "/docs/sub", parent)
	assert.Equal(t, "file-1", fileID)
}

func TestParseObjectURLV1RejectsOtherBucket(t *testing.T) {
	s := &Store{bucket: "my-bucket"}
	_, _, _, ok := s.ParseObjectURLV1("s3://other-bucket/ws-1/file-1")
	assert.False(t, ok)
}
