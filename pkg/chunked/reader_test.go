package chunked

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, size int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.bin")
	data := make([]byte, size)
	for i := range data {
		data[i] = byte(i % 251)
	}
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestTotalChunksHappyPath(t *testing.T) {
	assert.Equal(t, 3, TotalChunks(12<<20, 5<<20))
}

func TestTotalChunksExactMultiple(t *testing.T) {
	assert.Equal(t, 2, TotalChunks(10<<20, 5<<20))
}

func TestTotalChunksEmptyFile(t *testing.T) {
	assert.Equal(t, 0, TotalChunks(0, 5<<20))
}

func TestNextChunkReadsInOrder(t *testing.T) {
	path := writeTempFile(t, 25)
	r, err := Open(path, 10)
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, 3, r.TotalChunks())

	chunk1, part1, err := r.NextChunk()
	require.NoError(t, err)
	assert.Equal(t, 1, part1)
	assert.Len(t, chunk1, 10)

	chunk2, part2, err := r.NextChunk()
	require.NoError(t, err)
	assert.Equal(t, 2, part2)
	assert.Len(t, chunk2, 10)

	chunk3, part3, err := r.NextChunk()
	require.NoError(t, err)
	assert.Equal(t, 3, part3)
	assert.Len(t, chunk3, 5)

	_, _, err = r.NextChunk()
	assert.ErrorIs(t, err, io.EOF)
}

func TestSetOffsetResumesFromPersistedPart(t *testing.T) {
	path := writeTempFile(t, 30)
	r, err := Open(path, 10)
	require.NoError(t, err)
	defer r.Close()

	require.NoError(t, r.SetOffset(2))

	chunk, part, err := r.NextChunk()
	require.NoError(t, err)
	assert.Equal(t, 3, part)
	assert.Len(t, chunk, 10)

	_, _, err = r.NextChunk()
	assert.ErrorIs(t, err, io.EOF)
}

func TestSetOffsetBeyondTotalFails(t *testing.T) {
	path := writeTempFile(t, 10)
	r, err := Open(path, 10)
	require.NoError(t, err)
	defer r.Close()

	err = r.SetOffset(5)
	assert.ErrorIs(t, err, ErrOffsetExceedsTotal)
}

func TestFileIDStableAcrossCalls(t *testing.T) {
	path := writeTempFile(t, 4096)

	id1, err := FileID(path)
	require.NoError(t, err)
	id2, err := FileID(path)
	require.NoError(t, err)

	assert.Equal(t, id1, id2)
	assert.Len(t, id1, 64) // hex-encoded sha256
}

func TestFileIDDiffersOnDifferentContent(t *testing.T) {
	pathA := writeTempFile(t, 100)
	pathB := writeTempFile(t, 101)

	idA, err := FileID(pathA)
	require.NoError(t, err)
	idB, err := FileID(pathB)
	require.NoError(t, err)

	assert.NotEqual(t, idA, idB)
}
