package tempstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTempFileFromExistingCollapsesDuplicates(t *testing.T) {
	appRoot := t.TempDir()
	store, err := New(appRoot)
	require.NoError(t, err)

	srcDir := t.TempDir()
	srcA := filepath.Join(srcDir, "a.txt")
	srcB := filepath.Join(srcDir, "b.txt")
	require.NoError(t, os.WriteFile(srcA, []byte("identical content"), 0o644))
	require.NoError(t, os.WriteFile(srcB, []byte("identical content"), 0o644))

	pathA, err := store.CreateTempFileFromExisting(srcA)
	require.NoError(t, err)
	pathB, err := store.CreateTempFileFromExisting(srcB)
	require.NoError(t, err)

	assert.Equal(t, pathA, pathB)

	data, err := os.ReadFile(pathA)
	require.NoError(t, err)
	assert.Equal(t, "identical content", string(data))
}

func TestDeleteTempFileAbsenceNotError(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		store.DeleteTempFile(filepath.Join(store.root, "does-not-exist"))
	})
}

func TestCreateTempFileFromExistingDistinctContent(t *testing.T) {
	appRoot := t.TempDir()
	store, err := New(appRoot)
	require.NoError(t, err)

	srcDir := t.TempDir()
	srcA := filepath.Join(srcDir, "a.txt")
	srcB := filepath.Join(srcDir, "b.txt")
	require.NoError(t, os.WriteFile(srcA, []byte("content one"), 0o644))
	require.NoError(t, os.WriteFile(srcB, []byte("content two"), 0o644))

	pathA, err := store.CreateTempFileFromExisting(srcA)
	require.NoError(t, err)
	pathB, err := store.CreateTempFileFromExisting(srcB)
	require.NoError(t, err)

	assert.NotEqual(t, pathA, pathB)
}
