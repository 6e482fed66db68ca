// Package tempstore implements a scoped, content-addressed cache of user
// files rooted at "<app_root>/cache_files". The engine copies files into
// it before uploading and never touches the original.
package tempstore

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/CloneWith/storageengine/pkg/chunked"
)

// Store is a content-addressed copy cache: two calls with byte-identical
// source files collapse onto the same cache entry.
type Store struct {
	root string
}

// New roots a Store at "<appRoot>/cache_files", creating the directory if
// it does not already exist.
func New(appRoot string) (*Store, error) {
	root := filepath.Join(appRoot, "cache_files")
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("tempstore: create cache directory: %w", err)
	}
	return &Store{root: root}, nil
}

// CreateTempFileFromExisting copies source into the cache, naming the
// entry after the source's content fingerprint so identical inputs reuse
// one cached copy. Returns the cached path.
func (s *Store) CreateTempFileFromExisting(sourcePath string) (string, error) {
	fileID, err := chunked.FileID(sourcePath)
	if err != nil {
		return "", fmt.Errorf("tempstore: fingerprint source: %w", err)
	}

	dest := filepath.Join(s.root, fileID)

	if _, err := os.Stat(dest); err == nil {
		return dest, nil
	}

	if err := copyFile(sourcePath, dest); err != nil {
		return "", fmt.Errorf("tempstore: copy into cache: %w", err)
	}

	return dest, nil
}

// DeleteTempFile best-effort removes a cached copy; absence is not an error.
func (s *Store) DeleteTempFile(path string) {
	_ = os.Remove(path)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	tmp := dst + ".tmp"
	out, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(tmp)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return err
	}

	return os.Rename(tmp, dst)
}
