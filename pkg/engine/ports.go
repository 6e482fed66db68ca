// Package engine defines the external collaborator interfaces the storage
// engine consumes: the remote cloud transport, the user/session provider,
// and the facade the engine itself exposes. Implementers may satisfy these
// with concrete adapters (internal/cloud/s3cloud, internal/hostuser) or a
// test double (internal/cloud/fakecloud).
package engine

import (
	"context"

	"gorm.io/gorm"

	"github.com/CloneWith/storageengine/pkg/uploadmodel"
)

// UploadedPart is the remote's acknowledgment of one accepted part.
type UploadedPart struct {
	PartNum int
	ETag    string
}

// CloudService is the remote object-store transport the Uploader drives
// the multipart protocol against.
type CloudService interface {
	// CreateUpload initiates a multipart session and returns its id.
	CreateUpload(ctx context.Context, workspaceID, parentDir, fileID, contentType string) (uploadID string, err error)

	// UploadPart uploads one part and returns the remote's ack.
	UploadPart(ctx context.Context, workspaceID, parentDir, uploadID, fileID string, partNumber int, data []byte) (UploadedPart, error)

	// CompleteUpload finalizes the session given the full ordered part set.
	CompleteUpload(ctx context.Context, workspaceID, parentDir, uploadID, fileID string, parts []uploadmodel.UploadFilePart) error

	// GetObject fetches the full object behind a URL.
	GetObject(ctx context.Context, url string) ([]byte, error)

	// DeleteObject removes the object behind a URL.
	DeleteObject(ctx context.Context, url string) error

	// GetObjectURLV1 composes the canonical URL for a stored object.
	GetObjectURLV1(workspaceID, parentDir, fileID string) string

	// ParseObjectURLV1 decomposes a URL produced by GetObjectURLV1. The
	// second return is false when url does not match the scheme.
	ParseObjectURLV1(url string) (workspaceID, parentDir, fileID string, ok bool)
}

// UserService supplies the identity and resources the engine needs but
// does not own: the caller's user/workspace id, their database handle,
// and the application's root directory for TempStore/UploadStore.
type UserService interface {
	UserID() string
	WorkspaceID() string
	SQLiteConnection(userID string) (*gorm.DB, error)
	ApplicationRootDir() (string, error)
}

// StorageService is the public facade StorageManager implements (spec §4.7).
type StorageService interface {
	CreateUpload(ctx context.Context, workspaceID, parentDir, localFilePath string) (remoteURL, fileID string, progress <-chan uploadmodel.ProgressEvent, err error)
	StartUpload(ctx context.Context, record *uploadmodel.UploadFileRecord) error
	ResumeUpload(ctx context.Context, workspaceID, parentDir, fileID string) error
	SubscribeFileState(parentDir, fileID string) (<-chan uploadmodel.ProgressEvent, bool)
	GetFileState(fileID string) (uploadmodel.ProgressEvent, bool)
	QueryFileState(url string) (uploadmodel.ProgressEvent, bool)
	UpdateNetworkReachable(reachable bool)
	EnableStorageWriteAccess()
	DisableStorageWriteAccess()
	RegisterFileProgressStream(w ProgressWriter)
	Close() error
}

// ProgressWriter is the Go idiom replacing the Dart-isolate "port" concept
// for register_file_progress_stream: a sink that receives every
// ProgressEvent as it is published.
type ProgressWriter interface {
	WriteProgress(uploadmodel.ProgressEvent) error
}
