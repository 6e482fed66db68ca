// Package uploadstore is the durable record of (file, parts completed)
// keyed by (workspace, parent_dir, file_id). It is a thin relational
// abstraction over GORM/SQLite: every call acquires the connection for the
// duration of one statement, no transaction is held across awaits.
package uploadstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/CloneWith/storageengine/pkg/uploadmodel"
)

// Config configures the SQLite-backed UploadStore.
type Config struct {
	// Path is the path to the SQLite database file. Default:
	// "<app_root>/uploads.db".
	Path string
}

// ApplyDefaults fills in missing configuration with default values.
func (c *Config) ApplyDefaults(appRoot string) {
	if c.Path == "" {
		c.Path = filepath.Join(appRoot, "uploads.db")
	}
}

// Store is a GORM-backed implementation of the upload persistence layer
// described in spec §4.3.
type Store struct {
	db *gorm.DB
}

// New opens (creating if absent) the SQLite database at cfg.Path and runs
// AutoMigrate for the upload models.
func New(cfg *Config) (*Store, error) {
	if cfg == nil || cfg.Path == "" {
		return nil, fmt.Errorf("uploadstore: path is required")
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, fmt.Errorf("uploadstore: create database directory: %w", err)
	}

	// WAL + busy_timeout: concurrent readers, single writer, and bounded
	// waiting instead of immediate SQLITE_BUSY errors.
	dsn := cfg.Path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("uploadstore: open database: %w", err)
	}

	if err := db.AutoMigrate(uploadmodel.AllModels()...); err != nil {
		return nil, fmt.Errorf("uploadstore: migrate: %w", err)
	}

	return &Store{db: db}, nil
}

// NewInMemory opens an in-memory SQLite database, for tests.
func NewInMemory() (*Store, error) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("uploadstore: open in-memory database: %w", err)
	}
	if err := db.AutoMigrate(uploadmodel.AllModels()...); err != nil {
		return nil, fmt.Errorf("uploadstore: migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// NewFromDB wraps an already-open GORM handle — e.g. one obtained from a
// UserService.SQLiteConnection — and runs AutoMigrate against it. Used
// when the caller's UserService owns the connection's lifecycle rather
// than Store itself.
func NewFromDB(db *gorm.DB) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("uploadstore: db is required")
	}
	if err := db.AutoMigrate(uploadmodel.AllModels()...); err != nil {
		return nil, fmt.Errorf("uploadstore: migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// DB returns the underlying GORM handle, for advanced queries or tests.
func (s *Store) DB() *gorm.DB { return s.db }

// InsertUploadFile persists a new record. Returns uploadmodel.ErrDuplicateRecord
// on primary-key collision — the caller treats this as a benign no-op.
func (s *Store) InsertUploadFile(ctx context.Context, record *uploadmodel.UploadFileRecord) error {
	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		if isUniqueConstraintError(err) {
			return uploadmodel.ErrDuplicateRecord
		}
		return err
	}
	return nil
}

// SelectUploadFile loads a record by its composite identity. Returns
// uploadmodel.ErrRecordNotFound when absent.
func (s *Store) SelectUploadFile(ctx context.Context, id uploadmodel.RecordIdentity) (*uploadmodel.UploadFileRecord, error) {
	var record uploadmodel.UploadFileRecord
	err := s.db.WithContext(ctx).
		Where("workspace_id = ? AND parent_dir = ? AND file_id = ?", id.WorkspaceID, id.ParentDir, id.FileID).
		First(&record).Error
	if err != nil {
		return nil, convertNotFoundError(err, uploadmodel.ErrRecordNotFound)
	}
	return &record, nil
}

// BatchSelectUploadFile enumerates unfinished (or, if onlyCompleted, finished)
// records, up to limit, used at startup to find recoverable work.
func (s *Store) BatchSelectUploadFile(ctx context.Context, limit int, onlyCompleted bool) ([]*uploadmodel.UploadFileRecord, error) {
	var records []*uploadmodel.UploadFileRecord
	q := s.db.WithContext(ctx).Where("is_finish = ?", onlyCompleted)
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// UpdateUploadFileUploadID persists the remote session id assigned to a record.
func (s *Store) UpdateUploadFileUploadID(ctx context.Context, id uploadmodel.RecordIdentity, uploadID string) error {
	result := s.db.WithContext(ctx).Model(&uploadmodel.UploadFileRecord{}).
		Where("workspace_id = ? AND parent_dir = ? AND file_id = ?", id.WorkspaceID, id.ParentDir, id.FileID).
		Update("upload_id", uploadID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return uploadmodel.ErrRecordNotFound
	}
	return nil
}

// UpdateUploadFileCompleted marks the record with this upload_id as
// finished. Idempotent: a second call against an already-finished record
// is a no-op, not an error.
func (s *Store) UpdateUploadFileCompleted(ctx context.Context, uploadID string) error {
	return s.db.WithContext(ctx).Model(&uploadmodel.UploadFileRecord{}).
		Where("upload_id = ?", uploadID).
		Update("is_finish", true).Error
}

// IsUploadCompleted reports whether the record at this identity is marked
// finished. Returns false (not an error) when the record does not exist.
func (s *Store) IsUploadCompleted(ctx context.Context, id uploadmodel.RecordIdentity) (bool, error) {
	record, err := s.SelectUploadFile(ctx, id)
	if err != nil {
		return false, nil
	}
	return record.IsFinish, nil
}

// IsUploadCompletedByFileID looks a record up by file_id alone, for
// callers that only carry the content-hash identity — ProgressHub's
// subscribe-refusal check (spec §4.6) has no workspace/parent_dir to key
// on. Returns false, not an error, when no record matches.
func (s *Store) IsUploadCompletedByFileID(ctx context.Context, fileID string) (bool, error) {
	var record uploadmodel.UploadFileRecord
	err := s.db.WithContext(ctx).
		Where("file_id = ?", fileID).
		First(&record).Error
	if err != nil {
		return false, nil
	}
	return record.IsFinish, nil
}

// DeleteUploadFile removes the record and cascades to its parts.
func (s *Store) DeleteUploadFile(ctx context.Context, id uploadmodel.RecordIdentity) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var record uploadmodel.UploadFileRecord
		err := tx.Where("workspace_id = ? AND parent_dir = ? AND file_id = ?", id.WorkspaceID, id.ParentDir, id.FileID).
			First(&record).Error
		if err != nil {
			return convertNotFoundError(err, uploadmodel.ErrRecordNotFound)
		}

		if record.UploadID != "" {
			if err := tx.Where("upload_id = ?", record.UploadID).Delete(&uploadmodel.UploadFilePart{}).Error; err != nil {
				return err
			}
		}

		return tx.Where("workspace_id = ? AND parent_dir = ? AND file_id = ?", id.WorkspaceID, id.ParentDir, id.FileID).
			Delete(&uploadmodel.UploadFileRecord{}).Error
	})
}

// InsertUploadPart durably checkpoints one accepted part.
func (s *Store) InsertUploadPart(ctx context.Context, uploadID string, partNum int, eTag string) error {
	part := &uploadmodel.UploadFilePart{UploadID: uploadID, PartNum: partNum, ETag: eTag}
	return s.db.WithContext(ctx).Create(part).Error
}

// SelectUploadParts returns all checkpointed parts for an upload session,
// sorted ascending by part number.
func (s *Store) SelectUploadParts(ctx context.Context, uploadID string) ([]*uploadmodel.UploadFilePart, error) {
	var parts []*uploadmodel.UploadFilePart
	err := s.db.WithContext(ctx).
		Where("upload_id = ?", uploadID).
		Order("part_num ASC").
		Find(&parts).Error
	if err != nil {
		return nil, err
	}
	return parts, nil
}

// DeleteAllUploadParts wipes every checkpointed part for a session, forcing
// a clean retry from part 1 with a fresh upload_id.
func (s *Store) DeleteAllUploadParts(ctx context.Context, uploadID string) error {
	return s.db.WithContext(ctx).Where("upload_id = ?", uploadID).Delete(&uploadmodel.UploadFilePart{}).Error
}

func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "duplicate key value violates unique constraint")
}

func convertNotFoundError(err error, notFoundErr error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFoundErr
	}
	return err
}
