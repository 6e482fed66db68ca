// Package uploadmodel defines the persistent and in-memory shapes the
// upload engine operates on: records and parts stored in UploadStore,
// the task variants TaskQueue carries, and the progress events ProgressHub
// fans out.
package uploadmodel

import "time"

// UploadFileRecord is the durable record of a single file's upload,
// keyed by (WorkspaceID, ParentDir, FileID).
type UploadFileRecord struct {
	WorkspaceID string `gorm:"primaryKey;size:64" json:"workspace_id"`
	ParentDir   string `gorm:"primaryKey;size:512" json:"parent_dir"`
	FileID      string `gorm:"primaryKey;size:128" json:"file_id"`

	// UploadID is the remote multipart session identifier; empty means
	// "not yet initiated".
	UploadID string `gorm:"index;size:256" json:"upload_id"`

	// LocalFilePath points inside TempStore, not at the original file.
	LocalFilePath string `json:"local_file_path"`
	ContentType   string `gorm:"size:255" json:"content_type"`

	ChunkSize int64 `json:"chunk_size"`
	NumChunk  int   `json:"num_chunk"`

	CreatedAt int64 `json:"created_at"`
	IsFinish  bool  `gorm:"default:false" json:"is_finish"`
}

// TableName pins the GORM table name regardless of struct renames.
func (UploadFileRecord) TableName() string { return "upload_file_records" }

// Identity returns the composite key identifying this record.
func (r *UploadFileRecord) Identity() RecordIdentity {
	return RecordIdentity{WorkspaceID: r.WorkspaceID, ParentDir: r.ParentDir, FileID: r.FileID}
}

// RecordIdentity is the composite primary key of an UploadFileRecord.
type RecordIdentity struct {
	WorkspaceID string
	ParentDir   string
	FileID      string
}

// UploadFilePart is one durably-acknowledged part of a multipart upload.
type UploadFilePart struct {
	UploadID string `gorm:"primaryKey;size:256" json:"upload_id"`
	PartNum  int    `gorm:"primaryKey" json:"part_num"`
	ETag     string `json:"e_tag"`
}

// TableName pins the GORM table name regardless of struct renames.
func (UploadFilePart) TableName() string { return "upload_file_parts" }

// AllModels lists every GORM model the store must migrate, in the style
// of the teacher's models.AllModels().
func AllModels() []any {
	return []any{
		&UploadFileRecord{},
		&UploadFilePart{},
	}
}

// TaskClass distinguishes the three UploadTask variants so the TaskQueue
// can order them and logging/metrics can label them.
type TaskClass string

const (
	TaskImmediate TaskClass = "immediate"
	TaskBackground TaskClass = "background"
	TaskRecovered  TaskClass = "recovered"
)

// InitialRetryCount is the retry budget a freshly created foreground task
// carries (spec §4.5.1); background/recovered tasks carry none.
const InitialRetryCount = 3

// UploadTask is the in-memory unit of work the TaskQueue holds. Immediate
// tasks carry a fully-loaded record (the caller just created it); the
// other two classes carry only identity and are resolved against
// UploadStore when dequeued.
type UploadTask struct {
	Class      TaskClass
	Record     *UploadFileRecord // set for TaskImmediate
	Identity   RecordIdentity    // set for TaskBackground/TaskRecovered
	RetryCount int
}

// NewImmediateTask builds a foreground task for a just-created record.
func NewImmediateTask(record *UploadFileRecord) UploadTask {
	return UploadTask{Class: TaskImmediate, Record: record, RetryCount: InitialRetryCount}
}

// NewBackgroundTask builds a backlog task referring to an existing record.
func NewBackgroundTask(id RecordIdentity) UploadTask {
	return UploadTask{Class: TaskBackground, Identity: id, RetryCount: 0}
}

// NewRecoveredTask builds a task produced by the restart recovery scan.
func NewRecoveredTask(id RecordIdentity) UploadTask {
	return UploadTask{Class: TaskRecovered, Identity: id, RetryCount: 0}
}

// Identity_ returns the task's record identity regardless of class.
func (t UploadTask) Identity_() RecordIdentity {
	if t.Class == TaskImmediate && t.Record != nil {
		return t.Record.Identity()
	}
	return t.Identity
}

// ProgressState is the tagged state of a ProgressEvent.
type ProgressState int

const (
	StateUploading ProgressState = iota
	StateFinished
	StateError
)

// ProgressEvent is published to ProgressHub at each part and at completion.
type ProgressEvent struct {
	URL       string
	FileID    string
	State     ProgressState
	Progress  float64 // meaningful only when State == StateUploading
	ErrorMsg  string  // meaningful only when State == StateError
	Timestamp time.Time
}

// Uploading builds a StateUploading event.
func Uploading(url, fileID string, progress float64) ProgressEvent {
	return ProgressEvent{URL: url, FileID: fileID, State: StateUploading, Progress: progress, Timestamp: time.Now()}
}

// Finished builds a StateFinished event.
func Finished(url, fileID string) ProgressEvent {
	return ProgressEvent{URL: url, FileID: fileID, State: StateFinished, Progress: 1.0, Timestamp: time.Now()}
}

// ErrorEvent builds a StateError event.
func ErrorEvent(url, fileID, msg string) ProgressEvent {
	return ProgressEvent{URL: url, FileID: fileID, State: StateError, ErrorMsg: msg, Timestamp: time.Now()}
}
