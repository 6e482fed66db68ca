package uploadmodel

import "errors"

// Sentinel errors returned by UploadStore and consumed by the Uploader's
// error classification.
var (
	ErrRecordNotFound  = errors.New("upload record not found")
	ErrDuplicateRecord = errors.New("upload record already exists")
	ErrUploadNotFound  = errors.New("upload session not found")
)
