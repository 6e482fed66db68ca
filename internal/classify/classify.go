// Package classify maps errors returned by a CloudService implementation
// onto the six behavioral categories the Uploader reacts to (spec §7):
// Transient, QuotaExceeded, SingleFileTooLarge, MissingLocalFile,
// Duplicate, and Corrupt. Grounded on the teacher's error-type-switch
// idiom in pkg/store/content/s3 (isRetryableError / isNotFoundError).
package classify

import (
	"context"
	"errors"
	"os"

	"github.com/aws/smithy-go"

	"github.com/CloneWith/storageengine/pkg/uploadmodel"
)

// Category is one of the six behavioral error classes from spec §7.
type Category int

const (
	Transient Category = iota
	QuotaExceeded
	SingleFileTooLarge
	MissingLocalFile
	Duplicate
	Corrupt
)

func (c Category) String() string {
	switch c {
	case Transient:
		return "transient"
	case QuotaExceeded:
		return "quota_exceeded"
	case SingleFileTooLarge:
		return "single_file_too_large"
	case MissingLocalFile:
		return "missing_local_file"
	case Duplicate:
		return "duplicate"
	case Corrupt:
		return "corrupt"
	default:
		return "unknown"
	}
}

// Sentinel errors a CloudService implementation returns for conditions
// that have no standard AWS error type to key off of.
var (
	ErrQuotaExceeded  = errors.New("classify: workspace storage quota exceeded")
	ErrObjectTooLarge = errors.New("classify: object exceeds the single-file size limit")
)

// Classify inspects err and returns the category the Uploader's retry
// policy should apply.
func Classify(err error) Category {
	switch {
	case err == nil:
		return Transient // callers never classify a nil error; safe default
	case errors.Is(err, uploadmodel.ErrDuplicateRecord):
		return Duplicate
	case errors.Is(err, os.ErrNotExist):
		return MissingLocalFile
	case errors.Is(err, ErrQuotaExceeded):
		return QuotaExceeded
	case errors.Is(err, ErrObjectTooLarge):
		return SingleFileTooLarge
	case errors.Is(err, uploadmodel.ErrRecordNotFound), errors.Is(err, uploadmodel.ErrUploadNotFound):
		return Corrupt
	case isTransientTransportError(err):
		return Transient
	default:
		return Corrupt
	}
}

// isTransientTransportError recognizes network timeouts, context
// deadlines, and AWS throttling/5xx responses as retryable, mirroring the
// teacher's isRetryableError switch over smithy API error types.
func isTransientTransportError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "RequestTimeout", "SlowDown", "InternalError", "ServiceUnavailable", "Throttling", "ThrottlingException":
			return true
		}
	}

	var retryable interface{ RetryableError() bool }
	if errors.As(err, &retryable) {
		return retryable.RetryableError()
	}

	return false
}
