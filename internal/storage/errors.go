package storage

import (
	"fmt"

	"github.com/rohmanhakim/sitemap-crawler/pkg/failure"
)

type StorageErrorCause string

const (
	ErrCauseDiskFull       StorageErrorCause = "disk is full"
	ErrCauseWriteFailure   StorageErrorCause = "write failed"
	ErrCauseCleanupFailure StorageErrorCause = "cleanup failed"
)

type StorageError struct {
	Message string
	Cause   StorageErrorCause
	Path    string
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error: %s: %s", e.Cause, e.Message)
}

// A failed artifact write is confined to its URL; a failed pre-run cleanup
// means the output contract for the whole domain cannot hold, so it aborts
// the run before any fetch is dispatched.
func (e *StorageError) Severity() failure.Severity {
	if e.Cause == ErrCauseCleanupFailure {
		return failure.SeverityFatal
	}
	return failure.SeverityRecoverable
}
