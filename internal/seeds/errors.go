package seeds

import (
	"fmt"

	"github.com/rohmanhakim/sitemap-crawler/pkg/failure"
)

type SeedListErrorCause string

const (
	ErrCauseSeedListUnreadable SeedListErrorCause = "seed list unreadable"
)

type SeedListError struct {
	Message string
	Cause   SeedListErrorCause
}

func (e *SeedListError) Error() string {
	return fmt.Sprintf("seed list error: %s: %s", e.Cause, e.Message)
}

// A broken seed list means the run has no defined input. Always fatal.
func (e *SeedListError) Severity() failure.Severity {
	return failure.SeverityFatal
}
