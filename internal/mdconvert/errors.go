package mdconvert

import (
	"fmt"

	"github.com/rohmanhakim/sitemap-crawler/pkg/failure"
)

type ConversionErrorCause string

const (
	ErrCauseConversionFailure ConversionErrorCause = "conversion failure"
)

type ConversionError struct {
	Message string
	Cause   ConversionErrorCause
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("conversion error: %s: %s", e.Cause, e.Message)
}

// Conversion failures are confined to a single URL.
func (e *ConversionError) Severity() failure.Severity {
	return failure.SeverityRecoverable
}
