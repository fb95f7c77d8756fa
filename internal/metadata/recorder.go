package metadata

import (
	"os"
	"time"

	"github.com/charmbracelet/log"
)

/*
Metadata Collected
- Fetch timestamps and HTTP status codes
- Per-URL outcomes with frontier position
- Written artifact paths
- Final run summary

Logging Goals
- Debuggable crawl behavior
- Post-run auditability
- Failure diagnostics

Determinism guarantees:
 - Metadata does not affect control flow
 - Errors do not reorder the frontier
 - Output is stable given identical inputs (modulo timestamps)

Metadata is write-only.
No component may read metadata to influence crawl decisions.
*/

/*
Recorder captures structured crawl events and renders them as log lines.
It must not:
- perform I/O decisions
- affect control flow
Ordering guarantees:
- Events are recorded synchronously in the order they are received by a single worker.
- No global ordering across workers is guaranteed.
- Consumers MUST NOT assume total ordering across the crawl.
- Ordering is provided for debuggability, not causality.
*/
type Recorder struct {
	logger *log.Logger
}

func NewRecorder() *Recorder {
	return &Recorder{
		logger: log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
		}),
	}
}

// NewRecorderWithLogger allows injecting a preconfigured logger.
func NewRecorderWithLogger(logger *log.Logger) *Recorder {
	return &Recorder{logger: logger}
}

func (r *Recorder) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause ErrorCause,
	details string,
	attrs []Attribute,
) {
	kv := []interface{}{
		"package", packageName,
		"action", action,
		"cause", cause.String(),
	}
	for _, attr := range attrs {
		kv = append(kv, string(attr.key), attr.value)
	}
	r.logger.Warn(details, kv...)
}

func (r *Recorder) RecordFetch(
	fetchURL string,
	httpStatus int,
	duration time.Duration,
	contentType string,
	index int,
	total int,
) {
	r.logger.Info("crawled",
		"progress", progressTag(index, total),
		"url", fetchURL,
		"status", httpStatus,
		"contentType", contentType,
		"duration", duration.Round(time.Millisecond),
	)
}

func (r *Recorder) RecordSkip(fetchURL string, reason string, index int, total int) {
	r.logger.Info("skipped",
		"progress", progressTag(index, total),
		"url", fetchURL,
		"reason", reason,
	)
}

func (r *Recorder) RecordArtifact(kind ArtifactKind, path string, attrs []Attribute) {
	kv := []interface{}{"kind", string(kind), "path", path}
	for _, attr := range attrs {
		kv = append(kv, string(attr.key), attr.value)
	}
	r.logger.Info("saved", kv...)
}

/*
RecordFinalCrawlStats records a terminal, derived summary of a completed crawl.

Contract:
  - MUST be called exactly once per crawl execution.
  - MUST be called only after crawl termination
    (frontier exhausted or scheduler abort).
  - The provided counts MUST be derived from scheduler state,
    not accumulated incrementally via the recorder.
  - Recorded stats MUST NOT influence control flow or scheduling.
*/
func (r *Recorder) RecordFinalCrawlStats(
	successes int,
	skips int,
	failures int,
	duration time.Duration,
) {
	r.logger.Info("crawl complete",
		"successes", successes,
		"skips", skips,
		"failures", failures,
		"duration", duration.Round(time.Millisecond),
	)
}

type MetadataSink interface {
	RecordError(
		observedAt time.Time,
		packageName string,
		action string,
		cause ErrorCause,
		details string,
		attrs []Attribute,
	)

	RecordFetch(
		fetchURL string,
		httpStatus int,
		duration time.Duration,
		contentType string,
		index int,
		total int,
	)

	RecordSkip(fetchURL string, reason string, index int, total int)

	RecordArtifact(kind ArtifactKind, path string, attrs []Attribute)
}

type CrawlFinalizer interface {
	RecordFinalCrawlStats(
		successes int,
		skips int,
		failures int,
		duration time.Duration,
	)
}

// NoopSink implements MetadataSink but does nothing.
// Scheduler (or tests) can decide whether to inject Recorder or NoopSink.
// Purpose is to keep metadata orthogonal.
type NoopSink struct{}

func (n *NoopSink) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause ErrorCause,
	details string,
	attrs []Attribute,
) {
}

func (n *NoopSink) RecordFetch(
	fetchURL string,
	httpStatus int,
	duration time.Duration,
	contentType string,
	index int,
	total int,
) {
}

func (n *NoopSink) RecordSkip(fetchURL string, reason string, index int, total int) {}

func (n *NoopSink) RecordArtifact(kind ArtifactKind, path string, attrs []Attribute) {}

func (n *NoopSink) RecordFinalCrawlStats(successes int, skips int, failures int, duration time.Duration) {
}
