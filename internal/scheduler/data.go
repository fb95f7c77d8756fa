package scheduler

import (
	"net/url"
	"time"

	"github.com/rohmanhakim/sitemap-crawler/pkg/failure"
)

// Outcome classifies what happened to a single frontier entry.
type Outcome string

const (
	// OutcomeSuccess means an artifact was written for the URL.
	OutcomeSuccess Outcome = "success"
	// OutcomeSkipped means the URL was deliberately not persisted
	// (policy or empty content), which is not a failure.
	OutcomeSkipped Outcome = "skipped"
	// OutcomeFailed means the URL could not be processed.
	OutcomeFailed Outcome = "failed"
)

// Skip reasons surfaced in results and skip records.
const (
	SkipReasonExtension       = "skip-listed extension"
	SkipReasonRobotsDisallow  = "disallowed by robots.txt"
	SkipReasonNonHTMLContent  = "non-HTML content type"
	SkipReasonEmptyExtraction = "empty extraction"
)

// CrawlResult is the per-URL outcome record. Index matches the frontier
// entry index (1..N); the results slice of a run is ordered by it.
type CrawlResult struct {
	index        int
	pageURL      url.URL
	outcome      Outcome
	httpStatus   int
	selectorUsed string
	skipReason   string
	artifactPath string
	err          failure.ClassifiedError
}

func (r *CrawlResult) Index() int {
	return r.index
}

func (r *CrawlResult) URL() url.URL {
	return r.pageURL
}

func (r *CrawlResult) Outcome() Outcome {
	return r.outcome
}

func (r *CrawlResult) HTTPStatus() int {
	return r.httpStatus
}

// SelectorUsed returns the matched selector expression, empty on the
// full-document fallback path and on non-success outcomes.
func (r *CrawlResult) SelectorUsed() string {
	return r.selectorUsed
}

func (r *CrawlResult) SkipReason() string {
	return r.skipReason
}

func (r *CrawlResult) ArtifactPath() string {
	return r.artifactPath
}

func (r *CrawlResult) Err() failure.ClassifiedError {
	return r.err
}

// Summary aggregates a completed run. Counts are derived from the result
// slice after all workers have finished, never accumulated concurrently.
type Summary struct {
	results   []CrawlResult
	successes int
	skips     int
	failures  int
	duration  time.Duration
}

func newSummary(results []CrawlResult, duration time.Duration) Summary {
	summary := Summary{
		results:  results,
		duration: duration,
	}
	for _, result := range results {
		switch result.outcome {
		case OutcomeSuccess:
			summary.successes++
		case OutcomeSkipped:
			summary.skips++
		case OutcomeFailed:
			summary.failures++
		}
	}
	return summary
}

func (s *Summary) Results() []CrawlResult {
	return s.results
}

func (s *Summary) Successes() int {
	return s.successes
}

func (s *Summary) Skips() int {
	return s.skips
}

func (s *Summary) Failures() int {
	return s.failures
}

func (s *Summary) Duration() time.Duration {
	return s.duration
}
