package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/rohmanhakim/sitemap-crawler/internal/config"
	"github.com/rohmanhakim/sitemap-crawler/internal/extractor"
	"github.com/rohmanhakim/sitemap-crawler/internal/fetcher"
	"github.com/rohmanhakim/sitemap-crawler/internal/frontier"
	"github.com/rohmanhakim/sitemap-crawler/internal/mdconvert"
	"github.com/rohmanhakim/sitemap-crawler/internal/metadata"
	"github.com/rohmanhakim/sitemap-crawler/internal/normalize"
	"github.com/rohmanhakim/sitemap-crawler/internal/robots"
	"github.com/rohmanhakim/sitemap-crawler/internal/seeds"
	"github.com/rohmanhakim/sitemap-crawler/internal/sitemap"
	"github.com/rohmanhakim/sitemap-crawler/internal/storage"
	"github.com/rohmanhakim/sitemap-crawler/pkg/failure"
	"github.com/rohmanhakim/sitemap-crawler/pkg/limiter"
	"golang.org/x/time/rate"
)

/*
Responsibilities
- Drive the whole run: seeds -> resolution -> frontier -> fetch pipeline
- Own concurrency: a fixed worker pool consumes the frontier
- Own politeness: a global dispatch pacer plus per-host delay tracking
- Classify every frontier entry as Success, Skipped or Failed
- Record the final crawl stats exactly once

Pipeline per URL
- Defensive extension re-check (frontier already filtered; cheap to re-assert)
- Optional robots.txt decision, with crawl-delay feeding the host pacer
- Paced fetch
- Non-2xx or transport error -> Failed
- Non-HTML content type -> Skipped
- Selector extraction with full-document fallback
- Empty extraction -> Skipped, nothing written
- Artifact assembly and persistence -> Success

Failure isolation: any per-URL error affects only that URL. The only fatal
conditions are an unreadable seed list and a failed pre-run cleanup, both
of which occur before the first fetch is dispatched.
*/

type Scheduler struct {
	cfg          config.Config
	metadataSink metadata.MetadataSink
	finalizer    metadata.CrawlFinalizer
	fetcher      fetcher.Fetcher
	resolver     sitemap.Resolver
	extractor    extractor.DomExtractor
	converter    mdconvert.ConvertRule
	sink         storage.Sink
	robot        *robots.Robot
	hostPacer    limiter.HostPacer
	globalPacer  *rate.Limiter
	rules        []extractor.SelectorRule
}

// New wires a Scheduler from its injectable boundaries. The fetcher and the
// artifact sink are passed in so tests can substitute stubs; the resolver,
// extractor, converter, robot and pacers are internal wiring.
func New(
	cfg config.Config,
	metadataSink metadata.MetadataSink,
	finalizer metadata.CrawlFinalizer,
	pageFetcher fetcher.Fetcher,
	artifactSink storage.Sink,
) *Scheduler {
	hostPacer := limiter.NewConcurrentHostPacer()
	hostPacer.SetBaseDelay(cfg.Delay())
	hostPacer.SetJitter(cfg.Jitter())
	hostPacer.SetRandomSeed(cfg.RandomSeed())

	globalPacer := rate.NewLimiter(rate.Inf, 1)
	if cfg.Delay() > 0 {
		globalPacer = rate.NewLimiter(rate.Every(cfg.Delay()), 1)
	}

	var robot *robots.Robot
	if cfg.RespectRobots() {
		robot = robots.NewRobot(metadataSink, pageFetcher, cfg.UserAgent())
	}

	var rules []extractor.SelectorRule
	for _, expression := range cfg.Selectors() {
		rules = append(rules, extractor.NewSelectorRule(expression))
	}

	return &Scheduler{
		cfg:          cfg,
		metadataSink: metadataSink,
		finalizer:    finalizer,
		fetcher:      pageFetcher,
		resolver:     sitemap.NewResolver(metadataSink, pageFetcher, cfg.UserAgent()),
		extractor:    extractor.NewDomExtractor(metadataSink),
		converter:    mdconvert.NewRule(metadataSink),
		sink:         artifactSink,
		robot:        robot,
		hostPacer:    hostPacer,
		globalPacer:  globalPacer,
		rules:        rules,
	}
}

// Crawl executes one full run. An empty frontier is a valid empty result,
// not an error. The returned error is non-nil only for the pre-fetch fatal
// conditions (seed list, cleanup).
func (s *Scheduler) Crawl(ctx context.Context) (Summary, failure.ClassifiedError) {
	startedAt := time.Now()

	seedList, seedErr := s.loadSeeds()
	if seedErr != nil {
		return Summary{}, seedErr
	}

	candidates := s.resolver.Resolve(ctx, seedList)
	entries := frontier.Build(candidates, s.cfg.MaxURLs(), s.cfg.SkipExtensions())
	if len(entries) == 0 {
		summary := newSummary(nil, time.Since(startedAt))
		s.finalizer.RecordFinalCrawlStats(0, 0, 0, summary.Duration())
		return summary, nil
	}

	// Audit file failure is recorded inside the sink and never blocks the run.
	if s.cfg.LinksFile() != "" {
		frontierURLs := make([]string, 0, len(entries))
		for _, entry := range entries {
			entryURL := entry.URL()
			frontierURLs = append(frontierURLs, entryURL.String())
		}
		_ = s.sink.WriteLinksList(s.cfg.LinksFile(), frontierURLs)
	}

	// Cleanup happens-before any write for the active domain; it runs
	// synchronously here, never inside a worker.
	if s.cfg.CleanBeforeRun() {
		if cleanErr := s.sink.CleanDomain(frontier.ActiveDomain(entries)); cleanErr != nil {
			return Summary{}, cleanErr
		}
	}

	results := s.runPool(ctx, entries)

	summary := newSummary(results, time.Since(startedAt))
	s.finalizer.RecordFinalCrawlStats(
		summary.Successes(),
		summary.Skips(),
		summary.Failures(),
		summary.Duration(),
	)
	return summary, nil
}

// loadSeeds merges the seed file (when configured) with directly supplied
// seed URLs, file entries first.
func (s *Scheduler) loadSeeds() ([]seeds.Seed, failure.ClassifiedError) {
	var seedList []seeds.Seed
	if s.cfg.SeedFile() != "" {
		loaded, err := seeds.Load(s.cfg.SeedFile())
		if err != nil {
			return nil, err
		}
		seedList = loaded
	}
	for _, raw := range s.cfg.SeedURLs() {
		seedList = append(seedList, seeds.NewSeed(raw))
	}
	return seedList, nil
}

// runPool fans the frontier out to a fixed number of workers. Each result
// lands in the slot matching its frontier index, so the returned slice is
// ordered 1..N regardless of completion order.
func (s *Scheduler) runPool(ctx context.Context, entries []frontier.Entry) []CrawlResult {
	total := len(entries)
	results := make([]CrawlResult, total)

	jobs := make(chan frontier.Entry)
	var wg sync.WaitGroup
	for i := 0; i < s.cfg.Concurrency(); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for entry := range jobs {
				results[entry.Index()-1] = s.crawlOne(ctx, entry, total)
			}
		}()
	}

	for _, entry := range entries {
		jobs <- entry
	}
	close(jobs)
	wg.Wait()

	return results
}

// crawlOne runs the per-URL pipeline and never panics the pool: every exit
// path yields a classified CrawlResult.
func (s *Scheduler) crawlOne(ctx context.Context, entry frontier.Entry, total int) CrawlResult {
	pageURL := entry.URL()
	result := CrawlResult{
		index:   entry.Index(),
		pageURL: pageURL,
	}

	if frontier.HasSkippedExtension(pageURL.Path, s.cfg.SkipExtensions()) {
		return s.skip(result, SkipReasonExtension, total)
	}

	if s.robot != nil {
		decision := s.robot.Decide(ctx, pageURL)
		if decision.CrawlDelay != nil {
			s.hostPacer.SetCrawlDelay(pageURL.Host, *decision.CrawlDelay)
		}
		if !decision.Allowed {
			return s.skip(result, SkipReasonRobotsDisallow, total)
		}
	}

	if err := s.pace(ctx, pageURL.Host); err != nil {
		result.outcome = OutcomeFailed
		result.err = err
		return result
	}

	fetchStartedAt := time.Now()
	fetchResult, fetchErr := s.fetcher.Fetch(ctx, fetcher.NewFetchParam(pageURL, s.cfg.UserAgent()))
	s.hostPacer.MarkLastFetchAsNow(pageURL.Host)
	if fetchErr != nil {
		result.outcome = OutcomeFailed
		result.err = fetchErr
		result.httpStatus = httpStatusOf(fetchErr)
		return result
	}

	result.httpStatus = fetchResult.Code()
	s.metadataSink.RecordFetch(
		pageURL.String(),
		fetchResult.Code(),
		time.Since(fetchStartedAt),
		fetchResult.ContentType(),
		entry.Index(),
		total,
	)

	if !fetcher.IsHTMLContent(fetchResult.ContentType()) {
		return s.skip(result, SkipReasonNonHTMLContent, total)
	}

	doc, parseErr := s.extractor.Parse(pageURL, fetchResult.Body())
	if parseErr != nil {
		result.outcome = OutcomeFailed
		result.err = parseErr
		return result
	}

	// Title must be read before Extract: the fallback path strips the head.
	title := s.extractor.Title(doc)
	extraction := s.extractor.Extract(doc, s.rules)

	body := extraction.Text()
	if s.cfg.Format() == config.FormatMarkdown {
		markdown, convErr := s.converter.Convert(extraction.ContentNodes())
		if convErr != nil {
			result.outcome = OutcomeFailed
			result.err = convErr
			return result
		}
		body = markdown
	}
	if body == "" {
		return s.skip(result, SkipReasonEmptyExtraction, total)
	}

	selectorUsed := ""
	if matched, ok := extraction.MatchedRule(); ok {
		selectorUsed = matched.Expression()
	}

	artifact := normalize.NewArtifact(
		pageURL.String(),
		title,
		selectorUsed,
		body,
		s.cfg.IncludeHeader(),
	)
	writeResult, writeErr := s.sink.Write(pageURL, artifact)
	if writeErr != nil {
		result.outcome = OutcomeFailed
		result.err = writeErr
		return result
	}

	result.outcome = OutcomeSuccess
	result.selectorUsed = selectorUsed
	result.artifactPath = writeResult.Path()
	return result
}

// pace blocks until both the global dispatch limiter and the per-host delay
// allow the next request. Context cancellation aborts the wait.
func (s *Scheduler) pace(ctx context.Context, host string) failure.ClassifiedError {
	if err := s.globalPacer.Wait(ctx); err != nil {
		return &fetcher.FetchError{
			Message: err.Error(),
			Cause:   fetcher.ErrCauseTimeout,
		}
	}

	remaining := s.hostPacer.ResolveDelay(host)
	if remaining > 0 {
		timer := time.NewTimer(remaining)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return &fetcher.FetchError{
				Message: ctx.Err().Error(),
				Cause:   fetcher.ErrCauseTimeout,
			}
		case <-timer.C:
		}
	}
	return nil
}

func (s *Scheduler) skip(result CrawlResult, reason string, total int) CrawlResult {
	result.outcome = OutcomeSkipped
	result.skipReason = reason
	pageURL := result.URL()
	s.metadataSink.RecordSkip(pageURL.String(), reason, result.Index(), total)
	return result
}

// httpStatusOf surfaces the status code carried by a non-2xx fetch error,
// zero for transport-level failures.
func httpStatusOf(err failure.ClassifiedError) int {
	if fetchErr, ok := err.(*fetcher.FetchError); ok {
		return fetchErr.StatusCode
	}
	return 0
}
