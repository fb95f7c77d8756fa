package scheduler_test

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rohmanhakim/sitemap-crawler/internal/config"
	"github.com/rohmanhakim/sitemap-crawler/internal/fetcher"
	"github.com/rohmanhakim/sitemap-crawler/internal/metadata"
	"github.com/rohmanhakim/sitemap-crawler/internal/scheduler"
	"github.com/rohmanhakim/sitemap-crawler/internal/storage"
	"github.com/rohmanhakim/sitemap-crawler/pkg/failure"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubResponse is one canned fetch outcome.
type stubResponse struct {
	body        []byte
	status      int
	contentType string
}

// stubFetcher mirrors HTTPFetcher semantics: a non-2xx status or a missing
// response is a FetchError. It counts fetches per URL for assertions.
type stubFetcher struct {
	mu        sync.Mutex
	responses map[string]stubResponse
	fetched   map[string]int
}

func newStubFetcher(responses map[string]stubResponse) *stubFetcher {
	return &stubFetcher{
		responses: responses,
		fetched:   make(map[string]int),
	}
}

func (s *stubFetcher) Fetch(_ context.Context, param fetcher.FetchParam) (fetcher.FetchResult, failure.ClassifiedError) {
	fetchURL := param.URL()
	s.mu.Lock()
	s.fetched[fetchURL.String()]++
	resp, ok := s.responses[fetchURL.String()]
	s.mu.Unlock()

	if !ok {
		return fetcher.FetchResult{}, &fetcher.FetchError{
			Message:    "no response configured",
			Cause:      fetcher.ErrCauseNetworkFailure,
			StatusCode: 0,
		}
	}
	if resp.status < 200 || resp.status >= 300 {
		return fetcher.FetchResult{}, &fetcher.FetchError{
			Message:    "unexpected status",
			Cause:      fetcher.ErrCauseStatusNotOK,
			StatusCode: resp.status,
		}
	}
	contentType := resp.contentType
	if contentType == "" {
		contentType = "text/html"
	}
	return fetcher.NewFetchResultForTest(fetchURL, resp.body, resp.status, contentType), nil
}

func (s *stubFetcher) fetchCount(rawURL string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetched[rawURL]
}

func htmlPage(body string) stubResponse {
	return stubResponse{
		body:   []byte(`<html><head><title>Page</title></head><body><main>` + body + `</main></body></html>`),
		status: 200,
	}
}

type runOption func(*config.Config) *config.Config

func runCrawl(t *testing.T, responses map[string]stubResponse, seedURL string, opts ...runOption) (scheduler.Summary, *stubFetcher, string) {
	t.Helper()
	outputDir := t.TempDir()

	builder := config.WithDefault().
		WithSeedURLs([]string{seedURL}).
		WithOutputDir(outputDir).
		WithDelay(0).
		WithSelectors([]string{"main"})
	for _, opt := range opts {
		builder = opt(builder)
	}
	cfg, err := builder.Build()
	require.NoError(t, err)

	pageFetcher := newStubFetcher(responses)
	sink := storage.NewLocalSink(&metadata.NoopSink{}, cfg.OutputDir(), storage.NewPathMapper(cfg.HashSuffix()))
	s := scheduler.New(cfg, &metadata.NoopSink{}, &metadata.NoopSink{}, pageFetcher, sink)

	summary, crawlErr := s.Crawl(context.Background())
	require.Nil(t, crawlErr)
	return summary, pageFetcher, outputDir
}

func TestCrawl_URLSetSeedProducesArtifacts(t *testing.T) {
	responses := map[string]stubResponse{
		"https://example.com/sitemap.xml": {
			body: []byte(`<urlset>
  <url><loc>https://example.com/docs/a</loc></url>
  <url><loc>https://example.com/brochure.pdf</loc></url>
  <url><loc>https://example.com/docs/b</loc></url>
</urlset>`),
			status:      200,
			contentType: "application/xml",
		},
		"https://example.com/docs/a": htmlPage("Content A"),
		"https://example.com/docs/b": htmlPage("Content B"),
	}

	summary, pageFetcher, outputDir := runCrawl(t, responses, "https://example.com/sitemap.xml")

	assert.Equal(t, 2, summary.Successes())
	assert.Equal(t, 0, summary.Skips())
	assert.Equal(t, 0, summary.Failures())

	// the filtered PDF never reaches the fetcher
	assert.Equal(t, 0, pageFetcher.fetchCount("https://example.com/brochure.pdf"))

	for _, name := range []string{"docs_a.md", "docs_b.md"} {
		_, statErr := os.Stat(filepath.Join(outputDir, "example.com", name))
		assert.NoError(t, statErr, "expected artifact %s", name)
	}
}

func TestCrawl_SitemapIndexExpandsChildren(t *testing.T) {
	responses := map[string]stubResponse{
		"https://example.com/sitemap-index.xml": {
			body: []byte(`<sitemapindex>
  <sitemap><loc>https://example.com/sitemap-1.xml</loc></sitemap>
  <sitemap><loc>https://example.com/sitemap-2.xml</loc></sitemap>
</sitemapindex>`),
			status:      200,
			contentType: "application/xml",
		},
		"https://example.com/sitemap-1.xml": {
			body:        []byte(`<urlset><url><loc>https://example.com/a</loc></url><url><loc>https://example.com/b</loc></url></urlset>`),
			status:      200,
			contentType: "application/xml",
		},
		"https://example.com/sitemap-2.xml": {
			body:        []byte(`<urlset><url><loc>https://example.com/c</loc></url><url><loc>https://example.com/d</loc></url></urlset>`),
			status:      200,
			contentType: "application/xml",
		},
		"https://example.com/a": htmlPage("A"),
		"https://example.com/b": htmlPage("B"),
		"https://example.com/c": htmlPage("C"),
		"https://example.com/d": htmlPage("D"),
	}

	summary, _, _ := runCrawl(t, responses, "https://example.com/sitemap-index.xml")

	assert.Equal(t, 4, summary.Successes())
	require.Len(t, summary.Results(), 4)
	// frontier order follows document order across children
	resultURL := summary.Results()[0].URL()
	assert.Equal(t, "https://example.com/a", resultURL.String())
}

func TestCrawl_MaxURLsCapsFetches(t *testing.T) {
	responses := map[string]stubResponse{
		"https://example.com/sitemap.xml": {
			body: []byte(`<urlset>
  <url><loc>https://example.com/p1</loc></url>
  <url><loc>https://example.com/p2</loc></url>
  <url><loc>https://example.com/p3</loc></url>
  <url><loc>https://example.com/p4</loc></url>
  <url><loc>https://example.com/p5</loc></url>
</urlset>`),
			status:      200,
			contentType: "application/xml",
		},
		"https://example.com/p1": htmlPage("1"),
		"https://example.com/p2": htmlPage("2"),
		"https://example.com/p3": htmlPage("3"),
		"https://example.com/p4": htmlPage("4"),
		"https://example.com/p5": htmlPage("5"),
	}

	summary, pageFetcher, _ := runCrawl(t, responses, "https://example.com/sitemap.xml",
		func(b *config.Config) *config.Config { return b.WithMaxURLs(2) })

	assert.Equal(t, 2, summary.Successes())
	assert.Equal(t, 1, pageFetcher.fetchCount("https://example.com/p1"))
	assert.Equal(t, 1, pageFetcher.fetchCount("https://example.com/p2"))
	for _, beyondCap := range []string{"https://example.com/p3", "https://example.com/p4", "https://example.com/p5"} {
		assert.Equal(t, 0, pageFetcher.fetchCount(beyondCap), "URL beyond cap must not be fetched")
	}
}

func TestCrawl_FailedURLDoesNotAbortOthers(t *testing.T) {
	responses := map[string]stubResponse{
		"https://example.com/sitemap.xml": {
			body: []byte(`<urlset>
  <url><loc>https://example.com/ok-1</loc></url>
  <url><loc>https://example.com/broken</loc></url>
  <url><loc>https://example.com/ok-2</loc></url>
</urlset>`),
			status:      200,
			contentType: "application/xml",
		},
		"https://example.com/ok-1":   htmlPage("fine"),
		"https://example.com/broken": {body: []byte("error"), status: 500},
		"https://example.com/ok-2":   htmlPage("also fine"),
	}

	summary, _, _ := runCrawl(t, responses, "https://example.com/sitemap.xml")

	assert.Equal(t, 2, summary.Successes())
	assert.Equal(t, 1, summary.Failures())

	results := summary.Results()
	require.Len(t, results, 3)
	assert.Equal(t, scheduler.OutcomeSuccess, results[0].Outcome())
	assert.Equal(t, scheduler.OutcomeFailed, results[1].Outcome())
	assert.Equal(t, 500, results[1].HTTPStatus())
	assert.NotNil(t, results[1].Err())
	assert.Equal(t, scheduler.OutcomeSuccess, results[2].Outcome())
}

func TestCrawl_NonHTMLContentIsSkipped(t *testing.T) {
	responses := map[string]stubResponse{
		"https://example.com/sitemap.xml": {
			body:        []byte(`<urlset><url><loc>https://example.com/api</loc></url></urlset>`),
			status:      200,
			contentType: "application/xml",
		},
		"https://example.com/api": {body: []byte(`{"ok":true}`), status: 200, contentType: "application/json"},
	}

	summary, _, outputDir := runCrawl(t, responses, "https://example.com/sitemap.xml")

	assert.Equal(t, 1, summary.Skips())
	assert.Equal(t, 0, summary.Successes())
	assert.Equal(t, scheduler.SkipReasonNonHTMLContent, summary.Results()[0].SkipReason())

	entries, _ := os.ReadDir(filepath.Join(outputDir, "example.com"))
	assert.Empty(t, entries, "nothing should be written for skipped URLs")
}

func TestCrawl_EmptyExtractionIsSkippedNotWritten(t *testing.T) {
	responses := map[string]stubResponse{
		"https://example.com/sitemap.xml": {
			body:        []byte(`<urlset><url><loc>https://example.com/empty</loc></url></urlset>`),
			status:      200,
			contentType: "application/xml",
		},
		"https://example.com/empty": {
			body:   []byte(`<html><head><title>Empty</title></head><body><main>   </main></body></html>`),
			status: 200,
		},
	}

	summary, _, outputDir := runCrawl(t, responses, "https://example.com/sitemap.xml")

	assert.Equal(t, 1, summary.Skips())
	assert.Equal(t, 0, summary.Failures())
	assert.Equal(t, scheduler.SkipReasonEmptyExtraction, summary.Results()[0].SkipReason())

	_, statErr := os.Stat(filepath.Join(outputDir, "example.com", "empty.md"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestCrawl_EmptyFrontierIsValidEmptyResult(t *testing.T) {
	summary, _, _ := runCrawl(t, map[string]stubResponse{
		"https://example.com/sitemap.xml": {
			body:        []byte(`<urlset></urlset>`),
			status:      200,
			contentType: "application/xml",
		},
	}, "https://example.com/sitemap.xml")

	assert.Empty(t, summary.Results())
	assert.Equal(t, 0, summary.Successes())
}

func TestCrawl_DirectPageSeed(t *testing.T) {
	responses := map[string]stubResponse{
		"https://example.com/docs/single": htmlPage("Single page"),
	}

	summary, _, outputDir := runCrawl(t, responses, "https://example.com/docs/single")

	assert.Equal(t, 1, summary.Successes())
	written, readErr := os.ReadFile(filepath.Join(outputDir, "example.com", "docs_single.md"))
	require.NoError(t, readErr)
	assert.Contains(t, string(written), "# https://example.com/docs/single")
	assert.Contains(t, string(written), "> title: Page")
	assert.Contains(t, string(written), "> selector: main")
	assert.Contains(t, string(written), "Single page")
}

func TestCrawl_CleanBeforeRunRemovesStaleArtifacts(t *testing.T) {
	outputDir := t.TempDir()
	domainDir := filepath.Join(outputDir, "example.com")
	require.NoError(t, os.MkdirAll(domainDir, 0755))
	stale := filepath.Join(domainDir, "stale.md")
	require.NoError(t, os.WriteFile(stale, []byte("old run"), 0644))

	cfg, err := config.WithDefault().
		WithSeedURLs([]string{"https://example.com/docs/a"}).
		WithOutputDir(outputDir).
		WithDelay(0).
		WithSelectors([]string{"main"}).
		Build()
	require.NoError(t, err)

	pageFetcher := newStubFetcher(map[string]stubResponse{
		"https://example.com/docs/a": htmlPage("fresh"),
	})
	sink := storage.NewLocalSink(&metadata.NoopSink{}, outputDir, storage.NewPathMapper(false))
	s := scheduler.New(cfg, &metadata.NoopSink{}, &metadata.NoopSink{}, pageFetcher, sink)

	_, crawlErr := s.Crawl(context.Background())
	require.Nil(t, crawlErr)

	_, statErr := os.Stat(stale)
	assert.True(t, os.IsNotExist(statErr), "stale artifact should be wiped before the run")
	_, statErr = os.Stat(filepath.Join(domainDir, "docs_a.md"))
	assert.NoError(t, statErr)
}

func TestCrawl_NoCleanKeepsExistingArtifacts(t *testing.T) {
	outputDir := t.TempDir()
	domainDir := filepath.Join(outputDir, "example.com")
	require.NoError(t, os.MkdirAll(domainDir, 0755))
	stale := filepath.Join(domainDir, "stale.md")
	require.NoError(t, os.WriteFile(stale, []byte("old run"), 0644))

	cfg, err := config.WithDefault().
		WithSeedURLs([]string{"https://example.com/docs/a"}).
		WithOutputDir(outputDir).
		WithDelay(0).
		WithSelectors([]string{"main"}).
		WithCleanBeforeRun(false).
		Build()
	require.NoError(t, err)

	pageFetcher := newStubFetcher(map[string]stubResponse{
		"https://example.com/docs/a": htmlPage("fresh"),
	})
	sink := storage.NewLocalSink(&metadata.NoopSink{}, outputDir, storage.NewPathMapper(false))
	s := scheduler.New(cfg, &metadata.NoopSink{}, &metadata.NoopSink{}, pageFetcher, sink)

	_, crawlErr := s.Crawl(context.Background())
	require.Nil(t, crawlErr)

	_, statErr := os.Stat(stale)
	assert.NoError(t, statErr)
}

func TestCrawl_LinksFileContainsFrontier(t *testing.T) {
	outputDir := t.TempDir()
	linksPath := filepath.Join(outputDir, "links.txt")

	responses := map[string]stubResponse{
		"https://example.com/sitemap.xml": {
			body: []byte(`<urlset>
  <url><loc>https://example.com/a</loc></url>
  <url><loc>https://example.com/b</loc></url>
</urlset>`),
			status:      200,
			contentType: "application/xml",
		},
		"https://example.com/a": htmlPage("A"),
		"https://example.com/b": htmlPage("B"),
	}

	cfg, err := config.WithDefault().
		WithSeedURLs([]string{"https://example.com/sitemap.xml"}).
		WithOutputDir(outputDir).
		WithDelay(0).
		WithSelectors([]string{"main"}).
		WithLinksFile(linksPath).
		Build()
	require.NoError(t, err)

	pageFetcher := newStubFetcher(responses)
	sink := storage.NewLocalSink(&metadata.NoopSink{}, outputDir, storage.NewPathMapper(false))
	s := scheduler.New(cfg, &metadata.NoopSink{}, &metadata.NoopSink{}, pageFetcher, sink)

	_, crawlErr := s.Crawl(context.Background())
	require.Nil(t, crawlErr)

	written, readErr := os.ReadFile(linksPath)
	require.NoError(t, readErr)
	assert.Equal(t, "https://example.com/a\nhttps://example.com/b\n", string(written))
}

func TestCrawl_RobotsDisallowSkips(t *testing.T) {
	responses := map[string]stubResponse{
		"https://example.com/robots.txt": {
			body:        []byte("User-agent: *\nDisallow: /private/\n"),
			status:      200,
			contentType: "text/plain",
		},
		"https://example.com/sitemap.xml": {
			body: []byte(`<urlset>
  <url><loc>https://example.com/private/secret</loc></url>
  <url><loc>https://example.com/public</loc></url>
</urlset>`),
			status:      200,
			contentType: "application/xml",
		},
		"https://example.com/public": htmlPage("open"),
	}

	summary, pageFetcher, _ := runCrawl(t, responses, "https://example.com/sitemap.xml",
		func(b *config.Config) *config.Config { return b.WithRespectRobots(true) })

	assert.Equal(t, 1, summary.Successes())
	assert.Equal(t, 1, summary.Skips())
	assert.Equal(t, scheduler.SkipReasonRobotsDisallow, summary.Results()[0].SkipReason())
	assert.Equal(t, 0, pageFetcher.fetchCount("https://example.com/private/secret"))
}

func TestCrawl_MarkdownFormat(t *testing.T) {
	responses := map[string]stubResponse{
		"https://example.com/docs/md": {
			body: []byte(`<html><head><title>MD</title></head><body><main>
<h1>Heading</h1><p>See the <a href="https://example.com/x">link</a>.</p>
</main></body></html>`),
			status: 200,
		},
	}

	summary, _, outputDir := runCrawl(t, responses, "https://example.com/docs/md",
		func(b *config.Config) *config.Config { return b.WithFormat(config.FormatMarkdown) })

	require.Equal(t, 1, summary.Successes())
	written, readErr := os.ReadFile(filepath.Join(outputDir, "example.com", "docs_md.md"))
	require.NoError(t, readErr)
	assert.Contains(t, string(written), "# Heading")
	assert.Contains(t, string(written), "[link](https://example.com/x)")
}

func TestCrawl_ConcurrentWorkersCoverWholeFrontier(t *testing.T) {
	responses := map[string]stubResponse{}
	var locs string
	for _, name := range []string{"p1", "p2", "p3", "p4", "p5", "p6", "p7", "p8"} {
		pageURL := "https://example.com/" + name
		responses[pageURL] = htmlPage(name)
		locs += "<url><loc>" + pageURL + "</loc></url>"
	}
	responses["https://example.com/sitemap.xml"] = stubResponse{
		body:        []byte("<urlset>" + locs + "</urlset>"),
		status:      200,
		contentType: "application/xml",
	}

	summary, _, _ := runCrawl(t, responses, "https://example.com/sitemap.xml",
		func(b *config.Config) *config.Config { return b.WithConcurrency(4) })

	assert.Equal(t, 8, summary.Successes())
	results := summary.Results()
	require.Len(t, results, 8)
	for i, result := range results {
		assert.Equal(t, i+1, result.Index(), "results stay in frontier order")
	}
}

func TestCrawl_MissingSeedFileIsFatal(t *testing.T) {
	cfg, err := config.WithDefault().
		WithSeedFile(filepath.Join(t.TempDir(), "missing.txt")).
		Build()
	require.NoError(t, err)

	pageFetcher := newStubFetcher(nil)
	sink := storage.NewLocalSink(&metadata.NoopSink{}, t.TempDir(), storage.NewPathMapper(false))
	s := scheduler.New(cfg, &metadata.NoopSink{}, &metadata.NoopSink{}, pageFetcher, sink)

	_, crawlErr := s.Crawl(context.Background())
	require.NotNil(t, crawlErr)
	assert.Equal(t, failure.SeverityFatal, crawlErr.Severity())
}

func TestCrawl_SeedFileAndDirectSeedsMerge(t *testing.T) {
	dir := t.TempDir()
	seedPath := filepath.Join(dir, "seeds.txt")
	require.NoError(t, os.WriteFile(seedPath, []byte("https://example.com/from-file\n"), 0644))

	cfg, err := config.WithDefault().
		WithSeedFile(seedPath).
		WithSeedURLs([]string{"https://example.com/from-flag"}).
		WithOutputDir(t.TempDir()).
		WithDelay(0).
		WithSelectors([]string{"main"}).
		Build()
	require.NoError(t, err)

	pageFetcher := newStubFetcher(map[string]stubResponse{
		"https://example.com/from-file": htmlPage("file seed"),
		"https://example.com/from-flag": htmlPage("flag seed"),
	})
	sink := storage.NewLocalSink(&metadata.NoopSink{}, cfg.OutputDir(), storage.NewPathMapper(false))
	s := scheduler.New(cfg, &metadata.NoopSink{}, &metadata.NoopSink{}, pageFetcher, sink)

	summary, crawlErr := s.Crawl(context.Background())
	require.Nil(t, crawlErr)

	assert.Equal(t, 2, summary.Successes())
	// file seeds come first
	firstURL := summary.Results()[0].URL()
	assert.Equal(t, "https://example.com/from-file", firstURL.String())
}

func TestCrawl_PacingDelaysSameHostFetches(t *testing.T) {
	responses := map[string]stubResponse{
		"https://example.com/sitemap.xml": {
			body: []byte(`<urlset>
  <url><loc>https://example.com/a</loc></url>
  <url><loc>https://example.com/b</loc></url>
  <url><loc>https://example.com/c</loc></url>
</urlset>`),
			status:      200,
			contentType: "application/xml",
		},
		"https://example.com/a": htmlPage("A"),
		"https://example.com/b": htmlPage("B"),
		"https://example.com/c": htmlPage("C"),
	}

	started := time.Now()
	summary, _, _ := runCrawl(t, responses, "https://example.com/sitemap.xml",
		func(b *config.Config) *config.Config { return b.WithDelay(30 * time.Millisecond) })

	assert.Equal(t, 3, summary.Successes())
	assert.GreaterOrEqual(t, time.Since(started), 60*time.Millisecond,
		"three same-host fetches must span at least two delay intervals")
}

func mustURL(t *testing.T, raw string) url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return *u
}

func TestCrawlResult_Getters(t *testing.T) {
	// exercised indirectly above; this pins the zero-value contract
	var result scheduler.CrawlResult
	assert.Equal(t, 0, result.Index())
	assert.Equal(t, scheduler.Outcome(""), result.Outcome())
	assert.Equal(t, "", result.SkipReason())
	assert.Nil(t, result.Err())
	_ = mustURL(t, "https://example.com")
}
