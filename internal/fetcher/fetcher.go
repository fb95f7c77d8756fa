package fetcher

import (
	"context"

	"github.com/rohmanhakim/sitemap-crawler/pkg/failure"
)

// Fetcher is the opaque fetch capability used by both the sitemap resolver
// and the crawl scheduler. Implementations return bytes plus response
// metadata; they never parse content.
type Fetcher interface {
	Fetch(ctx context.Context, fetchParam FetchParam) (FetchResult, failure.ClassifiedError)
}
