package robots

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/rohmanhakim/sitemap-crawler/internal/fetcher"
	"github.com/rohmanhakim/sitemap-crawler/internal/metadata"
	"github.com/temoto/robotstxt"
)

/*
Responsibilities

- Fetch robots.txt per host, at most once per run
- Cache parsed rule groups for the crawl duration
- Answer allow/disallow for a URL path under the configured user agent
- Surface a crawl-delay directive when the host declares one

Robots checking is opt-in; when disabled the scheduler never constructs a
Robot. An unreachable or malformed robots.txt results in allow-all for
that host: absence of rules is not a prohibition.
*/

type Robot struct {
	metadataSink metadata.MetadataSink
	fetcher      fetcher.Fetcher
	userAgent    string

	mu     sync.Mutex
	groups map[string]*robotstxt.Group
}

func NewRobot(
	metadataSink metadata.MetadataSink,
	robotsFetcher fetcher.Fetcher,
	userAgent string,
) *Robot {
	return &Robot{
		metadataSink: metadataSink,
		fetcher:      robotsFetcher,
		userAgent:    userAgent,
		groups:       make(map[string]*robotstxt.Group),
	}
}

// Decide reports whether the given URL may be fetched, plus any crawl-delay
// the host declares for our user agent.
func (r *Robot) Decide(ctx context.Context, pageURL url.URL) Decision {
	group := r.groupForHost(ctx, pageURL)
	if group == nil {
		// no usable robots.txt for this host
		return Decision{Allowed: true}
	}

	decision := Decision{
		Allowed: group.Test(pageURL.RequestURI()),
	}
	if group.CrawlDelay > 0 {
		delay := group.CrawlDelay
		decision.CrawlDelay = &delay
	}

	if !decision.Allowed {
		r.metadataSink.RecordError(
			time.Now(),
			"robots",
			"Robot.Decide",
			metadata.CausePolicyDisallow,
			"robots.txt disallows URL",
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrURL, pageURL.String()),
			},
		)
	}
	return decision
}

// groupForHost returns the cached rule group for the URL's host, fetching
// and parsing robots.txt on first use. A nil group means allow-all.
func (r *Robot) groupForHost(ctx context.Context, pageURL url.URL) *robotstxt.Group {
	host := pageURL.Host

	r.mu.Lock()
	group, cached := r.groups[host]
	r.mu.Unlock()
	if cached {
		return group
	}

	group = r.fetchGroup(ctx, pageURL)

	r.mu.Lock()
	r.groups[host] = group
	r.mu.Unlock()
	return group
}

func (r *Robot) fetchGroup(ctx context.Context, pageURL url.URL) *robotstxt.Group {
	robotsURL := url.URL{
		Scheme: pageURL.Scheme,
		Host:   pageURL.Host,
		Path:   "/robots.txt",
	}

	result, fetchErr := r.fetcher.Fetch(ctx, fetcher.NewFetchParam(robotsURL, r.userAgent))
	if fetchErr != nil {
		// unreachable robots.txt → allow-all for this host
		return nil
	}

	data, parseErr := robotstxt.FromBytes(result.Body())
	if parseErr != nil {
		r.metadataSink.RecordError(
			time.Now(),
			"robots",
			"Robot.fetchGroup",
			metadata.CauseContentInvalid,
			fmt.Sprintf("failed to parse robots.txt: %v", parseErr),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrURL, robotsURL.String()),
			},
		)
		return nil
	}

	return data.FindGroup(r.userAgent)
}
