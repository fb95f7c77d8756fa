package sitemap

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/rohmanhakim/sitemap-crawler/internal/fetcher"
	"github.com/rohmanhakim/sitemap-crawler/internal/metadata"
	"github.com/rohmanhakim/sitemap-crawler/internal/seeds"
)

/*
Responsibilities
- Expand seed sources into a flat, ordered sequence of candidate page URLs
- Recurse through sitemap indexes with cycle and depth protection
- Isolate per-source failures

Resolution Semantics
- A non-sitemap seed is emitted directly as a candidate
- A sitemap index recurses into each child location, depth-first,
  in document order
- A URL set emits every direct <loc> child, trimmed; empty locations and
  auxiliary children (image/video annotations) are ignored
- A branch is abandoned with a warning once its depth exceeds MaxIndexDepth,
  which terminates resolution of cyclic or runaway indexes
- A source that cannot be fetched or parsed contributes zero URLs and never
  aborts resolution of the remaining sources

Resolution is deterministic: given a fixed sitemap corpus, two runs yield
the same ordered candidate sequence.
*/

// MaxIndexDepth bounds recursive sitemap-index expansion. Seeds sit at
// depth 0; a branch is abandoned once its depth would exceed this value.
const MaxIndexDepth = 3

type Resolver struct {
	metadataSink metadata.MetadataSink
	fetcher      fetcher.Fetcher
	userAgent    string
}

func NewResolver(
	metadataSink metadata.MetadataSink,
	pageFetcher fetcher.Fetcher,
	userAgent string,
) Resolver {
	return Resolver{
		metadataSink: metadataSink,
		fetcher:      pageFetcher,
		userAgent:    userAgent,
	}
}

// Resolve expands the seed list in listed order. The returned candidates
// preserve discovery order across seeds and within each sitemap document.
func (r *Resolver) Resolve(ctx context.Context, seedList []seeds.Seed) []Candidate {
	var candidates []Candidate
	for _, seed := range seedList {
		if !seed.IsSitemap() {
			pageURL, err := url.Parse(seed.String())
			if err != nil {
				r.recordSourceFailure(seed.String(), fmt.Sprintf("invalid seed URL: %v", err))
				continue
			}
			candidates = append(candidates, NewCandidate(*pageURL, seed.String()))
			continue
		}
		candidates = append(candidates, r.expand(ctx, seed.String(), seed.String(), 0)...)
	}
	return candidates
}

// expand fetches and parses one sitemap document, recursing into index
// children. The (documentURL, depth) pair makes the termination check
// explicit and testable: expansion never proceeds past MaxIndexDepth
// regardless of what the document points at.
func (r *Resolver) expand(ctx context.Context, documentURL string, seedSource string, depth int) []Candidate {
	if depth > MaxIndexDepth {
		r.metadataSink.RecordError(
			time.Now(),
			"sitemap",
			"Resolver.expand",
			metadata.CauseSourceUnavailable,
			fmt.Sprintf("sitemap index depth exceeded %d, abandoning branch", MaxIndexDepth),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrURL, documentURL),
				metadata.NewAttr(metadata.AttrDepth, strconv.Itoa(depth)),
			},
		)
		return nil
	}

	parsedURL, err := url.Parse(documentURL)
	if err != nil {
		r.recordSourceFailure(documentURL, fmt.Sprintf("invalid sitemap URL: %v", err))
		return nil
	}

	fetchResult, fetchErr := r.fetcher.Fetch(ctx, fetcher.NewFetchParam(*parsedURL, r.userAgent))
	if fetchErr != nil {
		// already recorded by the fetcher; this source contributes zero URLs
		return nil
	}

	document, parseErr := parseDocument(fetchResult.Body())
	if parseErr != nil {
		r.recordSourceFailure(documentURL, parseErr.Error())
		return nil
	}

	switch document.variant {
	case variantIndex:
		var candidates []Candidate
		for _, childLocation := range document.locations {
			candidates = append(candidates, r.expand(ctx, childLocation, seedSource, depth+1)...)
		}
		return candidates

	case variantURLSet:
		var candidates []Candidate
		for _, location := range document.locations {
			pageURL, err := url.Parse(location)
			if err != nil {
				r.recordSourceFailure(location, fmt.Sprintf("invalid page URL in sitemap: %v", err))
				continue
			}
			candidates = append(candidates, NewCandidate(*pageURL, seedSource))
		}
		return candidates

	default:
		r.recordSourceFailure(documentURL, "document matches neither sitemap index nor URL set")
		return nil
	}
}

func (r *Resolver) recordSourceFailure(source string, details string) {
	r.metadataSink.RecordError(
		time.Now(),
		"sitemap",
		"Resolver.Resolve",
		metadata.CauseSourceUnavailable,
		details,
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrSource, source),
		},
	)
}
