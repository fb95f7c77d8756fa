package frontier

import (
	"strings"

	"github.com/rohmanhakim/sitemap-crawler/internal/sitemap"
	"github.com/rohmanhakim/sitemap-crawler/pkg/urlutil"
)

/*
Frontier Responsibilities
- Deduplicate candidate URLs, preserving first-seen order
- Filter URLs by extension policy before the cap is applied
- Cap the list at the configured maximum
- Knows nothing about:
	- fetching
	- extraction
	- storage

It is a data structure + policy module, not a pipeline executor.

Invariants
- No two entries share a normalized URL
- len(entries) <= maxCount when maxCount > 0
- Entry indexes are 1..N in discovery order
*/

// Build turns the raw candidate sequence into the bounded crawl frontier.
// maxCount == 0 means unlimited. Extension matching is case-insensitive and
// applied before the cap, so the cap always reflects crawlable candidates.
func Build(candidates []sitemap.Candidate, maxCount int, skipExtensions []string) []Entry {
	normalizedSkips := normalizeExtensions(skipExtensions)
	seen := NewSet[string]()

	var entries []Entry
	for _, candidate := range candidates {
		candidateURL := candidate.URL()
		normalizedURL := urlutil.Normalize(candidateURL)
		normalized := normalizedURL.String()
		if seen.Contains(normalized) {
			continue
		}
		seen.Add(normalized)

		if hasSkippedExtension(candidateURL.Path, normalizedSkips) {
			continue
		}

		if maxCount > 0 && len(entries) == maxCount {
			break
		}

		entries = append(entries, Entry{
			index:      len(entries) + 1,
			pageURL:    candidateURL,
			seedSource: candidate.SeedSource(),
			normalized: normalized,
		})
	}
	return entries
}

// ActiveDomain returns the domain key of the first frontier entry, which
// scopes the once-per-run output cleanup. Entries for other domains are
// written under their own directories without re-triggering cleanup.
func ActiveDomain(entries []Entry) string {
	if len(entries) == 0 {
		return ""
	}
	return urlutil.DomainKey(entries[0].URL())
}

// HasSkippedExtension reports whether a URL path ends in one of the
// configured skip extensions. Exposed for the scheduler's defensive
// pre-fetch re-check.
func HasSkippedExtension(path string, skipExtensions []string) bool {
	return hasSkippedExtension(path, normalizeExtensions(skipExtensions))
}

func hasSkippedExtension(path string, normalizedSkips []string) bool {
	lowered := strings.ToLower(path)
	for _, ext := range normalizedSkips {
		if strings.HasSuffix(lowered, ext) {
			return true
		}
	}
	return false
}

// normalizeExtensions lowercases each extension and guarantees a leading
// dot, so both "pdf" and ".pdf" configurations behave identically.
func normalizeExtensions(skipExtensions []string) []string {
	normalized := make([]string, 0, len(skipExtensions))
	for _, ext := range skipExtensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		normalized = append(normalized, ext)
	}
	return normalized
}
