package storage

import (
	"net/url"
	"strings"

	"github.com/rohmanhakim/sitemap-crawler/pkg/hashutil"
	"github.com/rohmanhakim/sitemap-crawler/pkg/urlutil"
)

const markdownExtension = ".md"

// hashSuffixLength is the number of hex characters appended in
// disambiguation mode.
const hashSuffixLength = 12

// pathCharReplacer flattens a URL path into a single filesystem-safe
// segment. Distinct URLs differing only in a replaced character may
// collide on the same artifact path; collisions are last-write-wins by
// contract, not an error. The hash-suffix mode exists for callers that
// need strict uniqueness.
var pathCharReplacer = strings.NewReplacer(
	"/", "_",
	"?", "_",
	"&", "_",
	"=", "_",
	"%", "_",
)

// PathMapper maps a URL to a domain key and a relative artifact path.
// Pure and deterministic: the same URL always yields the same pair.
type PathMapper struct {
	hashSuffix bool
}

func NewPathMapper(hashSuffix bool) PathMapper {
	return PathMapper{hashSuffix: hashSuffix}
}

// MapPath returns (domainKey, relativePath) for a URL. The domain key is
// the host with a leading "www." stripped; the relative path is derived
// from the URL path with separators and query-ish characters replaced by
// underscores, defaulting to "index" for the root.
func (m *PathMapper) MapPath(pageURL url.URL) (string, string) {
	domainKey := urlutil.DomainKey(pageURL)

	name := pathCharReplacer.Replace(strings.Trim(pageURL.Path, "/"))
	if name == "" {
		name = "index"
	}

	if m.hashSuffix {
		// hash of the full URL, so query-only differences disambiguate too
		suffix, err := hashutil.ShortHash([]byte(pageURL.String()), hashutil.HashAlgoBLAKE3, hashSuffixLength)
		if err == nil {
			name = name + "-" + suffix
		}
	}

	return domainKey, name + markdownExtension
}
