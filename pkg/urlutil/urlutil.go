package urlutil

import (
	"net/url"
	"strings"
)

// Normalize applies a deterministic normalization to a URL, producing the
// canonical form used as the frontier deduplication key.
//
// The normalization follows these rules:
//   - Scheme and host are lowercased
//   - Trailing slashes are removed from the path (except for root "/")
//   - Fragments are removed
//   - Default ports are omitted (e.g., :80 for http, :443 for https)
//   - Query parameters are KEPT: two URLs differing only in query are
//     distinct pages and must remain distinct frontier entries
//
// Properties:
//   - Pure: no state, no memory
//   - Deterministic: same input always produces same output
//   - Idempotent: Normalize(Normalize(url)) == Normalize(url)
func Normalize(sourceURL url.URL) url.URL {
	normalized := sourceURL

	normalized.Scheme = lowerASCII(normalized.Scheme)
	normalized.Host = lowerASCII(normalized.Host)

	// Remove default port if present
	if host, port := normalized.Hostname(), normalized.Port(); port != "" {
		if (normalized.Scheme == "http" && port == "80") ||
			(normalized.Scheme == "https" && port == "443") {
			normalized.Host = host
		}
	}

	if len(normalized.Path) > 1 {
		normalized.Path = stripTrailingSlash(normalized.Path)
	}

	normalized.Fragment = ""
	normalized.RawFragment = ""

	return normalized
}

// DomainKey returns the output directory key for a URL: the hostname with a
// leading "www." stripped. The port, if any, is not part of the key.
func DomainKey(sourceURL url.URL) string {
	host := lowerASCII(sourceURL.Hostname())
	return strings.TrimPrefix(host, "www.")
}

// lowerASCII converts ASCII characters to lowercase without allocating.
// This is faster than strings.ToLower for ASCII-only strings.
func lowerASCII(s string) string {
	var needsLower bool
	for i := 0; i < len(s); i++ {
		if s[i] >= 'A' && s[i] <= 'Z' {
			needsLower = true
			break
		}
	}
	if !needsLower {
		return s
	}
	b := make([]byte, len(s))
	copy(b, s)
	for i := 0; i < len(b); i++ {
		if b[i] >= 'A' && b[i] <= 'Z' {
			b[i] += 'a' - 'A'
		}
	}
	return string(b)
}

// stripTrailingSlash removes trailing slashes from a path.
func stripTrailingSlash(path string) string {
	for len(path) > 1 && path[len(path)-1] == '/' {
		path = path[:len(path)-1]
	}
	return path
}
