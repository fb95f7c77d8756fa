package metadata

import "fmt"

/*
ErrorCause is a closed, canonical classification used exclusively for
observability (logging, metrics, reporting).

Rules:
 - ErrorCause is for observability only.
 - It must never be used to derive retry, continuation, or abort decisions.
 - ErrorCause values MUST have stable, package-agnostic semantics.
 - Pipeline packages MAY map their local errors to ErrorCause,
   but MUST NOT invent new meanings.

If a failure does not clearly match a defined cause, CauseUnknown MUST be used.
*/
type ErrorCause int

const (
	// CauseUnknown: the failure does not map cleanly to any known category.
	CauseUnknown ErrorCause = iota
	// CauseSourceUnavailable: a seed sitemap or page could not be fetched or parsed.
	CauseSourceUnavailable
	// CauseNetworkFailure: transport-level failure (timeouts, DNS, resets).
	CauseNetworkFailure
	// CausePolicyDisallow: crawling disallowed by explicit policy (robots.txt, 403).
	CausePolicyDisallow
	// CauseContentInvalid: content fetched but not processable (non-HTML, broken DOM).
	CauseContentInvalid
	// CauseStorageFailure: failure while persisting crawl artifacts.
	CauseStorageFailure
	// CauseConfigInvalid: configuration rejected before any network activity.
	CauseConfigInvalid
)

func (c ErrorCause) String() string {
	switch c {
	case CauseSourceUnavailable:
		return "source unavailable"
	case CauseNetworkFailure:
		return "network failure"
	case CausePolicyDisallow:
		return "policy disallow"
	case CauseContentInvalid:
		return "content invalid"
	case CauseStorageFailure:
		return "storage failure"
	case CauseConfigInvalid:
		return "config invalid"
	default:
		return "unknown"
	}
}

type ArtifactKind string

const (
	ArtifactMarkdown ArtifactKind = "markdown"
	ArtifactLinkList ArtifactKind = "linklist"
)

type AttrKey string

const (
	AttrURL       AttrKey = "url"
	AttrSource    AttrKey = "source"
	AttrDepth     AttrKey = "depth"
	AttrWritePath AttrKey = "writePath"
	AttrField     AttrKey = "field"
	AttrMessage   AttrKey = "message"
)

type Attribute struct {
	key   AttrKey
	value string
}

func NewAttr(key AttrKey, value string) Attribute {
	return Attribute{key: key, value: value}
}

func (a Attribute) Key() AttrKey {
	return a.key
}

func (a Attribute) Value() string {
	return a.value
}

func progressTag(index, total int) string {
	return fmt.Sprintf("%d/%d", index, total)
}
