package fetcher

import (
	"net/url"
	"strings"
)

// HTTP boundary

type FetchParam struct {
	fetchURL  url.URL
	userAgent string
}

func NewFetchParam(fetchURL url.URL, userAgent string) FetchParam {
	return FetchParam{
		fetchURL:  fetchURL,
		userAgent: userAgent,
	}
}

func (p *FetchParam) URL() url.URL {
	return p.fetchURL
}

type FetchResult struct {
	url  url.URL
	body []byte
	meta ResponseMeta
}

func (f *FetchResult) URL() url.URL {
	return f.url
}

func (f *FetchResult) Body() []byte {
	return f.body
}

func (f *FetchResult) Code() int {
	return f.meta.statusCode
}

func (f *FetchResult) ContentType() string {
	return f.meta.contentType
}

func (f *FetchResult) SizeByte() uint64 {
	return f.meta.transferredSizeByte
}

func (f *FetchResult) Headers() map[string]string {
	return f.meta.responseHeaders
}

type ResponseMeta struct {
	statusCode          int
	contentType         string
	transferredSizeByte uint64
	responseHeaders     map[string]string
}

// IsHTMLContent reports whether a declared content type is renderable HTML.
// The decision of what to do with non-HTML content belongs to the scheduler,
// not the fetcher.
func IsHTMLContent(contentType string) bool {
	contentType = strings.ToLower(contentType)
	return strings.Contains(contentType, "text/html") ||
		strings.Contains(contentType, "application/xhtml")
}

// NewFetchResultForTest creates a FetchResult for testing purposes.
// This allows test packages to construct FetchResult values without
// accessing unexported fields directly.
func NewFetchResultForTest(
	fetchURL url.URL,
	body []byte,
	statusCode int,
	contentType string,
) FetchResult {
	return FetchResult{
		url:  fetchURL,
		body: body,
		meta: ResponseMeta{
			statusCode:          statusCode,
			contentType:         contentType,
			transferredSizeByte: uint64(len(body)),
			responseHeaders:     map[string]string{"Content-Type": contentType},
		},
	}
}
