package frontier

import "net/url"

// Crawl selection & ordering

// Entry is a candidate URL that survived deduplication, extension filtering
// and the cap. Its index (1..N) is used for progress reporting and ordering;
// it is assigned once at build time and never changes.
type Entry struct {
	index      int
	pageURL    url.URL
	seedSource string
	normalized string
}

func (e *Entry) Index() int {
	return e.index
}

func (e *Entry) URL() url.URL {
	return e.pageURL
}

func (e *Entry) SeedSource() string {
	return e.seedSource
}

// Normalized returns the deduplication key form of the URL.
func (e *Entry) Normalized() string {
	return e.normalized
}

// NewEntryForTest constructs an Entry without going through Build.
// Test-only; production entries are created by Build exclusively.
func NewEntryForTest(index int, pageURL url.URL, seedSource string) Entry {
	return Entry{
		index:      index,
		pageURL:    pageURL,
		seedSource: seedSource,
		normalized: pageURL.String(),
	}
}
