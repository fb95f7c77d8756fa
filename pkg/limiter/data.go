package limiter

import "time"

// timing-related data used to track when to fetch host during crawling
type hostTiming struct {
	lastFetchAt time.Time
	crawlDelay  time.Duration
}

func (h *hostTiming) CrawlDelay() time.Duration {
	return h.crawlDelay
}

func (h *hostTiming) LastFetchAt() time.Time {
	return h.lastFetchAt
}
