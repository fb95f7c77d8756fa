package robots

import "time"

// Decision is the admission outcome for one URL. CrawlDelay is non-nil
// only when the host's robots.txt declares one for our user agent.
type Decision struct {
	Allowed    bool
	CrawlDelay *time.Duration
}
