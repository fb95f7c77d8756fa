package limiter

import (
	"math/rand"
	"sync"
	"time"

	"github.com/rohmanhakim/sitemap-crawler/pkg/timeutil"
)

// HostPacer
// Specialized component to manage request pacing during crawling
// Responsibilities:
// - Bookkeep each hostname's last fetch timestamp
// - Compute the remaining delay for each hostname given various factors
// - Make sure the crawling process respects the server's policy
type HostPacer interface {
	SetBaseDelay(baseDelay time.Duration)
	SetJitter(jitter time.Duration)
	SetRandomSeed(randomSeed int64)
	SetCrawlDelay(host string, delay time.Duration)
	MarkLastFetchAsNow(host string)
	ResolveDelay(host string) time.Duration
}

type ConcurrentHostPacer struct {
	mu          sync.RWMutex
	rngMu       sync.Mutex
	baseDelay   time.Duration
	jitter      time.Duration
	hostTimings map[string]hostTiming
	rng         *rand.Rand
}

func NewConcurrentHostPacer() *ConcurrentHostPacer {
	return &ConcurrentHostPacer{
		hostTimings: make(map[string]hostTiming),
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (p *ConcurrentHostPacer) SetBaseDelay(baseDelay time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.baseDelay = baseDelay
}

func (p *ConcurrentHostPacer) SetJitter(jitter time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.jitter = jitter
}

func (p *ConcurrentHostPacer) SetRandomSeed(randomSeed int64) {
	p.rngMu.Lock()
	defer p.rngMu.Unlock()

	p.rng = rand.New(rand.NewSource(randomSeed))
}

// Set delay for a given host, separated from the global base delay.
// Used to honor a robots.txt crawl-delay directive.
func (p *ConcurrentHostPacer) SetCrawlDelay(host string, delay time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	currentHostTiming := p.hostTimings[host]
	currentHostTiming.crawlDelay = delay
	p.hostTimings[host] = currentHostTiming
}

// Mark the given host lastFetch to time.Now()
func (p *ConcurrentHostPacer) MarkLastFetchAsNow(host string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	currentHostTiming := p.hostTimings[host]
	currentHostTiming.lastFetchAt = time.Now()
	p.hostTimings[host] = currentHostTiming
}

// Compute jitter for the given max duration
// Returns a pseudo-random duration between 0 and max (exclusive)
func (p *ConcurrentHostPacer) computeJitter(max time.Duration) time.Duration {
	if max <= 0 {
		return 0
	}

	p.rngMu.Lock()
	defer p.rngMu.Unlock()

	if p.rng == nil {
		p.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	return time.Duration(p.rng.Int63n(int64(max)))
}

// ResolveDelay computes the remaining wait before the given host may be
// fetched again.
// FinalDelay = max(BaseDelay, crawlDelay) + Jitter, minus the time already
// elapsed since the host was last fetched.
func (p *ConcurrentHostPacer) ResolveDelay(host string) time.Duration {
	// copy needed state under read lock, then compute without holding p.mu
	p.mu.RLock()
	currentHostTiming, exists := p.hostTimings[host]
	base := p.baseDelay
	jitter := p.jitter
	p.mu.RUnlock()

	// return no delay if the host not registered yet
	if !exists || currentHostTiming.lastFetchAt.IsZero() {
		return time.Duration(0)
	}

	delays := []time.Duration{base, currentHostTiming.crawlDelay}
	finalDelay := timeutil.MaxDuration(delays)

	// add jitter to the final delay (computeJitter protects rng)
	finalDelay += p.computeJitter(jitter)

	elapsed := time.Since(currentHostTiming.lastFetchAt)

	// return the remaining time since the host last been fetched,
	// else don't delay
	if elapsed < finalDelay {
		return finalDelay - elapsed
	}

	return time.Duration(0)
}

func (p *ConcurrentHostPacer) GetBaseDelay() time.Duration {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.baseDelay
}

func (p *ConcurrentHostPacer) GetJitter() time.Duration {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.jitter
}
