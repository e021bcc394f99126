package worker

import (
	"context"
	"math/rand/v2"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter paces requests per host: a token bucket plus a random polite
// delay between DelayMin and DelayMax after each acquisition
type Limiter struct {
	limiters     map[string]*rate.Limiter
	delays       map[string]time.Duration
	mu           sync.RWMutex
	defaultRate  rate.Limit
	defaultBurst int
	delayMin     time.Duration
	delayMax     time.Duration

	// jitter returns a value in [0, n); swapped in tests
	jitter func(n int64) int64
}

// NewLimiter creates a per-host limiter. requestsPerSecond <= 0 disables
// the token bucket.
func NewLimiter(requestsPerSecond float64, burst int) *Limiter {
	if burst <= 0 {
		burst = 1
	}
	limit := rate.Limit(requestsPerSecond)
	if requestsPerSecond <= 0 {
		limit = rate.Inf
	}
	return &Limiter{
		limiters:     make(map[string]*rate.Limiter),
		delays:       make(map[string]time.Duration),
		defaultRate:  limit,
		defaultBurst: burst,
		jitter:       rand.Int64N,
	}
}

// WithPoliteDelay sets the random delay range added to every Wait
func (l *Limiter) WithPoliteDelay(min, max time.Duration) *Limiter {
	if max < min {
		max = min
	}
	l.delayMin, l.delayMax = min, max
	return l
}

// Wait blocks until a request to rawURL's host is allowed
func (l *Limiter) Wait(ctx context.Context, rawURL string) error {
	host, err := extractHost(rawURL)
	if err != nil {
		return err
	}

	if err := l.getLimiter(host).Wait(ctx); err != nil {
		return err
	}

	delay := l.politeDelay()
	l.mu.RLock()
	if d := l.delays[host]; d > delay {
		delay = d
	}
	l.mu.RUnlock()

	if delay <= 0 {
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// SetCrawlDelay raises the minimum delay for host, e.g. from robots.txt
func (l *Limiter) SetCrawlDelay(host string, d time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if d > l.delays[host] {
		l.delays[host] = d
	}
}

// SetDomainRate sets a custom rate limit for a specific host
func (l *Limiter) SetDomainRate(host string, requestsPerSecond float64, burst int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if burst <= 0 {
		burst = l.defaultBurst
	}
	l.limiters[host] = rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
}

func (l *Limiter) politeDelay() time.Duration {
	if l.delayMax <= 0 {
		return 0
	}
	span := int64(l.delayMax - l.delayMin)
	if span <= 0 {
		return l.delayMin
	}
	return l.delayMin + time.Duration(l.jitter(span+1))
}

func (l *Limiter) getLimiter(host string) *rate.Limiter {
	l.mu.RLock()
	limiter, exists := l.limiters[host]
	l.mu.RUnlock()
	if exists {
		return limiter
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if limiter, exists := l.limiters[host]; exists {
		return limiter
	}
	limiter = rate.NewLimiter(l.defaultRate, l.defaultBurst)
	l.limiters[host] = limiter
	return limiter
}

func extractHost(rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	return parsed.Host, nil
}
