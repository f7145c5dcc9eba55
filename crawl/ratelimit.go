package crawl

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/govseek/govseek"
	"golang.org/x/time/rate"
)

// Ensure Jitter implements govseek.Limiter at compile time.
var _ govseek.Limiter = (*Jitter)(nil)

// Jitter blocks for a uniformly random duration in [min, max] before each
// fetch. A zero min and max disables limiting, used for trusted low-load
// sources. Jitter never errors except on context cancellation.
type Jitter struct {
	min time.Duration
	max time.Duration
}

// NewJitter creates a Jitter limiter with the given delay window.
// Negative values are clamped to zero; if max < min, max is raised to min.
func NewJitter(min, max time.Duration) *Jitter {
	if min < 0 {
		min = 0
	}
	if max < min {
		max = min
	}
	return &Jitter{min: min, max: max}
}

// Wait blocks for a random duration in the limiter's window, or until the
// context is canceled.
func (j *Jitter) Wait(ctx context.Context) error {
	delay := j.min
	if j.max > j.min {
		delay += rand.N(j.max - j.min + 1)
	}
	if delay == 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// DomainLimiter provides per-domain rate limiting using token buckets. It
// keeps concurrent crawl sessions polite toward a shared host: requests to
// different domains proceed independently while requests within one domain
// are spaced by the bucket.
type DomainLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      float64
}

// NewDomainLimiter creates a DomainLimiter with the specified requests per
// second limit. Each domain gets its own limiter with a burst of 1.
func NewDomainLimiter(rps float64) *DomainLimiter {
	return &DomainLimiter{
		limiters: make(map[string]*rate.Limiter),
		rps:      rps,
	}
}

// Wait blocks until the rate limit allows a request to the domain.
// Returns an error if the context is canceled before the wait completes.
func (d *DomainLimiter) Wait(ctx context.Context, domain string) error {
	d.mu.Lock()
	limiter, ok := d.limiters[domain]
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(d.rps), 1)
		d.limiters[domain] = limiter
	}
	d.mu.Unlock()

	return limiter.Wait(ctx)
}
