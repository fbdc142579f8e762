package fetch

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// SourceLimiter provides per-source rate limiting using token buckets. Each
// source gets its own limiter so a slow or throttled source never delays the
// others.
type SourceLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      float64
}

// NewSourceLimiter creates a limiter enforcing the given requests-per-second
// limit per source, with a burst of 1.
func NewSourceLimiter(rps float64) *SourceLimiter {
	return &SourceLimiter{
		limiters: make(map[string]*rate.Limiter),
		rps:      rps,
	}
}

// Wait blocks until the rate limit allows a request to the source, or the
// context is cancelled. A nil limiter never blocks.
func (l *SourceLimiter) Wait(ctx context.Context, source string) error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	limiter, ok := l.limiters[source]
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(l.rps), 1)
		l.limiters[source] = limiter
	}
	l.mu.Unlock()

	return limiter.Wait(ctx)
}
