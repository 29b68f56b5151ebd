package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// bucket wraps a token bucket with the bookkeeping needed for response
// headers and idle sweeping.
type bucket struct {
	lim      *rate.Limiter
	capacity float64
	perSec   float64

	mu       sync.Mutex
	lastUsed time.Time
}

func newBucket(rule Rule, now time.Time) *bucket {
	capacity := rule.Burst
	if capacity <= 0 {
		capacity = rule.Limit
	}
	perSec := float64(rule.Limit) / rule.Window.Seconds()
	return &bucket{
		lim:      rate.NewLimiter(rate.Limit(perSec), capacity),
		capacity: float64(capacity),
		perSec:   perSec,
		lastUsed: now,
	}
}

// take consumes one token if available. It reports the tokens left, the time
// until the bucket is full again, and how long to wait for the next token when denied.
func (b *bucket) take(now time.Time) (ok bool, remaining int, untilFull, retryAfter time.Duration) {
	ok = b.lim.AllowN(now, 1)
	tokens := b.lim.TokensAt(now)
	if !ok {
		retryAfter = seconds((1 - tokens) / b.perSec)
	}

	b.mu.Lock()
	b.lastUsed = now
	b.mu.Unlock()

	return ok, max(int(tokens), 0), seconds((b.capacity - tokens) / b.perSec), retryAfter
}

// idleSince reports whether the bucket has not been used since cutoff.
func (b *bucket) idleSince(cutoff time.Time) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastUsed.Before(cutoff)
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
