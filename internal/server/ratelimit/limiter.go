// Package ratelimit provides per-client token bucket rate limiting for the validation API.
package ratelimit

import (
	"sync"
	"time"
)

// Decision is the outcome of one rate limit check.
type Decision struct {
	Allowed    bool
	Limit      int // Zero when the request was not subject to a limit
	Remaining  int
	ResetAt    time.Time
	RetryAfter time.Duration
}

// Limiter tracks one bucket per client and endpoint rule.
type Limiter struct {
	cfg Config
	now func() time.Time

	mu      sync.Mutex
	buckets map[string]*bucket

	stop     chan struct{}
	stopOnce sync.Once
}

// NewLimiter creates a Limiter and starts its idle-bucket sweeper when enabled.
func NewLimiter(cfg Config) *Limiter {
	l := &Limiter{
		cfg:     cfg,
		now:     time.Now,
		buckets: make(map[string]*bucket),
		stop:    make(chan struct{}),
	}
	if cfg.Enabled && cfg.SweepInterval > 0 {
		go l.sweepLoop(cfg.SweepInterval)
	}
	return l
}

// Allow checks and records a request from clientID.
func (l *Limiter) Allow(clientID, method, path string) Decision {
	if !l.cfg.Enabled || l.cfg.Allowlist[clientID] {
		return Decision{Allowed: true}
	}
	if l.cfg.Denylist[clientID] {
		return Decision{Allowed: false}
	}

	rule, limited := l.cfg.RuleFor(method, path)
	if !limited || rule.Limit <= 0 || rule.Window <= 0 {
		return Decision{Allowed: true}
	}

	// Keyed by rule rather than path so /verdicts/{id} lookups share one bucket.
	now := l.now()
	b := l.bucket(clientID+" "+rule.Method+" "+rule.Path, rule, now)
	ok, remaining, untilFull, retryAfter := b.take(now)
	return Decision{
		Allowed:    ok,
		Limit:      rule.Limit,
		Remaining:  remaining,
		ResetAt:    now.Add(untilFull),
		RetryAfter: retryAfter,
	}
}

func (l *Limiter) bucket(key string, rule Rule, now time.Time) *bucket {
	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.buckets[key]
	if !ok {
		b = newBucket(rule, now)
		l.buckets[key] = b
	}
	return b
}

func (l *Limiter) sweepLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.sweep()
		case <-l.stop:
			return
		}
	}
}

// sweep drops buckets idle for longer than IdleTTL.
func (l *Limiter) sweep() {
	ttl := l.cfg.IdleTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	cutoff := l.now().Add(-ttl)

	l.mu.Lock()
	defer l.mu.Unlock()
	for key, b := range l.buckets {
		if b.idleSince(cutoff) {
			delete(l.buckets, key)
		}
	}
}

// Stop ends the sweeper. It is safe to call more than once.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}
