package gateway

import (
	"sync"
	"time"
)

// record tracks one client's request count inside the current window.
type record struct {
	count   int
	resetAt time.Time
}

// RateResult is the outcome of a single rate-limit check.
type RateResult struct {
	Allowed           bool
	Remaining         int
	RetryAfterSeconds int
}

// Limiter is a fixed-window request counter keyed by client identity.
// Expired windows are reset lazily on the next access, so there is no
// background sweep. Safe for concurrent use.
type Limiter struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	records map[string]*record

	now func() time.Time
}

// NewLimiter creates a limiter allowing limit requests per window.
func NewLimiter(limit int, window time.Duration) *Limiter {
	return &Limiter{
		limit:   limit,
		window:  window,
		records: make(map[string]*record),
		now:     time.Now,
	}
}

// Check consumes one request from key's quota if any remains.
func (l *Limiter) Check(key string) RateResult {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	current, ok := l.records[key]

	if !ok || now.After(current.resetAt) {
		l.records[key] = &record{count: 1, resetAt: now.Add(l.window)}
		return RateResult{
			Allowed:           true,
			Remaining:         l.limit - 1,
			RetryAfterSeconds: int(l.window.Round(time.Second) / time.Second),
		}
	}

	if current.count >= l.limit {
		retry := int(current.resetAt.Sub(now).Round(time.Second) / time.Second)
		if retry < 1 {
			retry = 1
		}
		return RateResult{Allowed: false, Remaining: 0, RetryAfterSeconds: retry}
	}

	current.count++
	remaining := l.limit - current.count
	if remaining < 0 {
		remaining = 0
	}
	return RateResult{Allowed: true, Remaining: remaining}
}
