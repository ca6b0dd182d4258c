package auth

import (
	"context"
	"sync"
	"time"
)

// limiterWindow tracks request counts inside one fixed window.
type limiterWindow struct {
	count   int
	startAt time.Time
}

// Limiter is an in-memory fixed-window rate limiter.
//
// Keys are caller-defined (client IP plus route class). Stale windows are
// removed by a periodic sweep so the map does not grow with one-off callers.
type Limiter struct {
	mu      sync.Mutex
	windows map[string]*limiterWindow
	limit   int
	window  time.Duration
}

// NewLimiter creates a limiter allowing limit requests per window per key.
func NewLimiter(limit int, window time.Duration) *Limiter {
	if limit <= 0 {
		limit = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &Limiter{
		windows: make(map[string]*limiterWindow),
		limit:   limit,
		window:  window,
	}
}

// Allow records an attempt for key and reports whether it is within the
// limit. When denied, retryAfter says how long until the window resets.
func (l *Limiter) Allow(key string, now time.Time) (allowed bool, retryAfter time.Duration) {
	if l == nil {
		return true, 0
	}
	now = now.UTC()
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.windows[key]
	if !ok || now.Sub(entry.startAt) >= l.window {
		l.windows[key] = &limiterWindow{count: 1, startAt: now}
		return true, 0
	}
	if entry.count >= l.limit {
		return false, entry.startAt.Add(l.window).Sub(now)
	}
	entry.count++
	return true, 0
}

// Blocked reports whether key has reached the limit without recording an
// attempt. When blocked, retryAfter says how long until the window resets.
func (l *Limiter) Blocked(key string, now time.Time) (blocked bool, retryAfter time.Duration) {
	if l == nil {
		return false, 0
	}
	now = now.UTC()
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.windows[key]
	if !ok || now.Sub(entry.startAt) >= l.window {
		return false, 0
	}
	if entry.count >= l.limit {
		return true, entry.startAt.Add(l.window).Sub(now)
	}
	return false, 0
}

// Record counts one attempt against key regardless of the limit. Use it
// with Blocked when only some outcomes should count, such as failed logins.
func (l *Limiter) Record(key string, now time.Time) {
	if l == nil {
		return
	}
	now = now.UTC()
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.windows[key]
	if !ok || now.Sub(entry.startAt) >= l.window {
		l.windows[key] = &limiterWindow{count: 1, startAt: now}
		return
	}
	entry.count++
}

// Sweep drops windows that ended before now and returns how many were removed.
func (l *Limiter) Sweep(now time.Time) int {
	if l == nil {
		return 0
	}
	now = now.UTC()
	l.mu.Lock()
	defer l.mu.Unlock()
	removed := 0
	for key, entry := range l.windows {
		if now.Sub(entry.startAt) >= l.window {
			delete(l.windows, key)
			removed++
		}
	}
	return removed
}

// Run sweeps stale windows on the given interval until the context ends.
func (l *Limiter) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			l.Sweep(now)
		}
	}
}
