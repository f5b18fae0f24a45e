package ratelimit

import (
	"sync"
	"time"
)

// Limiter is a process-wide sliding-window request gate. At most max
// admissions are allowed within any trailing window; older timestamps are
// pruned lazily before each admission check. The whole evict-check-append
// sequence runs under one mutex so the ceiling can never be exceeded, even
// transiently, under concurrent callers.
type Limiter struct {
	mu     sync.Mutex
	max    int
	window time.Duration
	stamps []time.Time

	now func() time.Time
}

// New creates a Limiter admitting at most max requests per window.
func New(max int, window time.Duration) *Limiter {
	return &Limiter{
		max:    max,
		window: window,
		stamps: make([]time.Time, 0, max),
		now:    time.Now,
	}
}

// Admit reports whether the caller may proceed. Rejected attempts are not
// recorded against the window.
func (l *Limiter) Admit() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)

	// Timestamps are appended in increasing order, so evicting a prefix is
	// sufficient. The old edge is exclusive: a stamp exactly at the cutoff
	// is evicted.
	i := 0
	for i < len(l.stamps) && !l.stamps[i].After(cutoff) {
		i++
	}
	if i > 0 {
		l.stamps = append(l.stamps[:0], l.stamps[i:]...)
	}

	if len(l.stamps) >= l.max {
		return false
	}

	l.stamps = append(l.stamps, now)
	return true
}

// Len returns the number of admissions currently inside the window.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.stamps)
}
