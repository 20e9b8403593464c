// Package ratelimit implements the fixed-window admission gate used around
// every outbound QuickBooks call. Two independent instances exist per client:
// one sized for regular calls, one for batch calls.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Limiter admits at most capacity acquisitions per window. Acquire blocks
// until admission is possible; the returned Permit must be released when the
// guarded call finishes. The limiter never fails, it only delays.
type Limiter struct {
	mu       sync.Mutex
	capacity int
	window   time.Duration

	windowStart time.Time
	requests    int

	// now is swappable for tests.
	now func() time.Time
}

// New creates a limiter admitting capacity acquisitions per window.
func New(capacity int, window time.Duration) *Limiter {
	return &Limiter{
		capacity:    capacity,
		window:      window,
		windowStart: time.Now(),
		now:         time.Now,
	}
}

// Permit records an admission into a specific window instance. Releasing is
// idempotent, and a release that arrives after the admitting window has
// rolled over does not touch the new window's count.
type Permit struct {
	limiter     *Limiter
	windowStart time.Time
	once        sync.Once
}

// Acquire blocks until the limiter admits the caller or ctx is done. The
// window reset and the admission check happen in one critical section so two
// racing callers cannot both reset the counter and double the effective
// capacity.
func (l *Limiter) Acquire(ctx context.Context) (*Permit, error) {
	for {
		l.mu.Lock()

		now := l.now()
		if now.Sub(l.windowStart) >= l.window {
			l.windowStart = now
			l.requests = 0
		}

		if l.requests < l.capacity {
			l.requests++
			permit := &Permit{limiter: l, windowStart: l.windowStart}
			l.mu.Unlock()

			return permit, nil
		}

		wait := l.window - now.Sub(l.windowStart)
		l.mu.Unlock()

		// Multiple waiters may wake into the same reset window, so re-contend
		// from the top rather than admitting after a single sleep.
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()

			return nil, fmt.Errorf("acquiring rate limit permit: %w", ctx.Err())
		case <-timer.C:
		}
	}
}

// Release returns the permit's slot to the window that admitted it. Calling
// Release more than once, releasing into a rolled-over window, or releasing a
// nil permit are all no-ops.
func (p *Permit) Release() {
	if p == nil || p.limiter == nil {
		return
	}

	p.once.Do(func() {
		l := p.limiter
		l.mu.Lock()
		defer l.mu.Unlock()

		if l.windowStart.Equal(p.windowStart) && l.requests > 0 {
			l.requests--
		}
	})
}

// InFlight reports the number of admissions counted against the current
// window. Intended for tests and diagnostics.
func (l *Limiter) InFlight() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.now().Sub(l.windowStart) >= l.window {
		return 0
	}

	return l.requests
}
