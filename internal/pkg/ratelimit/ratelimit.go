package ratelimit

import (
	"errors"
	"sync"
	"time"
)

// ErrRateLimited is returned when an identity exceeds a window ceiling.
var ErrRateLimited = errors.New("rate limit exceeded")

// Clock abstracts time.Now so tests can drive the windows deterministically.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns the wall-clock implementation used in production.
func SystemClock() Clock { return systemClock{} }

type window struct {
	start time.Time
	count int
}

type identityWindows struct {
	minute window
	hour   window
}

// Limiter enforces per-identity sliding minute and hour request windows.
// State is process-local and resets on restart.
type Limiter struct {
	mu        sync.Mutex
	clock     Clock
	perMinute int
	perHour   int
	windows   map[string]*identityWindows
}

// New creates a Limiter with the given per-minute and per-hour ceilings.
func New(perMinute, perHour int, clock Clock) *Limiter {
	if clock == nil {
		clock = SystemClock()
	}
	return &Limiter{
		clock:     clock,
		perMinute: perMinute,
		perHour:   perHour,
		windows:   make(map[string]*identityWindows),
	}
}

// Allow records one request for identity and reports whether it is admitted.
// Returns ErrRateLimited when either window is exhausted; the rejected
// request does not consume window budget.
func (l *Limiter) Allow(identity string) error {
	now := l.clock.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[identity]
	if !ok {
		w = &identityWindows{}
		l.windows[identity] = w
	}

	if now.Sub(w.minute.start) >= time.Minute {
		w.minute = window{start: now}
	}
	if now.Sub(w.hour.start) >= time.Hour {
		w.hour = window{start: now}
	}

	if w.minute.count >= l.perMinute || w.hour.count >= l.perHour {
		return ErrRateLimited
	}

	w.minute.count++
	w.hour.count++

	if len(l.windows) > pruneAbove {
		l.prune(now)
	}
	return nil
}

const pruneAbove = 4096

// prune drops identities whose hour window has fully elapsed. Caller holds mu.
func (l *Limiter) prune(now time.Time) {
	for id, w := range l.windows {
		if now.Sub(w.hour.start) >= time.Hour {
			delete(l.windows, id)
		}
	}
}
