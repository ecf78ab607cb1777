// Package guard holds the optional protections layered over sign-in and
// passcode verification: a windowed attempt limiter and a per-account lock.
// Both come in an in-process flavour and a Redis flavour for multi-replica
// deployments.
package guard

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrUnavailable wraps backend failures so callers can tell them apart
	// from a limit being hit.
	ErrUnavailable = errors.New("guard: backend unavailable")

	// ErrLockTimeout is returned when a lock could not be acquired in time.
	ErrLockTimeout = errors.New("guard: lock wait timed out")
)

// Counter counts hits per key inside a fixed window that starts at the first
// hit.
type Counter interface {
	Incr(ctx context.Context, key string) (int64, error)
	Reset(ctx context.Context, key string) error
}

// Locker serialises work per key. The returned release func is always non-nil
// when err is nil.
type Locker interface {
	Lock(ctx context.Context, key string) (release func(), err error)
}

// Limiter caps hits per key.
type Limiter struct {
	counter Counter
	max     int64
	prefix  string
}

// NewLimiter allows max hits per key within the counter's window.
func NewLimiter(counter Counter, prefix string, max int) *Limiter {
	if max <= 0 {
		max = 5
	}
	return &Limiter{counter: counter, max: int64(max), prefix: prefix}
}

// Hit records one hit and reports whether the key is now over its limit.
func (l *Limiter) Hit(ctx context.Context, key string) (exceeded bool, err error) {
	n, err := l.counter.Incr(ctx, l.prefix+key)
	if err != nil {
		return false, err
	}
	return n >= l.max, nil
}

// Reset clears the key.
func (l *Limiter) Reset(ctx context.Context, key string) error {
	return l.counter.Reset(ctx, l.prefix+key)
}

// NoopLocker never blocks. It keeps the accepted read-then-write race of
// attempt counting.
type NoopLocker struct{}

func (NoopLocker) Lock(context.Context, string) (func(), error) { return func() {}, nil }

const defaultWindow = 15 * time.Minute
