// Package ratelimit gates request volume per identity and function.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrCheckFailed is returned when the store cannot evaluate a limit.
// It is distinct from a denial, which is reported as allowed=false.
var ErrCheckFailed = errors.New("rate limit check failed")

// Key identifies one counter.
type Key struct {
	Identity string
	Function string
}

func (k Key) String() string {
	return fmt.Sprintf("%s:%s", k.Identity, k.Function)
}

// Policy is the budget applied to a key.
type Policy struct {
	Limit  int
	Window time.Duration
}

// Store performs an atomic check-then-increment for key under policy.
type Store interface {
	Hit(ctx context.Context, key Key, policy Policy, now time.Time) (bool, error)
}

// Limiter resolves per-function policies and delegates counting to a Store.
type Limiter struct {
	store    Store
	window   time.Duration
	limits   map[string]int
	fallback int
	now      func() time.Time
}

// Option customises a Limiter.
type Option func(*Limiter)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

// WithDefaultLimit sets the budget for functions without an explicit limit.
func WithDefaultLimit(limit int) Option {
	return func(l *Limiter) { l.fallback = limit }
}

// New creates a limiter over store with a shared window and per-function limits.
func New(store Store, window time.Duration, limits map[string]int, opts ...Option) *Limiter {
	copied := make(map[string]int, len(limits))
	for fn, limit := range limits {
		copied[fn] = limit
	}

	l := &Limiter{
		store:    store,
		window:   window,
		limits:   copied,
		fallback: 20,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Policy returns the policy applied to function.
func (l *Limiter) Policy(function string) Policy {
	limit, ok := l.limits[function]
	if !ok {
		limit = l.fallback
	}
	return Policy{Limit: limit, Window: l.window}
}

// Allow counts one request for identity against function. Store failures
// are wrapped with ErrCheckFailed.
func (l *Limiter) Allow(ctx context.Context, identity, function string) (bool, error) {
	key := Key{Identity: identity, Function: function}
	allowed, err := l.store.Hit(ctx, key, l.Policy(function), l.now())
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrCheckFailed, err)
	}
	return allowed, nil
}
