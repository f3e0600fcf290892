package ratelimit

import (
	"context"
	"strings"
	"sync"
	"time"
)

// Store is a fixed-window counter backend. *redis.Client satisfies it.
type Store interface {
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
	TTL(ctx context.Context, key string) (time.Duration, error)
	RateLimitKey(scope string, parts ...string) string
}

// sweepEvery bounds how often IncrWithTTL scans for expired windows.
const sweepEvery = time.Minute

// MemoryStore keeps counters in process memory. Counts are not shared
// between replicas, so it is only suitable for local development and tests.
// Expired windows are dropped by a periodic sweep so one-off client IPs do
// not accumulate.
type MemoryStore struct {
	mu        sync.Mutex
	windows   map[string]window
	now       func() time.Time
	nextSweep time.Time
}

type window struct {
	count   int64
	expires time.Time
}

// NewMemoryStore returns an empty in-process counter store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{windows: map[string]window{}, now: time.Now}
}

// IncrWithTTL bumps the counter for key. The first hit of a window starts
// its ttl; a hit after expiry starts a new window at 1.
func (m *MemoryStore) IncrWithTTL(_ context.Context, key string, ttl time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.sweep(now)

	w, ok := m.windows[key]
	if !ok || w.expired(now) {
		w = window{}
	}
	w.count++
	if w.count == 1 && ttl > 0 {
		w.expires = now.Add(ttl)
	}
	m.windows[key] = w
	return w.count, nil
}

// sweep drops expired windows at most once per sweepEvery. Callers hold mu.
func (m *MemoryStore) sweep(now time.Time) {
	if now.Before(m.nextSweep) {
		return
	}
	for key, w := range m.windows {
		if w.expired(now) {
			delete(m.windows, key)
		}
	}
	m.nextSweep = now.Add(sweepEvery)
}

func (w window) expired(now time.Time) bool {
	return !w.expires.IsZero() && !now.Before(w.expires)
}

// TTL reports how long the current window for key has left, or zero.
func (m *MemoryStore) TTL(_ context.Context, key string) (time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	w, ok := m.windows[key]
	if !ok || w.expires.IsZero() {
		return 0, nil
	}
	if left := w.expires.Sub(m.now()); left > 0 {
		return left, nil
	}
	return 0, nil
}

// RateLimitKey builds "rate_limit:<scope>:<parts...>", skipping blank parts.
func (m *MemoryStore) RateLimitKey(scope string, parts ...string) string {
	clean := []string{"rate_limit", scope}
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			clean = append(clean, p)
		}
	}
	return strings.Join(clean, ":")
}
