package ratelimit

import (
	"context"
	"sync"
	"time"
)

type record struct {
	count   int
	resetAt time.Time
}

// MemoryStore keeps counters in process memory. It is correct for a single
// instance only.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]*record
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]*record)}
}

// Hit implements Store. A window starts on the first request after the
// previous one expired.
func (s *MemoryStore) Hit(_ context.Context, key Key, policy Policy, now time.Time) (bool, error) {
	if policy.Limit <= 0 {
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	k := key.String()
	rec, ok := s.records[k]
	if !ok || !now.Before(rec.resetAt) {
		s.records[k] = &record{count: 1, resetAt: now.Add(policy.Window)}
		return true, nil
	}

	if rec.count >= policy.Limit {
		return false, nil
	}
	rec.count++
	return true, nil
}

// Sweep drops expired records.
func (s *MemoryStore) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for k, rec := range s.records {
		if !now.Before(rec.resetAt) {
			delete(s.records, k)
			removed++
		}
	}
	return removed
}

// RunSweeper calls Sweep every interval until ctx is done.
func (s *MemoryStore) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case t := <-ticker.C:
			s.Sweep(t)
		}
	}
}
