package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps per-key timestamps in process memory. Suited to a single
// long-lived instance; replicas and serverless deployments should use
// RedisStore so every instance sees the same counters.
type MemoryStore struct {
	mu   sync.Mutex
	hits map[string][]time.Time

	now func() time.Time
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		hits: make(map[string][]time.Time),
		now:  time.Now,
	}
}

// Allow implements Store using a sliding window over recorded timestamps.
func (s *MemoryStore) Allow(_ context.Context, key string, limit int, window time.Duration) (Decision, error) {
	now := s.now()
	cutoff := now.Add(-window)

	s.mu.Lock()
	defer s.mu.Unlock()

	recent := s.hits[key][:0]
	for _, t := range s.hits[key] {
		if t.After(cutoff) {
			recent = append(recent, t)
		}
	}

	if len(recent) >= limit {
		s.hits[key] = recent
		retry := recent[0].Add(window).Sub(now)
		if retry < 0 {
			retry = 0
		}
		return Decision{Allowed: false, RetryAfter: retry}, nil
	}

	recent = append(recent, now)
	s.hits[key] = recent
	return Decision{Allowed: true, Remaining: limit - len(recent)}, nil
}

// StartJanitor removes keys whose newest entry is older than idleTTL, every
// cleanupEvery, until ctx is cancelled. Keeps memory bounded when many
// distinct clients hit the API once and disappear.
func (s *MemoryStore) StartJanitor(ctx context.Context, idleTTL, cleanupEvery time.Duration) {
	go func() {
		ticker := time.NewTicker(cleanupEvery)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.sweep(idleTTL)
			}
		}
	}()
}

func (s *MemoryStore) sweep(idleTTL time.Duration) {
	cutoff := s.now().Add(-idleTTL)
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, times := range s.hits {
		if len(times) == 0 || times[len(times)-1].Before(cutoff) {
			delete(s.hits, key)
		}
	}
}
