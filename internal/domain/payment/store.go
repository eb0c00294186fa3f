package payment

import (
	"container/list"
	"context"
	"sync"
	"time"
)

// StatusStore caches webhook-pushed payment states for status polls.
type StatusStore interface {
	Get(ctx context.Context, transactionID string) (*PaymentRecord, error)
	Set(ctx context.Context, record *PaymentRecord) error
}

// MemoryStatusStore is a bounded in-process cache. Entries expire after a
// TTL and the oldest entry is evicted when capacity is reached, so a burst
// of webhooks cannot grow memory without limit.
type MemoryStatusStore struct {
	mu      sync.Mutex
	entries map[string]*list.Element
	order   *list.List

	maxEntries int
	ttl        time.Duration
	now        func() time.Time
}

type statusEntry struct {
	record    *PaymentRecord
	expiresAt time.Time
}

var _ StatusStore = (*MemoryStatusStore)(nil)

// NewMemoryStatusStore creates a cache holding at most maxEntries records
// for up to ttl each.
func NewMemoryStatusStore(maxEntries int, ttl time.Duration) *MemoryStatusStore {
	return &MemoryStatusStore{
		entries:    make(map[string]*list.Element),
		order:      list.New(),
		maxEntries: maxEntries,
		ttl:        ttl,
		now:        time.Now,
	}
}

// Get returns the cached record for transactionID, or nil when absent or
// expired.
func (s *MemoryStatusStore) Get(_ context.Context, transactionID string) (*PaymentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	elem, ok := s.entries[transactionID]
	if !ok {
		return nil, nil
	}
	entry := elem.Value.(*statusEntry)
	if s.now().After(entry.expiresAt) {
		s.removeLocked(transactionID, elem)
		return nil, nil
	}
	return entry.record, nil
}

// Set stores or replaces the record for its transaction ID.
func (s *MemoryStatusStore) Set(_ context.Context, record *PaymentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if elem, ok := s.entries[record.TransactionID]; ok {
		s.removeLocked(record.TransactionID, elem)
	}
	for s.order.Len() >= s.maxEntries {
		oldest := s.order.Front()
		s.removeLocked(oldest.Value.(*statusEntry).record.TransactionID, oldest)
	}

	elem := s.order.PushBack(&statusEntry{
		record:    record,
		expiresAt: s.now().Add(s.ttl),
	})
	s.entries[record.TransactionID] = elem
	return nil
}

func (s *MemoryStatusStore) removeLocked(transactionID string, elem *list.Element) {
	s.order.Remove(elem)
	delete(s.entries, transactionID)
}

// StartJanitor drops expired entries every cleanupEvery until ctx is
// cancelled.
func (s *MemoryStatusStore) StartJanitor(ctx context.Context, cleanupEvery time.Duration) {
	go func() {
		ticker := time.NewTicker(cleanupEvery)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.sweep()
			}
		}
	}()
}

func (s *MemoryStatusStore) sweep() {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	for elem := s.order.Front(); elem != nil; {
		next := elem.Next()
		entry := elem.Value.(*statusEntry)
		if now.After(entry.expiresAt) {
			s.removeLocked(entry.record.TransactionID, elem)
		}
		elem = next
	}
}
