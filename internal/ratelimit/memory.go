package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps per-identity timestamp lists in a mutex-guarded map.
// Suitable for a single-process deployment; entries are bounded by the
// pruning step in Tally.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string][]time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string][]time.Time)}
}

var _ Store = (*MemoryStore)(nil)

func (s *MemoryStore) Tally(ctx context.Context, key string, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.entries[key][:0]
	for _, ts := range s.entries[key] {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	if len(kept) == 0 {
		delete(s.entries, key)
		return 0, nil
	}
	s.entries[key] = kept
	return len(kept), nil
}

func (s *MemoryStore) Record(ctx context.Context, key string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = append(s.entries[key], at)
	return nil
}
