package history

import (
	"context"
	"sync"
)

// MemoryStore keeps the most recent runs in process memory.
type MemoryStore struct {
	mu       sync.RWMutex
	runs     []Run
	capacity int
}

// NewMemoryStore creates a store holding up to capacity runs.
// Older runs are discarded once it is full.
func NewMemoryStore(capacity int) *MemoryStore {
	if capacity <= 0 {
		capacity = DefaultListLimit
	}
	return &MemoryStore{capacity: capacity}
}

// Record appends a run, evicting the oldest when at capacity.
func (s *MemoryStore) Record(_ context.Context, run Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.runs) == s.capacity {
		copy(s.runs, s.runs[1:])
		s.runs = s.runs[:len(s.runs)-1]
	}
	s.runs = append(s.runs, run)
	return nil
}

// List returns up to limit runs, newest first.
func (s *MemoryStore) List(_ context.Context, limit int) ([]Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	limit = min(normalizeLimit(limit), len(s.runs))
	out := make([]Run, 0, limit)
	for i := len(s.runs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.runs[i])
	}
	return out, nil
}
