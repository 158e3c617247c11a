package snapshot

import (
	"context"
	"sync"
)

// MemoryStore is an in-process Store, the default for tests and for
// single-run sessions with no external storage configured.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (s *MemoryStore) Put(_ context.Context, formID string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]byte, len(data))
	copy(cp, data)
	s.data[formID] = cp
	return nil
}

func (s *MemoryStore) Get(_ context.Context, formID string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.data[formID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, nil
}

func (s *MemoryStore) Delete(_ context.Context, formID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, formID)
	return nil
}
