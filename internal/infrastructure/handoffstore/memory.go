package handoffstore

import (
	"context"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

// MemoryStore keeps handoffs in process memory with a TTL.
type MemoryStore struct {
	mu    sync.Mutex
	items *cache.Cache
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{items: cache.New(ttl, ttl)}
}

// Put replaces any unconsumed value under key.
func (s *MemoryStore) Put(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items.SetDefault(key, append([]byte(nil), value...))
	return nil
}

// Take returns the value and deletes it in one step.
func (s *MemoryStore) Take(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.items.Get(key)
	if !ok {
		return nil, false, nil
	}
	s.items.Delete(key)
	b, ok := v.([]byte)
	return b, ok, nil
}
