package cache

import (
	"context"
	"path"
	"sync"
	"time"
)

// MemoryStore is a process-local Store. It backs tests and single-instance
// deployments that run without Redis.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]memoryItem
}

type memoryItem struct {
	value     []byte
	expiresAt time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]memoryItem)}
}

func (s *MemoryStore) Connect(ctx context.Context) bool { return true }
func (s *MemoryStore) Close() error                     { return nil }

func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.items[key]
	if !ok || time.Now().After(item.expiresAt) {
		return nil, false
	}
	return item.value, true
}

func (s *MemoryStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = memoryItem{value: value, expiresAt: time.Now().Add(ttl)}
	return true
}

func (s *MemoryStore) Delete(ctx context.Context, key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, key)
	return true
}

func (s *MemoryStore) MGet(ctx context.Context, keys []string) map[string][]byte {
	out := make(map[string][]byte, len(keys))
	s.mu.RLock()
	defer s.mu.RUnlock()
	now := time.Now()
	for _, key := range keys {
		if item, ok := s.items[key]; ok && now.Before(item.expiresAt) {
			out[key] = item.value
		}
	}
	return out
}

func (s *MemoryStore) MSet(ctx context.Context, values map[string][]byte, ttl time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	expiresAt := time.Now().Add(ttl)
	for key, value := range values {
		s.items[key] = memoryItem{value: value, expiresAt: expiresAt}
	}
	return true
}

func (s *MemoryStore) DeletePattern(ctx context.Context, pattern string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for key := range s.items {
		if matched, _ := path.Match(pattern, key); matched {
			delete(s.items, key)
			count++
		}
	}
	return count
}
