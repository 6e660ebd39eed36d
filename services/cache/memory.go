package cache

import (
	"sync"
	"time"
)

type memoryItem struct {
	value     []byte
	expiresAt time.Time
}

// MemoryService implements CacheService in process
type MemoryService struct {
	mu    sync.RWMutex
	store map[string]memoryItem
	now   func() time.Time
}

// NewMemoryService creates an empty in-process cache
func NewMemoryService() *MemoryService {
	return &MemoryService{
		store: make(map[string]memoryItem),
		now:   time.Now,
	}
}

// Get retrieves a value unless it expired
func (m *MemoryService) Get(key string) ([]byte, error) {
	m.mu.RLock()
	item, ok := m.store[key]
	m.mu.RUnlock()

	if !ok || (!item.expiresAt.IsZero() && !m.now().Before(item.expiresAt)) {
		return nil, ErrMiss
	}
	return item.value, nil
}

// Set stores a copy of value. A zero expiration never expires.
func (m *MemoryService) Set(key string, value []byte, expiration time.Duration) error {
	item := memoryItem{value: append([]byte(nil), value...)}
	if expiration > 0 {
		item.expiresAt = m.now().Add(expiration)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.store[key] = item
	return nil
}

// Delete removes a value
func (m *MemoryService) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.store, key)
	return nil
}
