package persist

import (
	"context"
	"sync"
)

// MemoryStorage keeps values in process memory. A positive quota bounds the
// summed size of keys and values, the same way browser storage accounts for it.
type MemoryStorage struct {
	mu     sync.RWMutex
	values map[string][]byte
	quota  int64
	used   int64
}

func NewMemoryStorage(quotaBytes int64) *MemoryStorage {
	return &MemoryStorage{values: make(map[string][]byte), quota: quotaBytes}
}

func (m *MemoryStorage) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.values[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

func (m *MemoryStorage) Set(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	used := m.used + int64(len(key)+len(value))
	if existing, ok := m.values[key]; ok {
		used -= int64(len(key) + len(existing))
	}
	if m.quota > 0 && used > m.quota {
		return ErrQuotaExceeded
	}

	stored := make([]byte, len(value))
	copy(stored, value)
	m.values[key] = stored
	m.used = used
	return nil
}

func (m *MemoryStorage) Remove(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.values[key]; ok {
		m.used -= int64(len(key) + len(existing))
		delete(m.values, key)
	}
	return nil
}

func (m *MemoryStorage) Used() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.used
}
