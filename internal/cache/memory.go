package cache

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	value   []byte
	expires time.Time
}

// Memory is an in-process cache bounded by entry count. Once full, the oldest
// entry is evicted.
type Memory struct {
	mu         sync.Mutex
	ttl        time.Duration
	maxEntries int
	entries    map[string]memoryEntry
	order      []string
	now        func() time.Time
}

// NewMemory creates an in-process cache. A non-positive ttl keeps entries
// until they are evicted.
func NewMemory(maxEntries int, ttl time.Duration) *Memory {
	if maxEntries <= 0 {
		maxEntries = 1
	}
	return &Memory{
		ttl:        ttl,
		maxEntries: maxEntries,
		entries:    make(map[string]memoryEntry),
		now:        time.Now,
	}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[key]
	if !ok {
		return nil, false
	}
	if !entry.expires.IsZero() && !m.now().Before(entry.expires) {
		m.remove(key)
		return nil, false
	}
	return entry.value, true
}

func (m *Memory) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var expires time.Time
	if m.ttl > 0 {
		expires = m.now().Add(m.ttl)
	}

	if _, exists := m.entries[key]; exists {
		m.remove(key)
	}
	for len(m.order) >= m.maxEntries {
		m.remove(m.order[0])
	}

	m.entries[key] = memoryEntry{value: append([]byte(nil), value...), expires: expires}
	m.order = append(m.order, key)
	return nil
}

// Len reports the number of stored entries, expired ones included.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *Memory) remove(key string) {
	delete(m.entries, key)
	for i, k := range m.order {
		if k == key {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}
