package cache

import (
	"context"
	"sync"
	"time"

	"github.com/iwvelando/loan-gauge/pkg/constants"
)

type memoryEntry struct {
	value   []byte
	expires time.Time
}

// Memory is an in-process cache bounded by entry count. The oldest entry is
// evicted first.
type Memory struct {
	mu         sync.Mutex
	entries    map[string]memoryEntry
	order      []string
	maxEntries int
	ttl        time.Duration
	now        func() time.Time
}

// NewMemory creates a memory cache. Non-positive limits fall back to defaults.
func NewMemory(maxEntries int, ttl time.Duration) *Memory {
	if maxEntries <= 0 {
		maxEntries = constants.DefaultMemoryCacheEntries
	}
	if ttl <= 0 {
		ttl = constants.DefaultCacheTTLSeconds * time.Second
	}
	return &Memory{
		entries:    make(map[string]memoryEntry),
		maxEntries: maxEntries,
		ttl:        ttl,
		now:        time.Now,
	}
}

// Get returns a copy of the cached value.
func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[key]
	if !ok {
		return nil, ErrMiss
	}
	if m.now().After(entry.expires) {
		m.remove(key)
		return nil, ErrMiss
	}
	return append([]byte(nil), entry.value...), nil
}

// Set stores a copy of value.
func (m *Memory) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.entries[key]; !exists {
		for len(m.order) >= m.maxEntries {
			m.remove(m.order[0])
		}
		m.order = append(m.order, key)
	}
	m.entries[key] = memoryEntry{
		value:   append([]byte(nil), value...),
		expires: m.now().Add(m.ttl),
	}
	return nil
}

// Len returns the number of stored entries, expired or not.
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
