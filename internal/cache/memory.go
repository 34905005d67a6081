package cache

import (
	"container/list"
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	key     string
	value   []byte
	expires time.Time
}

// MemoryCache keeps entries in process memory with an optional TTL and an
// optional entry cap. Every entry shares the same TTL, so insertion order is
// also expiry order: writes drop expired entries from the front of the list
// and evict the oldest entry once the cap is reached.
type MemoryCache struct {
	mu         sync.Mutex
	data       map[string]*list.Element
	order      *list.List
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
}

// NewMemoryCache creates an in-memory cache. A non-positive ttl keeps entries
// until they are evicted or Close is called; a non-positive maxEntries leaves
// the size unbounded.
func NewMemoryCache(ttl time.Duration, maxEntries int) *MemoryCache {
	return &MemoryCache{
		data:       make(map[string]*list.Element),
		order:      list.New(),
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

func (m *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	elem, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	entry := elem.Value.(*memoryEntry)
	if m.expired(entry, m.now()) {
		m.remove(elem)
		return nil, false, nil
	}
	return entry.value, true, nil
}

func (m *MemoryCache) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	m.sweep(now)

	entry := &memoryEntry{key: key, value: append([]byte(nil), value...)}
	if m.ttl > 0 {
		entry.expires = now.Add(m.ttl)
	}
	if elem, ok := m.data[key]; ok {
		elem.Value = entry
		m.order.MoveToBack(elem)
		return nil
	}
	for m.maxEntries > 0 && m.order.Len() >= m.maxEntries {
		m.remove(m.order.Front())
	}
	m.data[key] = m.order.PushBack(entry)
	return nil
}

// sweep drops expired entries from the front of the expiry order.
func (m *MemoryCache) sweep(now time.Time) {
	for elem := m.order.Front(); elem != nil; elem = m.order.Front() {
		if !m.expired(elem.Value.(*memoryEntry), now) {
			return
		}
		m.remove(elem)
	}
}

func (m *MemoryCache) expired(entry *memoryEntry, now time.Time) bool {
	return !entry.expires.IsZero() && now.After(entry.expires)
}

func (m *MemoryCache) remove(elem *list.Element) {
	entry := m.order.Remove(elem).(*memoryEntry)
	delete(m.data, entry.key)
}

// Len reports the number of stored entries, including expired ones not yet
// swept by a write.
func (m *MemoryCache) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.data)
}

func (m *MemoryCache) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[string]*list.Element)
	m.order.Init()
	return nil
}
