package cache

import (
	"sync"
	"time"
)

type memoryEntry struct {
	payload    []byte
	category   Category
	capturedAt time.Time
}

// MemoryStore is the in-memory Store backend: a map guarded by an RWMutex.
// Suitable for a single process; entries do not survive restarts.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryStore creates an in-memory store. now may be nil, in which case
// time.Now is used; tests inject a fake clock to exercise TTL expiry.
func NewMemoryStore(now func() time.Time) *MemoryStore {
	if now == nil {
		now = time.Now
	}
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     now,
	}
}

func (m *MemoryStore) Save(key string, category Category, payload []byte) error {
	// Copy so later caller mutations cannot reach into the stored entry.
	stored := make([]byte, len(payload))
	copy(stored, payload)

	m.mu.Lock()
	m.entries[key] = memoryEntry{
		payload:    stored,
		category:   category,
		capturedAt: m.now(),
	}
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) LoadFresh(key string) ([]byte, error) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrMiss
	}
	if m.now().Sub(e.capturedAt) > TTL(e.category) {
		return nil, ErrMiss
	}
	return e.payload, nil
}

func (m *MemoryStore) LoadForce(key string) ([]byte, error) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrMiss
	}
	return e.payload, nil
}

func (m *MemoryStore) Close() error { return nil }
