package cache

import (
	"sync"
	"time"

	"github.com/deepblue-labs/datachat/internal/envelope"
)

// Memory is an in-process Store. Suitable for a single server deployment;
// the SQLite store covers persistence across CLI invocations.
type Memory struct {
	mu      sync.Mutex
	entries map[string]Entry
	ttl     time.Duration

	now func() time.Time // test hook
}

// NewMemory builds an in-memory store. A non-positive ttl falls back to
// DefaultTTL.
func NewMemory(ttl time.Duration) *Memory {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Memory{
		entries: make(map[string]Entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the cached envelope, deleting and missing on expired entries.
func (m *Memory) Get(key string) (*envelope.Envelope, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[key]
	if !ok {
		return nil, false
	}
	if m.now().Sub(entry.CreatedAt) >= m.ttl {
		delete(m.entries, key)
		return nil, false
	}
	return entry.Result, true
}

// Put stores the envelope under key, replacing any previous entry.
func (m *Memory) Put(key string, result *envelope.Envelope) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = Entry{Key: key, Result: result, CreatedAt: m.now()}
}

// InvalidateAll drops every entry.
func (m *Memory) InvalidateAll() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]Entry)
	return nil
}

// Len reports the number of live entries, counting expired ones that have
// not been read yet.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *Memory) Close() error { return nil }
