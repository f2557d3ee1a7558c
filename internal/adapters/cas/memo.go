package cas

import (
	lru "github.com/hashicorp/golang-lru/v2"
	"go.trai.ch/bake/internal/core/domain"
	"go.trai.ch/bake/internal/core/ports"
)

// Memo fronts a cache backend with a bounded in-memory LRU of decoded entries.
type Memo struct {
	backend ports.FingerprintCache
	entries *lru.Cache[string, domain.CacheEntry]
}

var _ ports.FingerprintCache = (*Memo)(nil)

// NewMemo wraps backend with an LRU holding at most size entries.
func NewMemo(backend ports.FingerprintCache, size int) (*Memo, error) {
	entries, err := lru.New[string, domain.CacheEntry](size)
	if err != nil {
		return nil, err
	}
	return &Memo{backend: backend, entries: entries}, nil
}

// Get returns the memoized entry, falling back to the backend on a miss.
// Absent entries are not memoized.
func (m *Memo) Get(uid string) (*domain.CacheEntry, error) {
	if entry, ok := m.entries.Get(uid); ok {
		return &entry, nil
	}
	entry, err := m.backend.Get(uid)
	if err != nil || entry == nil {
		return entry, err
	}
	m.entries.Add(uid, *entry)
	return entry, nil
}

// Put writes through to the backend and memoizes the entry once it is stored.
func (m *Memo) Put(entry domain.CacheEntry) error {
	if err := m.backend.Put(entry); err != nil {
		m.entries.Remove(entry.UID)
		return err
	}
	m.entries.Add(entry.UID, entry)
	return nil
}

// Close purges the memo and closes the backend.
func (m *Memo) Close() error {
	m.entries.Purge()
	return m.backend.Close()
}

// Len reports the number of memoized entries.
func (m *Memo) Len() int {
	return m.entries.Len()
}
