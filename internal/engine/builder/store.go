package builder

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"sync"
)

type typeStats struct {
	constructed int
	unique      int
}

// Store deduplicates builders by Key. It holds at most one canonical
// instance per key for the lifetime of a build session.
type Store struct {
	mu          sync.Mutex
	builders    map[Key]Builder
	order       []Key
	constructed int
	byType      map[string]*typeStats
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		builders: make(map[Key]Builder),
		byType:   make(map[string]*typeStats),
	}
}

// Add returns the canonical builder for b's key. If no builder with the
// same key is registered yet, b becomes the canonical instance.
func (s *Store) Add(b Builder) Builder {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := b.Key()
	stats := s.byType[key.Type]
	if stats == nil {
		stats = &typeStats{}
		s.byType[key.Type] = stats
	}
	s.constructed++
	stats.constructed++

	if existing, ok := s.builders[key]; ok {
		return existing
	}
	s.builders[key] = b
	s.order = append(s.order, key)
	stats.unique++
	return b
}

// Lookup returns the canonical builder for b's key without registering b.
func (s *Store) Lookup(b Builder) (Builder, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.builders[b.Key()]
	return existing, ok
}

// Constructed returns how many builders were passed to Add.
func (s *Store) Constructed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.constructed
}

// Unique returns how many distinct builders are registered.
func (s *Store) Unique() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.builders)
}

// Builders returns the canonical builders in registration order.
func (s *Store) Builders() []Builder {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Builder, len(s.order))
	for i, k := range s.order {
		out[i] = s.builders[k]
	}
	return out
}

// DumpStats writes construction totals and a per-type breakdown to w.
func (s *Store) DumpStats(w io.Writer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := fmt.Fprintf(w, "builder store: %d constructed, %d unique\n", s.constructed, len(s.builders)); err != nil {
		return err
	}
	for _, typ := range slices.Sorted(maps.Keys(s.byType)) {
		st := s.byType[typ]
		if _, err := fmt.Fprintf(w, "  %-10s %4d constructed %4d unique\n", typ, st.constructed, st.unique); err != nil {
			return err
		}
	}
	return nil
}
