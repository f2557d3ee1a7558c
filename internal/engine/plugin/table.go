// Package plugin turns suite projects into builders.
//
// Project kinds are resolved through a Table composed at startup. There is no
// runtime discovery: adding a kind means registering a Factory in code.
package plugin

import (
	"maps"
	"slices"
	"sync"

	"go.trai.ch/bake/internal/core/domain"
	"go.trai.ch/bake/internal/engine/builder"
	"go.trai.ch/zerr"
)

// Request carries everything a Factory needs to build a project.
type Request struct {
	Project  *domain.Project
	Settings domain.Settings
	// Sources is the resolved, suite-relative source snapshot.
	Sources []string
	// References holds the builders of referenced modules and projects.
	References []builder.Builder
}

// Factory creates the builder for a project of one kind.
type Factory interface {
	Build(req Request) (builder.Builder, error)
}

// FactoryFunc adapts a function to Factory.
type FactoryFunc func(req Request) (builder.Builder, error)

// Build implements Factory.
func (f FactoryFunc) Build(req Request) (builder.Builder, error) {
	return f(req)
}

// Table maps project kinds to factories.
type Table struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{factories: make(map[string]Factory)}
}

// Register adds the factory for kind.
func (t *Table) Register(kind string, f Factory) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.factories[kind]; ok {
		return zerr.With(domain.ErrDuplicateProjectKind, "kind", kind)
	}
	t.factories[kind] = f
	return nil
}

// Lookup returns the factory for kind.
func (t *Table) Lookup(kind string) (Factory, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	f, ok := t.factories[kind]
	if !ok {
		return nil, zerr.With(domain.ErrUnknownProjectKind, "kind", kind)
	}
	return f, nil
}

// Kinds returns the registered kinds in sorted order.
func (t *Table) Kinds() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return slices.Sorted(maps.Keys(t.factories))
}
