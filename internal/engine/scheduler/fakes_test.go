package scheduler_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"go.trai.ch/bake/internal/core/domain"
	"go.trai.ch/bake/internal/core/ports"
	"go.trai.ch/bake/internal/engine/builder"
	"go.trai.ch/bake/internal/engine/dependency"
)

type stamp struct {
	Value string
}

// fakeBuilder writes its outputs under the target root and counts its runs.
type fakeBuilder struct {
	name     string
	value    string
	subtasks []*fakeBuilder
	prereqs  []builder.Builder
	outputs  []string
	blocked  bool
	runErr   error
	onRun    func(bc builder.Context) error
	journal  *journal
	runs     int
}

func newFake(j *journal, name string, prereqs ...*fakeBuilder) *fakeBuilder {
	f := &fakeBuilder{name: name, value: "v1", journal: j, subtasks: prereqs}
	for _, p := range prereqs {
		f.prereqs = append(f.prereqs, p)
	}
	f.outputs = []string{name + ".out"}
	return f
}

func (f *fakeBuilder) Key() builder.Key { return builder.NewKey("fake", f.name) }

func (f *fakeBuilder) UID() string { return f.Key().UID() }

func (f *fakeBuilder) Dependencies() dependency.Dependencies {
	deps := []dependency.Dependencies{
		dependency.Properties{Of: stamp{Value: f.value}, Names: []string{"Value"}},
	}
	for _, s := range f.subtasks {
		deps = append(deps, dependency.Subtask{Of: s})
	}
	return dependency.NewMultiple(deps...)
}

func (f *fakeBuilder) Prerequisites() []builder.Builder { return f.prereqs }

func (f *fakeBuilder) AddToContext(bc builder.Context) error { return builder.Register(bc, f) }

func (f *fakeBuilder) CanRun() bool { return !f.blocked }

func (f *fakeBuilder) Run(_ context.Context, bc builder.Context) (domain.OutputSet, error) {
	f.runs++
	f.journal.record(f.name)
	if f.onRun != nil {
		if err := f.onRun(bc); err != nil {
			return nil, err
		}
	}
	if f.runErr != nil {
		return nil, f.runErr
	}
	for _, out := range f.outputs {
		path := bc.Settings().TargetPath(out)
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, err
		}
		if err := os.WriteFile(path, []byte(f.value), 0o600); err != nil {
			return nil, err
		}
	}
	return domain.NewOutputSet(f.outputs...), nil
}

type journal struct {
	mu    sync.Mutex
	names []string
}

func (j *journal) record(name string) {
	if j == nil {
		return
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	j.names = append(j.names, name)
}

func (j *journal) ran() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string(nil), j.names...)
}

// memCache is an in-memory FingerprintCache.
type memCache struct {
	mu      sync.Mutex
	entries map[string]domain.CacheEntry
	getErr  map[string]error
}

func newMemCache() *memCache {
	return &memCache{entries: make(map[string]domain.CacheEntry), getErr: make(map[string]error)}
}

func (c *memCache) Get(uid string) (*domain.CacheEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.getErr[uid]; err != nil {
		return nil, err
	}
	e, ok := c.entries[uid]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (c *memCache) Put(entry domain.CacheEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[entry.UID] = entry
	return nil
}

func (c *memCache) Close() error { return nil }

func (c *memCache) has(uid string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[uid]
	return ok
}

type nopSpan struct{}

func (nopSpan) Write(p []byte) (int, error) { return len(p), nil }
func (nopSpan) End() {}
func (nopSpan) RecordError(error) {}
func (nopSpan) SetAttribute(string, any) {}

type nopTracer struct{}

func (nopTracer) Start(ctx context.Context, _ string) (context.Context, ports.Span) {
	return ctx, nopSpan{}
}

type countingMetrics struct {
	mu       sync.Mutex
	hits     int
	misses   int
	finished map[string]int
}

func (m *countingMetrics) CacheHit(context.Context, string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hits++
}

func (m *countingMetrics) CacheMiss(context.Context, string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.misses++
}

func (m *countingMetrics) BuilderFinished(_ context.Context, _, status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.finished == nil {
		m.finished = make(map[string]int)
	}
	m.finished[status]++
}

type recordingLogger struct {
	mu    sync.Mutex
	warns []string
}

func (l *recordingLogger) Debug(string, ...any) {}
func (l *recordingLogger) Info(string, ...any) {}
func (l *recordingLogger) Error(error) {}

func (l *recordingLogger) Warn(msg string, _ ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warns = append(l.warns, msg)
}

// valueBuilder is a non-pointer builder whose fields make it uncomparable.
type valueBuilder struct {
	name string
	tags []string
}

func (v valueBuilder) Key() builder.Key { return builder.NewKey("value", append([]string{v.name}, v.tags...)...) }

func (v valueBuilder) UID() string { return v.Key().UID() }

func (v valueBuilder) Dependencies() dependency.Dependencies {
	return dependency.NoDependencies{}
}

func (v valueBuilder) Prerequisites() []builder.Builder { return nil }

func (v valueBuilder) AddToContext(bc builder.Context) error { return builder.Register(bc, v) }

func (v valueBuilder) CanRun() bool { return true }

func (v valueBuilder) Run(context.Context, builder.Context) (domain.OutputSet, error) {
	return domain.NewOutputSet(v.tags...), nil
}
