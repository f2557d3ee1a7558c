package watcher

import (
	"sync"

	"go.trai.ch/bake/internal/core/ports"
)

// FileHasher digests the content of a file.
type FileHasher interface {
	ComputeFileHash(path string) (uint64, error)
}

// ContentFilter drops write events that leave a file's content unchanged,
// such as an editor saving an unmodified buffer.
type ContentFilter struct {
	mu      sync.Mutex
	hasher  FileHasher
	digests map[string]uint64
}

// NewContentFilter creates a filter with no recorded digests.
func NewContentFilter(hasher FileHasher) *ContentFilter {
	return &ContentFilter{hasher: hasher, digests: make(map[string]uint64)}
}

// Changed reports whether event may have changed the content below the
// watched root. Paths that cannot be hashed always count as changed.
func (f *ContentFilter) Changed(event ports.WatchEvent) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if event.Operation == ports.OpRemove || event.Operation == ports.OpRename {
		delete(f.digests, event.Path)
		return true
	}

	sum, err := f.hasher.ComputeFileHash(event.Path)
	if err != nil {
		delete(f.digests, event.Path)
		return true
	}
	if prev, ok := f.digests[event.Path]; ok && prev == sum {
		return false
	}
	f.digests[event.Path] = sum
	return true
}

// Len returns the number of files with a recorded digest.
func (f *ContentFilter) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.digests)
}
