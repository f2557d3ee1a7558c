package ports

import (
	"context"
	"iter"
)

// WatchOp is the kind of change a watcher observed.
type WatchOp uint8

const (
	// OpCreate indicates a file or directory was created.
	OpCreate WatchOp = iota
	// OpWrite indicates a file was modified.
	OpWrite
	// OpRemove indicates a file or directory was removed.
	OpRemove
	// OpRename indicates a file or directory was renamed.
	OpRename
)

func (op WatchOp) String() string {
	switch op {
	case OpCreate:
		return "create"
	case OpWrite:
		return "write"
	case OpRemove:
		return "remove"
	case OpRename:
		return "rename"
	default:
		return "unknown"
	}
}

// WatchEvent is a single change below the watched root.
type WatchEvent struct {
	// Path is the absolute path that changed.
	Path string
	// Operation is the kind of change.
	Operation WatchOp
}

// Watcher reports file system changes below a root directory.
//
//go:generate mockgen -source=watcher.go -destination=mocks/mock_watcher.go -package=mocks
type Watcher interface {
	// Start begins watching root recursively. Directories matched by skip
	// are not watched.
	Start(ctx context.Context, root string, skip func(path string) bool) error
	// Stop stops the watcher and releases all resources.
	Stop() error
	// Events returns an iterator over observed changes. It ends when the
	// watcher stops.
	Events() iter.Seq[WatchEvent]
}
