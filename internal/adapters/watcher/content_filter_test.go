package watcher_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/bake/internal/adapters/fs"
	"go.trai.ch/bake/internal/adapters/watcher"
	"go.trai.ch/bake/internal/core/ports"
)

func TestContentFilter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lib.go")
	require.NoError(t, os.WriteFile(path, []byte("package lib"), 0o600))

	filter := watcher.NewContentFilter(fs.NewHasher())
	write := ports.WatchEvent{Path: path, Operation: ports.OpWrite}

	assert.True(t, filter.Changed(write), "first sighting counts as a change")
	assert.False(t, filter.Changed(write), "same content")

	require.NoError(t, os.WriteFile(path, []byte("package lib // edited"), 0o600))
	assert.True(t, filter.Changed(write))
	assert.Equal(t, 1, filter.Len())

	assert.True(t, filter.Changed(ports.WatchEvent{Path: path, Operation: ports.OpRemove}))
	assert.Zero(t, filter.Len())
	assert.True(t, filter.Changed(write), "digest is forgotten after a remove")
}

func TestContentFilter_Unhashable(t *testing.T) {
	filter := watcher.NewContentFilter(fs.NewHasher())
	missing := ports.WatchEvent{Path: filepath.Join(t.TempDir(), "gone.go"), Operation: ports.OpCreate}

	assert.True(t, filter.Changed(missing))
	assert.True(t, filter.Changed(missing))
	assert.Zero(t, filter.Len())
}
