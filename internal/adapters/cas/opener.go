package cas

import (
	"path/filepath"

	"go.trai.ch/bake/internal/adapters/kvcache"
	"go.trai.ch/bake/internal/adapters/serializer"
	"go.trai.ch/bake/internal/core/domain"
	"go.trai.ch/bake/internal/core/ports"
	"go.trai.ch/zerr"
)

// KVDirName is the directory below the cache dir that holds the Badger database.
const KVDirName = "kv"

// Opener implements ports.CacheOpener for the configured backend and format.
type Opener struct{}

var _ ports.CacheOpener = Opener{}

// NewOpener creates a new Opener.
func NewOpener() Opener {
	return Opener{}
}

// Open opens the cache described by settings. A positive memo size fronts
// the backend with an LRU.
func (Opener) Open(settings domain.Settings) (ports.FingerprintCache, error) {
	s, err := serializer.ForFormat(settings.Cache.Format)
	if err != nil {
		return nil, err
	}

	var backend ports.FingerprintCache
	switch settings.Cache.Backend {
	case domain.CacheBackendFiles:
		backend, err = NewStore(settings.Cache.Dir, s)
	case domain.CacheBackendBadger:
		backend, err = kvcache.Open(filepath.Join(settings.Cache.Dir, KVDirName), s)
	default:
		return nil, zerr.With(domain.ErrUnknownCacheBackend, "backend", settings.Cache.Backend)
	}
	if err != nil {
		return nil, err
	}

	if settings.Cache.Memo <= 0 {
		return backend, nil
	}
	memo, err := NewMemo(backend, settings.Cache.Memo)
	if err != nil {
		_ = backend.Close()
		return nil, err
	}
	return memo, nil
}
