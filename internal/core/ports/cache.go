package ports

import "go.trai.ch/bake/internal/core/domain"

//go:generate mockgen -source=cache.go -destination=mocks/mock_cache.go -package=mocks

// FingerprintCache persists the last successful run of each builder, keyed by uid.
type FingerprintCache interface {
	// Get retrieves the entry for uid.
	// Returns nil, nil if there is no entry.
	Get(uid string) (*domain.CacheEntry, error)

	// Put stores the entry, replacing any previous entry for the same uid.
	Put(entry domain.CacheEntry) error

	// Close releases the resources held by the cache.
	Close() error
}

// CacheOpener opens the fingerprint cache described by the suite settings.
type CacheOpener interface {
	Open(settings domain.Settings) (FingerprintCache, error)
}
