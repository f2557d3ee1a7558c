package domain

import (
	"path/filepath"
	"slices"

	"go.trai.ch/zerr"
)

// Cache backends.
const (
	CacheBackendFiles  = "files"
	CacheBackendBadger = "badger"
)

// Cache entry formats.
const (
	FormatMsgpack = "msgpack"
	FormatJSON    = "json"
)

// DefaultMemoSize is the default number of cache entries kept in memory.
const DefaultMemoSize = 256

// CacheSettings configures the fingerprint cache of a suite.
type CacheSettings struct {
	Dir     string
	Backend string
	Format  string
	Memo    int
}

// Settings carries the explicit roots every builder works against.
// All paths are absolute.
type Settings struct {
	SuiteRoot  string
	TargetRoot string
	Cache      CacheSettings
}

// DefaultSettings returns the settings of a suite rooted at root.
func DefaultSettings(root string) Settings {
	return Settings{
		SuiteRoot:  root,
		TargetRoot: filepath.Join(root, DefaultTargetRoot),
		Cache: CacheSettings{
			Dir:     filepath.Join(root, DefaultCachePath()),
			Backend: CacheBackendFiles,
			Format:  FormatMsgpack,
			Memo:    DefaultMemoSize,
		},
	}
}

// SuitePath resolves a slash-separated suite-relative path.
func (s Settings) SuitePath(rel string) string {
	return filepath.Join(s.SuiteRoot, filepath.FromSlash(rel))
}

// TargetPath resolves a slash-separated target-relative path.
func (s Settings) TargetPath(rel string) string {
	return filepath.Join(s.TargetRoot, filepath.FromSlash(rel))
}

// Validate checks that the settings are usable.
func (s Settings) Validate() error {
	for key, p := range map[string]string{
		"suite_root":  s.SuiteRoot,
		"target_root": s.TargetRoot,
		"cache_dir":   s.Cache.Dir,
	} {
		if !filepath.IsAbs(p) {
			return zerr.With(zerr.With(ErrInvalidSettings, "field", key), "path", p)
		}
	}
	if !slices.Contains([]string{CacheBackendFiles, CacheBackendBadger}, s.Cache.Backend) {
		return zerr.With(ErrUnknownCacheBackend, "backend", s.Cache.Backend)
	}
	if !slices.Contains([]string{FormatMsgpack, FormatJSON}, s.Cache.Format) {
		return zerr.With(ErrUnknownSerializer, "format", s.Cache.Format)
	}
	if s.Cache.Memo < 0 {
		return zerr.With(zerr.With(ErrInvalidSettings, "field", "cache.memo"), "value", s.Cache.Memo)
	}
	return nil
}
