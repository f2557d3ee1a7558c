package domain

import "path/filepath"

const (
	// BakeDirName is the name of the internal suite directory.
	BakeDirName = ".bake"

	// CacheDirName is the name of the fingerprint cache directory.
	CacheDirName = "cache"

	// SuiteFileName is the name of the suite configuration file.
	SuiteFileName = "bake.yaml"

	// DefaultTargetRoot is the default output directory, relative to the suite root.
	DefaultTargetRoot = "out"

	// CacheEntryExt is the file extension of file-backed cache entries.
	CacheEntryExt = ".bin"

	// OutputEnvVar names the per-project output directory for exec builders.
	OutputEnvVar = "BAKE_OUT"

	// TargetEnvVar names the target root for exec builders.
	TargetEnvVar = "BAKE_TARGET"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644
)

// DefaultBakePath returns the default root directory for bake metadata.
func DefaultBakePath() string {
	return BakeDirName
}

// DefaultCachePath returns the default path of the fingerprint cache.
// It joins .bake and cache.
func DefaultCachePath() string {
	return filepath.Join(BakeDirName, CacheDirName)
}
