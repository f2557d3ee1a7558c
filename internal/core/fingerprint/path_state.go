package fingerprint

import (
	"errors"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"time"

	"go.trai.ch/zerr"
)

// PathStateFingerprint captures the observable state of a file or directory:
// root-relative path, modification time and size. A missing path is a valid
// state.
type PathStateFingerprint struct {
	path    string
	exists  bool
	modTime int64
	size    int64
}

// NewPathState stats root/rel and captures its state.
func NewPathState(root, rel string) (*PathStateFingerprint, error) {
	slashed := path.Clean(filepath.ToSlash(rel))
	info, err := os.Stat(filepath.Join(root, filepath.FromSlash(slashed)))
	if errors.Is(err, fs.ErrNotExist) {
		return &PathStateFingerprint{path: slashed}, nil
	}
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, ErrPathStatFailed.Error()), "path", slashed)
	}
	return PathState(slashed, info.ModTime(), info.Size()), nil
}

// PathState returns the fingerprint of an existing path with the given state.
func PathState(rel string, modTime time.Time, size int64) *PathStateFingerprint {
	return &PathStateFingerprint{
		path:    rel,
		exists:  true,
		modTime: modTime.UnixNano(),
		size:    size,
	}
}

// MissingPath returns the fingerprint of a path that does not exist.
func MissingPath(rel string) *PathStateFingerprint {
	return &PathStateFingerprint{path: rel}
}

// Protocol implements Fingerprint.
func (f *PathStateFingerprint) Protocol() Protocol {
	p := Protocol{
		Kind:   KindPathState,
		Path:   f.path,
		Exists: f.exists,
	}
	if f.exists {
		p.ModTime = f.modTime
		p.Size = f.size
	}
	return p
}

// Equal implements Fingerprint.
func (f *PathStateFingerprint) Equal(other Fingerprint) bool {
	return Equal(f, other)
}

// Exists reports whether the path existed when the fingerprint was taken.
func (f *PathStateFingerprint) Exists() bool {
	return f.exists
}
