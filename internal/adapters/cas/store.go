// Package cas implements the fingerprint cache backends.
package cas

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"go.trai.ch/bake/internal/core/domain"
	"go.trai.ch/bake/internal/core/ports"
	"go.trai.ch/zerr"
)

// Store implements ports.FingerprintCache using a file-per-uid strategy.
type Store struct {
	mu         sync.Mutex
	dir        string
	serializer ports.Serializer
}

var _ ports.FingerprintCache = (*Store)(nil)

// NewStore creates a cache backed by the directory at dir.
func NewStore(dir string, serializer ports.Serializer) (*Store, error) {
	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrCacheCreateFailed.Error()), "dir", dir)
	}
	return &Store{dir: dir, serializer: serializer}, nil
}

// Get retrieves the entry recorded for uid.
func (s *Store) Get(uid string) (*domain.CacheEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	filename := s.filename(uid)
	//nolint:gosec // Path is constructed from trusted directory and hashed filename
	data, err := os.ReadFile(filename)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, zerr.With(zerr.Wrap(err, domain.ErrCacheReadFailed.Error()), "uid", uid)
	}

	entry, err := ports.Deserialize[domain.CacheEntry](s.serializer, bytes.NewReader(data))
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrCacheEntryCorrupt.Error()), "uid", uid)
	}
	if entry.UID != uid {
		return nil, zerr.With(zerr.With(domain.ErrCacheEntryCorrupt, "uid", uid), "recorded_uid", entry.UID)
	}
	return &entry, nil
}

// Put stores the entry. The file is replaced atomically so a reader never
// observes a partial entry.
func (s *Store) Put(entry domain.CacheEntry) error {
	var buf bytes.Buffer
	if err := s.serializer.Serialize(&buf, entry); err != nil {
		return zerr.With(err, "uid", entry.UID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(s.dir, "entry-*.tmp")
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrCacheWriteFailed.Error()), "uid", entry.UID)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		return zerr.With(zerr.Wrap(err, domain.ErrCacheWriteFailed.Error()), "uid", entry.UID)
	}
	if err := tmp.Close(); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrCacheWriteFailed.Error()), "uid", entry.UID)
	}
	if err := os.Rename(tmp.Name(), s.filename(entry.UID)); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrCacheWriteFailed.Error()), "uid", entry.UID)
	}
	return nil
}

// Close implements ports.FingerprintCache. The file store holds no handles.
func (s *Store) Close() error {
	return nil
}

// Path returns the file that holds the entry for uid.
func (s *Store) Path(uid string) string {
	return s.filename(uid)
}

func (s *Store) filename(uid string) string {
	hash := sha256.Sum256([]byte(uid))
	return filepath.Join(s.dir, hex.EncodeToString(hash[:])+domain.CacheEntryExt)
}
