// Package kvcache implements a fingerprint cache on an embedded Badger database.
package kvcache

import (
	"bytes"
	"errors"
	"os"

	"github.com/dgraph-io/badger/v4"
	"go.trai.ch/bake/internal/core/domain"
	"go.trai.ch/bake/internal/core/ports"
	"go.trai.ch/zerr"
)

const keyPrefix = "entry/"

// Store implements ports.FingerprintCache with one key per builder uid.
type Store struct {
	db         *badger.DB
	serializer ports.Serializer
}

var _ ports.FingerprintCache = (*Store)(nil)

// Open opens or creates the database in dir.
func Open(dir string, serializer ports.Serializer) (*Store, error) {
	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrCacheCreateFailed.Error()), "dir", dir)
	}
	return open(badger.DefaultOptions(dir).WithSyncWrites(true), serializer)
}

// OpenInMemory opens a database that is discarded on Close.
func OpenInMemory(serializer ports.Serializer) (*Store, error) {
	return open(badger.DefaultOptions("").WithInMemory(true), serializer)
}

func open(opts badger.Options, serializer ports.Serializer) (*Store, error) {
	opts = opts.WithNumVersionsToKeep(1).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrCacheOpenFailed.Error()), "backend", domain.CacheBackendBadger)
	}
	return &Store{db: db, serializer: serializer}, nil
}

// Get retrieves the entry recorded for uid.
func (s *Store) Get(uid string) (*domain.CacheEntry, error) {
	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key(uid))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
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

// Put stores the entry in a single transaction.
func (s *Store) Put(entry domain.CacheEntry) error {
	var buf bytes.Buffer
	if err := s.serializer.Serialize(&buf, entry); err != nil {
		return zerr.With(err, "uid", entry.UID)
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key(entry.UID), buf.Bytes())
	})
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrCacheWriteFailed.Error()), "uid", entry.UID)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// putRaw stores arbitrary bytes under uid.
func (s *Store) putRaw(uid string, data []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key(uid), data)
	})
}

func key(uid string) []byte {
	return []byte(keyPrefix + uid)
}
