package store

import (
	"encoding/json"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
	badger "github.com/dgraph-io/badger/v4"
)

// BadgerStore persists one table as JSON values in an embedded Badger
// database rooted at <stateDir>/<table>.
type BadgerStore[T any] struct {
	db  *badger.DB
	ttl time.Duration
}

type BadgerOption func(*badgerOptions)

type badgerOptions struct {
	ttl time.Duration
}

// WithTTL expires entries after d. Used for non-authoritative cache tables
// so they stay bounded without an eviction policy of their own.
func WithTTL(d time.Duration) BadgerOption {
	return func(o *badgerOptions) { o.ttl = d }
}

// OpenBadger opens the physical store for a table. The directory must not be
// opened by any other process.
func OpenBadger[T any](stateDir, table string, opts ...BadgerOption) (*BadgerStore[T], error) {
	var options badgerOptions
	for _, opt := range opts {
		opt(&options)
	}

	path := filepath.Join(stateDir, table)
	db, err := badger.Open(badger.DefaultOptions(path).WithLogger(nil))
	if err != nil {
		return nil, errors.Wrapf(err, "open state store %q", table)
	}
	return &BadgerStore[T]{db: db, ttl: options.ttl}, nil
}

func (s *BadgerStore[T]) Get(key string) (T, bool, error) {
	var value T
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(raw []byte) error {
			return json.Unmarshal(raw, &value)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return value, false, nil
	}
	if err != nil {
		return value, false, errors.Wrapf(err, "get %q", key)
	}
	return value, true, nil
}

func (s *BadgerStore[T]) Put(key string, value T) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return errors.Wrapf(err, "encode %q", key)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(key), raw)
		if s.ttl > 0 {
			entry = entry.WithTTL(s.ttl)
		}
		return txn.SetEntry(entry)
	})
	return errors.Wrapf(err, "put %q", key)
}

func (s *BadgerStore[T]) Delete(key string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	return errors.Wrapf(err, "delete %q", key)
}

func (s *BadgerStore[T]) Contains(key string) (bool, error) {
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(key))
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrapf(err, "contains %q", key)
	}
	return true, nil
}

func (s *BadgerStore[T]) Flush() error {
	return errors.Wrap(s.db.Sync(), "flush state store")
}

func (s *BadgerStore[T]) Close() error {
	return errors.Wrap(s.db.Close(), "close state store")
}
