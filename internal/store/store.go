// Package store provides the per-table persistent state stores. One physical
// store exists per logical table, opened exclusively by the partition owner;
// serialization of same-key writes comes from the message partitioning
// scheme, not from locking here.
package store

import "errors"

var ErrClosed = errors.New("store is closed")

// Store is a typed keyed store for one table. Get reports absence through
// the bool, never through the error: an I/O failure and a missing key are
// different outcomes and must not be conflated.
type Store[T any] interface {
	Get(key string) (T, bool, error)
	Put(key string, value T) error
	Delete(key string) error
	Contains(key string) (bool, error)

	// Flush makes acknowledged writes crash-durable. Must be called before
	// process exit as part of the drain-and-flush contract.
	Flush() error
	Close() error
}
