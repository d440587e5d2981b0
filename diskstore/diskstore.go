// Package diskstore is a small key-value storage abstraction used by the
// journal (see the journal package). It is deliberately not used by the
// vector/graph stores themselves — those own a contiguous in-memory buffer
// per §4.2/§4.3 of the spec, not a key-value map — but it gives the engine a
// pluggable, swappable backing for the optional write-ahead log: an
// in-memory bucket for tests and embedded use, or a bbolt file for
// durability across process restarts.
package diskstore

import (
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

// ReadOnlyBucket is a read-only view over a single named key-value bucket.
type ReadOnlyBucket interface {
	Get(k []byte) []byte
	// ForEach iterates all key-value pairs in unspecified order.
	ForEach(f func(k, v []byte) error) error
}

// Bucket additionally allows mutation.
type Bucket interface {
	ReadOnlyBucket
	Put(k, v []byte) error
	Delete(k []byte) error
}

// Store abstracts a set of named buckets backed either by memory or by an
// on-disk bbolt file.
type Store interface {
	Path() string
	Bucket(name string) (Bucket, error)
	Close() error
}

// Open returns a memory-backed store if path is empty, otherwise a bbolt
// file at path.
func Open(path string) (Store, error) {
	if path == "" {
		return newMemStore(), nil
	}
	db, err := bbolt.Open(path, 0644, &bbolt.Options{Timeout: 1 * time.Minute})
	if err != nil {
		return nil, fmt.Errorf("could not open store %s: %w", path, err)
	}
	return &bboltStore{db: db}, nil
}
