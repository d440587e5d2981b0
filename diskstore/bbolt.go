package diskstore

import (
	"fmt"

	"go.etcd.io/bbolt"
)

// bboltStore backs a Store with an on-disk bbolt file. Each Bucket call opens
// a bbolt bucket of the given name, creating it on first use.
type bboltStore struct {
	db *bbolt.DB
}

func (s *bboltStore) Path() string {
	return s.db.Path()
}

func (s *bboltStore) Bucket(name string) (Bucket, error) {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(name))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("could not create bucket %s: %w", name, err)
	}
	return &bboltBucket{db: s.db, name: []byte(name)}, nil
}

func (s *bboltStore) Close() error {
	return s.db.Close()
}

// bboltBucket wraps a single named bbolt bucket. Unlike a transactional
// cache, each call here runs its own short-lived bbolt transaction — the
// journal only ever does one put or one scan at a time, never a multi-key
// atomic group, so there is nothing to gain from exposing bbolt's own
// transactions up through this interface.
type bboltBucket struct {
	db   *bbolt.DB
	name []byte
}

func (b *bboltBucket) Get(k []byte) []byte {
	var v []byte
	_ = b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(b.name)
		if bucket == nil {
			return nil
		}
		if raw := bucket.Get(k); raw != nil {
			v = append([]byte(nil), raw...)
		}
		return nil
	})
	return v
}

func (b *bboltBucket) Put(k, v []byte) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(b.name)
		if bucket == nil {
			return fmt.Errorf("bucket %s does not exist", b.name)
		}
		return bucket.Put(k, v)
	})
}

func (b *bboltBucket) Delete(k []byte) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(b.name)
		if bucket == nil {
			return fmt.Errorf("bucket %s does not exist", b.name)
		}
		return bucket.Delete(k)
	})
}

func (b *bboltBucket) ForEach(f func(k, v []byte) error) error {
	return b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(b.name)
		if bucket == nil {
			return nil
		}
		return bucket.ForEach(func(k, v []byte) error {
			return f(k, v)
		})
	})
}
