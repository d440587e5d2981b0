// Package journal implements an optional, embedded-KV-backed write-ahead
// log of accepted index mutations, replayed by calling Index.ReplayJournal
// after Load to recover anything written since the last Save. Grounded on the teacher's utils/backup.go
// rotation pattern (shard-level periodic bbolt backups), adapted here from
// "snapshot and rotate" to "append every mutation, checkpoint on save."
package journal

import (
	"encoding/binary"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/annvector/vamana/diskstore"
	"github.com/rs/zerolog/log"
)

const bucketName = "journal"

// OpKind distinguishes journal record types.
type OpKind byte

const (
	OpInsert     OpKind = 1
	OpSoftDelete OpKind = 2
)

// Record is one journaled mutation.
type Record struct {
	Seq     uint64
	Kind    OpKind
	Ids     []uint32  // soft-delete target ids, or the single assigned id on insert
	Vectors []float32 // flattened, len = dim * len(Ids) for OpInsert, empty otherwise
	Dim     int
}

// Journal appends committed mutations to a KV store bucket keyed by a
// monotonic sequence number, and replays them back in order.
type Journal struct {
	mu    sync.Mutex
	store diskstore.Store
	seq   atomic.Uint64
}

// Open opens (or creates) a journal backed by store. An empty path given to
// diskstore.Open yields an in-memory journal, useful for tests.
func Open(store diskstore.Store) (*Journal, error) {
	if _, err := store.Bucket(bucketName); err != nil {
		return nil, fmt.Errorf("could not open journal bucket: %w", err)
	}
	return &Journal{store: store}, nil
}

// Append writes rec under the next sequence number. A failure to append is
// logged but never returned as a fatal error to the caller's mutating
// operation — the journal is best-effort durability between Save snapshots,
// not a correctness requirement (spec §4.12).
func (j *Journal) Append(kind OpKind, ids []uint32, vectors []float32, dim int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	seq := j.seq.Add(1)
	rec := Record{Seq: seq, Kind: kind, Ids: ids, Vectors: vectors, Dim: dim}
	buf := encodeRecord(rec)
	bucket, err := j.store.Bucket(bucketName)
	if err != nil {
		log.Warn().Err(err).Msg("journal: could not open bucket for append")
		return
	}
	if err := bucket.Put(seqKey(seq), buf); err != nil {
		log.Warn().Err(err).Uint64("seq", seq).Msg("journal: append failed")
	}
}

// Replay invokes apply for every journaled record in sequence order.
func (j *Journal) Replay(apply func(Record) error) error {
	bucket, err := j.store.Bucket(bucketName)
	if err != nil {
		return fmt.Errorf("could not open journal bucket: %w", err)
	}
	records := make([]Record, 0)
	if err := bucket.ForEach(func(_, v []byte) error {
		rec, err := decodeRecord(v)
		if err != nil {
			return err
		}
		records = append(records, rec)
		return nil
	}); err != nil {
		return fmt.Errorf("could not scan journal: %w", err)
	}
	sortRecords(records)
	for _, rec := range records {
		if err := apply(rec); err != nil {
			return fmt.Errorf("could not replay journal record seq=%d: %w", rec.Seq, err)
		}
	}
	return nil
}

// Checkpoint truncates the journal after a successful Save, since every
// record up to now is reflected in the new snapshot.
func (j *Journal) Checkpoint() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	bucket, err := j.store.Bucket(bucketName)
	if err != nil {
		return fmt.Errorf("could not open journal bucket: %w", err)
	}
	var keys [][]byte
	if err := bucket.ForEach(func(k, _ []byte) error {
		keys = append(keys, append([]byte(nil), k...))
		return nil
	}); err != nil {
		return fmt.Errorf("could not scan journal for checkpoint: %w", err)
	}
	for _, k := range keys {
		if err := bucket.Delete(k); err != nil {
			return fmt.Errorf("could not truncate journal: %w", err)
		}
	}
	return nil
}

func seqKey(seq uint64) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, seq)
	return k
}

func sortRecords(records []Record) {
	for i := 1; i < len(records); i++ {
		for j := i; j > 0 && records[j].Seq < records[j-1].Seq; j-- {
			records[j], records[j-1] = records[j-1], records[j]
		}
	}
}
