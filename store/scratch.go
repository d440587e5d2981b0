package store

import (
	"sync"

	"github.com/bits-and-blooms/bitset"
)

// visitBitSetSizes mirrors the teacher's tiered pool: a handful of fixed
// bitset sizes reused via sync.Pool, falling back to a map for shards (here,
// single indexes) bigger than the largest tier. See the teacher's
// shard/index/vamana/distset.go for the full reasoning — bitsets are cheap
// per search but a single huge bitset wastes memory for small indexes, hence
// the ladder instead of one size.
var visitBitSetSizes = []uint{110_000, 260_000, 520_000, 1_300_000, 2_600_000, 5_200_000, 10_500_000}

var globalSetPool map[uint]*sync.Pool

func init() {
	globalSetPool = make(map[uint]*sync.Pool, len(visitBitSetSizes))
	for _, size := range visitBitSetSizes {
		numBits := size
		globalSetPool[size] = &sync.Pool{
			New: func() any {
				return bitset.New(numBits)
			},
		}
	}
}

type visitedSet interface {
	CheckAndVisit(uint32) bool
	Release()
}

type visitedMap struct {
	set map[uint32]struct{}
}

func newVisitedMap(capacity int) *visitedMap {
	return &visitedMap{set: make(map[uint32]struct{}, capacity)}
}

func (vm *visitedMap) CheckAndVisit(id uint32) bool {
	if _, ok := vm.set[id]; ok {
		return true
	}
	vm.set[id] = struct{}{}
	return false
}

func (vm *visitedMap) Release() {
	vm.set = nil
}

type visitedBitSet struct {
	set  *bitset.BitSet
	pool *sync.Pool
}

func newVisitedBitSet(bs *bitset.BitSet, pool *sync.Pool) *visitedBitSet {
	bs.ClearAll()
	return &visitedBitSet{set: bs, pool: pool}
}

func (vb *visitedBitSet) CheckAndVisit(id uint32) bool {
	if vb.set.Test(uint(id)) {
		return true
	}
	vb.set.Set(uint(id))
	return false
}

func (vb *visitedBitSet) Release() {
	vb.pool.Put(vb.set)
	vb.set = nil
}

func newVisitedSet(capacity int, maxVertexId uint32) visitedSet {
	visitSize := uint(maxVertexId)
	if visitSize == 0 || visitSize > visitBitSetSizes[len(visitBitSetSizes)-1] {
		return newVisitedMap(capacity)
	}
	for _, size := range visitBitSetSizes {
		if visitSize <= size {
			pool := globalSetPool[size]
			return newVisitedBitSet(pool.Get().(*bitset.BitSet), pool)
		}
	}
	return newVisitedMap(capacity)
}

// DistSetElem is one candidate in a DistSet: a vertex id, its distance from
// the set's reference point, and a PruneRemoved flag that nothing in this
// module reads.
type DistSetElem struct {
	Id           uint32
	Distance     float32
	PruneRemoved bool
}

// DistSet is a bounded, mostly-sorted candidate list used by greedy search
// (robust pruning works on a plain []DistSetElem instead). It is intentionally not a general-purpose container:
// it assumes its caller knows what it is doing (see the teacher's
// distset.go, which carries the same warning) in exchange for avoiding a
// full sort on every insertion.
type DistSet struct {
	items       []DistSetElem
	set         visitedSet
	distFn      PointIdDistFn
	sortedUntil int
}

// NewDistSet builds a DistSet with room for capacity items, backed by a
// visited-set sized for maxVertexId distinct ids.
func NewDistSet(capacity int, maxVertexId uint32, distFn PointIdDistFn) *DistSet {
	return &DistSet{
		items:  make([]DistSetElem, 0, capacity),
		set:    newVisitedSet(capacity, maxVertexId),
		distFn: distFn,
	}
}

func (ds *DistSet) Len() int { return len(ds.items) }

func (ds *DistSet) Items() []DistSetElem { return ds.items }

// AddWithLimit adds ids, skipping already-visited ones and dropping any
// candidate that would not fit within the set's capacity (used by greedy
// search, which only cares about the L closest candidates).
func (ds *DistSet) AddWithLimit(ids ...uint32) {
	for _, id := range ids {
		if ds.set.CheckAndVisit(id) {
			continue
		}
		d := ds.distFn(id)
		limit := cap(ds.items)
		if len(ds.items) == limit && d > ds.items[limit-1].Distance {
			continue
		}
		newElem := DistSetElem{Id: id, Distance: d}
		if len(ds.items) < limit {
			ds.items = append(ds.items, newElem)
			ds.sortedUntil++
		} else {
			ds.items[len(ds.items)-1] = newElem
		}
		for i := len(ds.items) - 1; i > 0 && ds.items[i].Distance < ds.items[i-1].Distance; i-- {
			ds.items[i], ds.items[i-1] = ds.items[i-1], ds.items[i]
		}
	}
}

// Add adds ids unconditionally (save for visited-dedup), ignoring the
// set's capacity, for callers that need the full unbounded candidate set.
func (ds *DistSet) Add(ids ...uint32) {
	for _, id := range ids {
		if ds.set.CheckAndVisit(id) {
			continue
		}
		ds.items = append(ds.items, DistSetElem{Id: id, Distance: ds.distFn(id)})
	}
}

// AddAlreadyUnique appends items known not to already be in the set, e.g.
// when merging two DistSets that were built from disjoint candidate pools.
func (ds *DistSet) AddAlreadyUnique(items ...DistSetElem) {
	ds.items = append(ds.items, items...)
}

// Sort performs an insertion sort over the unsorted suffix of items, which
// is the common case since entries are appended in discovery order and only
// occasionally require resorting.
func (ds *DistSet) Sort() {
	for i := ds.sortedUntil; i < len(ds.items); i++ {
		for j := i; j > 0 && ds.items[j].Distance < ds.items[j-1].Distance; j-- {
			ds.items[j], ds.items[j-1] = ds.items[j-1], ds.items[j]
		}
	}
	ds.sortedUntil = len(ds.items)
}

// Release returns any pooled resources (bitsets) held by the set. Must be
// called exactly once when the set is done being used.
func (ds *DistSet) Release() {
	if ds.set != nil {
		ds.set.Release()
		ds.set = nil
	}
}
