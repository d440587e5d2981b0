package store

import (
	"sync"

	"github.com/RoaringBitmap/roaring/roaring64"
)

// vertex holds one graph node's adjacency list behind its own lock. Per the
// concurrency rules, a caller must never hold two vertices' locks at once and
// must never hold a vertex lock across a distance computation.
type vertex struct {
	mu    sync.RWMutex
	edges []uint32
}

// GraphStore owns the adjacency lists for every vertex plus the tombstone set
// of soft-deleted vertex ids. Grounded on the teacher's per-node
// sync.RWMutex locking discipline (shard/index/vamana/node.go), generalized
// from a single lazily-loaded node cache to a fixed, pre-sized array of
// vertex locks since this engine keeps the whole graph resident in memory.
type GraphStore struct {
	verticesMu sync.RWMutex // guards growth of the vertices slice itself
	vertices   []*vertex

	tombstoneMu sync.Mutex
	tombstones  *roaring64.Bitmap

	degreeBound int
}

// NewGraphStore builds an empty graph store sized for up to capacity
// vertices, each allowed up to degreeBound out-edges.
func NewGraphStore(capacity uint32, degreeBound int) *GraphStore {
	return &GraphStore{
		vertices:    make([]*vertex, 0, capacity),
		tombstones:  roaring64.New(),
		degreeBound: degreeBound,
	}
}

// AddVertex appends a new, edge-less vertex and returns its id. Must be
// called with ids assigned monotonically (the caller, typically the vector
// store's Append, owns id assignment).
func (gs *GraphStore) AddVertex() uint32 {
	gs.verticesMu.Lock()
	defer gs.verticesMu.Unlock()
	id := uint32(len(gs.vertices))
	gs.vertices = append(gs.vertices, &vertex{edges: make([]uint32, 0, gs.degreeBound)})
	return id
}

func (gs *GraphStore) vertexAt(id uint32) *vertex {
	gs.verticesMu.RLock()
	defer gs.verticesMu.RUnlock()
	if int(id) >= len(gs.vertices) {
		return nil
	}
	return gs.vertices[id]
}

// Neighbors returns a copy of id's current out-edges. A copy is returned
// rather than an aliased slice so callers can iterate it after releasing the
// vertex lock, per the never-hold-a-lock-across-distance-computation rule.
func (gs *GraphStore) Neighbors(id uint32) []uint32 {
	v := gs.vertexAt(id)
	if v == nil {
		return nil
	}
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := make([]uint32, len(v.edges))
	copy(out, v.edges)
	return out
}

// SetNeighbors replaces id's out-edge list wholesale, truncating to
// degreeBound if needed. Used by robust pruning, which computes the full
// replacement list before taking the lock.
func (gs *GraphStore) SetNeighbors(id uint32, neighbors []uint32) {
	v := gs.vertexAt(id)
	if v == nil {
		return
	}
	if len(neighbors) > gs.degreeBound {
		neighbors = neighbors[:gs.degreeBound]
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.edges = append(v.edges[:0], neighbors...)
}

// AddBackEdge appends to as a neighbor of from, deduplicating. It does not
// check the degree bound — robust pruning is responsible for keeping lists
// within bound; a transient over-bound back-edge is corrected at the next
// prune of from, not here.
func (gs *GraphStore) AddBackEdge(from, to uint32) {
	v := gs.vertexAt(from)
	if v == nil {
		return
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, e := range v.edges {
		if e == to {
			return
		}
	}
	v.edges = append(v.edges, to)
}

// Degree returns the current out-degree of id.
func (gs *GraphStore) Degree(id uint32) int {
	v := gs.vertexAt(id)
	if v == nil {
		return 0
	}
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.edges)
}

// Count returns the number of vertices the store has allocated, including
// tombstoned ones.
func (gs *GraphStore) Count() uint32 {
	gs.verticesMu.RLock()
	defer gs.verticesMu.RUnlock()
	return uint32(len(gs.vertices))
}

// MarkDeleted adds id to the tombstone set. A tombstoned vertex keeps its
// adjacency list (still traversable during search/consolidation) until
// Consolidate physically removes it.
func (gs *GraphStore) MarkDeleted(id uint32) {
	gs.tombstoneMu.Lock()
	defer gs.tombstoneMu.Unlock()
	gs.tombstones.Add(uint64(id))
}

// IsDeleted reports whether id has been soft-deleted.
func (gs *GraphStore) IsDeleted(id uint32) bool {
	gs.tombstoneMu.Lock()
	defer gs.tombstoneMu.Unlock()
	return gs.tombstones.Contains(uint64(id))
}

// DeletedCount returns the number of soft-deleted, not-yet-consolidated
// vertices.
func (gs *GraphStore) DeletedCount() int {
	gs.tombstoneMu.Lock()
	defer gs.tombstoneMu.Unlock()
	return int(gs.tombstones.GetCardinality())
}

// DeletedIds returns a snapshot of all currently tombstoned vertex ids.
func (gs *GraphStore) DeletedIds() []uint32 {
	gs.tombstoneMu.Lock()
	defer gs.tombstoneMu.Unlock()
	out := make([]uint32, 0, gs.tombstones.GetCardinality())
	it := gs.tombstones.Iterator()
	for it.HasNext() {
		out = append(out, uint32(it.Next()))
	}
	return out
}

// ClearTombstones drops id from the tombstone set, used by Consolidate once
// its adjacency has been physically cut out of the graph.
func (gs *GraphStore) ClearTombstones(ids []uint32) {
	gs.tombstoneMu.Lock()
	defer gs.tombstoneMu.Unlock()
	for _, id := range ids {
		gs.tombstones.Remove(uint64(id))
	}
}
