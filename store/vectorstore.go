// Package store holds the engine's hot-path data structures: a contiguous
// aligned vector buffer, a per-vertex-locked adjacency store, and a scratch
// pool for search/prune working state. None of these are backed by the
// diskstore key-value abstraction — the spec requires a contiguous in-memory
// buffer and directly-locked adjacency, not a generic bucket map.
package store

import (
	"fmt"
	"sync"

	"github.com/annvector/vamana/distance"
)

// PointIdDistFn computes the distance from a fixed reference point to the
// vertex named by id.
type PointIdDistFn func(id uint32) float32

// VectorStore owns a contiguous, aligned buffer of vectors indexed by vertex
// id. Vectors are appended once and never overwritten; a vertex slot, once
// written, is immutable for the lifetime of the index (soft-deletion lives
// in the graph store's tombstone set, not here).
type VectorStore struct {
	mu         sync.RWMutex
	dim        int
	alignedDim int
	metric     string
	distFn     distance.DistFunc
	data       []float32 // alignedDim floats per vertex, contiguous
	count      uint32
}

// New builds an empty VectorStore with room pre-allocated for capacity
// vertices. Append does not stop at capacity: past it, the buffer grows.
func New(dim, alignedDim int, metric string, capacity uint32) (*VectorStore, error) {
	distFn, err := distance.GetDistanceFn(metric)
	if err != nil {
		return nil, err
	}
	return &VectorStore{
		dim:        dim,
		alignedDim: alignedDim,
		metric:     metric,
		distFn:     distFn,
		data:       make([]float32, 0, int(capacity)*alignedDim),
	}, nil
}

// Append copies vec (zero-padded to alignedDim) to the end of the buffer and
// returns the new vertex id. Append assigns ids monotonically under the
// store's own lock, so concurrent callers (such as Insert's workers) each get
// a distinct id, and the length bump and slice growth are atomic with
// respect to concurrent readers.
func (vs *VectorStore) Append(vec []float32) (uint32, error) {
	if len(vec) != vs.dim {
		return 0, fmt.Errorf("vector has dimension %d, store expects %d", len(vec), vs.dim)
	}
	vs.mu.Lock()
	defer vs.mu.Unlock()
	id := vs.count
	off := len(vs.data)
	vs.data = append(vs.data, make([]float32, vs.alignedDim)...)
	copy(vs.data[off:off+vs.dim], vec)
	vs.count++
	return id, nil
}

// Get returns the stored vector for id, including its zero padding up to
// alignedDim. The returned slice aliases the internal buffer and must not be
// mutated or retained past a subsequent Append (which may reallocate).
func (vs *VectorStore) Get(id uint32) ([]float32, bool) {
	vs.mu.RLock()
	defer vs.mu.RUnlock()
	if id >= vs.count {
		return nil, false
	}
	off := int(id) * vs.alignedDim
	return vs.data[off : off+vs.alignedDim], true
}

// Count returns the number of vertices appended so far.
func (vs *VectorStore) Count() uint32 {
	vs.mu.RLock()
	defer vs.mu.RUnlock()
	return vs.count
}

// DistanceFromFloat returns a PointIdDistFn computing distance from x to any
// stored vertex by id. x is captured by reference; callers must not mutate it
// while the returned function is in use.
func (vs *VectorStore) DistanceFromFloat(x []float32) PointIdDistFn {
	return func(id uint32) float32 {
		v, ok := vs.Get(id)
		if !ok {
			return 0
		}
		return vs.distFn(x, v)
	}
}

// DistanceFromPoint returns a PointIdDistFn computing distance from the
// vertex named by xId to any other vertex by id.
func (vs *VectorStore) DistanceFromPoint(xId uint32) PointIdDistFn {
	x, ok := vs.Get(xId)
	if !ok {
		return func(uint32) float32 { return 0 }
	}
	return vs.DistanceFromFloat(x)
}

// Distance computes the distance between two arbitrary float vectors using
// the store's configured metric, without going through a vertex id.
func (vs *VectorStore) Distance(x, y []float32) float32 {
	return vs.distFn(x, y)
}
