// Package vamana implements an in-memory Vamana/DiskANN proximity-graph
// engine: concurrent graph construction, greedy best-first search, robust
// alpha-pruning, incremental insertion, soft deletion with consolidation,
// and persistence.
package vamana

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/annvector/vamana/config"
	"github.com/annvector/vamana/journal"
	"github.com/annvector/vamana/store"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Index is the top-level handle to an open Vamana engine.
type Index struct {
	cfg config.Config

	vs *store.VectorStore
	gs *store.GraphStore

	medoid        atomic.Uint32
	hasMedoidFlag atomic.Bool

	// buildMu is held for reading by insert, delete and Save, and for
	// writing by Build and Consolidate, which must run quiescent with
	// respect to other writers (spec §9: "consolidation must run
	// quiescent w.r.t. writers").
	buildMu sync.RWMutex

	journal *journal.Journal
	logger  zerolog.Logger
}

// Option configures ambient concerns of an Index: the optional journal and
// the logger. None change core semantics.
type Option func(*Index)

// WithLogger overrides the default zerolog logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(ix *Index) { ix.logger = logger }
}

// WithJournal attaches a write-ahead log backed by j. When absent, Save/Load
// are the only persistence operations, exactly as spec.md describes.
func WithJournal(j *journal.Journal) Option {
	return func(ix *Index) { ix.journal = j }
}

// Open validates cfg and returns a fresh, empty Index. Use Load to
// reconstruct one from a prior Save.
func Open(cfg config.Config, opts ...Option) (*Index, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	vs, err := store.New(cfg.Dim, cfg.AlignedDim(), cfg.Metric, cfg.Capacity)
	if err != nil {
		return nil, err
	}
	gs := store.NewGraphStore(cfg.Capacity, cfg.R)
	ix := &Index{
		cfg:    cfg,
		vs:     vs,
		gs:     gs,
		logger: log.With().Str("component", "vamana.Index").Logger(),
	}
	for _, opt := range opts {
		opt(ix)
	}
	return ix, nil
}

// Build runs the two-pass initial construction (spec §4.7) over every
// vector already present in the index's vector store. Most callers instead
// use Insert, which handles the empty-index bootstrap case itself.
func (ix *Index) Build(ctx context.Context) error {
	ix.buildMu.Lock()
	defer ix.buildMu.Unlock()
	if err := ix.buildGraph(ctx); err != nil {
		return err
	}
	ix.hasMedoidFlag.Store(true)
	return nil
}

func (ix *Index) getMedoid() uint32 {
	return ix.medoid.Load()
}

func (ix *Index) setMedoid(id uint32) {
	ix.medoid.Store(id)
	ix.hasMedoidFlag.Store(true)
}

// trySetInitialMedoid designates id as the medoid iff none has been chosen
// yet, handling the first-ever insert into an empty index (spec §4.8 has no
// special case for this, but greedySearch requires a live start vertex). It
// reports whether id itself won the race, since a concurrent batch may have
// multiple callers observe "no medoid yet" simultaneously and only one may
// actually skip the search/prune steps below.
func (ix *Index) trySetInitialMedoid(id uint32) bool {
	if ix.hasMedoidFlag.CompareAndSwap(false, true) {
		ix.medoid.Store(id)
		return true
	}
	return false
}

// NumVertices returns the number of allocated vertex slots, including
// tombstoned ones.
func (ix *Index) NumVertices() uint32 {
	return ix.vs.Count()
}

// NumDeleted returns the count of soft-deleted, not-yet-consolidated
// vertices.
func (ix *Index) NumDeleted() int {
	return ix.gs.DeletedCount()
}

// Medoid returns the current entry vertex id. Only meaningful once at least
// one vertex has been inserted or built.
func (ix *Index) Medoid() (uint32, bool) {
	return ix.medoid.Load(), ix.hasMedoidFlag.Load()
}

// SearchResult is one ranked query hit.
type SearchResult struct {
	Id       uint32
	Distance float32
}

// Search runs greedy best-first search for query, returning the k closest
// live, non-tombstoned vertices found within a search-list of width l
// (spec §4.5). Tombstoned vertices are expanded during traversal but
// filtered from the returned ranking.
func (ix *Index) Search(ctx context.Context, query []float32, k, l int) ([]SearchResult, error) {
	if len(query) != ix.cfg.Dim {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(query), ix.cfg.Dim)
	}
	if !ix.hasMedoidFlag.Load() {
		return nil, ErrIndexEmpty
	}

	aligned := make([]float32, ix.cfg.AlignedDim())
	copy(aligned, query)

	medoid := ix.getMedoid()
	res, err := greedySearch(ix.vs, ix.gs, aligned, l, medoid, ix.vs.Count())
	if err != nil {
		return nil, err
	}

	out := make([]SearchResult, 0, k)
	for _, e := range res.bestL {
		if ix.gs.IsDeleted(e.Id) {
			continue
		}
		out = append(out, SearchResult{Id: e.Id, Distance: e.Distance})
		if len(out) == k {
			break
		}
	}
	return out, nil
}
