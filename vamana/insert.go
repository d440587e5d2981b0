package vamana

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/annvector/vamana/journal"
)

// Vector is one caller-supplied vector to insert. Id assignment is internal
// (spec §3: "Ids are never reused... allocates the next free id"); this type
// exists only to let callers batch multiple vectors in one Insert call.
type Vector struct {
	Values []float32
}

// Insert appends each vector in batch and runs the single-vertex insertion
// protocol (spec §4.8) for it: greedy search for candidates, robust prune,
// then bidirectional edge installation. Multiple vectors in one batch are
// inserted concurrently across a worker pool, each one's insertion
// independent at the pool level and serialized per-vertex through the graph
// store's locks — grounded on the teacher's insertUpdateDelete worker-pool
// orchestration (shard/index/vamana/vamana.go), adapted from a channel of
// pre-existing node ids to a slice of fresh vectors needing id assignment.
func (ix *Index) Insert(ctx context.Context, batch []Vector) error {
	if len(batch) == 0 {
		return nil
	}
	for _, v := range batch {
		if len(v.Values) != ix.cfg.Dim {
			return fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(v.Values), ix.cfg.Dim)
		}
	}

	ix.buildMu.RLock()
	defer ix.buildMu.RUnlock()

	numWorkers := ix.cfg.NumThreads
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU() - 1
	}
	if numWorkers < 1 {
		numWorkers = 1
	}
	if numWorkers > len(batch) {
		numWorkers = len(batch)
	}

	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	work := make(chan Vector)
	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for v := range work {
				if err := ix.insertSingle(v.Values); err != nil {
					cancel(err)
					return
				}
			}
		}()
	}

feed:
	for _, v := range batch {
		select {
		case work <- v:
		case <-ctx.Done():
			break feed
		}
	}
	close(work)
	wg.Wait()

	if err := context.Cause(ctx); err != nil && err != context.Canceled {
		return err
	}
	return nil
}

// insertSingle runs spec §4.8 steps 1-4 for one vector. The very first vertex
// of an empty index bypasses search and simply becomes the medoid, since
// greedySearch has no live start vertex to search from yet. When a batch
// inserts several vectors concurrently, more than one caller can observe "no
// medoid yet" at once; only the one that actually wins the CAS in
// trySetInitialMedoid may skip straight to returning; every loser falls
// through to the normal search/prune path against the now-established medoid.
func (ix *Index) insertSingle(vec []float32) error {
	id, err := ix.vs.Append(vec)
	if err != nil {
		return fmt.Errorf("%w", ErrCapacity)
	}
	// AddVertex's own return is discarded: vs and gs are both pure id-indexed
	// arrays and insertSingle calls Append then AddVertex exactly once per
	// vector, so the id it would return always equals id above.
	ix.gs.AddVertex()

	if !ix.hasMedoidFlag.Load() && ix.trySetInitialMedoid(id) {
		ix.journalInsert(id, vec)
		return nil
	}

	medoid := ix.getMedoid()
	res, err := greedySearch(ix.vs, ix.gs, vec, ix.cfg.LBuild, medoid, ix.vs.Count())
	if err != nil {
		return fmt.Errorf("could not greedy search during insert: %w", err)
	}

	candidates := buildCandidatePool(ix.vs, id, res.visited, nil)
	p := robustPrune(ix.vs, id, candidates, ix.cfg.Alpha, ix.cfg.R, ix.cfg.SaturateGraph)
	ix.gs.SetNeighbors(id, p)

	// The new vertex has no inbound edges yet, so installing its own
	// neighbor list needs no lock beyond SetNeighbors' own. Back-edges are
	// what make v reachable from the rest of the graph (invariant I3).
	for _, v := range p {
		ix.addBackEdgeWithPrune(v, id, ix.cfg.Alpha)
	}

	ix.journalInsert(id, vec)
	return nil
}

func (ix *Index) journalInsert(id uint32, vec []float32) {
	if ix.journal == nil {
		return
	}
	ix.journal.Append(journal.OpInsert, []uint32{id}, vec, ix.cfg.Dim)
}
