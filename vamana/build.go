package vamana

import (
	"context"
	"fmt"
	"math/rand"
	"runtime"
	"sync"

	"github.com/annvector/vamana/store"
)

// buildGraph runs the two-pass Vamana construction over every vertex already
// appended to vs (spec §4.7). It seeds a random graph, selects the medoid,
// then runs an alpha=1.0 pass followed by the configured-alpha pass, each
// over an independently shuffled permutation of ids, fanned out across a
// worker pool. Grounded on the teacher's insertUpdateDelete worker-pool
// orchestration (shard/index/vamana/vamana.go), generalized from a
// channel-fed mutation queue to a fixed id permutation known up front.
func (ix *Index) buildGraph(ctx context.Context) error {
	n := ix.vs.Count()
	if n == 0 {
		return ErrIndexEmpty
	}

	ix.seedRandomGraph(n)

	medoid, err := ix.computeMedoid(n)
	if err != nil {
		return err
	}
	ix.setMedoid(medoid)

	if err := ix.runBuildPass(ctx, n, 1.0); err != nil {
		return fmt.Errorf("build pass 1 (alpha=1.0): %w", err)
	}
	if err := ix.runBuildPass(ctx, n, ix.cfg.Alpha); err != nil {
		return fmt.Errorf("build pass 2 (alpha=%v): %w", ix.cfg.Alpha, err)
	}
	return nil
}

// seedRandomGraph assigns each vertex R random distinct neighbors != self,
// per spec §4.7 step 1.
func (ix *Index) seedRandomGraph(n uint32) {
	r := ix.cfg.R
	rng := rand.New(rand.NewSource(1))
	for u := uint32(0); u < n; u++ {
		neighbors := make([]uint32, 0, r)
		seen := map[uint32]bool{u: true}
		for len(neighbors) < r && len(neighbors) < int(n)-1 {
			cand := uint32(rng.Intn(int(n)))
			if seen[cand] {
				continue
			}
			seen[cand] = true
			neighbors = append(neighbors, cand)
		}
		ix.gs.SetNeighbors(u, neighbors)
	}
}

// computeMedoid returns the vertex closest to the per-coordinate mean of all
// vectors, per spec §4.7 step 2.
func (ix *Index) computeMedoid(n uint32) (uint32, error) {
	dim := ix.cfg.AlignedDim()
	mean := make([]float32, dim)
	for id := uint32(0); id < n; id++ {
		v, ok := ix.vs.Get(id)
		if !ok {
			continue
		}
		for i, x := range v {
			mean[i] += x
		}
	}
	for i := range mean {
		mean[i] /= float32(n)
	}

	best := uint32(0)
	bestDist := float32(0)
	first := true
	for id := uint32(0); id < n; id++ {
		v, ok := ix.vs.Get(id)
		if !ok {
			continue
		}
		d := ix.vs.Distance(mean, v)
		if first || d < bestDist {
			best = id
			bestDist = d
			first = false
		}
	}
	if first {
		return 0, ErrIndexEmpty
	}
	return best, nil
}

// runBuildPass iterates a random permutation of [0,n) under a worker pool,
// running greedy search + robust prune + back-edge installation per vertex,
// per spec §4.7 steps 3-4. Two workers may run concurrently on disjoint u's;
// overlapping back-edge writes are ordered by the per-vertex lock inside the
// graph store, never by a lock held here.
func (ix *Index) runBuildPass(ctx context.Context, n uint32, alpha float32) error {
	perm := rand.New(rand.NewSource(int64(alpha * 1000))).Perm(int(n))

	numWorkers := ix.cfg.NumThreads
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU() - 1
	}
	if numWorkers < 1 {
		numWorkers = 1
	}

	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	idx := make(chan uint32)
	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for u := range idx {
				if err := ix.buildOneVertex(u, n, alpha); err != nil {
					cancel(err)
					return
				}
				select {
				case <-ctx.Done():
					return
				default:
				}
			}
		}()
	}

feed:
	for _, p := range perm {
		select {
		case idx <- uint32(p):
		case <-ctx.Done():
			break feed
		}
	}
	close(idx)
	wg.Wait()

	if err := context.Cause(ctx); err != nil && err != context.Canceled {
		return err
	}
	return nil
}

// buildOneVertex runs a single iteration of spec §4.7 step 4 (a-d) for u.
func (ix *Index) buildOneVertex(u, n uint32, alpha float32) error {
	vec, ok := ix.vs.Get(u)
	if !ok {
		return &InternalError{Diagnostic: fmt.Sprintf("vertex %d missing from vector store during build", u)}
	}
	medoid := ix.getMedoid()
	res, err := greedySearch(ix.vs, ix.gs, vec[:ix.cfg.Dim], ix.cfg.LBuild, medoid, n)
	if err != nil {
		return err
	}

	candidates := buildCandidatePool(ix.vs, u, res.visited, ix.gs.Neighbors(u))
	p := robustPrune(ix.vs, u, candidates, alpha, ix.cfg.R, ix.cfg.SaturateGraph)
	ix.gs.SetNeighbors(u, p)

	for _, v := range p {
		ix.addBackEdgeWithPrune(v, u, alpha)
	}
	return nil
}

// buildCandidatePool merges the visited set from search with u's current
// adjacency, excluding u itself, annotated with distance to u — spec §4.7
// step 4b / §4.8 step 3. Consolidate builds its own pool and does not call
// this.
func buildCandidatePool(vs *store.VectorStore, u uint32, visited []uint32, current []uint32) []store.DistSetElem {
	uVec, _ := vs.Get(u)
	seen := make(map[uint32]bool, len(visited)+len(current))
	out := make([]store.DistSetElem, 0, len(visited)+len(current))
	add := func(id uint32) {
		if id == u || seen[id] {
			return
		}
		seen[id] = true
		v, ok := vs.Get(id)
		if !ok {
			return
		}
		out = append(out, store.DistSetElem{Id: id, Distance: vs.Distance(uVec, v)})
	}
	for _, id := range visited {
		add(id)
	}
	for _, id := range current {
		add(id)
	}
	return out
}

// addBackEdgeWithPrune installs the edge from -> to (spec's add_back_edge
// over neighbor v, up-edge to u), re-pruning from if the degree bound would
// be exceeded. Grounded on the teacher's insertSinglePoint bi-directional
// edge installation (shard/index/vamana/insert.go), adapted to operate
// directly on the graph store rather than a point cache.
func (ix *Index) addBackEdgeWithPrune(from, to uint32, alpha float32) {
	current := ix.gs.Neighbors(from)
	if len(current)+1 <= ix.cfg.R {
		ix.gs.AddBackEdge(from, to)
		return
	}
	fromVec, ok := ix.vs.Get(from)
	if !ok {
		return
	}
	candidates := make([]store.DistSetElem, 0, len(current)+1)
	toVec, ok := ix.vs.Get(to)
	if !ok {
		return
	}
	candidates = append(candidates, store.DistSetElem{Id: to, Distance: ix.vs.Distance(fromVec, toVec)})
	for _, id := range current {
		v, ok := ix.vs.Get(id)
		if !ok {
			continue
		}
		candidates = append(candidates, store.DistSetElem{Id: id, Distance: ix.vs.Distance(fromVec, v)})
	}
	pruned := robustPrune(ix.vs, from, candidates, alpha, ix.cfg.R, ix.cfg.SaturateGraph)
	ix.gs.SetNeighbors(from, pruned)
}
