package vamana

import (
	"github.com/annvector/vamana/store"
)

// searchResult is the outcome of greedySearch: the L closest candidates
// encountered, in ascending distance, plus the full set of expanded ids
// (needed by the inserter/builder to build a pruning pool).
type searchResult struct {
	bestL   []store.DistSetElem
	visited []uint32
}

// greedySearch runs best-first traversal from start towards q, expanding
// until no unvisited candidate in the L-queue could still improve it. This
// mirrors the teacher's greedySearch (shard/index/vamana/insert.go /
// search.go), generalized off vertex ids (uint32) against the vector/graph
// stores instead of a shared point cache.
func greedySearch(vs *store.VectorStore, gs *store.GraphStore, q []float32, l int, start uint32, numVertices uint32) (searchResult, error) {
	if numVertices == 0 {
		return searchResult{}, ErrIndexEmpty
	}

	distFn := vs.DistanceFromFloat(q)
	candidates := store.NewDistSet(l, numVertices, distFn)
	defer candidates.Release()

	visitedAll := store.NewDistSet(0, numVertices, distFn)
	defer visitedAll.Release()

	candidates.AddWithLimit(start)

	// visitedIds records which candidates have been expanded. Each round
	// re-sorts the candidates DistSet and scans it from the front for the
	// closest id not yet in visitedIds.
	visitedIds := make(map[uint32]bool, l*2)

	for {
		candidates.Sort()
		items := candidates.Items()
		var next *store.DistSetElem
		for i := range items {
			if !visitedIds[items[i].Id] {
				next = &items[i]
				break
			}
		}
		if next == nil {
			break
		}
		u := next.Id
		visitedIds[u] = true
		visitedAll.AddAlreadyUnique(store.DistSetElem{Id: u, Distance: next.Distance})

		for _, v := range gs.Neighbors(u) {
			candidates.AddWithLimit(v)
		}
	}

	out := append([]store.DistSetElem(nil), candidates.Items()...)
	visited := make([]uint32, 0, len(visitedAll.Items()))
	for _, e := range visitedAll.Items() {
		visited = append(visited, e.Id)
	}

	return searchResult{bestL: out, visited: visited}, nil
}
