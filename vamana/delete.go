package vamana

import (
	"fmt"

	"github.com/annvector/vamana/journal"
	"github.com/annvector/vamana/store"
)

// SoftDelete tombstones each id (spec §4.9). If the medoid is among ids, a
// new medoid is designated and published before the old one is marked,
// resolving the ambiguity spec.md §9 flags: this engine reselects at
// soft-delete time rather than deferring to consolidate.
func (ix *Index) SoftDelete(ids ...uint32) error {
	if len(ids) == 0 {
		return nil
	}
	ix.buildMu.RLock()
	defer ix.buildMu.RUnlock()

	n := ix.vs.Count()
	medoidAffected := false
	currentMedoid := ix.getMedoid()
	for _, id := range ids {
		if id >= n {
			return fmt.Errorf("vamana: soft_delete id %d out of range", id)
		}
		if id == currentMedoid {
			medoidAffected = true
		}
	}

	if medoidAffected {
		next, err := ix.pickReplacementMedoid(currentMedoid, ids)
		if err != nil {
			return err
		}
		ix.setMedoid(next)
	}

	for _, id := range ids {
		ix.gs.MarkDeleted(id)
	}

	if ix.journal != nil {
		ix.journal.Append(journal.OpSoftDelete, ids, nil, 0)
	}
	return nil
}

// pickReplacementMedoid finds any live, non-tombstoned vertex other than the
// ones about to be deleted, preferring the one closest to the current graph
// centroid, per spec §4.9.
func (ix *Index) pickReplacementMedoid(excludeCurrent uint32, beingDeleted []uint32) (uint32, error) {
	n := ix.vs.Count()
	excluded := make(map[uint32]bool, len(beingDeleted)+1)
	excluded[excludeCurrent] = true
	for _, id := range beingDeleted {
		excluded[id] = true
	}

	dim := ix.cfg.AlignedDim()
	mean := make([]float32, dim)
	count := 0
	for id := uint32(0); id < n; id++ {
		if excluded[id] || ix.gs.IsDeleted(id) {
			continue
		}
		v, ok := ix.vs.Get(id)
		if !ok {
			continue
		}
		for i, x := range v {
			mean[i] += x
		}
		count++
	}
	if count == 0 {
		return 0, &InternalError{Diagnostic: "no live vertex available to replace the medoid"}
	}
	for i := range mean {
		mean[i] /= float32(count)
	}

	best := uint32(0)
	bestDist := float32(0)
	first := true
	for id := uint32(0); id < n; id++ {
		if excluded[id] || ix.gs.IsDeleted(id) {
			continue
		}
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
	return best, nil
}

// Consolidate rewrites adjacency to bypass every tombstoned vertex (spec
// §4.9). It takes the build lock exclusively: per spec §9, "consolidation
// must run quiescent w.r.t. writers," unlike insert/delete which only need a
// shared lock against each other.
func (ix *Index) Consolidate() error {
	ix.buildMu.Lock()
	defer ix.buildMu.Unlock()

	deleted := ix.gs.DeletedIds()
	if len(deleted) == 0 {
		return nil
	}
	isDeleted := make(map[uint32]bool, len(deleted))
	for _, id := range deleted {
		isDeleted[id] = true
	}

	n := ix.vs.Count()
	for u := uint32(0); u < n; u++ {
		if isDeleted[u] {
			continue
		}
		current := ix.gs.Neighbors(u)
		candidates := make([]store.DistSetElem, 0, len(current))
		seen := map[uint32]bool{u: true}
		uVec, _ := ix.vs.Get(u)

		addCandidate := func(id uint32) {
			if seen[id] {
				return
			}
			seen[id] = true
			v, ok := ix.vs.Get(id)
			if !ok {
				return
			}
			candidates = append(candidates, store.DistSetElem{Id: id, Distance: ix.vs.Distance(uVec, v)})
		}

		for _, v := range current {
			if isDeleted[v] {
				for _, t := range ix.gs.Neighbors(v) {
					if !isDeleted[t] {
						addCandidate(t)
					}
				}
				continue
			}
			addCandidate(v)
		}

		pruned := robustPrune(ix.vs, u, candidates, ix.cfg.Alpha, ix.cfg.R, ix.cfg.SaturateGraph)
		ix.gs.SetNeighbors(u, pruned)
	}

	ix.gs.ClearTombstones(deleted)
	return nil
}
