package vamana

import (
	"sort"

	"github.com/annvector/vamana/store"
)

// robustPrune reduces a candidate pool to at most degreeBound edges under
// the alpha-diversity occlusion rule (spec §4.6). u is the vertex the pool
// is being pruned for; candidates must already be annotated with distance to
// u. Any candidate equal to u and any repeated id are dropped here before
// pruning, so the result never holds a self-loop or a duplicate.
func robustPrune(vs *store.VectorStore, uId uint32, candidates []store.DistSetElem, alpha float32, degreeBound int, saturateGraph bool) []uint32 {
	filtered := make([]store.DistSetElem, 0, len(candidates))
	seen := make(map[uint32]bool, len(candidates))
	for _, c := range candidates {
		if c.Id == uId || seen[c.Id] {
			continue
		}
		seen[c.Id] = true
		filtered = append(filtered, c)
	}
	sort.Slice(filtered, func(i, j int) bool {
		if filtered[i].Distance != filtered[j].Distance {
			return filtered[i].Distance < filtered[j].Distance
		}
		return filtered[i].Id < filtered[j].Id
	})

	originalLen := len(filtered)
	result := make([]uint32, 0, degreeBound)
	active := filtered

	for len(active) > 0 && len(result) < degreeBound {
		p := active[0]
		result = append(result, p.Id)
		pVec, ok := vs.Get(p.Id)
		if !ok {
			active = active[1:]
			continue
		}
		rest := active[1:]
		kept := rest[:0]
		for _, c := range rest {
			cVec, ok := vs.Get(c.Id)
			if !ok {
				continue
			}
			dpc := vs.Distance(pVec, cVec)
			duc := c.Distance
			if alpha*dpc <= duc {
				continue // p occludes c from u's perspective
			}
			kept = append(kept, c)
		}
		active = kept
	}

	if saturateGraph && len(result) < degreeBound {
		have := make(map[uint32]bool, len(result))
		for _, id := range result {
			have[id] = true
		}
		limit := degreeBound
		if originalLen < limit {
			limit = originalLen
		}
		for _, c := range filtered {
			if len(result) >= limit {
				break
			}
			if have[c.Id] {
				continue
			}
			result = append(result, c.Id)
			have[c.Id] = true
		}
	}

	return result
}
