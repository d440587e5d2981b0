package vamana

import (
	"testing"

	"github.com/annvector/vamana/store"
	"github.com/stretchr/testify/require"
)

func newTestVectorStore(t *testing.T, vectors [][]float32) (*store.VectorStore, []uint32) {
	t.Helper()
	vs, err := store.New(len(vectors[0]), len(vectors[0]), "l2", uint32(len(vectors)))
	require.NoError(t, err)
	ids := make([]uint32, len(vectors))
	for i, v := range vectors {
		id, err := vs.Append(v)
		require.NoError(t, err)
		ids[i] = id
	}
	return vs, ids
}

func Test_RobustPruneRespectsDegreeBound(t *testing.T) {
	vs, ids := newTestVectorStore(t, [][]float32{
		{0, 0}, // u
		{1, 0},
		{2, 0},
		{3, 0},
		{4, 0},
	})
	u := ids[0]
	candidates := []store.DistSetElem{}
	for _, id := range ids[1:] {
		v, _ := vs.Get(id)
		uVec, _ := vs.Get(u)
		candidates = append(candidates, store.DistSetElem{Id: id, Distance: vs.Distance(uVec, v)})
	}
	result := robustPrune(vs, u, candidates, 1.2, 2, false)
	require.LessOrEqual(t, len(result), 2)
}

func Test_RobustPruneExcludesSelf(t *testing.T) {
	vs, ids := newTestVectorStore(t, [][]float32{{0, 0}, {1, 0}})
	u := ids[0]
	candidates := []store.DistSetElem{
		{Id: u, Distance: 0},
		{Id: ids[1], Distance: 1},
	}
	result := robustPrune(vs, u, candidates, 1.2, 4, false)
	require.NotContains(t, result, u)
}

func Test_RobustPruneOcclusionDropsDominatedCandidate(t *testing.T) {
	// u at origin, p at (1,0) close, c at (2,0) colinear beyond p: p should
	// occlude c since alpha*d(p,c) <= d(u,c) for a generous alpha.
	vs, ids := newTestVectorStore(t, [][]float32{
		{0, 0}, // u
		{1, 0}, // p
		{2, 0}, // c, occluded by p
	})
	u, p, c := ids[0], ids[1], ids[2]
	uVec, _ := vs.Get(u)
	pVec, _ := vs.Get(p)
	cVec, _ := vs.Get(c)
	candidates := []store.DistSetElem{
		{Id: p, Distance: vs.Distance(uVec, pVec)},
		{Id: c, Distance: vs.Distance(uVec, cVec)},
	}
	result := robustPrune(vs, u, candidates, 1.0, 2, false)
	require.Equal(t, []uint32{p}, result)
}

func Test_RobustPruneSaturateGraphFillsFromOccluded(t *testing.T) {
	vs, ids := newTestVectorStore(t, [][]float32{
		{0, 0}, // u
		{1, 0}, // p
		{2, 0}, // c, occluded by p but should be filled back in
	})
	u, p, c := ids[0], ids[1], ids[2]
	uVec, _ := vs.Get(u)
	pVec, _ := vs.Get(p)
	cVec, _ := vs.Get(c)
	candidates := []store.DistSetElem{
		{Id: p, Distance: vs.Distance(uVec, pVec)},
		{Id: c, Distance: vs.Distance(uVec, cVec)},
	}
	result := robustPrune(vs, u, candidates, 1.0, 2, true)
	require.ElementsMatch(t, []uint32{p, c}, result)
}

func Test_RobustPruneNoDuplicates(t *testing.T) {
	vs, ids := newTestVectorStore(t, [][]float32{{0, 0}, {1, 0}})
	u := ids[0]
	v, _ := vs.Get(ids[1])
	uVec, _ := vs.Get(u)
	d := vs.Distance(uVec, v)
	candidates := []store.DistSetElem{
		{Id: ids[1], Distance: d},
		{Id: ids[1], Distance: d},
	}
	result := robustPrune(vs, u, candidates, 1.2, 4, false)
	require.Len(t, result, 1)
}
