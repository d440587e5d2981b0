package vamana

import (
	"testing"

	"github.com/annvector/vamana/store"
	"github.com/stretchr/testify/require"
)

func Test_GreedySearchEmptyIndexReturnsErr(t *testing.T) {
	vs, err := store.New(2, 2, "l2", 4)
	require.NoError(t, err)
	gs := store.NewGraphStore(4, 4)
	_, err = greedySearch(vs, gs, []float32{0, 0}, 5, 0, 0)
	require.ErrorIs(t, err, ErrIndexEmpty)
}

func Test_GreedySearchFindsExactMatchInChain(t *testing.T) {
	vs, err := store.New(1, 1, "l2", 5)
	require.NoError(t, err)
	gs := store.NewGraphStore(5, 2)

	ids := make([]uint32, 5)
	for i := 0; i < 5; i++ {
		id, err := vs.Append([]float32{float32(i)})
		require.NoError(t, err)
		ids[i] = id
		gs.AddVertex()
	}
	// chain: 0 <-> 1 <-> 2 <-> 3 <-> 4
	for i := 0; i < 5; i++ {
		var neighbors []uint32
		if i > 0 {
			neighbors = append(neighbors, uint32(i-1))
		}
		if i < 4 {
			neighbors = append(neighbors, uint32(i+1))
		}
		gs.SetNeighbors(uint32(i), neighbors)
	}

	res, err := greedySearch(vs, gs, []float32{4}, 3, ids[0], 5)
	require.NoError(t, err)
	require.Equal(t, ids[4], res.bestL[0].Id)
	require.Equal(t, float32(0), res.bestL[0].Distance)
}

func Test_GreedySearchVisitsSupersetAtHigherL(t *testing.T) {
	vs, err := store.New(1, 1, "l2", 5)
	require.NoError(t, err)
	gs := store.NewGraphStore(5, 4)
	for i := 0; i < 5; i++ {
		vs.Append([]float32{float32(i)})
		gs.AddVertex()
	}
	for i := 0; i < 5; i++ {
		var neighbors []uint32
		for j := 0; j < 5; j++ {
			if i != j {
				neighbors = append(neighbors, uint32(j))
			}
		}
		gs.SetNeighbors(uint32(i), neighbors)
	}

	small, err := greedySearch(vs, gs, []float32{0}, 2, 0, 5)
	require.NoError(t, err)
	large, err := greedySearch(vs, gs, []float32{0}, 5, 0, 5)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(large.bestL), len(small.bestL))
	for _, id := range small.visited {
		require.Contains(t, large.visited, id)
	}
}
