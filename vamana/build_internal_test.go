package vamana

import (
	"context"
	"math"
	"math/rand"
	"testing"

	"github.com/annvector/vamana/config"
	"github.com/stretchr/testify/require"
)

// averageEdgeLength and buildWithAlpha use the Index's own stores directly,
// exercising buildGraph without going through the public batch-insert path —
// this is what spec.md's scenario 6 actually compares (the Builder's
// two-pass construction, not incremental single-vertex insertion).
func averageEdgeLength(ix *Index) float64 {
	n := ix.vs.Count()
	total := 0.0
	count := 0
	for u := uint32(0); u < n; u++ {
		uVec, _ := ix.vs.Get(u)
		for _, v := range ix.gs.Neighbors(u) {
			vVec, ok := ix.vs.Get(v)
			if !ok {
				continue
			}
			total += math.Sqrt(float64(ix.vs.Distance(uVec, vVec)))
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return total / float64(count)
}

func buildWithAlpha(t *testing.T, vectors [][]float32, alpha float32) *Index {
	t.Helper()
	dim := len(vectors[0])
	cfg := config.Config{
		Metric:     "l2",
		Dim:        dim,
		Capacity:   uint32(len(vectors)),
		R:          16,
		LBuild:     40,
		Alpha:      alpha,
		NumThreads: 1,
	}
	ix, err := Open(cfg)
	require.NoError(t, err)
	for _, v := range vectors {
		_, err := ix.vs.Append(v)
		require.NoError(t, err)
		ix.gs.AddVertex()
	}
	require.NoError(t, ix.Build(context.Background()))
	return ix
}

func Test_HigherAlphaYieldsLongerAverageEdges(t *testing.T) {
	rng := rand.New(rand.NewSource(123))
	dim := 16
	n := 150
	vectors := make([][]float32, n)
	for i := range vectors {
		v := make([]float32, dim)
		for j := range v {
			v[j] = rng.Float32()
		}
		vectors[i] = v
	}

	low := buildWithAlpha(t, vectors, 1.0)
	high := buildWithAlpha(t, vectors, 1.4)

	lowAvg := averageEdgeLength(low)
	highAvg := averageEdgeLength(high)
	require.Greater(t, highAvg, lowAvg)
}

func Test_BuildGraphSatisfiesDegreeBound(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	dim := 8
	n := 80
	vectors := make([][]float32, n)
	for i := range vectors {
		v := make([]float32, dim)
		for j := range v {
			v[j] = rng.Float32()
		}
		vectors[i] = v
	}
	ix := buildWithAlpha(t, vectors, 1.2)
	for u := uint32(0); u < uint32(n); u++ {
		require.LessOrEqual(t, ix.gs.Degree(u), ix.cfg.R)
	}
}
