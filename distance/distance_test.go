package distance_test

import (
	"math"
	"testing"

	"github.com/annvector/vamana/distance"
	"github.com/stretchr/testify/require"
)

func Test_GetDistanceFnUnknown(t *testing.T) {
	_, err := distance.GetDistanceFn("manhattan")
	require.Error(t, err)
}

func Test_L2Distance(t *testing.T) {
	fn, err := distance.GetDistanceFn(distance.MetricL2)
	require.NoError(t, err)
	a := []float32{1, 2, 3, 0, 0, 0, 0, 0}
	b := []float32{4, 6, 3, 0, 0, 0, 0, 0}
	require.InDelta(t, 25, fn(a, b), 1e-5) // (3^2 + 4^2)
	require.InDelta(t, 0, fn(a, a), 1e-5)
}

func Test_L2DistanceZeroPaddingIsSafe(t *testing.T) {
	fn, err := distance.GetDistanceFn(distance.MetricL2)
	require.NoError(t, err)
	short := []float32{1, 2, 3}
	padded := []float32{1, 2, 3, 0, 0, 0, 0, 0}
	require.InDelta(t, fn(short, short), fn(padded, padded), 1e-5)
}

func Test_CosineDistance(t *testing.T) {
	fn, err := distance.GetDistanceFn(distance.MetricCosine)
	require.NoError(t, err)
	a := []float32{1, 0, 0, 0, 0, 0, 0, 0}
	b := []float32{0, 1, 0, 0, 0, 0, 0, 0}
	require.InDelta(t, 1, fn(a, b), 1e-5) // orthogonal
	require.InDelta(t, 0, fn(a, a), 1e-5) // identical
	c := []float32{2, 0, 0, 0, 0, 0, 0, 0}
	require.InDelta(t, 0, fn(a, c), 1e-5) // same direction, different magnitude
}

func Test_CosineDistanceZeroVector(t *testing.T) {
	fn, err := distance.GetDistanceFn(distance.MetricCosine)
	require.NoError(t, err)
	zero := make([]float32, 8)
	require.False(t, math.IsNaN(float64(fn(zero, zero))))
}

func Test_DistanceSymmetric(t *testing.T) {
	for _, metric := range []string{distance.MetricL2, distance.MetricCosine} {
		fn, err := distance.GetDistanceFn(metric)
		require.NoError(t, err)
		a := []float32{1, 5, -2, 3, 0, 0, 0, 0}
		b := []float32{-4, 2, 1, 0, 0, 0, 0, 0}
		require.InDelta(t, fn(a, b), fn(b, a), 1e-4)
	}
}
