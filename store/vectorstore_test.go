package store_test

import (
	"testing"

	"github.com/annvector/vamana/store"
	"github.com/stretchr/testify/require"
)

func Test_VectorStoreAppendGet(t *testing.T) {
	vs, err := store.New(3, 8, "l2", 10)
	require.NoError(t, err)

	id, err := vs.Append([]float32{1, 2, 3})
	require.NoError(t, err)
	require.Equal(t, uint32(0), id)

	v, ok := vs.Get(id)
	require.True(t, ok)
	require.Len(t, v, 8)
	require.Equal(t, []float32{1, 2, 3, 0, 0, 0, 0, 0}, v)
}

func Test_VectorStoreRejectsWrongDimension(t *testing.T) {
	vs, err := store.New(3, 8, "l2", 10)
	require.NoError(t, err)
	_, err = vs.Append([]float32{1, 2})
	require.Error(t, err)
}

func Test_VectorStoreGetUnknownId(t *testing.T) {
	vs, err := store.New(3, 8, "l2", 10)
	require.NoError(t, err)
	_, ok := vs.Get(5)
	require.False(t, ok)
}

func Test_VectorStoreDistanceFromFloat(t *testing.T) {
	vs, err := store.New(2, 8, "l2", 10)
	require.NoError(t, err)
	a, _ := vs.Append([]float32{0, 0})
	b, _ := vs.Append([]float32{3, 4})

	distFn := vs.DistanceFromFloat([]float32{0, 0})
	require.Equal(t, float32(0), distFn(a))
	require.Equal(t, float32(25), distFn(b))
}

func Test_VectorStoreDistanceFromPoint(t *testing.T) {
	vs, err := store.New(2, 8, "l2", 10)
	require.NoError(t, err)
	a, _ := vs.Append([]float32{0, 0})
	b, _ := vs.Append([]float32{3, 4})

	distFn := vs.DistanceFromPoint(a)
	require.Equal(t, float32(25), distFn(b))
}

func Test_VectorStoreCount(t *testing.T) {
	vs, err := store.New(2, 8, "l2", 10)
	require.NoError(t, err)
	require.Equal(t, uint32(0), vs.Count())
	vs.Append([]float32{0, 0})
	vs.Append([]float32{1, 1})
	require.Equal(t, uint32(2), vs.Count())
}
