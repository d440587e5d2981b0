package diskstore_test

import (
	"path/filepath"
	"testing"

	"github.com/annvector/vamana/diskstore"
	"github.com/stretchr/testify/require"
)

func Test_MemStorePutGetDelete(t *testing.T) {
	s, err := diskstore.Open("")
	require.NoError(t, err)
	defer s.Close()

	b, err := s.Bucket("journal")
	require.NoError(t, err)

	require.Nil(t, b.Get([]byte("a")))
	require.NoError(t, b.Put([]byte("a"), []byte("1")))
	require.Equal(t, []byte("1"), b.Get([]byte("a")))

	require.NoError(t, b.Delete([]byte("a")))
	require.Nil(t, b.Get([]byte("a")))
}

func Test_MemStoreForEach(t *testing.T) {
	s, err := diskstore.Open("")
	require.NoError(t, err)
	defer s.Close()

	b, err := s.Bucket("journal")
	require.NoError(t, err)

	require.NoError(t, b.Put([]byte("a"), []byte("1")))
	require.NoError(t, b.Put([]byte("b"), []byte("2")))

	seen := map[string]string{}
	require.NoError(t, b.ForEach(func(k, v []byte) error {
		seen[string(k)] = string(v)
		return nil
	}))
	require.Equal(t, map[string]string{"a": "1", "b": "2"}, seen)
}

func Test_BboltStorePersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "journal.db")

	s, err := diskstore.Open(path)
	require.NoError(t, err)

	b, err := s.Bucket("journal")
	require.NoError(t, err)
	require.NoError(t, b.Put([]byte("k"), []byte("v")))
	require.NoError(t, s.Close())

	s2, err := diskstore.Open(path)
	require.NoError(t, err)
	defer s2.Close()

	b2, err := s2.Bucket("journal")
	require.NoError(t, err)
	require.Equal(t, []byte("v"), b2.Get([]byte("k")))
}
