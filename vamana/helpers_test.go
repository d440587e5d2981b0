package vamana_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func corruptBytes(t *testing.T, path string, offset int64, value byte) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_RDWR, 0644)
	require.NoError(t, err)
	defer f.Close()
	_, err = f.WriteAt([]byte{value}, offset)
	require.NoError(t, err)
}
