package journal_test

import (
	"testing"

	"github.com/annvector/vamana/diskstore"
	"github.com/annvector/vamana/journal"
	"github.com/stretchr/testify/require"
)

func openTestJournal(t *testing.T) *journal.Journal {
	t.Helper()
	s, err := diskstore.Open("")
	require.NoError(t, err)
	j, err := journal.Open(s)
	require.NoError(t, err)
	return j
}

func Test_JournalAppendAndReplayOrder(t *testing.T) {
	j := openTestJournal(t)

	j.Append(journal.OpInsert, []uint32{1}, []float32{1, 2, 3}, 3)
	j.Append(journal.OpSoftDelete, []uint32{1}, nil, 0)
	j.Append(journal.OpInsert, []uint32{2}, []float32{4, 5, 6}, 3)

	var seen []journal.Record
	err := j.Replay(func(r journal.Record) error {
		seen = append(seen, r)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, seen, 3)
	require.Equal(t, uint64(1), seen[0].Seq)
	require.Equal(t, uint64(2), seen[1].Seq)
	require.Equal(t, uint64(3), seen[2].Seq)
	require.Equal(t, journal.OpInsert, seen[0].Kind)
	require.Equal(t, []float32{1, 2, 3}, seen[0].Vectors)
	require.Equal(t, journal.OpSoftDelete, seen[1].Kind)
}

func Test_JournalCheckpointTruncates(t *testing.T) {
	j := openTestJournal(t)
	j.Append(journal.OpInsert, []uint32{1}, []float32{1}, 1)
	require.NoError(t, j.Checkpoint())

	var seen []journal.Record
	err := j.Replay(func(r journal.Record) error {
		seen = append(seen, r)
		return nil
	})
	require.NoError(t, err)
	require.Empty(t, seen)
}
