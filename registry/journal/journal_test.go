package journal_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sfucore/registry/journal"
)

func TestJournal_RecordAndForRoom(t *testing.T) {
	j := journal.New()

	j.Record("r1", "user-a", journal.Attached, "")
	j.Record("r1", "user-b", journal.Attached, "")
	j.Record("r2", "user-c", journal.Attached, "")
	j.Record("r1", "user-a", journal.Produced, "producer-1")

	entries := j.ForRoom("r1")
	require.Len(t, entries, 3)
	assert.Equal(t, journal.Attached, entries[0].Kind)
	assert.Equal(t, "user-a", entries[0].ParticipantID)
	assert.Equal(t, journal.Produced, entries[2].Kind)
	assert.Equal(t, "producer-1", entries[2].Detail)

	assert.Empty(t, j.ForRoom("unknown-room"))
}

func TestJournal_SeqIsMonotonic(t *testing.T) {
	j := journal.New()
	j.Record("r1", "user-a", journal.Attached, "")
	j.Record("r1", "user-a", journal.Detached, "")

	entries := j.ForRoom("r1")
	require.Len(t, entries, 2)
	assert.Less(t, entries[0].Seq, entries[1].Seq)
}
