package pool_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sfucore/pool"
	"sfucore/registry"
	"sfucore/registry/journal"
)

type noopSender struct{}

func (noopSender) Send(any) {}

func TestPool_TopRanksRoomsByParticipantCount(t *testing.T) {
	reg := registry.New(journal.New())
	reg.Attach("small", registry.NewParticipant("user-a", noopSender{}))
	reg.Attach("big", registry.NewParticipant("user-b", noopSender{}))
	reg.Attach("big", registry.NewParticipant("user-c", noopSender{}))
	reg.Attach("big", registry.NewParticipant("user-d", noopSender{}))

	p := pool.New(reg)
	top := p.Top(10)

	require.NotEmpty(t, top)
	assert.Equal(t, "big", top[0].RoomID)
	assert.Equal(t, 3, top[0].Participants)
}

func TestPool_TopRespectsLimit(t *testing.T) {
	reg := registry.New(journal.New())
	for _, room := range []string{"r1", "r2", "r3"} {
		reg.Attach(room, registry.NewParticipant("user-"+room, noopSender{}))
	}

	p := pool.New(reg)
	top := p.Top(2)
	assert.Len(t, top, 2)
}
