package registry_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sfucore/registry"
	"sfucore/registry/journal"
)

type fakeSender struct {
	sent []any
}

func (f *fakeSender) Send(message any) {
	f.sent = append(f.sent, message)
}

func TestRegistry_DefaultRoomExistsFromStart(t *testing.T) {
	reg := registry.New(journal.New())
	room, ok := reg.Get(registry.DefaultRoomID)
	require.True(t, ok)
	assert.Equal(t, registry.DefaultRoomID, room.ID)
}

func TestRegistry_AttachAndSnapshotMembers(t *testing.T) {
	reg := registry.New(journal.New())
	a := registry.NewParticipant("user-aaa111222", &fakeSender{})
	b := registry.NewParticipant("user-bbb333444", &fakeSender{})

	reg.Attach("r1", a)
	reg.Attach("r1", b)

	members := reg.SnapshotMembers("r1")
	assert.Len(t, members, 2)
}

func TestRegistry_DetachAbsentParticipantIsSafe(t *testing.T) {
	reg := registry.New(journal.New())
	reg.GetOrCreate("r1")

	_, removed := reg.Detach("r1", "nobody")
	assert.False(t, removed)
}

func TestRegistry_NonDefaultRoomIsReapedWhenEmpty(t *testing.T) {
	reg := registry.New(journal.New())
	a := registry.NewParticipant("user-aaa111222", &fakeSender{})
	reg.Attach("r1", a)

	_, removed := reg.Detach("r1", a.ID)
	require.True(t, removed)

	_, ok := reg.Get("r1")
	assert.False(t, ok, "empty non-default room should be reaped")
}

func TestRegistry_DefaultRoomSurvivesBeingEmptied(t *testing.T) {
	reg := registry.New(journal.New())
	a := registry.NewParticipant("user-aaa111222", &fakeSender{})
	reg.Attach(registry.DefaultRoomID, a)

	reg.Detach(registry.DefaultRoomID, a.ID)

	_, ok := reg.Get(registry.DefaultRoomID)
	assert.True(t, ok, "default room must never be reaped")
}

func TestRegistry_ParticipantBelongsToAtMostOneRoom(t *testing.T) {
	reg := registry.New(journal.New())
	a := registry.NewParticipant("user-aaa111222", &fakeSender{})

	reg.Attach("r1", a)
	assert.Equal(t, "r1", a.RoomID)

	reg.Detach("r1", a.ID)
	reg.Attach("r2", a)
	assert.Equal(t, "r2", a.RoomID)

	membersR1 := reg.SnapshotMembers("r1")
	assert.Empty(t, membersR1)
}

func TestParticipant_AliveFlagClearsAndRefreshes(t *testing.T) {
	p := registry.NewParticipant("user-aaa111222", &fakeSender{})

	assert.True(t, p.CheckAndClearAlive(), "starts alive")
	assert.False(t, p.CheckAndClearAlive(), "stays cleared until touched again")

	p.Touch()
	assert.True(t, p.CheckAndClearAlive(), "Touch sets the flag back")
	assert.False(t, p.CheckAndClearAlive())
}
