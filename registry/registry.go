// Package registry maintains the process-wide roomId -> Room map and the
// live Participant records attached to each room.
package registry

import (
	"sync"

	"sfucore/registry/journal"
)

// DefaultRoomID is the room every participant lands in when no roomId is
// given on JOIN. It is created at process start and is never reaped.
const DefaultRoomID = "default-room"

// Registry is the process-wide room map.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*Room

	journal *journal.Journal
}

// New creates a Registry with the default room already present.
func New(j *journal.Journal) *Registry {
	reg := &Registry{
		rooms:   make(map[string]*Room),
		journal: j,
	}
	reg.rooms[DefaultRoomID] = newRoom(DefaultRoomID)
	return reg
}

// GetOrCreate returns the existing room for roomID or creates a new,
// empty one.
func (r *Registry) GetOrCreate(roomID string) *Room {
	r.mu.RLock()
	room, ok := r.rooms[roomID]
	r.mu.RUnlock()
	if ok {
		return room
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok = r.rooms[roomID]
	if ok {
		return room
	}
	room = newRoom(roomID)
	r.rooms[roomID] = room
	return room
}

// Get returns the room for roomID without creating it.
func (r *Registry) Get(roomID string) (*Room, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	room, ok := r.rooms[roomID]
	return room, ok
}

// Attach adds p to the room identified by roomID, creating the room if
// necessary, and returns it.
func (r *Registry) Attach(roomID string, p *Participant) *Room {
	room := r.GetOrCreate(roomID)

	room.Lock()
	p.RoomID = roomID
	room.attach(p)
	room.Unlock()

	if r.journal != nil {
		r.journal.Record(roomID, p.ID, journal.Attached, "")
	}
	return room
}

// Detach removes the participant identified by participantID from
// roomID. It is safe to call when the participant is already absent.
// A non-default room whose last participant is removed is reaped: its
// entry is dropped from the registry so it stops appearing in
// room-ranking or debug listings. The default room is never reaped.
func (r *Registry) Detach(roomID, participantID string) (*Participant, bool) {
	room, ok := r.Get(roomID)
	if !ok {
		return nil, false
	}

	room.Lock()
	p, removed := room.detach(participantID)
	empty := room.len() == 0
	room.Unlock()

	if removed && r.journal != nil {
		r.journal.Record(roomID, participantID, journal.Detached, "")
	}

	if empty && roomID != DefaultRoomID {
		r.reap(roomID)
	}

	return p, removed
}

// reap drops roomID's entry from the registry if it is still empty. The
// room object itself is not touched concurrently by anyone else once
// removed from the map, since lookups only happen through the registry.
func (r *Registry) reap(roomID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[roomID]
	if !ok {
		return
	}
	room.RLock()
	stillEmpty := room.len() == 0
	room.RUnlock()
	if stillEmpty {
		delete(r.rooms, roomID)
	}
}

// SnapshotMembers returns an iteration-safe list of the room's current
// participants, or nil if the room doesn't exist.
func (r *Registry) SnapshotMembers(roomID string) []*Participant {
	room, ok := r.Get(roomID)
	if !ok {
		return nil
	}
	room.RLock()
	defer room.RUnlock()
	return room.snapshot()
}

// Rooms returns every room currently tracked by the registry. Used by
// the room-activity ranking feature; callers must not mutate the slice's
// Room objects outside their own locking discipline.
func (r *Registry) Rooms() []*Room {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rooms := make([]*Room, 0, len(r.rooms))
	for _, room := range r.rooms {
		rooms = append(rooms, room)
	}
	return rooms
}

// RecordProduced appends a produce event to the journal, if one is configured.
func (r *Registry) RecordProduced(roomID, participantID, producerID string) {
	if r.journal != nil {
		r.journal.Record(roomID, participantID, journal.Produced, producerID)
	}
}

// RecordKilled appends a killed-flag change to the journal, if one is configured.
func (r *Registry) RecordKilled(roomID, participantID string, killed bool) {
	if r.journal == nil {
		return
	}
	detail := "false"
	if killed {
		detail = "true"
	}
	r.journal.Record(roomID, participantID, journal.Killed, detail)
}
