// Package pool ranks rooms by participant count for the operational
// /debug/rooms/top endpoint. This is a supplemental feature: no
// signaling decision in the coordinator consults it.
package pool

import (
	"encoding/json"
	"net/http"

	"github.com/wangjia184/sortedset"

	"sfucore/registry"
)

// Pool tracks the current rooms known to reg, ranked by participant
// count. It recomputes on every read rather than being kept incrementally
// up to date, since the registry is already the source of truth and
// reads of this endpoint are rare compared to signaling traffic.
type Pool struct {
	reg *registry.Registry
}

// New creates a Pool backed by reg.
func New(reg *registry.Registry) *Pool {
	return &Pool{reg: reg}
}

// RoomActivity is one entry in the top-rooms ranking.
type RoomActivity struct {
	RoomID       string `json:"roomId"`
	Participants int    `json:"participants"`
}

// Top returns the n most populated rooms, largest first.
func (p *Pool) Top(n int) []RoomActivity {
	set := sortedset.New()
	for _, room := range p.reg.Rooms() {
		count := len(p.reg.SnapshotMembers(room.ID))
		set.AddOrUpdate(room.ID, sortedset.SCORE(count), count)
	}

	nodes := set.GetByRankRange(-1, -n, false)
	activity := make([]RoomActivity, 0, len(nodes))
	for _, node := range nodes {
		activity = append(activity, RoomActivity{
			RoomID:       node.Key(),
			Participants: node.Value.(int),
		})
	}
	return activity
}

// TopRoomsHandler serves the current top-10 room ranking as JSON. It is
// an operational aid for noticing a room that has grown unexpectedly
// large, not part of the signaling protocol.
func (p *Pool) TopRoomsHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(p.Top(10))
}
