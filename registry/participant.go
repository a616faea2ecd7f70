package registry

import (
	"encoding/json"
	"sync/atomic"
)

// JoinPhase tracks how far a Participant has progressed through the
// two-phase JOIN handshake.
type JoinPhase int

const (
	// PhasePreCapabilities is a participant that has completed the first
	// JOIN (no rtpCapabilities) and is waiting on its second JOIN.
	PhasePreCapabilities JoinPhase = iota
	// PhaseCapabilitiesKnown is a participant whose rtpCapabilities are
	// on file; it may produce and consume.
	PhaseCapabilitiesKnown
)

// Sender delivers a signaling message to the session behind a Participant.
// The room coordinator never touches a socket directly; it always goes
// through this interface, which the gateway backs with a broker
// subscription so a slow or dead session can never block a handler.
type Sender interface {
	Send(message any)
}

// Participant is the live, mutable record of one joined session. All
// mutation happens under its Room's mutex; Participant itself holds no
// lock of its own.
type Participant struct {
	ID     string
	RoomID string
	Sender Sender

	Phase JoinPhase

	// ProducerID is the id of this participant's single active producer,
	// or empty if it has none.
	ProducerID string

	// Capabilities is the opaque rtpCapabilities descriptor declared on
	// the second JOIN. The core never inspects it.
	Capabilities json.RawMessage

	Nickname string
	Killed   bool

	// alive is the session's liveness flag: set on any sign of life
	// (a low-level PONG or an application-level ping) and cleared by the
	// gateway's liveness probe on each tick, so a missed tick followed by
	// another missed tick forces the session closed. It lives here rather
	// than on the socket so an app-level ping, which the coordinator
	// handles with no socket access, can still refresh it.
	alive atomic.Int32
}

// NewParticipant creates a Participant in the pre-capabilities phase.
func NewParticipant(id string, sender Sender) *Participant {
	p := &Participant{
		ID:     id,
		Sender: sender,
		Phase:  PhasePreCapabilities,
	}
	p.alive.Store(1)
	return p
}

// HasProducer reports whether this participant currently owns a producer.
func (p *Participant) HasProducer() bool {
	return p.ProducerID != ""
}

// Send delivers message to the session behind this participant via its
// Sender, so callers never need to reach into the field themselves.
func (p *Participant) Send(message any) {
	p.Sender.Send(message)
}

// Touch marks the session as alive. Called from a PONG control frame and
// from an application-level PING alike.
func (p *Participant) Touch() {
	p.alive.Store(1)
}

// CheckAndClearAlive reports whether the session has shown any sign of
// life since the last call, then clears the flag. Called once per
// liveness tick.
func (p *Participant) CheckAndClearAlive() bool {
	return p.alive.Swap(0) != 0
}
