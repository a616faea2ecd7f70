// Package coordinator owns the signaling state machine: the two-phase
// JOIN handshake, producer publication, consumer subscription, leave
// cleanup and the fan-out rules described for the room coordinator. It
// mutates room state through the registry and drives the media engine
// through the facade; it never touches a socket directly.
package coordinator

import (
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"sfucore/facade"
	"sfucore/registry"
	"sfucore/wire"
)

// Coordinator is the process-wide room coordinator. It holds no
// per-session state of its own; all of that lives on the Participant
// records the gateway hands it.
type Coordinator struct {
	registry *registry.Registry
	facade   facade.Facade
}

// New creates a Coordinator bound to reg and fac.
func New(reg *registry.Registry, fac facade.Facade) *Coordinator {
	return &Coordinator{registry: reg, facade: fac}
}

// Dispatch routes an inbound frame to the handler named by in.Type. An
// unknown type is a protocol error: it is reported to the sender and
// logged, the session is retained.
func (c *Coordinator) Dispatch(p *registry.Participant, in wire.Inbound) {
	switch in.Type {
	case wire.TypeJoin:
		c.Join(p, in.RoomID, in.RtpCapabilities)
	case wire.TypeProduce:
		c.Produce(p, in.TransportID, in.Kind, in.RtpParameters)
	case wire.TypeRequestConsume:
		c.RequestConsume(p, in.ProducerID, in.RtpCapabilities)
	case wire.TypeConnectTransport:
		c.ConnectTransport(p, in.TransportID, in.DtlsParameters)
	case wire.TypeNicknameChange:
		c.NicknameChange(p, in.Nickname, in.PreviousName)
	case wire.TypeParticipantKilled:
		killed := in.Killed != nil && *in.Killed
		c.ParticipantKilled(p, killed)
	case wire.TypeLeave:
		c.Leave(p)
	case wire.TypePing:
		c.Ping(p)
	default:
		log.Warn().Str("type", in.Type).Str("participantId", p.ID).Msg("coordinator: unknown message type")
		p.Send(wire.NewError(fmt.Sprintf("unknown message type: %q", in.Type)))
	}
}

// Join implements the two-phase JOIN handshake. The first JOIN carries
// no rtpCapabilities: it attaches the participant to the room and
// allocates its send transport. The second JOIN carries rtpCapabilities:
// it records them and delivers a new-producer (and, where applicable, a
// participant-killed) event for every producer that already exists in
// the room.
func (c *Coordinator) Join(p *registry.Participant, roomID string, rtpCapabilities json.RawMessage) {
	if len(rtpCapabilities) > 0 {
		c.secondJoin(p, rtpCapabilities)
		return
	}
	c.firstJoin(p, roomID)
}

func (c *Coordinator) firstJoin(p *registry.Participant, roomID string) {
	if p.Phase == registry.PhaseCapabilitiesKnown {
		p.Send(wire.NewError("already joined"))
		return
	}
	if roomID == "" {
		roomID = registry.DefaultRoomID
	}

	c.registry.Attach(roomID, p)

	info, err := c.facade.CreateSendTransport(p.ID)
	if err != nil {
		log.Error().Err(err).Str("participantId", p.ID).Msg("coordinator: create send transport failed")
		p.Send(wire.NewError(fmt.Sprintf("create send transport: %v", err)))
		return
	}

	p.Send(wire.NewWelcome(c.facade.RouterRtpCapabilities(), toTransportOptions(info)))
}

func (c *Coordinator) secondJoin(p *registry.Participant, rtpCapabilities json.RawMessage) {
	room, ok := c.registry.Get(p.RoomID)
	if !ok {
		p.Send(wire.NewError("not in a room"))
		return
	}

	room.Lock()
	p.Capabilities = rtpCapabilities
	p.Phase = registry.PhaseCapabilitiesKnown
	room.Unlock()

	for _, other := range c.registry.SnapshotMembers(p.RoomID) {
		if other.ID == p.ID || !other.HasProducer() {
			continue
		}
		p.Send(wire.NewNewProducer(other.ProducerID, other.ID))
		if other.Killed {
			p.Send(wire.NewParticipantKilled(other.ID, true))
		}
	}
}

// Produce registers a new producer on the sender's transport and
// announces it to every other current member of the room that has
// completed its second JOIN. A member still pre-capabilities is skipped
// here; it will learn about this producer exactly once, from its own
// second-JOIN catch-up in secondJoin.
func (c *Coordinator) Produce(p *registry.Participant, transportID, kind string, rtpParameters json.RawMessage) {
	if p.RoomID == "" {
		p.Send(wire.NewError("Not in a room"))
		return
	}
	if p.Phase != registry.PhaseCapabilitiesKnown {
		p.Send(wire.NewError("join not complete"))
		return
	}

	producerID, err := c.facade.Produce(transportID, kind, rtpParameters)
	if err != nil {
		log.Error().Err(err).Str("participantId", p.ID).Msg("coordinator: produce failed")
		p.Send(wire.NewError(fmt.Sprintf("produce: %v", err)))
		return
	}

	room, ok := c.registry.Get(p.RoomID)
	if ok {
		room.Lock()
		p.ProducerID = producerID
		room.Unlock()
	}
	c.registry.RecordProduced(p.RoomID, p.ID, producerID)

	p.Send(wire.NewProduceResponse(producerID))

	for _, other := range c.registry.SnapshotMembers(p.RoomID) {
		if other.ID == p.ID || other.Phase != registry.PhaseCapabilitiesKnown {
			continue
		}
		other.Send(wire.NewNewProducer(producerID, p.ID))
	}
}

// RequestConsume attaches the requester's (idempotently created) receive
// transport to producerID. A producer that has disappeared or that the
// requester's capabilities cannot receive yields both an error and a
// producer-closed, so a speculative client can clean up either way.
func (c *Coordinator) RequestConsume(p *registry.Participant, producerID string, rtpCapabilities json.RawMessage) {
	if p.Phase != registry.PhaseCapabilitiesKnown {
		p.Send(wire.NewError("join not complete"))
		return
	}

	recvInfo, err := c.facade.CreateRecvTransport(p.ID)
	if err != nil {
		log.Error().Err(err).Str("participantId", p.ID).Msg("coordinator: create recv transport failed")
		p.Send(wire.NewError(fmt.Sprintf("create recv transport: %v", err)))
		return
	}

	consumerInfo, err := c.facade.Consume(p.ID, producerID, rtpCapabilities)
	if err != nil {
		log.Warn().Err(err).Str("participantId", p.ID).Str("producerId", producerID).Msg("coordinator: consume failed")
		p.Send(wire.NewError(fmt.Sprintf("consume: %v", err)))
		p.Send(wire.NewProducerClosed(producerID, sourceParticipantID(c.registry, p.RoomID, producerID)))
		return
	}

	p.Send(wire.NewConsumeResponse(
		consumerInfo.ConsumerID,
		consumerInfo.ProducerID,
		consumerInfo.Kind,
		consumerInfo.RtpParameters,
		toTransportOptions(recvInfo),
		sourceParticipantID(c.registry, p.RoomID, producerID),
	))
}

// sourceParticipantID finds the participant owning producerID within
// roomID, for echoing back to a consuming client. Empty if not found,
// as when the producer's owner has already left the room.
func sourceParticipantID(reg *registry.Registry, roomID, producerID string) string {
	for _, m := range reg.SnapshotMembers(roomID) {
		if m.ProducerID == producerID {
			return m.ID
		}
	}
	return ""
}

// ConnectTransport is a pass-through to the facade.
func (c *Coordinator) ConnectTransport(p *registry.Participant, transportID string, dtlsParameters json.RawMessage) {
	if err := c.facade.ConnectTransport(transportID, dtlsParameters); err != nil {
		log.Error().Err(err).Str("participantId", p.ID).Msg("coordinator: connect transport failed")
		p.Send(wire.NewError(fmt.Sprintf("connect transport: %v", err)))
	}
}

// NicknameChange fans out a presence-only nickname update, echoing it
// back to the sender flagged as a local change.
func (c *Coordinator) NicknameChange(p *registry.Participant, nickname, previousName string) {
	room, ok := c.registry.Get(p.RoomID)
	if ok {
		room.Lock()
		p.Nickname = nickname
		room.Unlock()
	}

	p.Send(wire.NewNicknameChange(p.ID, nickname, previousName, true))
	for _, other := range c.registry.SnapshotMembers(p.RoomID) {
		if other.ID == p.ID {
			continue
		}
		other.Send(wire.NewNicknameChange(p.ID, nickname, previousName, false))
	}
}

// ParticipantKilled updates the application-level presence flag and fans
// it out. Media keeps flowing; this has no effect on the facade.
func (c *Coordinator) ParticipantKilled(p *registry.Participant, killed bool) {
	room, ok := c.registry.Get(p.RoomID)
	if ok {
		room.Lock()
		p.Killed = killed
		room.Unlock()
	}
	c.registry.RecordKilled(p.RoomID, p.ID, killed)

	for _, other := range c.registry.SnapshotMembers(p.RoomID) {
		other.Send(wire.NewParticipantKilled(p.ID, killed))
	}
}

// Ping answers an application-level liveness probe and refreshes the
// session's liveness flag, so an intermediary that strips low-level
// websocket control frames doesn't cause a false liveness timeout.
func (c *Coordinator) Ping(p *registry.Participant) {
	p.Touch()
	p.Send(wire.NewPong())
}

// Leave is the single cleanup path for a client LEAVE, a dead liveness
// probe, and an underlying socket close. It is safe to call more than
// once for the same participant: once it is no longer attached to any
// room, a further call sends nothing and only repeats
// facade.RemoveParticipant, which finds nothing left to release.
func (c *Coordinator) Leave(p *registry.Participant) {
	if p.RoomID == "" {
		c.facade.RemoveParticipant(p.ID)
		return
	}
	roomID := p.RoomID

	if p.HasProducer() {
		c.facade.CloseProducer(p.ProducerID)
		for _, other := range c.registry.SnapshotMembers(roomID) {
			if other.ID == p.ID {
				continue
			}
			other.Send(wire.NewProducerClosed(p.ProducerID, p.ID))
		}
	}

	if _, removed := c.registry.Detach(roomID, p.ID); !removed {
		c.facade.RemoveParticipant(p.ID)
		return
	}
	p.RoomID = ""

	for _, other := range c.registry.SnapshotMembers(roomID) {
		other.Send(wire.NewDisconnect(p.ID))
	}

	c.facade.RemoveParticipant(p.ID)
}

func toTransportOptions(info facade.TransportInfo) wire.TransportOptions {
	return wire.TransportOptions{
		ID:             info.ID,
		IceParameters:  info.IceParameters,
		IceCandidates:  info.IceCandidates,
		DtlsParameters: info.DtlsParameters,
	}
}
