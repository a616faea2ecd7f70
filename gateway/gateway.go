// Package gateway accepts one long-lived websocket connection per
// client, assigns it a participant identity, frames/parses signaling
// messages, and drives the per-session liveness probe. It is the only
// package that touches a live socket; everything it learns from the
// wire is handed to the coordinator as typed values.
package gateway

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/lithammer/shortuuid/v4"
	"github.com/rs/zerolog/log"

	"sfucore/broker"
	"sfucore/broker/subscription"
	"sfucore/coordinator"
	"sfucore/internal/wsconn"
	"sfucore/registry"
	"sfucore/wire"
)

// Gateway is the websocket signaling endpoint's HTTP handler.
type Gateway struct {
	cfg         Config
	broker      *broker.Broker
	coordinator *coordinator.Coordinator
}

// New creates a Gateway bound to b and co, using the liveness timings in cfg.
func New(cfg Config, b *broker.Broker, co *coordinator.Coordinator) *Gateway {
	return &Gateway{cfg: cfg, broker: b, coordinator: co}
}

// sessionSender delivers outbound frames for one participant by
// publishing them on the broker instead of writing to the socket
// directly, so the coordinator never blocks on a slow or dead session.
type sessionSender struct {
	b   *broker.Broker
	pid string
}

func (s *sessionSender) Send(message any) {
	s.b.Publish(broker.Outbound, broker.Detail(s.pid), message)
}

// newParticipantID allocates a fresh, effectively collision-free
// participant identifier.
func newParticipantID() string {
	return "user-" + strings.ToLower(shortuuid.New())[:9]
}

// ServeHTTP upgrades the request to a websocket connection, admits it
// unconditionally (no origin restriction in the baseline), and runs the
// session until the client disconnects, a frame-level error occurs, or
// the liveness probe forces termination.
func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sock, err := wsconn.Upgrade(w, r)
	if err != nil {
		log.Warn().Err(err).Msg("gateway: websocket upgrade failed")
		return
	}

	pid := newParticipantID()
	sender := &sessionSender{b: g.broker, pid: pid}
	p := registry.NewParticipant(pid, sender)

	sub := g.broker.Subscribe(broker.Outbound, broker.Detail(pid))
	done := make(chan struct{})

	go g.writeLoop(sock, sub)
	go g.livenessLoop(sock, p, done)

	log.Info().Str("participantId", pid).Msg("gateway: session opened")

	g.readLoop(sock, p)

	close(done)
	g.broker.Unsubscribe(broker.Outbound, broker.Detail(pid), sub)
	g.coordinator.Leave(p)
	_ = sock.Close()

	log.Info().Str("participantId", pid).Msg("gateway: session closed")
}

// readLoop blocks reading frames until the socket errors or closes, or the
// client sends LEAVE. Each well-formed frame is dispatched to the
// coordinator; a malformed frame (invalid JSON, or JSON that is not a
// message object) elicits a single error reply and the session is
// retained. An empty frame, or one that ends before its JSON value is
// complete, is not told apart from a broken connection and ends the
// session. A LEAVE frame is dispatched like any other, then
// ends the session: the connection is closed and the read loop returns,
// driving the same cleanup ServeHTTP runs for a dead socket or a timed-out
// liveness probe.
func (g *Gateway) readLoop(sock *wsconn.WebSocket, p *registry.Participant) {
	for {
		var raw json.RawMessage
		if err := sock.ReadJSON(&raw); err != nil {
			var syntaxErr *json.SyntaxError
			if errors.As(err, &syntaxErr) {
				log.Warn().Err(err).Str("participantId", p.ID).Msg("gateway: malformed frame")
				p.Send(wire.NewError("malformed frame"))
				continue
			}
			return
		}

		var in wire.Inbound
		if err := json.Unmarshal(raw, &in); err != nil {
			log.Warn().Err(err).Str("participantId", p.ID).Msg("gateway: malformed frame")
			p.Send(wire.NewError("malformed frame"))
			continue
		}

		g.coordinator.Dispatch(p, in)

		if in.Type == wire.TypeLeave {
			_ = sock.Close()
			return
		}
	}
}

// writeLoop drains sub and writes each message to sock as a single text
// frame, once. A write failure ends the loop; the read side will notice
// the dead connection and trigger the standard leave cleanup.
func (g *Gateway) writeLoop(sock *wsconn.WebSocket, sub *subscription.Subscription) {
	for {
		msg := sub.Receive()
		if msg == nil {
			return
		}
		if err := sock.WriteJSON(msg); err != nil {
			return
		}
	}
}

// livenessLoop implements the liveness probe: on every tick the session's
// liveness flag is checked and cleared, then a low-level PING is sent. The
// flag is set again by either a PONG control frame or an application-level
// PING dispatched through the coordinator — the latter exists so an
// intermediary that strips websocket control frames doesn't cause a false
// timeout. A session still cleared on the following tick is force-
// terminated by closing its socket, which unblocks readLoop.
func (g *Gateway) livenessLoop(sock *wsconn.WebSocket, p *registry.Participant, done <-chan struct{}) {
	ticker := time.NewTicker(g.cfg.PingInterval)
	defer ticker.Stop()

	sock.SetPongHandler(func(string) error {
		p.Touch()
		return nil
	})

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if !p.CheckAndClearAlive() {
				log.Debug().Str("participantId", p.ID).Msg("gateway: two missed liveness ticks, terminating session")
				_ = sock.Close()
				return
			}
			if err := sock.WriteControl(wsconn.PingMessage, time.Now().Add(g.cfg.WriteWait)); err != nil {
				return
			}
		}
	}
}
