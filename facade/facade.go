// Package facade is the sole dependency the room coordinator has on the
// media engine. It is process-wide mutable state with explicit
// init/shutdown lifecycle, defined purely by the operations below — the
// coordinator never reaches into the engine's internals.
package facade

import "encoding/json"

// TransportKind distinguishes the two transports a participant owns.
type TransportKind int

const (
	SendTransport TransportKind = iota
	RecvTransport
)

// TransportInfo is returned by createSendTransport/createRecvTransport:
// an id plus the opaque ICE/DTLS parameters the client needs to complete
// its side of the handshake.
type TransportInfo struct {
	ID             string
	IceParameters  json.RawMessage
	IceCandidates  json.RawMessage
	DtlsParameters json.RawMessage
}

// ConsumerInfo is returned by Consume: everything the client needs to
// attach a receiver to a remote producer.
type ConsumerInfo struct {
	ConsumerID    string
	ProducerID    string
	Kind          string
	RtpParameters json.RawMessage
}

// Facade is the contract the room coordinator drives. Every operation
// may suspend; callers are expected to invoke these from a goroutine
// that can block (a per-session handler), never from a path that must
// not stall.
type Facade interface {
	// Init spawns the worker pool and creates the router. Fatal to the
	// process if it fails — there is no facade without it.
	Init() error

	// RouterRtpCapabilities returns the opaque capability descriptor the
	// router advertises. Available only after Init.
	RouterRtpCapabilities() json.RawMessage

	// CreateSendTransport creates (once) the send-side transport for pid.
	CreateSendTransport(pid string) (TransportInfo, error)

	// CreateRecvTransport creates the receive-side transport for pid.
	// Idempotent: a second call for the same pid returns the same transport.
	CreateRecvTransport(pid string) (TransportInfo, error)

	// ConnectTransport completes DTLS negotiation on a previously created
	// transport.
	ConnectTransport(transportID string, dtlsParameters json.RawMessage) error

	// Produce creates a producer on a send transport and returns its id.
	Produce(transportID, kind string, rtpParameters json.RawMessage) (string, error)

	// Consume attaches pid's receive transport to producerID, subject to
	// rtpCapabilities matching the producer's codec.
	Consume(pid, producerID string, rtpCapabilities json.RawMessage) (ConsumerInfo, error)

	// CloseProducer closes a producer and every consumer downstream of it.
	// Silent if producerID is unknown.
	CloseProducer(producerID string)

	// RemoveParticipant releases every SFU object belonging to pid: its
	// consumers, its send transport, its receive transport.
	RemoveParticipant(pid string)

	// Shutdown tears down every transport, producer and consumer, then
	// stops the worker pool.
	Shutdown()
}
