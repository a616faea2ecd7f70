package wire

import "encoding/json"

// Server->client message types.
const (
	TypeWelcome           = "welcome"
	TypeNewProducer       = "new-producer"
	TypeProduceResponse   = "produce-response"
	TypeConsumeResponse   = "consume-response"
	TypeProducerClosed    = "producer-closed"
	TypeDisconnect        = "disconnect"
	TypeNicknameChangeOut = TypeNicknameChange
	TypeParticipantKilledOut = TypeParticipantKilled
	TypePong              = "pong"
	TypeError             = "error"
)

// TransportOptions describes a single client-facing transport. ICE and
// DTLS parameters are opaque to the core; it only ever forwards what the
// facade returned.
type TransportOptions struct {
	ID             string          `json:"id"`
	IceParameters  json.RawMessage `json:"iceParameters"`
	IceCandidates  json.RawMessage `json:"iceCandidates"`
	DtlsParameters json.RawMessage `json:"dtlsParameters"`
}

// Welcome answers the first JOIN.
type Welcome struct {
	Type string      `json:"type"`
	Data WelcomeData `json:"data"`
}

type WelcomeData struct {
	RouterRtpCapabilities json.RawMessage  `json:"routerRtpCapabilities"`
	WebRtcTransportOptions TransportOptions `json:"webRtcTransportOptions"`
}

// NewWelcome builds a welcome frame.
func NewWelcome(routerCaps json.RawMessage, transport TransportOptions) Welcome {
	return Welcome{
		Type: TypeWelcome,
		Data: WelcomeData{
			RouterRtpCapabilities:  routerCaps,
			WebRtcTransportOptions: transport,
		},
	}
}

// NewProducer announces that a producer is available for consumption.
type NewProducer struct {
	Type string          `json:"type"`
	Data NewProducerData `json:"data"`
}

type NewProducerData struct {
	ProducerID    string `json:"producerId"`
	ParticipantID string `json:"participantId"`
}

// NewNewProducer builds a new-producer frame.
func NewNewProducer(producerID, participantID string) NewProducer {
	return NewProducer{
		Type: TypeNewProducer,
		Data: NewProducerData{ProducerID: producerID, ParticipantID: participantID},
	}
}

// ProduceResponse answers a produce request.
type ProduceResponse struct {
	Type string              `json:"type"`
	Data ProduceResponseData `json:"data"`
}

type ProduceResponseData struct {
	ID string `json:"id"`
}

// NewProduceResponse builds a produce-response frame.
func NewProduceResponse(producerID string) ProduceResponse {
	return ProduceResponse{
		Type: TypeProduceResponse,
		Data: ProduceResponseData{ID: producerID},
	}
}

// ConsumeResponse answers a request-consume.
type ConsumeResponse struct {
	Type string              `json:"type"`
	Data ConsumeResponseData `json:"data"`
}

type ConsumeResponseData struct {
	ConsumerID       string            `json:"consumerId"`
	ProducerID       string            `json:"producerId"`
	Kind             string            `json:"kind"`
	RtpParameters    json.RawMessage   `json:"rtpParameters"`
	TransportOptions TransportOptions  `json:"transportOptions"`
	ParticipantID    string            `json:"participantId"`
}

// NewConsumeResponse builds a consume-response frame.
func NewConsumeResponse(consumerID, producerID, kind string, rtpParams json.RawMessage, transport TransportOptions, participantID string) ConsumeResponse {
	return ConsumeResponse{
		Type: TypeConsumeResponse,
		Data: ConsumeResponseData{
			ConsumerID:       consumerID,
			ProducerID:       producerID,
			Kind:             kind,
			RtpParameters:    rtpParams,
			TransportOptions: transport,
			ParticipantID:    participantID,
		},
	}
}

// ProducerClosed tells a participant that a producer it may have been
// consuming (or about to consume) is gone.
type ProducerClosed struct {
	Type string             `json:"type"`
	Data ProducerClosedData `json:"data"`
}

type ProducerClosedData struct {
	ProducerID    string `json:"producerId"`
	ParticipantID string `json:"participantId"`
}

// NewProducerClosed builds a producer-closed frame.
func NewProducerClosed(producerID, participantID string) ProducerClosed {
	return ProducerClosed{
		Type: TypeProducerClosed,
		Data: ProducerClosedData{ProducerID: producerID, ParticipantID: participantID},
	}
}

// Disconnect announces that a participant's session ended. Carried at
// the top level, per the data-wrapper convention's exception for simple
// notifications.
type Disconnect struct {
	Type          string `json:"type"`
	ParticipantID string `json:"participantId"`
}

// NewDisconnect builds a disconnect frame.
func NewDisconnect(participantID string) Disconnect {
	return Disconnect{Type: TypeDisconnect, ParticipantID: participantID}
}

// NicknameChange is fanned out on a nickname change, and echoed to the
// sender with IsLocalChange set so its own client can tell its change
// apart from a remote confirmation.
type NicknameChange struct {
	Type          string             `json:"type"`
	Data          NicknameChangeData `json:"data"`
	IsLocalChange bool               `json:"isLocalChange,omitempty"`
}

type NicknameChangeData struct {
	ParticipantID string `json:"participantId"`
	Nickname      string `json:"nickname"`
	PreviousName  string `json:"previousName,omitempty"`
}

// NewNicknameChange builds a nickname-change frame.
func NewNicknameChange(participantID, nickname, previousName string, isLocalChange bool) NicknameChange {
	return NicknameChange{
		Type: TypeNicknameChangeOut,
		Data: NicknameChangeData{
			ParticipantID: participantID,
			Nickname:      nickname,
			PreviousName:  previousName,
		},
		IsLocalChange: isLocalChange,
	}
}

// ParticipantKilled is fanned out when a participant's killed flag changes.
type ParticipantKilled struct {
	Type string                 `json:"type"`
	Data ParticipantKilledData `json:"data"`
}

type ParticipantKilledData struct {
	ParticipantID string `json:"participantId"`
	Killed        bool   `json:"killed"`
}

// NewParticipantKilled builds a participant-killed frame.
func NewParticipantKilled(participantID string, killed bool) ParticipantKilled {
	return ParticipantKilled{
		Type: TypeParticipantKilledOut,
		Data: ParticipantKilledData{ParticipantID: participantID, Killed: killed},
	}
}

// Pong answers an application-level ping.
type Pong struct {
	Type string `json:"type"`
}

// NewPong builds a pong frame.
func NewPong() Pong {
	return Pong{Type: TypePong}
}

// Error reports a protocol, facade, or transport failure to its originator.
type Error struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

// NewError builds an error frame.
func NewError(message string) Error {
	return Error{Type: TypeError, Error: message}
}
