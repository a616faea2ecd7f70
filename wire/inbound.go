// Package wire provides the JSON message shapes exchanged on the
// signaling endpoint. The core never inspects rtpCapabilities,
// rtpParameters or dtlsParameters beyond forwarding them, so those
// fields are kept as json.RawMessage rather than given a Go shape.
package wire

import "encoding/json"

// Client->server message types.
const (
	TypeJoin              = "join"
	TypeLeave             = "leave"
	TypeConnectTransport  = "connect-transport"
	TypeProduce           = "produce"
	TypeRequestConsume    = "request-consume"
	TypeNicknameChange    = "nickname-change"
	TypeParticipantKilled = "participant-killed"
	TypePing              = "ping"
)

// Inbound is the superset of fields any client->server frame may carry.
// The gateway decodes every frame into one of these and the coordinator
// reads only the fields relevant to Type.
type Inbound struct {
	Type string `json:"type"`

	// join
	RoomID          string          `json:"roomId,omitempty"`
	RtpCapabilities json.RawMessage `json:"rtpCapabilities,omitempty"`

	// connect-transport
	TransportID    string          `json:"transportId,omitempty"`
	DtlsParameters json.RawMessage `json:"dtlsParameters,omitempty"`

	// produce
	Kind          string          `json:"kind,omitempty"`
	RtpParameters json.RawMessage `json:"rtpParameters,omitempty"`

	// request-consume
	ProducerID    string `json:"producerId,omitempty"`
	ParticipantID string `json:"participantId,omitempty"`

	// nickname-change
	Nickname     string `json:"nickname,omitempty"`
	PreviousName string `json:"previousName,omitempty"`

	// participant-killed
	Killed *bool `json:"killed,omitempty"`
}
