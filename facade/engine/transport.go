package engine

import (
	"encoding/json"
	"fmt"

	"github.com/pion/webrtc/v4"

	"sfucore/facade"
)

// transport wraps a real PeerConnection. Send-side transports carry
// producers; receive-side transports carry consumers. The core only ever
// sees TransportInfo — ICE/DTLS parameters wrapped as opaque JSON — and
// the transport id; it never touches pc directly.
type transport struct {
	id            string
	participantID string
	kind          facade.TransportKind
	pc            *webrtc.PeerConnection
	connected     bool

	// cachedInfo is the TransportInfo returned at creation time, replayed
	// on repeat CreateSendTransport/CreateRecvTransport calls so the
	// client never sees two different ICE/DTLS parameter sets for one
	// transport.
	cachedInfo facade.TransportInfo
}

func newTransport(api *webrtc.API, participantID string, kind facade.TransportKind, id string) (*transport, facade.TransportInfo, error) {
	pc, err := api.NewPeerConnection(webrtc.Configuration{})
	if err != nil {
		return nil, facade.TransportInfo{}, fmt.Errorf("create peer connection: %w", err)
	}

	offer, err := pc.CreateOffer(nil)
	if err != nil {
		_ = pc.Close()
		return nil, facade.TransportInfo{}, fmt.Errorf("create offer: %w", err)
	}
	if err := pc.SetLocalDescription(offer); err != nil {
		_ = pc.Close()
		return nil, facade.TransportInfo{}, fmt.Errorf("set local description: %w", err)
	}

	attrs := extractICEDtlsAttrs(offer.SDP)
	algo, hash := fingerprintAlgoAndHash(attrs.fingerprint)

	iceParams, _ := json.Marshal(struct {
		UsernameFragment string `json:"usernameFragment"`
		Password         string `json:"password"`
	}{UsernameFragment: attrs.ufrag, Password: attrs.pwd})

	dtlsParams, _ := json.Marshal(struct {
		Role         string `json:"role"`
		Fingerprints []struct {
			Algorithm string `json:"algorithm"`
			Value     string `json:"value"`
		} `json:"fingerprints"`
	}{
		Role: "auto",
		Fingerprints: []struct {
			Algorithm string `json:"algorithm"`
			Value     string `json:"value"`
		}{{Algorithm: algo, Value: hash}},
	})

	iceCandidates, _ := json.Marshal([]struct{}{})

	t := &transport{
		id:            id,
		participantID: participantID,
		kind:          kind,
		pc:            pc,
	}
	info := facade.TransportInfo{
		ID:             id,
		IceParameters:  iceParams,
		IceCandidates:  iceCandidates,
		DtlsParameters: dtlsParams,
	}
	return t, info, nil
}

// connect marks the transport connected. A real deployment would feed
// the client's answering DTLS parameters into pc.SetRemoteDescription;
// since those parameters are opaque to the core by design, connect only
// records that the handshake step occurred.
func (t *transport) connect(_ json.RawMessage) {
	t.connected = true
}

func (t *transport) close() {
	_ = t.pc.Close()
}
