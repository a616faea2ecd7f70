package engine

import (
	"encoding/json"

	"github.com/pion/interceptor"
	"github.com/pion/webrtc/v4"
)

// codecDescriptor is the router's view of one codec: enough to register
// it with pion's MediaEngine and enough to advertise it to clients as
// part of routerRtpCapabilities.
type codecDescriptor struct {
	kind          webrtc.RTPCodecType
	params        webrtc.RTPCodecParameters
	advertisedKind string
}

// routerCodecs is the fixed codec set the router advertises: VP8, VP9,
// H.264 baseline and high profile, and Opus. x-google-start-bitrate=1000
// is carried on every video codec's fmtp line.
func routerCodecs() []codecDescriptor {
	return []codecDescriptor{
		{
			kind:           webrtc.RTPCodecTypeVideo,
			advertisedKind: "video",
			params: webrtc.RTPCodecParameters{
				RTPCodecCapability: webrtc.RTPCodecCapability{
					MimeType:    webrtc.MimeTypeVP8,
					ClockRate:   90000,
					SDPFmtpLine: "x-google-start-bitrate=1000",
				},
				PayloadType: 96,
			},
		},
		{
			kind:           webrtc.RTPCodecTypeVideo,
			advertisedKind: "video",
			params: webrtc.RTPCodecParameters{
				RTPCodecCapability: webrtc.RTPCodecCapability{
					MimeType:    webrtc.MimeTypeVP9,
					ClockRate:   90000,
					SDPFmtpLine: "profile-id=0;x-google-start-bitrate=1000",
				},
				PayloadType: 98,
			},
		},
		{
			kind:           webrtc.RTPCodecTypeVideo,
			advertisedKind: "video",
			params: webrtc.RTPCodecParameters{
				RTPCodecCapability: webrtc.RTPCodecCapability{
					MimeType:    webrtc.MimeTypeH264,
					ClockRate:   90000,
					SDPFmtpLine: "level-asymmetry-allowed=1;packetization-mode=1;profile-level-id=42e01f;x-google-start-bitrate=1000",
				},
				PayloadType: 102,
			},
		},
		{
			kind:           webrtc.RTPCodecTypeVideo,
			advertisedKind: "video",
			params: webrtc.RTPCodecParameters{
				RTPCodecCapability: webrtc.RTPCodecCapability{
					MimeType:    webrtc.MimeTypeH264,
					ClockRate:   90000,
					SDPFmtpLine: "level-asymmetry-allowed=1;packetization-mode=1;profile-level-id=4d0032;x-google-start-bitrate=1000",
				},
				PayloadType: 127,
			},
		},
		{
			kind:           webrtc.RTPCodecTypeAudio,
			advertisedKind: "audio",
			params: webrtc.RTPCodecParameters{
				RTPCodecCapability: webrtc.RTPCodecCapability{
					MimeType:    webrtc.MimeTypeOpus,
					ClockRate:   48000,
					Channels:    2,
					SDPFmtpLine: "minptime=10;useinbandfec=1",
				},
				PayloadType: 111,
			},
		},
	}
}

// newMediaEngine registers the router codec set and the default
// interceptors (NACK, RTCP reports, twcc) on a fresh MediaEngine.
func newMediaEngine() (*webrtc.MediaEngine, *interceptor.Registry, error) {
	m := &webrtc.MediaEngine{}
	for _, c := range routerCodecs() {
		if err := m.RegisterCodec(c.params, c.kind); err != nil {
			return nil, nil, err
		}
	}

	i := &interceptor.Registry{}
	if err := webrtc.RegisterDefaultInterceptors(m, i); err != nil {
		return nil, nil, err
	}
	return m, i, nil
}

// advertisedCodec is the wire shape of one entry in routerRtpCapabilities.
type advertisedCodec struct {
	Kind        string `json:"kind"`
	MimeType    string `json:"mimeType"`
	ClockRate   uint32 `json:"clockRate"`
	Channels    uint16 `json:"channels,omitempty"`
	SDPFmtpLine string `json:"parameters,omitempty"`
}

// routerRtpCapabilitiesJSON renders the fixed codec set as the opaque
// descriptor handed to clients in welcome and transport-creation replies.
func routerRtpCapabilitiesJSON() json.RawMessage {
	codecs := routerCodecs()
	advertised := make([]advertisedCodec, 0, len(codecs))
	for _, c := range codecs {
		advertised = append(advertised, advertisedCodec{
			Kind:        c.advertisedKind,
			MimeType:    c.params.MimeType,
			ClockRate:   c.params.ClockRate,
			Channels:    c.params.Channels,
			SDPFmtpLine: c.params.SDPFmtpLine,
		})
	}
	raw, err := json.Marshal(struct {
		Codecs []advertisedCodec `json:"codecs"`
	}{Codecs: advertised})
	if err != nil {
		panic(err)
	}
	return raw
}

// mimeTypeForKind returns the first registered codec's mimeType for kind,
// used when a producer declares a bare "audio"/"video" kind without
// pinning a specific codec.
func mimeTypeForKind(kind string) string {
	for _, c := range routerCodecs() {
		if c.advertisedKind == kind {
			return c.params.MimeType
		}
	}
	return ""
}
