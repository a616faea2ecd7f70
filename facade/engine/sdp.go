package engine

import (
	"strings"

	"github.com/pion/sdp/v3"
)

// iceDtlsAttrs are the three SDP attributes the core forwards to the
// client as opaque ICE/DTLS parameters. They're extracted from a locally
// generated offer rather than negotiated with a real remote peer: the
// core never inspects their contents, only relays them, so a
// self-consistent local offer is enough to exercise the real
// pion/webrtc transport bookkeeping without a live browser on the other
// end.
type iceDtlsAttrs struct {
	ufrag       string
	pwd         string
	fingerprint string
}

// extractICEDtlsAttrs parses ice-ufrag, ice-pwd and fingerprint out of an
// SDP offer, checking session-level attributes first and falling back to
// the first media section that carries them.
func extractICEDtlsAttrs(rawSDP string) iceDtlsAttrs {
	var parsed sdp.SessionDescription
	if err := parsed.Unmarshal([]byte(rawSDP)); err != nil {
		return iceDtlsAttrs{}
	}

	attrs := iceDtlsAttrs{}
	attrs.ufrag, _ = parsed.Attribute("ice-ufrag")
	attrs.pwd, _ = parsed.Attribute("ice-pwd")
	attrs.fingerprint, _ = parsed.Attribute("fingerprint")

	for _, md := range parsed.MediaDescriptions {
		if attrs.ufrag == "" {
			if v, ok := md.Attribute("ice-ufrag"); ok {
				attrs.ufrag = v
			}
		}
		if attrs.pwd == "" {
			if v, ok := md.Attribute("ice-pwd"); ok {
				attrs.pwd = v
			}
		}
		if attrs.fingerprint == "" {
			if v, ok := md.Attribute("fingerprint"); ok {
				attrs.fingerprint = v
			}
		}
	}

	return attrs
}

// fingerprintAlgoAndHash splits "sha-256 AA:BB:..." into its two parts.
func fingerprintAlgoAndHash(fingerprint string) (algo, hash string) {
	parts := strings.Fields(fingerprint)
	if len(parts) != 2 {
		return "", fingerprint
	}
	return parts[0], parts[1]
}
