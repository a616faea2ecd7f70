// Package capability decides whether a consumer's declared rtpCapabilities
// can receive a given producer's codec.
package capability

import (
	"encoding/json"
	"strings"
)

// Codec is the subset of a codec descriptor this module cares about. The
// rest of whatever the client sent is preserved in the opaque
// rtpCapabilities blob forwarded elsewhere, but classification only needs
// kind and mimeType.
type Codec struct {
	Kind     string `json:"kind"`
	MimeType string `json:"mimeType"`
}

// Capabilities is the minimal shape of an rtpCapabilities descriptor
// needed to classify a producer as consumable or not.
type Capabilities struct {
	Codecs []Codec `json:"codecs"`
}

// Parse decodes raw rtpCapabilities JSON into the minimal shape this
// package matches against. A parse failure is treated as "no codecs
// declared" rather than an error, since an unparseable capability set
// can never match anything.
func Parse(raw json.RawMessage) Capabilities {
	var caps Capabilities
	if len(raw) == 0 {
		return caps
	}
	_ = json.Unmarshal(raw, &caps)
	return caps
}

// CanConsume reports whether caps declares support for a codec of the
// given kind and mimeType. Matching is case-insensitive on mimeType, per
// the SDP convention of e.g. "video/VP8" vs "video/vp8".
func (c Capabilities) CanConsume(kind, mimeType string) bool {
	for _, codec := range c.Codecs {
		if !strings.EqualFold(codec.Kind, kind) {
			continue
		}
		if strings.EqualFold(codec.MimeType, mimeType) {
			return true
		}
	}
	return false
}
