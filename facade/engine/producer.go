package engine

import "github.com/pion/webrtc/v4"

// producer is the facade's record of one participant's published track.
type producer struct {
	id            string
	participantID string
	kind          string
	mimeType      string
	track         *webrtc.TrackLocalStaticRTP
	consumers     map[string]struct{}
}

// consumer is the facade's record of one participant's attachment to a
// remote producer.
type consumer struct {
	id            string
	producerID    string
	participantID string
	kind          string
}
