package capability_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"sfucore/facade/capability"
)

func TestCapabilities_CanConsume(t *testing.T) {
	raw := json.RawMessage(`{"codecs":[{"kind":"video","mimeType":"video/VP8"},{"kind":"audio","mimeType":"audio/opus"}]}`)
	caps := capability.Parse(raw)

	assert.True(t, caps.CanConsume("video", "video/vp8"))
	assert.True(t, caps.CanConsume("audio", "audio/OPUS"))
	assert.False(t, caps.CanConsume("video", "video/H264"))
	assert.False(t, caps.CanConsume("audio", "video/VP8"))
}

func TestCapabilities_ParseEmptyOrMalformedIsNeverAMatch(t *testing.T) {
	assert.False(t, capability.Parse(nil).CanConsume("video", "video/VP8"))
	assert.False(t, capability.Parse(json.RawMessage(`not json`)).CanConsume("video", "video/VP8"))
}
