package engine_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sfucore/facade/engine"
)

func newEngine(t *testing.T) *engine.Engine {
	e := engine.New(engine.Config{})
	require.NoError(t, e.Init())
	t.Cleanup(e.Shutdown)
	return e
}

func TestEngine_RouterRtpCapabilitiesAdvertisesFixedCodecSet(t *testing.T) {
	e := newEngine(t)

	var caps struct {
		Codecs []struct {
			Kind     string `json:"kind"`
			MimeType string `json:"mimeType"`
		} `json:"codecs"`
	}
	require.NoError(t, json.Unmarshal(e.RouterRtpCapabilities(), &caps))

	assert.Len(t, caps.Codecs, 5)
	kinds := map[string]int{}
	for _, c := range caps.Codecs {
		kinds[c.Kind]++
	}
	assert.Equal(t, 4, kinds["video"])
	assert.Equal(t, 1, kinds["audio"])
}

func TestEngine_CreateSendTransportIsIdempotent(t *testing.T) {
	e := newEngine(t)

	first, err := e.CreateSendTransport("participant-1")
	require.NoError(t, err)

	second, err := e.CreateSendTransport("participant-1")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.JSONEq(t, string(first.IceParameters), string(second.IceParameters))
}

func TestEngine_CreateRecvTransportIsIdempotent(t *testing.T) {
	e := newEngine(t)

	first, err := e.CreateRecvTransport("participant-1")
	require.NoError(t, err)

	second, err := e.CreateRecvTransport("participant-1")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
}

func TestEngine_ProduceRequiresConnectedSendTransport(t *testing.T) {
	e := newEngine(t)

	info, err := e.CreateSendTransport("participant-1")
	require.NoError(t, err)

	_, err = e.Produce(info.ID, "video", json.RawMessage(`{}`))
	assert.Error(t, err)

	require.NoError(t, e.ConnectTransport(info.ID, json.RawMessage(`{}`)))

	producerID, err := e.Produce(info.ID, "video", json.RawMessage(`{}`))
	require.NoError(t, err)
	assert.NotEmpty(t, producerID)
}

func TestEngine_ProduceOnUnknownTransportFails(t *testing.T) {
	e := newEngine(t)

	_, err := e.Produce("no-such-transport", "video", json.RawMessage(`{}`))
	assert.Error(t, err)
}

func TestEngine_ConsumeRejectsIncompatibleCapabilities(t *testing.T) {
	e := newEngine(t)

	sendInfo, err := e.CreateSendTransport("producer-owner")
	require.NoError(t, err)
	require.NoError(t, e.ConnectTransport(sendInfo.ID, json.RawMessage(`{}`)))
	producerID, err := e.Produce(sendInfo.ID, "video", json.RawMessage(`{}`))
	require.NoError(t, err)

	_, err = e.CreateRecvTransport("consumer")
	require.NoError(t, err)

	_, err = e.Consume("consumer", producerID, json.RawMessage(`{"codecs":[{"kind":"audio","mimeType":"audio/opus"}]}`))
	assert.Error(t, err)
}

func TestEngine_ConsumeSucceedsWithMatchingCapabilities(t *testing.T) {
	e := newEngine(t)

	sendInfo, err := e.CreateSendTransport("producer-owner")
	require.NoError(t, err)
	require.NoError(t, e.ConnectTransport(sendInfo.ID, json.RawMessage(`{}`)))
	producerID, err := e.Produce(sendInfo.ID, "video", json.RawMessage(`{}`))
	require.NoError(t, err)

	_, err = e.CreateRecvTransport("consumer")
	require.NoError(t, err)

	consumerInfo, err := e.Consume("consumer", producerID, json.RawMessage(`{"codecs":[{"kind":"video","mimeType":"video/VP8"}]}`))
	require.NoError(t, err)
	assert.Equal(t, producerID, consumerInfo.ProducerID)
	assert.Equal(t, "video", consumerInfo.Kind)
}

func TestEngine_ConsumeWithoutRecvTransportFails(t *testing.T) {
	e := newEngine(t)

	sendInfo, err := e.CreateSendTransport("producer-owner")
	require.NoError(t, err)
	require.NoError(t, e.ConnectTransport(sendInfo.ID, json.RawMessage(`{}`)))
	producerID, err := e.Produce(sendInfo.ID, "video", json.RawMessage(`{}`))
	require.NoError(t, err)

	_, err = e.Consume("no-recv-transport", producerID, json.RawMessage(`{"codecs":[{"kind":"video","mimeType":"video/VP8"}]}`))
	assert.Error(t, err)
}

func TestEngine_ConsumeAfterCloseProducerFails(t *testing.T) {
	e := newEngine(t)

	sendInfo, err := e.CreateSendTransport("producer-owner")
	require.NoError(t, err)
	require.NoError(t, e.ConnectTransport(sendInfo.ID, json.RawMessage(`{}`)))
	producerID, err := e.Produce(sendInfo.ID, "video", json.RawMessage(`{}`))
	require.NoError(t, err)

	_, err = e.CreateRecvTransport("consumer")
	require.NoError(t, err)
	_, err = e.Consume("consumer", producerID, json.RawMessage(`{"codecs":[{"kind":"video","mimeType":"video/VP8"}]}`))
	require.NoError(t, err)

	e.CloseProducer(producerID)

	_, err = e.Consume("consumer", producerID, json.RawMessage(`{"codecs":[{"kind":"video","mimeType":"video/VP8"}]}`))
	assert.Error(t, err)
}

func TestEngine_RemoveParticipantReleasesTransportsAndProducers(t *testing.T) {
	e := newEngine(t)

	sendInfo, err := e.CreateSendTransport("participant-1")
	require.NoError(t, err)
	require.NoError(t, e.ConnectTransport(sendInfo.ID, json.RawMessage(`{}`)))
	producerID, err := e.Produce(sendInfo.ID, "video", json.RawMessage(`{}`))
	require.NoError(t, err)

	e.RemoveParticipant("participant-1")

	second, err := e.CreateSendTransport("participant-1")
	require.NoError(t, err)
	assert.NotEqual(t, sendInfo.ID, second.ID)

	_, err = e.CreateRecvTransport("consumer")
	require.NoError(t, err)
	_, err = e.Consume("consumer", producerID, json.RawMessage(`{"codecs":[{"kind":"video","mimeType":"video/VP8"}]}`))
	assert.Error(t, err)
}
