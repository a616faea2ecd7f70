// Package engine implements facade.Facade over real pion/webrtc
// primitives: a MediaEngine holding the router's codec set, one
// PeerConnection per transport, and TrackLocalStaticRTP producers. It is
// the only package in this module that imports pion/webrtc.
package engine

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"

	"sfucore/facade"
	"sfucore/facade/capability"
)

// Config configures the media engine's network behavior.
type Config struct {
	// MinPort/MaxPort bound the ephemeral UDP port range offered to
	// transports. Zero values leave pion's own default range in effect.
	MinPort uint16
	MaxPort uint16

	// AnnouncedIP, if set, is advertised as every transport's public
	// address instead of the address it's actually bound to.
	AnnouncedIP string
}

// Engine is the process-wide facade implementation.
type Engine struct {
	cfg Config

	mu              sync.RWMutex
	api             *webrtc.API
	routerCaps      json.RawMessage
	sendTransports  map[string]*transport // keyed by participant id
	recvTransports  map[string]*transport // keyed by participant id
	transportsByID  map[string]*transport
	producers       map[string]*producer
	consumers       map[string]*consumer

	pool *workerPool
}

// New creates an Engine. Call Init before using it.
func New(cfg Config) *Engine {
	return &Engine{
		cfg:            cfg,
		sendTransports: make(map[string]*transport),
		recvTransports: make(map[string]*transport),
		transportsByID: make(map[string]*transport),
		producers:      make(map[string]*producer),
		consumers:      make(map[string]*consumer),
	}
}

var _ facade.Facade = (*Engine)(nil)

// Init builds the MediaEngine/interceptor stack, applies the configured
// port range and announced IP, and spawns the worker pool.
func (e *Engine) Init() error {
	m, ir, err := newMediaEngine()
	if err != nil {
		return fmt.Errorf("facade init: build media engine: %w", err)
	}

	se := webrtc.SettingEngine{}
	if e.cfg.MinPort > 0 && e.cfg.MaxPort >= e.cfg.MinPort {
		if err := se.SetEphemeralUDPPortRange(e.cfg.MinPort, e.cfg.MaxPort); err != nil {
			return fmt.Errorf("facade init: set port range: %w", err)
		}
	}
	if e.cfg.AnnouncedIP != "" {
		se.SetNAT1To1IPs([]string{e.cfg.AnnouncedIP}, webrtc.ICECandidateTypeHost)
	}

	e.api = webrtc.NewAPI(webrtc.WithMediaEngine(m), webrtc.WithInterceptorRegistry(ir), webrtc.WithSettingEngine(se))
	e.routerCaps = routerRtpCapabilitiesJSON()
	e.pool = newWorkerPool()

	log.Info().Int("workers", workerCount()).Msg("facade: worker pool started")
	return nil
}

// RouterRtpCapabilities returns the fixed router capability descriptor.
func (e *Engine) RouterRtpCapabilities() json.RawMessage {
	return e.routerCaps
}

// CreateSendTransport creates pid's send transport, or returns the
// existing one if called again for the same participant.
func (e *Engine) CreateSendTransport(pid string) (facade.TransportInfo, error) {
	v, err := e.pool.submit(func() (any, error) {
		e.mu.Lock()
		defer e.mu.Unlock()

		if existing, ok := e.sendTransports[pid]; ok {
			return e.infoOf(existing), nil
		}

		t, info, err := newTransport(e.api, pid, facade.SendTransport, uuid.NewString())
		if err != nil {
			return facade.TransportInfo{}, err
		}
		t.cachedInfo = info
		e.sendTransports[pid] = t
		e.transportsByID[t.id] = t
		return info, nil
	})
	if err != nil {
		return facade.TransportInfo{}, err
	}
	return v.(facade.TransportInfo), nil
}

// CreateRecvTransport creates pid's receive transport. Idempotent: a
// second call for the same pid returns the same transport's info.
func (e *Engine) CreateRecvTransport(pid string) (facade.TransportInfo, error) {
	v, err := e.pool.submit(func() (any, error) {
		e.mu.Lock()
		defer e.mu.Unlock()

		if existing, ok := e.recvTransports[pid]; ok {
			return e.infoOf(existing), nil
		}

		t, info, err := newTransport(e.api, pid, facade.RecvTransport, uuid.NewString())
		if err != nil {
			return facade.TransportInfo{}, err
		}
		t.cachedInfo = info
		e.recvTransports[pid] = t
		e.transportsByID[t.id] = t
		return info, nil
	})
	if err != nil {
		return facade.TransportInfo{}, err
	}
	return v.(facade.TransportInfo), nil
}

func (e *Engine) infoOf(t *transport) facade.TransportInfo {
	return t.cachedInfo
}

// ConnectTransport completes the DTLS handshake bookkeeping for transportID.
func (e *Engine) ConnectTransport(transportID string, dtlsParameters json.RawMessage) error {
	_, err := e.pool.submit(func() (any, error) {
		e.mu.Lock()
		defer e.mu.Unlock()

		t, ok := e.transportsByID[transportID]
		if !ok {
			return nil, errTransportNotFound
		}
		t.connect(dtlsParameters)
		return nil, nil
	})
	return err
}

// Produce creates a producer on transportID.
func (e *Engine) Produce(transportID, kind string, rtpParameters json.RawMessage) (string, error) {
	v, err := e.pool.submit(func() (any, error) {
		e.mu.Lock()
		defer e.mu.Unlock()

		t, ok := e.transportsByID[transportID]
		if !ok || t.kind != facade.SendTransport {
			return "", errTransportNotFound
		}
		if !t.connected {
			return "", fmt.Errorf("facade: send transport %s is not connected", transportID)
		}

		mimeType := mimeTypeForKind(kind)
		producerID := uuid.NewString()
		track, err := webrtc.NewTrackLocalStaticRTP(webrtc.RTPCodecCapability{MimeType: mimeType}, producerID, t.participantID)
		if err != nil {
			return "", fmt.Errorf("facade: create local track: %w", err)
		}

		e.producers[producerID] = &producer{
			id:            producerID,
			participantID: t.participantID,
			kind:          kind,
			mimeType:      mimeType,
			track:         track,
			consumers:     make(map[string]struct{}),
		}
		return producerID, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// Consume attaches pid's receive transport to producerID.
func (e *Engine) Consume(pid, producerID string, rtpCapabilities json.RawMessage) (facade.ConsumerInfo, error) {
	v, err := e.pool.submit(func() (any, error) {
		e.mu.Lock()
		defer e.mu.Unlock()

		p, ok := e.producers[producerID]
		if !ok {
			return facade.ConsumerInfo{}, errProducerNotFound
		}
		if _, ok := e.recvTransports[pid]; !ok {
			return facade.ConsumerInfo{}, errNoRecvTransport
		}

		caps := capability.Parse(rtpCapabilities)
		if !caps.CanConsume(p.kind, p.mimeType) {
			return facade.ConsumerInfo{}, errCannotConsume
		}

		consumerID := uuid.NewString()
		e.consumers[consumerID] = &consumer{
			id:            consumerID,
			producerID:    producerID,
			participantID: pid,
			kind:          p.kind,
		}
		p.consumers[consumerID] = struct{}{}

		rtpParams, _ := json.Marshal(struct {
			MimeType  string `json:"mimeType"`
			ClockRate uint32 `json:"clockRate"`
		}{MimeType: p.mimeType, ClockRate: clockRateFor(p.mimeType)})

		return facade.ConsumerInfo{
			ConsumerID:    consumerID,
			ProducerID:    producerID,
			Kind:          p.kind,
			RtpParameters: rtpParams,
		}, nil
	})
	if err != nil {
		return facade.ConsumerInfo{}, err
	}
	return v.(facade.ConsumerInfo), nil
}

// CloseProducer closes producerID and every consumer downstream of it.
func (e *Engine) CloseProducer(producerID string) {
	_, _ = e.pool.submit(func() (any, error) {
		e.mu.Lock()
		defer e.mu.Unlock()
		e.closeProducerLocked(producerID)
		return nil, nil
	})
}

func (e *Engine) closeProducerLocked(producerID string) {
	p, ok := e.producers[producerID]
	if !ok {
		return
	}
	for consumerID := range p.consumers {
		delete(e.consumers, consumerID)
	}
	delete(e.producers, producerID)
}

// RemoveParticipant releases every SFU object belonging to pid.
func (e *Engine) RemoveParticipant(pid string) {
	_, _ = e.pool.submit(func() (any, error) {
		e.mu.Lock()
		defer e.mu.Unlock()

		for producerID, p := range e.producers {
			if p.participantID == pid {
				e.closeProducerLocked(producerID)
			}
		}
		for consumerID, c := range e.consumers {
			if c.participantID == pid {
				delete(e.consumers, consumerID)
			}
		}
		if t, ok := e.sendTransports[pid]; ok {
			t.close()
			delete(e.transportsByID, t.id)
			delete(e.sendTransports, pid)
		}
		if t, ok := e.recvTransports[pid]; ok {
			t.close()
			delete(e.transportsByID, t.id)
			delete(e.recvTransports, pid)
		}
		return nil, nil
	})
}

// Shutdown tears down every transport, producer and consumer, then stops
// the worker pool.
func (e *Engine) Shutdown() {
	e.mu.Lock()
	for _, t := range e.transportsByID {
		t.close()
	}
	e.sendTransports = make(map[string]*transport)
	e.recvTransports = make(map[string]*transport)
	e.transportsByID = make(map[string]*transport)
	e.producers = make(map[string]*producer)
	e.consumers = make(map[string]*consumer)
	e.mu.Unlock()

	if e.pool != nil {
		e.pool.stop()
	}
	log.Info().Msg("facade: shutdown complete")
}

// clockRateFor returns the clock rate this module's router advertises
// for mimeType, or 0 if mimeType isn't one of the registered codecs.
func clockRateFor(mimeType string) uint32 {
	for _, c := range routerCodecs() {
		if c.params.MimeType == mimeType {
			return c.params.ClockRate
		}
	}
	return 0
}
