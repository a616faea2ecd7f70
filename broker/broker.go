// Package broker decouples message producers from the goroutine that owns
// a session's socket. The room coordinator publishes outbound frames by
// participant id; the gateway subscribes one goroutine per live session
// and drains it into the socket. Delivery is best-effort: a subscriber
// that isn't keeping up has its message dropped rather than stalling the
// coordinator.
package broker

import (
	"sync"

	"github.com/rs/zerolog/log"

	"sfucore/broker/channel"
	"sfucore/broker/subscription"
)

// Topic groups subscriptions by purpose.
type Topic int

// Detail is the per-subscriber key within a topic, typically a participant id.
type Detail string

const (
	// Outbound carries frames destined for a single session's socket,
	// keyed by participant id.
	Outbound Topic = iota
)

// Broker is a process-wide multi-topic publish/subscribe registry.
type Broker struct {
	mu    sync.Mutex
	lines map[Topic]map[Detail]*channel.Channel
}

// New creates an empty Broker.
func New() *Broker {
	return &Broker{
		lines: make(map[Topic]map[Detail]*channel.Channel),
	}
}

// Subscribe registers a new Subscription under topic/detail and returns it.
func (b *Broker) Subscribe(topic Topic, detail Detail) *subscription.Subscription {
	ch := b.channelFor(topic, detail)
	sub := subscription.New()
	ch.AddSubscription(sub)
	return sub
}

// Unsubscribe removes sub from topic/detail, closes it, and drops the
// channel entry once no subscriber is left.
func (b *Broker) Unsubscribe(topic Topic, detail Detail, sub *subscription.Subscription) {
	b.mu.Lock()
	ch, ok := b.lines[topic][detail]
	b.mu.Unlock()
	if !ok {
		return
	}

	ch.RemoveSubscription(sub)

	if ch.Empty() {
		b.mu.Lock()
		delete(b.lines[topic], detail)
		b.mu.Unlock()
	}
}

// Publish delivers message to every subscriber of topic/detail. Publish is
// a no-op if nothing is subscribed under that key.
func (b *Broker) Publish(topic Topic, detail Detail, message any) {
	b.mu.Lock()
	ch, ok := b.lines[topic][detail]
	b.mu.Unlock()
	if !ok {
		return
	}

	if dropped := ch.SendAll(message); dropped > 0 {
		log.Debug().
			Int("topic", int(topic)).
			Str("detail", string(detail)).
			Int("dropped", dropped).
			Msg("broker: subscriber mailbox full, message dropped")
	}
}

func (b *Broker) channelFor(topic Topic, detail Detail) *channel.Channel {
	b.mu.Lock()
	defer b.mu.Unlock()

	details, ok := b.lines[topic]
	if !ok {
		details = make(map[Detail]*channel.Channel)
		b.lines[topic] = details
	}
	ch, ok := details[detail]
	if !ok {
		ch = channel.New()
		details[detail] = ch
	}
	return ch
}
