// Package pubsub is an in-process, best-effort fan-out of payloads to topic
// subscribers. Nothing is persisted, a subscriber only sees what is published
// while it is subscribed.
package pubsub

import (
	"errors"
	"sync"

	"github.com/go-kit/kit/log"
)

const defaultBuffer = 16

// Errors returned by the Bus.
var (
	ErrStopped = errors.New("bus stopped")
)

// Predicate decides if a payload is delivered to a subscription.
type Predicate func(payload interface{}) bool

// Publisher is the write side of the Bus.
type Publisher interface {
	Publish(topic string, payload interface{}) error
}

// Subscriber is the read side of the Bus.
type Subscriber interface {
	Subscribe(topic string, p Predicate) (*Subscription, error)
}

// Bus routes published payloads to matching subscriptions. It has to be
// started before it accepts publishes or subscriptions.
type Bus struct {
	buffer int
	logger log.Logger

	mu      sync.RWMutex
	nextID  uint64
	running bool
	topics  map[string]map[uint64]*Subscription
}

// New returns a Bus where every subscription buffers up to buffer payloads.
func New(logger log.Logger, buffer int) *Bus {
	if buffer <= 0 {
		buffer = defaultBuffer
	}

	return &Bus{
		buffer: buffer,
		logger: logger,
		topics: map[string]map[uint64]*Subscription{},
	}
}

// Start enables the Bus.
func (b *Bus) Start() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.running = true
}

// Stop disables the Bus and closes all subscriptions.
func (b *Bus) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.running = false

	for topic, subs := range b.topics {
		for _, s := range subs {
			s.close()
		}

		delete(b.topics, topic)
	}
}

// Publish hands payload to every subscription on topic whose predicate
// matches. Delivery happens in call order for a single publisher; a
// subscription whose buffer is full drops the payload.
func (b *Bus) Publish(topic string, payload interface{}) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.running {
		return ErrStopped
	}

	for _, s := range b.topics[topic] {
		if s.predicate != nil && !s.predicate(payload) {
			continue
		}

		select {
		case s.c <- payload:
		default:
			_ = b.logger.Log(
				"err", "subscription buffer full",
				"subscription", s.id,
				"topic", topic,
			)
		}
	}

	return nil
}

// Subscribe registers interest in topic for payloads p accepts, nil accepts
// everything.
func (b *Bus) Subscribe(topic string, p Predicate) (*Subscription, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.running {
		return nil, ErrStopped
	}

	b.nextID++

	s := &Subscription{
		bus:       b,
		c:         make(chan interface{}, b.buffer),
		id:        b.nextID,
		predicate: p,
		topic:     topic,
	}

	if _, ok := b.topics[topic]; !ok {
		b.topics[topic] = map[uint64]*Subscription{}
	}

	b.topics[topic][s.id] = s

	return s, nil
}

func (b *Bus) remove(s *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs, ok := b.topics[s.topic]
	if !ok {
		return
	}

	if _, ok := subs[s.id]; !ok {
		return
	}

	delete(subs, s.id)
	s.close()

	if len(subs) == 0 {
		delete(b.topics, s.topic)
	}
}

// Subscription is a live registration on a topic.
type Subscription struct {
	bus       *Bus
	c         chan interface{}
	id        uint64
	once      sync.Once
	predicate Predicate
	topic     string
}

// C delivers matching payloads until the subscription is closed.
func (s *Subscription) C() <-chan interface{} {
	return s.c
}

// Close unregisters the subscription and closes its channel.
func (s *Subscription) Close() {
	s.bus.remove(s)
}

// close must be called with the bus lock held.
func (s *Subscription) close() {
	s.once.Do(func() {
		close(s.c)
	})
}
