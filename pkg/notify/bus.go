// Package notify provides the retained/latched broadcast bus behind the
// external surface adapter's four notifications (spec §4.5):
// controller_changed, emergency_state, manager_state, cleared_emergency_state.
//
// It is adapted from the teacher's pkg/hub.Hub channel-fan-out pattern
// (register/unregister/broadcast channels drained by one Run loop), with
// one addition the teacher's hub didn't need: each topic retains its last
// published value, and a newly-registered subscriber is immediately sent
// that retained value before anything new arrives — spec §4.5's
// "retained/latched semantics, last value re-delivered to new subscribers".
package notify

import (
	"sync"

	"github.com/google/uuid"
)

// Event is one published notification.
type Event struct {
	Topic   string
	Payload any
}

type subscriber struct {
	id string
	ch chan Event
}

// Bus fans out published events to subscribers and replays each topic's
// last value to new subscribers.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[string]*subscriber
	retained    map[string]Event
}

// New creates an empty Bus.
func New() *Bus {
	return &Bus{
		subscribers: make(map[string]*subscriber),
		retained:    make(map[string]Event),
	}
}

// Publish broadcasts an event to all current subscribers and retains it as
// the topic's latest value for future subscribers. Publish never blocks
// long: a subscriber whose channel is full misses this event (it stays
// subscribed), rather than blocking the publisher.
func (b *Bus) Publish(topic string, payload any) {
	ev := Event{Topic: topic, Payload: payload}

	b.mu.Lock()
	b.retained[topic] = ev
	subs := make([]*subscriber, 0, len(b.subscribers))
	for _, s := range b.subscribers {
		subs = append(subs, s)
	}
	b.mu.Unlock()

	for _, s := range subs {
		select {
		case s.ch <- ev:
		default:
			// slow subscriber; drop this event for them rather than block
			// the publisher, same policy as the teacher's hub.
		}
	}
}

// Subscribe registers a new subscriber and returns its channel plus an
// unsubscribe function. The subscriber immediately receives the retained
// value for every topic that has been published at least once.
func (b *Bus) Subscribe(buffer int) (id string, ch <-chan Event, unsubscribe func()) {
	s := &subscriber{id: uuid.NewString(), ch: make(chan Event, buffer)}

	b.mu.Lock()
	b.subscribers[s.id] = s
	retained := make([]Event, 0, len(b.retained))
	for _, ev := range b.retained {
		retained = append(retained, ev)
	}
	b.mu.Unlock()

	for _, ev := range retained {
		select {
		case s.ch <- ev:
		default:
		}
	}

	unsub := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if existing, ok := b.subscribers[s.id]; ok && existing == s {
			delete(b.subscribers, s.id)
			close(s.ch)
		}
	}
	return s.id, s.ch, unsub
}

// Last returns the retained value for a topic, if any has been published.
func (b *Bus) Last(topic string) (Event, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	ev, ok := b.retained[topic]
	return ev, ok
}

// SubscriberCount reports how many subscribers are currently registered.
func (b *Bus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}
