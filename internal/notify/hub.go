// Package notify provides the in-process observer hub used to fan
// out UI-facing notifications: a show-list refresh after a completed
// booking and the profile image cache-bust signal.  It replaces the
// implicit module-level singleton of the original client with an
// explicit subscribe/publish contract so teardown is visible and
// testable.
package notify

import (
	"sync"
	"time"
)

// Topic names a notification stream.
type Topic string

const (
	// TopicShowsRefresh asks the show listing to re-fetch seat
	// availability.  Published when a customer booking completes.
	TopicShowsRefresh Topic = "shows.refresh"
	// TopicProfileImage asks avatar consumers to bust their image
	// cache using the event timestamp as version.
	TopicProfileImage Topic = "profile.image"
)

// Event is delivered to every subscriber of its topic.
type Event struct {
	Topic Topic     `json:"topic"`
	At    time.Time `json:"at"`
}

// Hub is a small synchronous observer registry.  Subscribers are
// invoked inline on Publish in registration order; callbacks must be
// quick and must not block.
type Hub struct {
	mu      sync.Mutex
	nextID  int
	subs    map[Topic]map[int]func(Event)
	lastPub map[Topic]time.Time
}

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{
		subs:    make(map[Topic]map[int]func(Event)),
		lastPub: make(map[Topic]time.Time),
	}
}

// Subscribe registers fn for the topic and returns a cancel function
// that removes the subscription.  Cancel is idempotent.
func (h *Hub) Subscribe(t Topic, fn func(Event)) (cancel func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextID++
	id := h.nextID
	if h.subs[t] == nil {
		h.subs[t] = make(map[int]func(Event))
	}
	h.subs[t][id] = fn
	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.subs[t], id)
	}
}

// Publish delivers an event stamped with the current time to every
// subscriber of the topic.
func (h *Hub) Publish(t Topic) {
	now := time.Now().UTC()
	h.mu.Lock()
	h.lastPub[t] = now
	fns := make([]func(Event), 0, len(h.subs[t]))
	for _, fn := range h.subs[t] {
		fns = append(fns, fn)
	}
	h.mu.Unlock()
	ev := Event{Topic: t, At: now}
	for _, fn := range fns {
		fn(ev)
	}
}

// Version returns the timestamp of the last publish on the topic,
// zero when the topic has never fired.  Image consumers append it to
// URLs as a cache-busting query value.
func (h *Hub) Version(t Topic) time.Time {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.lastPub[t]
}
