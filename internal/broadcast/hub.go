package broadcast

import (
	"log/slog"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/sourcegraph/conc/panics"
)

// Handler receives events published on a channel. Handlers run on the
// publisher's goroutine; a panicking handler is isolated and logged, it
// never fails the publish.
type Handler func(Event)

// Hub is the in-process publish/subscribe broker. Publish is
// fire-and-forget with at-most-once delivery: there is no persistence, no
// replay, and a subscriber added after an event simply never sees it.
type Hub struct {
	mu       sync.RWMutex
	channels map[string]map[string]*Subscription // channel -> subscription id -> sub
}

func NewHub() *Hub {
	return &Hub{
		channels: make(map[string]map[string]*Subscription),
	}
}

// Subscription is one consumer's handle on a channel. Independent
// subscriptions to the same channel do not interfere: closing one leaves
// the others bound, and the channel itself is dropped only when the last
// subscription goes away.
type Subscription struct {
	hub     *Hub
	channel string
	id      string

	mu       sync.RWMutex
	bindings map[string]map[string]Handler // event name -> binding id -> handler
	closed   bool
}

func (h *Hub) Subscribe(channel string) *Subscription {
	sub := &Subscription{
		hub:      h,
		channel:  channel,
		id:       ulid.Make().String(),
		bindings: make(map[string]map[string]Handler),
	}
	h.mu.Lock()
	subs, ok := h.channels[channel]
	if !ok {
		subs = make(map[string]*Subscription)
		h.channels[channel] = subs
	}
	subs[sub.id] = sub
	h.mu.Unlock()
	return sub
}

// Bind registers fn for the named event and returns an unbind function
// scoped to exactly this registration.
func (s *Subscription) Bind(event string, fn Handler) (unbind func()) {
	id := ulid.Make().String()
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return func() {}
	}
	handlers, ok := s.bindings[event]
	if !ok {
		handlers = make(map[string]Handler)
		s.bindings[event] = handlers
	}
	handlers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		if handlers, ok := s.bindings[event]; ok {
			delete(handlers, id)
			if len(handlers) == 0 {
				delete(s.bindings, event)
			}
		}
		s.mu.Unlock()
	}
}

// Close unbinds all handlers of this subscription and detaches it from the
// hub. Safe to call more than once.
func (s *Subscription) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.bindings = make(map[string]map[string]Handler)
	s.mu.Unlock()

	s.hub.mu.Lock()
	if subs, ok := s.hub.channels[s.channel]; ok {
		delete(subs, s.id)
		if len(subs) == 0 {
			delete(s.hub.channels, s.channel)
		}
	}
	s.hub.mu.Unlock()
}

func (s *Subscription) handlersFor(event string) []Handler {
	s.mu.RLock()
	defer s.mu.RUnlock()
	handlers := make([]Handler, 0, len(s.bindings[event]))
	for _, fn := range s.bindings[event] {
		handlers = append(handlers, fn)
	}
	return handlers
}

// Publish delivers payload to every handler bound to its event name on the
// given channel. Errors cannot surface to the caller: the mutation this
// event describes has already been committed.
func (h *Hub) Publish(channel string, payload Payload) {
	ev := Event{
		Channel:    channel,
		Name:       payload.Kind(),
		Payload:    payload,
		OccurredAt: time.Now(),
	}

	h.mu.RLock()
	subs := make([]*Subscription, 0, len(h.channels[channel]))
	for _, sub := range h.channels[channel] {
		subs = append(subs, sub)
	}
	h.mu.RUnlock()

	for _, sub := range subs {
		for _, fn := range sub.handlersFor(ev.Name) {
			dispatch(ev, fn)
		}
	}
}

func dispatch(ev Event, fn Handler) {
	var catcher panics.Catcher
	catcher.Try(func() {
		fn(ev)
	})
	if recovered := catcher.Recovered(); recovered != nil {
		slog.Error("broadcast handler panicked",
			"channel", ev.Channel,
			"event", ev.Name,
			"error", recovered.AsError(),
		)
	}
}
