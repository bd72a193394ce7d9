package realtime

import (
	"encoding/json"
	"sync"

	"turfbook/internal/metrics"
)

// EventType is the kind of row change carried by a ChangeEvent.
type EventType string

const EventInsert EventType = "INSERT"

// ChangeEvent is one row change. Key routes the event to subscribers and is not sent on the wire.
type ChangeEvent struct {
	Type   EventType       `json:"type"`
	Table  string          `json:"table"`
	Record json.RawMessage `json:"record"`
	Key    string          `json:"-"`
}

// Filter selects the events a subscription receives. Empty fields match anything.
type Filter struct {
	Table string
	Type  EventType
	Key   string
}

func (f Filter) Match(ev ChangeEvent) bool {
	if f.Table != "" && f.Table != ev.Table {
		return false
	}
	if f.Type != "" && f.Type != ev.Type {
		return false
	}
	if f.Key != "" && f.Key != ev.Key {
		return false
	}
	return true
}

const defaultBuffer = 64

// Hub fans change events out to live subscriptions.
type Hub struct {
	mu     sync.RWMutex
	subs   map[*Subscription]struct{}
	buffer int
	closed bool
}

func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	return &Hub{
		subs:   make(map[*Subscription]struct{}),
		buffer: buffer,
	}
}

// Subscribe registers a new subscription. On a closed hub the returned
// subscription's channel is already closed.
func (h *Hub) Subscribe(f Filter) *Subscription {
	s := &Subscription{
		hub:    h,
		filter: f,
		events: make(chan ChangeEvent, h.buffer),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(s.events)
		s.done = true
		return s
	}
	h.subs[s] = struct{}{}
	metrics.RealtimeSubscribers.Inc()
	return s
}

// Publish delivers ev to every matching subscription and returns how many
// received it. A subscriber whose buffer is full misses the event.
func (h *Hub) Publish(ev ChangeEvent) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for s := range h.subs {
		if !s.filter.Match(ev) {
			continue
		}
		select {
		case s.events <- ev:
			delivered++
		default:
			metrics.RealtimeDropped.Inc()
		}
	}
	return delivered
}

// Count returns the number of open subscriptions.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Close cancels every subscription. Later Subscribe calls get closed channels.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for s := range h.subs {
		h.remove(s)
	}
}

// remove must be called with h.mu held for writing.
func (h *Hub) remove(s *Subscription) {
	if s.done {
		return
	}
	s.done = true
	delete(h.subs, s)
	close(s.events)
	metrics.RealtimeSubscribers.Dec()
}

// Subscription is a cancelable stream of change events.
type Subscription struct {
	hub    *Hub
	filter Filter
	events chan ChangeEvent
	done   bool // guarded by hub.mu
}

// Events is closed once the subscription is canceled.
func (s *Subscription) Events() <-chan ChangeEvent {
	return s.events
}

// Cancel releases the subscription. Safe to call more than once.
func (s *Subscription) Cancel() {
	s.hub.mu.Lock()
	defer s.hub.mu.Unlock()
	s.hub.remove(s)
}
