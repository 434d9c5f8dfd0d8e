// internal/session/hub.go
//
// Per-session fan-out of engine events to websocket subscribers.
// Each subscriber owns a buffered queue of encoded envelopes; the hub never
// blocks the engine on a slow reader.

package session

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"

	"github.com/robalobadob/memory/internal/events"
)

const sendBuffer = 256

// subscriber is one outbound queue of encoded envelopes.
type subscriber struct {
	send chan []byte
}

// Hub fans engine events out to every subscriber of a session.
type Hub struct {
	log zerolog.Logger

	mu     sync.Mutex
	subs   map[*subscriber]struct{}
	closed bool
}

// NewHub returns an empty hub.
func NewHub(log zerolog.Logger) *Hub {
	return &Hub{log: log, subs: make(map[*subscriber]struct{})}
}

// Broadcast encodes ev once and queues it for every subscriber. A subscriber
// whose buffer is full is dropped; its connection closes and the client
// resyncs from the snapshot sent on reconnect.
func (h *Hub) Broadcast(ev events.Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		h.log.Error().Err(err).Str("type", string(ev.Type)).Msg("marshal event")
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subs {
		h.offer(sub, data, ev.Type)
	}
}

// Len reports the number of subscribers.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Close drops every subscriber; their send channels are closed.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subs {
		close(sub.send)
		delete(h.subs, sub)
	}
	h.closed = true
}

// subscribe registers a new queue. It returns nil after Close.
func (h *Hub) subscribe() *subscriber {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	sub := &subscriber{send: make(chan []byte, sendBuffer)}
	h.subs[sub] = struct{}{}
	return sub
}

func (h *Hub) unsubscribe(sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[sub]; ok {
		delete(h.subs, sub)
		close(sub.send)
	}
}

// sendTo queues ev for a single subscriber.
func (h *Hub) sendTo(sub *subscriber, ev events.Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		h.log.Error().Err(err).Str("type", string(ev.Type)).Msg("marshal event")
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[sub]; ok {
		h.offer(sub, data, ev.Type)
	}
}

// offer does a non-blocking send and removes sub if it cannot keep up.
// Caller holds h.mu.
func (h *Hub) offer(sub *subscriber, data []byte, typ events.Type) {
	select {
	case sub.send <- data:
	default:
		delete(h.subs, sub)
		close(sub.send)
		h.log.Warn().Str("type", string(typ)).Int("subscribers", len(h.subs)).Msg("subscriber too slow, disconnecting")
	}
}
