// Package realtime fans domain events out to connected clients.
package realtime

import (
	"context"
	"encoding/json"
	"sync"

	"skillsprint/core"
)

type subscriber struct {
	ch   chan core.Event
	user core.UserID // empty means all users
}

// Hub is a simple pub/sub for broadcasting events to channels. Slow
// receivers drop events rather than blocking the broadcaster.
type Hub struct {
	mu   sync.RWMutex
	subs map[int]subscriber
	next int
}

func NewHub() *Hub { return &Hub{subs: map[int]subscriber{}} }

// Subscribe registers a receiver for every event.
func (h *Hub) Subscribe(buffer int) (int, <-chan core.Event) {
	return h.subscribe("", buffer)
}

// SubscribeUser registers a receiver for a single learner's events.
func (h *Hub) SubscribeUser(user core.UserID, buffer int) (int, <-chan core.Event) {
	return h.subscribe(user, buffer)
}

func (h *Hub) subscribe(user core.UserID, buffer int) (int, <-chan core.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.next++
	id := h.next
	ch := make(chan core.Event, buffer)
	h.subs[id] = subscriber{ch: ch, user: user}
	return id, ch
}

func (h *Hub) Unsubscribe(id int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if sub, ok := h.subs[id]; ok {
		delete(h.subs, id)
		close(sub.ch)
	}
}

func (h *Hub) Broadcast(_ context.Context, ev core.Event) {
	h.mu.RLock()
	// copy to avoid holding lock during send
	receivers := make([]subscriber, 0, len(h.subs))
	for _, sub := range h.subs {
		receivers = append(receivers, sub)
	}
	h.mu.RUnlock()
	for _, sub := range receivers {
		if sub.user != "" && sub.user != ev.UserID {
			continue
		}
		select {
		case sub.ch <- ev:
		default: /* drop if full */
		}
	}
}

// MarshalJSON is a helper to convert events to JSON bytes for WebSocket/SSE.
func MarshalJSON(ev core.Event) []byte {
	b, _ := json.Marshal(ev)
	return b
}
