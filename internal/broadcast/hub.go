package broadcast

import (
	"context"
	"sync"
)

const subscriberBuffer = 32

// Hub is the in-process publisher feeding SSE subscribers. Slow subscribers
// miss events instead of blocking the hub.
type Hub struct {
	mu      sync.RWMutex
	subs    map[uint64]chan Event
	nextID  uint64
	history *RingBuffer
	closed  bool
}

func NewHub(historySize int) *Hub {
	return &Hub{
		subs:    make(map[uint64]chan Event),
		history: NewRingBuffer(historySize),
	}
}

// Publish records the event in history and offers it to every subscriber.
func (h *Hub) Publish(_ context.Context, event Event) error {
	h.history.Enqueue(event)

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.subs {
		select {
		case ch <- event:
		default:
		}
	}
	return nil
}

// Subscribe registers a subscriber. The returned cancel func must be called
// to release it; the channel is closed afterwards.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Event, subscriberBuffer)
	if h.closed {
		close(ch)
		return ch, func() {}
	}
	id := h.nextID
	h.nextID++
	h.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if c, ok := h.subs[id]; ok {
				delete(h.subs, id)
				close(c)
			}
		})
	}
}

// Since replays buffered events newer than seq.
func (h *Hub) Since(seq uint64) []Event {
	return h.history.Since(seq)
}

// Subscribers returns the number of live subscribers.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Close disconnects every subscriber.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for id, ch := range h.subs {
		delete(h.subs, id)
		close(ch)
	}
}
