package broadcast

import "sync"

// RingBuffer is a bounded, thread-safe history of recent events.
// When full, the oldest events are dropped to make room for new ones.
type RingBuffer struct {
	mu       sync.Mutex
	events   []Event
	head     int // next write position
	count    int
	capacity int
	dropped  int64
}

// NewRingBuffer creates a ring buffer with the given capacity.
func NewRingBuffer(capacity int) *RingBuffer {
	if capacity <= 0 {
		capacity = 100
	}
	return &RingBuffer{
		events:   make([]Event, capacity),
		capacity: capacity,
	}
}

// Enqueue adds an event, dropping the oldest if necessary.
func (b *RingBuffer) Enqueue(event Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.count >= b.capacity {
		b.count--
		b.dropped++
	}
	b.events[b.head] = event
	b.head = (b.head + 1) % b.capacity
	b.count++
}

// Since returns buffered events with a sequence greater than seq, oldest first.
func (b *RingBuffer) Since(seq uint64) []Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]Event, 0, b.count)
	start := (b.head - b.count + b.capacity) % b.capacity
	for i := 0; i < b.count; i++ {
		e := b.events[(start+i)%b.capacity]
		if e.Sequence > seq {
			out = append(out, e)
		}
	}
	return out
}

// Len returns the current number of events in the buffer.
func (b *RingBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count
}

// Dropped returns the total number of evicted events.
func (b *RingBuffer) Dropped() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dropped
}
