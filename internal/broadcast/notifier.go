package broadcast

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DropCounter receives one call per event dropped by a full queue.
type DropCounter interface {
	IncrementDropped(queue string)
}

// Notifier decouples publishing from the request path: Notify never blocks,
// a single worker delivers events in order, and Close drains what is queued.
type Notifier struct {
	publisher Publisher
	queue     chan Event
	logger    *slog.Logger
	drops     DropCounter
	timeout   time.Duration

	mu     sync.Mutex
	seq    uint64
	closed bool
	done   chan struct{}
}

// NotifierOption configures a Notifier.
type NotifierOption func(*Notifier)

func WithLogger(logger *slog.Logger) NotifierOption {
	return func(n *Notifier) { n.logger = logger }
}

func WithDropCounter(c DropCounter) NotifierOption {
	return func(n *Notifier) { n.drops = c }
}

// WithPublishTimeout bounds each delivery.
func WithPublishTimeout(d time.Duration) NotifierOption {
	return func(n *Notifier) { n.timeout = d }
}

// NewNotifier starts the delivery worker.
func NewNotifier(publisher Publisher, queueSize int, opts ...NotifierOption) *Notifier {
	if queueSize <= 0 {
		queueSize = 256
	}
	n := &Notifier{
		publisher: publisher,
		queue:     make(chan Event, queueSize),
		logger:    slog.Default(),
		timeout:   5 * time.Second,
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(n)
	}
	go n.run()
	return n
}

// Notify stamps and queues an event. Returns false when it was dropped.
func (n *Notifier) Notify(ctx context.Context, event Event) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return false
	}
	n.seq++
	event.Sequence = n.seq
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	select {
	case n.queue <- event:
		return true
	default:
		if n.drops != nil {
			n.drops.IncrementDropped("broadcast")
		}
		n.logger.WarnContext(ctx, "broadcast queue full, event dropped",
			"type", event.Type,
			"request_id", event.RequestID,
		)
		return false
	}
}

func (n *Notifier) run() {
	defer close(n.done)
	for event := range n.queue {
		ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
		if err := n.publisher.Publish(ctx, event); err != nil {
			n.logger.Warn("broadcast publish failed",
				"type", event.Type,
				"sequence", event.Sequence,
				"error", err,
			)
		}
		cancel()
	}
}

// Close stops accepting events and waits for the queue to drain or ctx to end.
func (n *Notifier) Close(ctx context.Context) error {
	n.mu.Lock()
	if !n.closed {
		n.closed = true
		close(n.queue)
	}
	n.mu.Unlock()

	select {
	case <-n.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
