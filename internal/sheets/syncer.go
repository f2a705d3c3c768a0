package sheets

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"voteledger/pkg/platform/circuit"
)

// DropCounter receives one call per row dropped by a full queue or an open
// breaker.
type DropCounter interface {
	IncrementDropped(queue string)
}

type op struct {
	sheet string
	key   string
	row   Row
}

// Syncer queues row writes and applies them to a Sink on a worker goroutine.
// A circuit breaker skips the sink while it keeps failing.
type Syncer struct {
	sink    Sink
	queue   chan op
	breaker *circuit.Breaker
	logger  *slog.Logger
	drops   DropCounter
	timeout time.Duration

	mu     sync.Mutex
	closed bool
	done   chan struct{}
}

// Option configures a Syncer.
type Option func(*Syncer)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Syncer) { s.logger = logger }
}

func WithDropCounter(c DropCounter) Option {
	return func(s *Syncer) { s.drops = c }
}

func WithBreaker(b *circuit.Breaker) Option {
	return func(s *Syncer) { s.breaker = b }
}

// NewSyncer starts the worker.
func NewSyncer(sink Sink, queueSize int, opts ...Option) *Syncer {
	if queueSize <= 0 {
		queueSize = 512
	}
	s := &Syncer{
		sink:    sink,
		queue:   make(chan op, queueSize),
		breaker: circuit.New("sheets"),
		logger:  slog.Default(),
		timeout: 5 * time.Second,
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	go s.run()
	return s
}

// Append queues an append to sheet.
func (s *Syncer) Append(ctx context.Context, sheet string, row Row) {
	s.enqueue(ctx, op{sheet: sheet, row: row})
}

// Upsert queues an upsert of key in sheet.
func (s *Syncer) Upsert(ctx context.Context, sheet, key string, row Row) {
	s.enqueue(ctx, op{sheet: sheet, key: key, row: row})
}

func (s *Syncer) enqueue(ctx context.Context, o op) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.queue <- o:
	default:
		s.drop()
		s.logger.WarnContext(ctx, "sheet sync queue full, row dropped", "sheet", o.sheet)
	}
}

func (s *Syncer) drop() {
	if s.drops != nil {
		s.drops.IncrementDropped("sheets")
	}
}

func (s *Syncer) run() {
	defer close(s.done)
	for o := range s.queue {
		s.apply(o)
	}
}

func (s *Syncer) apply(o op) {
	if !s.breaker.Allow() {
		s.drop()
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	var err error
	if o.key == "" {
		err = s.sink.AppendRow(ctx, o.sheet, o.row)
	} else {
		err = s.sink.UpsertRow(ctx, o.sheet, o.key, o.row)
	}
	if err != nil {
		if _, change := s.breaker.RecordFailure(); change.Opened {
			s.logger.Error("sheet sync circuit opened", "breaker", s.breaker.Name(), "error", err)
		} else {
			s.logger.Warn("sheet sync failed", "sheet", o.sheet, "error", err)
		}
		return
	}
	if _, change := s.breaker.RecordSuccess(); change.Closed {
		s.logger.Info("sheet sync circuit closed", "breaker", s.breaker.Name())
	}
}

// Close stops accepting rows and waits for the queue to drain or ctx to end.
func (s *Syncer) Close(ctx context.Context) error {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.queue)
	}
	s.mu.Unlock()

	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
