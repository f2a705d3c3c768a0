// Package audit keeps the append-only, hash-chained trail of every attempted
// ledger action. The trail is informational; ledger state is never rebuilt
// from it.
package audit

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Log is the in-memory audit trail. Sequence assignment and chaining happen
// under its own mutex, independent of the ledger lock.
type Log struct {
	mu       sync.RWMutex
	entries  []Entry
	lastHash string
	nextSeq  uint64
	logger   *slog.Logger
	now      func() time.Time
}

// Option configures a Log.
type Option func(*Log)

// WithLogger sets the logger used for internal failures.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Log) {
		l.logger = logger
	}
}

// WithClock overrides the timestamp source for records without one.
func WithClock(now func() time.Time) Option {
	return func(l *Log) {
		l.now = now
	}
}

func NewLog(opts ...Option) *Log {
	l := &Log{
		lastHash: GenesisHash,
		nextSeq:  1,
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Append records rec and returns the stored entry. It never fails from the
// caller's point of view; hashing problems are logged and the entry is kept
// with an empty hash so the sequence stays gap-free.
func (l *Log) Append(ctx context.Context, rec Record) Entry {
	if rec.Timestamp.IsZero() {
		rec.Timestamp = l.now()
	}
	if rec.Outcome == "" {
		rec.Outcome = OutcomeSuccess
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	e := Entry{
		Sequence:     l.nextSeq,
		ID:           uuid.NewString(),
		Timestamp:    rec.Timestamp.UTC(),
		Action:       rec.Action,
		Actor:        rec.Actor,
		Details:      rec.Details,
		Outcome:      rec.Outcome,
		ErrorMessage: rec.ErrorMessage,
		RequestID:    rec.RequestID,
		Client:       rec.Client,
		PrevHash:     l.lastHash,
	}
	hash, err := computeHash(e)
	if err != nil {
		l.logger.ErrorContext(ctx, "audit entry hashing failed",
			"sequence", e.Sequence,
			"action", e.Action,
			"error", err,
			"request_id", rec.RequestID,
		)
	}
	e.Hash = hash
	l.entries = append(l.entries, e)
	l.nextSeq++
	l.lastHash = hash
	return e
}

// Entries returns up to limit entries with sequence greater than since.
// limit <= 0 means no limit.
func (l *Log) Entries(since uint64, limit int) []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	start := 0
	if len(l.entries) > 0 {
		first := l.entries[0].Sequence
		if since >= first {
			start = int(since - first + 1)
		}
	}
	if start >= len(l.entries) {
		return []Entry{}
	}
	end := len(l.entries)
	if limit > 0 && start+limit < end {
		end = start + limit
	}
	out := make([]Entry, end-start)
	copy(out, l.entries[start:end])
	return out
}

// Snapshot returns a copy of the whole trail.
func (l *Log) Snapshot() []Entry {
	return l.Entries(0, 0)
}

// Len reports the number of entries.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// LastSequence returns the sequence of the newest entry, 0 when empty.
func (l *Log) LastSequence() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.nextSeq - 1
}

// Restore replaces the trail with entries loaded from a snapshot. The next
// sequence continues after the highest restored one.
func (l *Log) Restore(entries []Entry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append([]Entry(nil), entries...)
	l.nextSeq = 1
	l.lastHash = GenesisHash
	if n := len(l.entries); n > 0 {
		last := l.entries[n-1]
		l.nextSeq = last.Sequence + 1
		l.lastHash = last.Hash
	}
}

// Verify checks the whole chain. The returned error is a *ChainError.
func (l *Log) Verify() error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if err := VerifyEntries(l.entries); err != nil {
		return fmt.Errorf("verify audit log: %w", err)
	}
	return nil
}
