// Package persistence stores the whole ledger as one versioned JSON snapshot.
// Backends only move bytes; the codec lives here so every backend writes the
// same document.
package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"voteledger/internal/audit"
	"voteledger/internal/ledger/store"
	"voteledger/pkg/platform/sentinel"
)

// Snapshot is the persisted document:
// {version, savedAt, voters, elections, candidates, votes, audit}.
type Snapshot struct {
	Version uint64    `json:"version"`
	SavedAt time.Time `json:"savedAt"`
	store.Data
	Audit []audit.Entry `json:"audit"`
}

// Persister loads and saves snapshots. Load returns sentinel.ErrNotFound when
// nothing was saved yet and sentinel.ErrCorrupt when the stored bytes cannot
// be decoded.
type Persister interface {
	Load(ctx context.Context) (Snapshot, error)
	Save(ctx context.Context, snap Snapshot) error
}

// Encode renders snap as indented JSON.
func Encode(snap Snapshot) ([]byte, error) {
	raw, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return raw, nil
}

// CorruptError reports a stored snapshot that cannot be decoded. Version is
// the stored version when the backend or the document still reveals it, so a
// fresh ledger can number its snapshots past the unreadable one.
type CorruptError struct {
	Version uint64
	Err     error
}

func (e *CorruptError) Error() string {
	return "decode snapshot: " + e.Err.Error()
}

func (e *CorruptError) Unwrap() []error {
	return []error{e.Err, sentinel.ErrCorrupt}
}

// StoredVersion returns the version carried by a CorruptError in err's chain.
func StoredVersion(err error) uint64 {
	var ce *CorruptError
	if errors.As(err, &ce) {
		return ce.Version
	}
	return 0
}

// Decode parses raw. Empty or malformed input is reported as a *CorruptError,
// which matches sentinel.ErrCorrupt.
func Decode(raw []byte) (Snapshot, error) {
	var snap Snapshot
	if len(raw) == 0 {
		return snap, &CorruptError{Err: errors.New("empty document")}
	}
	if err := json.Unmarshal(raw, &snap); err != nil {
		var head struct {
			Version uint64 `json:"version"`
		}
		_ = json.Unmarshal(raw, &head)
		return Snapshot{}, &CorruptError{Version: head.Version, Err: err}
	}
	return snap, nil
}
