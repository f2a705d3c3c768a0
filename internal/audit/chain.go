package audit

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// canonical is the hashed view of an entry. Field order is fixed by the
// struct and map keys are sorted by encoding/json.
type canonical struct {
	Sequence     uint64         `json:"sequence"`
	ID           string         `json:"id"`
	Timestamp    string         `json:"timestamp"`
	Action       string         `json:"action"`
	Actor        string         `json:"actor"`
	Details      map[string]any `json:"details,omitempty"`
	Outcome      Outcome        `json:"outcome"`
	ErrorMessage string         `json:"errorMessage,omitempty"`
	RequestID    string         `json:"requestId,omitempty"`
	Client       string         `json:"client,omitempty"`
}

// computeHash returns hex(sha256(prevHash || canonical(entry))).
func computeHash(e Entry) (string, error) {
	body, err := json.Marshal(canonical{
		Sequence:     e.Sequence,
		ID:           e.ID,
		Timestamp:    e.Timestamp.UTC().Format(time.RFC3339Nano),
		Action:       e.Action,
		Actor:        e.Actor,
		Details:      e.Details,
		Outcome:      e.Outcome,
		ErrorMessage: e.ErrorMessage,
		RequestID:    e.RequestID,
		Client:       e.Client,
	})
	if err != nil {
		return "", fmt.Errorf("canonicalize audit entry %d: %w", e.Sequence, err)
	}
	h := sha256.New()
	h.Write([]byte(e.PrevHash))
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil)), nil
}

// ChainError reports the first entry whose linkage or content does not match.
type ChainError struct {
	Sequence uint64
	Reason   string
}

func (e *ChainError) Error() string {
	return fmt.Sprintf("audit chain broken at sequence %d: %s", e.Sequence, e.Reason)
}

// VerifyEntries walks entries in order and checks sequence continuity,
// prevHash linkage and each hash.
func VerifyEntries(entries []Entry) error {
	prev := GenesisHash
	var expectSeq uint64
	for i, e := range entries {
		if i == 0 {
			expectSeq = e.Sequence
		}
		if e.Sequence != expectSeq {
			return &ChainError{Sequence: e.Sequence, Reason: fmt.Sprintf("expected sequence %d", expectSeq)}
		}
		if i > 0 || e.Sequence == 1 {
			if e.PrevHash != prev {
				return &ChainError{Sequence: e.Sequence, Reason: "prevHash does not match previous entry"}
			}
		}
		want, err := computeHash(e)
		if err != nil {
			return &ChainError{Sequence: e.Sequence, Reason: err.Error()}
		}
		if want != e.Hash {
			return &ChainError{Sequence: e.Sequence, Reason: "content hash mismatch"}
		}
		prev = e.Hash
		expectSeq++
	}
	return nil
}
