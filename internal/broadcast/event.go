// Package broadcast fans committed ledger changes out to real-time
// subscribers. Delivery is advisory: a failed or slow publisher never affects
// the ledger.
package broadcast

import (
	"context"
	"time"
)

// Event types.
const (
	EventVoterRegistered = "voterRegistered"
	EventElectionCreated = "electionCreated"
	EventCandidateAdded  = "candidateAdded"
	EventVoteCast        = "voteCast"
)

// Event is one broadcast message. Sequence is assigned by the Notifier and
// lets SSE clients resume with Last-Event-ID.
type Event struct {
	Sequence  uint64    `json:"sequence"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"requestId,omitempty"`
	Data      any       `json:"data"`
}

// Publisher delivers an event to one destination.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}
