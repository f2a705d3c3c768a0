package audit

import "time"

// Outcome of an attempted action.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeError   Outcome = "error"
)

// Action names recorded on entries. They match the dispatch action names so
// the trail reads the same as the request log.
const (
	ActionRegisterVoter  = "registerVoter"
	ActionCreateElection = "createElection"
	ActionAddCandidate   = "addCandidate"
	ActionCastVote       = "castVote"
)

// GenesisHash is the prevHash of the first entry.
const GenesisHash = "0000000000000000000000000000000000000000000000000000000000000000"

// Entry is one immutable line of the audit trail. Sequence is gap-free and
// independent of every other identifier in the system.
type Entry struct {
	Sequence     uint64         `json:"sequence"`
	ID           string         `json:"id"`
	Timestamp    time.Time      `json:"timestamp"`
	Action       string         `json:"action"`
	Actor        string         `json:"actor"`
	Details      map[string]any `json:"details,omitempty"`
	Outcome      Outcome        `json:"outcome"`
	ErrorMessage string         `json:"errorMessage,omitempty"`
	RequestID    string         `json:"requestId,omitempty"`
	Client       string         `json:"client,omitempty"`
	PrevHash     string         `json:"prevHash"`
	Hash         string         `json:"hash"`
}

// Record is what callers hand to Append. The log fills in sequence, id and
// the hash chain.
type Record struct {
	Timestamp    time.Time
	Action       string
	Actor        string
	Details      map[string]any
	Outcome      Outcome
	ErrorMessage string
	RequestID    string
	Client       string
}
