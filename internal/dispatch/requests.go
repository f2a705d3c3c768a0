package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	dErrors "voteledger/pkg/domain-errors"
)

// Action names accepted in the "action" field.
const (
	ActionRegisterVoter      = "registerVoter"
	ActionCreateElection     = "createElection"
	ActionAddCandidate       = "addCandidate"
	ActionCastVote           = "castVote"
	ActionGetActiveElections = "getActiveElections"
	ActionGetCandidates      = "getCandidates"
	ActionGetResults         = "getResults"
	ActionGetStats           = "getStats"
	ActionGetVoter           = "getVoter"
	ActionHasVoted           = "hasVoted"
	ActionGetAuditLog        = "getAuditLog"
)

// Request is one decoded action. Accept routes it to the matching Visitor
// method, so every request type needs a handler to compile.
type Request interface {
	Action() string
	Accept(ctx context.Context, v Visitor) (Response, error)
}

// Response holds the success fields merged into the {"success": true}
// envelope.
type Response map[string]any

// Visitor handles every request type.
type Visitor interface {
	VisitRegisterVoter(ctx context.Context, req *RegisterVoterRequest) (Response, error)
	VisitCreateElection(ctx context.Context, req *CreateElectionRequest) (Response, error)
	VisitAddCandidate(ctx context.Context, req *AddCandidateRequest) (Response, error)
	VisitCastVote(ctx context.Context, req *CastVoteRequest) (Response, error)
	VisitGetActiveElections(ctx context.Context, req *GetActiveElectionsRequest) (Response, error)
	VisitGetCandidates(ctx context.Context, req *GetCandidatesRequest) (Response, error)
	VisitGetResults(ctx context.Context, req *GetResultsRequest) (Response, error)
	VisitGetStats(ctx context.Context, req *GetStatsRequest) (Response, error)
	VisitGetVoter(ctx context.Context, req *GetVoterRequest) (Response, error)
	VisitHasVoted(ctx context.Context, req *HasVotedRequest) (Response, error)
	VisitGetAuditLog(ctx context.Context, req *GetAuditLogRequest) (Response, error)
}

// ID is an integer identifier that also accepts its decimal string form,
// since form-driven clients often send "3" instead of 3.
type ID int

func (id *ID) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*id = 0
		return nil
	}
	if unquoted, err := strconv.Unquote(s); err == nil {
		s = strings.TrimSpace(unquoted)
	}
	if s == "" {
		*id = 0
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return dErrors.New(dErrors.CodeInvalidField, "identifier must be an integer")
	}
	*id = ID(n)
	return nil
}

// Date accepts RFC 3339 timestamps or YYYY-MM-DD dates (midnight UTC).
type Date struct {
	time.Time
}

const dateOnly = "2006-01-02"

func (d *Date) UnmarshalJSON(b []byte) error {
	s, err := strconv.Unquote(strings.TrimSpace(string(b)))
	if err != nil {
		return dErrors.New(dErrors.CodeInvalidField, "date must be a string")
	}
	s = strings.TrimSpace(s)
	if s == "" {
		d.Time = time.Time{}
		return nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		d.Time = t.UTC()
		return nil
	}
	if t, err := time.Parse(dateOnly, s); err == nil {
		d.Time = t
		return nil
	}
	return dErrors.New(dErrors.CodeInvalidField, "date must be RFC 3339 or YYYY-MM-DD")
}

// Ptr returns nil for an absent or empty date.
func (d *Date) Ptr() *time.Time {
	if d == nil || d.IsZero() {
		return nil
	}
	t := d.Time
	return &t
}

type RegisterVoterRequest struct {
	WalletID string `json:"walletId"`
	Name     string `json:"name"`
	IDNumber string `json:"idNumber"`
	Email    string `json:"email"`
}

func (*RegisterVoterRequest) Action() string { return ActionRegisterVoter }
func (r *RegisterVoterRequest) Accept(ctx context.Context, v Visitor) (Response, error) {
	return v.VisitRegisterVoter(ctx, r)
}

type CreateElectionRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	StartDate   *Date  `json:"startDate"`
	EndDate     *Date  `json:"endDate"`
}

func (*CreateElectionRequest) Action() string { return ActionCreateElection }
func (r *CreateElectionRequest) Accept(ctx context.Context, v Visitor) (Response, error) {
	return v.VisitCreateElection(ctx, r)
}

type AddCandidateRequest struct {
	ElectionID ID     `json:"electionId"`
	Name       string `json:"name"`
	Party      string `json:"party"`
}

func (*AddCandidateRequest) Action() string { return ActionAddCandidate }
func (r *AddCandidateRequest) Accept(ctx context.Context, v Visitor) (Response, error) {
	return v.VisitAddCandidate(ctx, r)
}

type CastVoteRequest struct {
	WalletID    string `json:"walletId"`
	ElectionID  ID     `json:"electionId"`
	CandidateID ID     `json:"candidateId"`
	TxHash      string `json:"txHash"`
}

func (*CastVoteRequest) Action() string { return ActionCastVote }
func (r *CastVoteRequest) Accept(ctx context.Context, v Visitor) (Response, error) {
	return v.VisitCastVote(ctx, r)
}

type GetActiveElectionsRequest struct{}

func (*GetActiveElectionsRequest) Action() string { return ActionGetActiveElections }
func (r *GetActiveElectionsRequest) Accept(ctx context.Context, v Visitor) (Response, error) {
	return v.VisitGetActiveElections(ctx, r)
}

type GetCandidatesRequest struct {
	ElectionID ID `json:"electionId"`
}

func (*GetCandidatesRequest) Action() string { return ActionGetCandidates }
func (r *GetCandidatesRequest) Accept(ctx context.Context, v Visitor) (Response, error) {
	return v.VisitGetCandidates(ctx, r)
}

type GetResultsRequest struct {
	ElectionID ID `json:"electionId"`
}

func (*GetResultsRequest) Action() string { return ActionGetResults }
func (r *GetResultsRequest) Accept(ctx context.Context, v Visitor) (Response, error) {
	return v.VisitGetResults(ctx, r)
}

type GetStatsRequest struct{}

func (*GetStatsRequest) Action() string { return ActionGetStats }
func (r *GetStatsRequest) Accept(ctx context.Context, v Visitor) (Response, error) {
	return v.VisitGetStats(ctx, r)
}

type GetVoterRequest struct {
	WalletID string `json:"walletId"`
}

func (*GetVoterRequest) Action() string { return ActionGetVoter }
func (r *GetVoterRequest) Accept(ctx context.Context, v Visitor) (Response, error) {
	return v.VisitGetVoter(ctx, r)
}

type HasVotedRequest struct {
	WalletID   string `json:"walletId"`
	ElectionID ID     `json:"electionId"`
}

func (*HasVotedRequest) Action() string { return ActionHasVoted }
func (r *HasVotedRequest) Accept(ctx context.Context, v Visitor) (Response, error) {
	return v.VisitHasVoted(ctx, r)
}

type GetAuditLogRequest struct {
	Since uint64 `json:"since"`
	Limit int    `json:"limit"`
}

func (*GetAuditLogRequest) Action() string { return ActionGetAuditLog }
func (r *GetAuditLogRequest) Accept(ctx context.Context, v Visitor) (Response, error) {
	return v.VisitGetAuditLog(ctx, r)
}

// route describes how an action is decoded and gated.
type route struct {
	new      func() Request
	admin    bool
	mutating bool
}

var routes = map[string]route{
	ActionRegisterVoter:      {new: func() Request { return &RegisterVoterRequest{} }, mutating: true},
	ActionCreateElection:     {new: func() Request { return &CreateElectionRequest{} }, admin: true, mutating: true},
	ActionAddCandidate:       {new: func() Request { return &AddCandidateRequest{} }, admin: true, mutating: true},
	ActionCastVote:           {new: func() Request { return &CastVoteRequest{} }, mutating: true},
	ActionGetActiveElections: {new: func() Request { return &GetActiveElectionsRequest{} }},
	ActionGetCandidates:      {new: func() Request { return &GetCandidatesRequest{} }},
	ActionGetResults:         {new: func() Request { return &GetResultsRequest{} }},
	ActionGetStats:           {new: func() Request { return &GetStatsRequest{} }},
	ActionGetVoter:           {new: func() Request { return &GetVoterRequest{} }},
	ActionHasVoted:           {new: func() Request { return &HasVotedRequest{} }},
	ActionGetAuditLog:        {new: func() Request { return &GetAuditLogRequest{} }, admin: true},
}

// Actions lists the accepted action names.
func Actions() []string {
	out := make([]string, 0, len(routes))
	for name := range routes {
		out = append(out, name)
	}
	return out
}

// Decode turns a {"action": ..., ...fields} body into its typed request.
func Decode(raw []byte) (Request, error) {
	var envelope struct {
		Action string `json:"action"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "request body is not valid JSON")
	}
	action := strings.TrimSpace(envelope.Action)
	r, ok := routes[action]
	if !ok {
		if action == "" {
			return nil, dErrors.New(dErrors.CodeUnknownAction, "action is required")
		}
		return nil, dErrors.New(dErrors.CodeUnknownAction, "unknown action "+strconv.Quote(action))
	}
	req := r.new()
	if err := json.Unmarshal(raw, req); err != nil {
		var coded *dErrors.Error
		if !errors.As(err, &coded) {
			err = dErrors.Wrap(err, dErrors.CodeBadRequest, "request fields are malformed")
		}
		return nil, &FieldError{Action: action, Err: err}
	}
	return req, nil
}

// FieldError is a known action whose fields did not decode. Err carries the
// coded error.
type FieldError struct {
	Action string
	Err    error
}

func (e *FieldError) Error() string { return e.Err.Error() }

func (e *FieldError) Unwrap() error { return e.Err }

// Mutating reports whether the action would have changed the ledger.
func (e *FieldError) Mutating() bool { return routes[e.Action].mutating }
