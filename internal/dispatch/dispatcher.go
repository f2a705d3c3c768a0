// Package dispatch decodes action requests into typed variants and routes
// them to the ledger service. Admin-only actions are gated here.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"voteledger/internal/ledger/models"
	"voteledger/internal/ledger/service"
	"voteledger/internal/platform/metrics"
	dErrors "voteledger/pkg/domain-errors"
	"voteledger/pkg/requestcontext"
)

// Ledger is the subset of the ledger service the dispatcher drives.
type Ledger interface {
	RegisterVoter(ctx context.Context, in service.RegisterVoterInput) (models.Voter, error)
	CreateElection(ctx context.Context, in service.CreateElectionInput) (models.Election, error)
	AddCandidate(ctx context.Context, in service.AddCandidateInput) (models.Candidate, error)
	CastVote(ctx context.Context, in service.CastVoteInput) (service.VoteReceipt, error)
	ListActiveElections(ctx context.Context) []models.Election
	ListCandidates(ctx context.Context, electionID int) ([]models.Candidate, error)
	Results(ctx context.Context, electionID int) (models.Results, error)
	Stats(ctx context.Context) models.Stats
	FindVoter(ctx context.Context, walletID string) (models.Voter, bool)
	HasVoted(ctx context.Context, walletID string, electionID int) (bool, error)
	AuditLog(ctx context.Context, since uint64, limit int) service.AuditPage
	RecordDenied(ctx context.Context, action string, err error)
}

// Dispatcher implements Visitor over a Ledger.
type Dispatcher struct {
	ledger  Ledger
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

var _ Visitor = (*Dispatcher)(nil)

type Option func(*Dispatcher)

func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(d *Dispatcher) {
		d.metrics = m
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(d *Dispatcher) {
		d.tracer = t
	}
}

func New(ledger Ledger, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		ledger: ledger,
		logger: slog.Default(),
		tracer: otel.Tracer("voteledger/dispatch"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DispatchRaw decodes raw and dispatches it. The action name is returned
// even on failure when it could be decoded.
func (d *Dispatcher) DispatchRaw(ctx context.Context, raw []byte) (string, Response, error) {
	req, err := Decode(raw)
	if err != nil {
		// A mutation attempt is audited by the ledger, which also counts it.
		var fieldErr *FieldError
		if errors.As(err, &fieldErr) && fieldErr.Mutating() {
			d.ledger.RecordDenied(ctx, fieldErr.Action, err)
			return fieldErr.Action, nil, err
		}
		code := dErrors.CodeOf(err)
		d.metrics.IncrementRejection("decode", string(code))
		d.logger.InfoContext(ctx, "request rejected",
			"code", code,
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		return "", nil, err
	}
	resp, err := d.Dispatch(ctx, req)
	return req.Action(), resp, err
}

// Dispatch runs one typed request. Panics are reported as Internal.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) (resp Response, err error) {
	action := req.Action()
	r := routes[action]
	start := time.Now()

	ctx, span := d.tracer.Start(ctx, "dispatch "+action, trace.WithAttributes(
		attribute.String("ledger.action", action),
		attribute.Bool("ledger.admin_action", r.admin),
	))
	defer func() {
		if rec := recover(); rec != nil {
			d.logger.ErrorContext(ctx, "panic in action handler",
				"action", action,
				"panic", fmt.Sprint(rec),
				"request_id", requestcontext.RequestID(ctx),
			)
			resp, err = nil, dErrors.New(dErrors.CodeInternal, "internal error")
		}
		if err != nil {
			code := dErrors.CodeOf(err)
			span.SetAttributes(attribute.String("ledger.error_code", string(code)))
			span.SetStatus(codes.Error, string(code))
			// Mutations count their own rejections when they audit them.
			if !r.mutating {
				d.metrics.IncrementRejection(action, string(code))
			}
		}
		span.End()
		d.metrics.ObserveDispatch(action, start)
	}()

	if r.admin {
		if _, ok := requestcontext.Admin(ctx); !ok {
			err := dErrors.New(dErrors.CodeUnauthorized, "admin token required")
			if r.mutating {
				d.ledger.RecordDenied(ctx, action, err)
			}
			return nil, err
		}
	}
	return req.Accept(ctx, d)
}

func (d *Dispatcher) VisitRegisterVoter(ctx context.Context, req *RegisterVoterRequest) (Response, error) {
	voter, err := d.ledger.RegisterVoter(ctx, service.RegisterVoterInput{
		WalletID:   req.WalletID,
		Name:       req.Name,
		ExternalID: req.IDNumber,
		Email:      req.Email,
	})
	if err != nil {
		return nil, err
	}
	return Response{"voter": voter}, nil
}

func (d *Dispatcher) VisitCreateElection(ctx context.Context, req *CreateElectionRequest) (Response, error) {
	election, err := d.ledger.CreateElection(ctx, service.CreateElectionInput{
		Title:       req.Title,
		Description: req.Description,
		StartAt:     req.StartDate.Ptr(),
		EndAt:       req.EndDate.Ptr(),
	})
	if err != nil {
		return nil, err
	}
	return Response{"electionId": election.ElectionID, "election": election}, nil
}

func (d *Dispatcher) VisitAddCandidate(ctx context.Context, req *AddCandidateRequest) (Response, error) {
	candidate, err := d.ledger.AddCandidate(ctx, service.AddCandidateInput{
		ElectionID:  int(req.ElectionID),
		Name:        req.Name,
		Affiliation: req.Party,
	})
	if err != nil {
		return nil, err
	}
	return Response{"candidateId": candidate.CandidateID, "candidate": candidate}, nil
}

func (d *Dispatcher) VisitCastVote(ctx context.Context, req *CastVoteRequest) (Response, error) {
	receipt, err := d.ledger.CastVote(ctx, service.CastVoteInput{
		WalletID:      req.WalletID,
		ElectionID:    int(req.ElectionID),
		CandidateID:   int(req.CandidateID),
		ExternalTxRef: req.TxHash,
	})
	if err != nil {
		return nil, err
	}
	return Response{"vote": receipt.Vote, "results": receipt.Results}, nil
}

func (d *Dispatcher) VisitGetActiveElections(ctx context.Context, _ *GetActiveElectionsRequest) (Response, error) {
	return Response{"elections": d.ledger.ListActiveElections(ctx)}, nil
}

func (d *Dispatcher) VisitGetCandidates(ctx context.Context, req *GetCandidatesRequest) (Response, error) {
	if req.ElectionID == 0 {
		return nil, dErrors.New(dErrors.CodeMissingParameters, "electionId is required")
	}
	candidates, err := d.ledger.ListCandidates(ctx, int(req.ElectionID))
	if err != nil {
		return nil, err
	}
	return Response{"candidates": candidates}, nil
}

func (d *Dispatcher) VisitGetResults(ctx context.Context, req *GetResultsRequest) (Response, error) {
	if req.ElectionID == 0 {
		return nil, dErrors.New(dErrors.CodeMissingParameters, "electionId is required")
	}
	results, err := d.ledger.Results(ctx, int(req.ElectionID))
	if err != nil {
		return nil, err
	}
	return Response{"election": results.Election, "candidates": results.Candidates}, nil
}

func (d *Dispatcher) VisitGetStats(ctx context.Context, _ *GetStatsRequest) (Response, error) {
	stats := d.ledger.Stats(ctx)
	return Response{
		"totals":        stats.Totals,
		"participation": stats.Participation,
		"series": map[string]any{
			"registrationsPerDay": stats.RegistrationsPerDay,
			"votesPerDay":         stats.VotesPerDay,
			"votesPerMinute":      stats.VotesPerMinute,
		},
		"electionParticipation": stats.ElectionParticipation,
	}, nil
}

func (d *Dispatcher) VisitGetVoter(ctx context.Context, req *GetVoterRequest) (Response, error) {
	if req.WalletID == "" {
		return nil, dErrors.New(dErrors.CodeMissingParameters, "walletId is required")
	}
	voter, found := d.ledger.FindVoter(ctx, req.WalletID)
	if !found {
		return Response{"registered": false}, nil
	}
	return Response{"registered": true, "voter": voter}, nil
}

func (d *Dispatcher) VisitHasVoted(ctx context.Context, req *HasVotedRequest) (Response, error) {
	voted, err := d.ledger.HasVoted(ctx, req.WalletID, int(req.ElectionID))
	if err != nil {
		return nil, err
	}
	return Response{"hasVoted": voted}, nil
}

func (d *Dispatcher) VisitGetAuditLog(ctx context.Context, req *GetAuditLogRequest) (Response, error) {
	page := d.ledger.AuditLog(ctx, req.Since, req.Limit)
	return Response{"entries": page.Entries, "verified": page.Verified}, nil
}
