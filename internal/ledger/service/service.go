// Package service implements the ledger operations: voter registration,
// election and candidate management, vote casting, tallies and statistics.
// Every mutation validates and commits under the ledger write lock, then
// appends an audit entry, flushes a snapshot and hands the change to the
// async broadcast and sheet sync queues.
package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"voteledger/internal/audit"
	"voteledger/internal/broadcast"
	"voteledger/internal/ledger/store"
	"voteledger/internal/persistence"
	"voteledger/internal/platform/metrics"
	"voteledger/internal/sheets"
	"voteledger/pkg/attrs"
	dErrors "voteledger/pkg/domain-errors"
	"voteledger/pkg/platform/middleware/device"
	"voteledger/pkg/platform/sentinel"
	"voteledger/pkg/requestcontext"
)

// AuditLog is the append-only trail of attempted actions.
type AuditLog interface {
	Append(ctx context.Context, rec audit.Record) audit.Entry
	Entries(since uint64, limit int) []audit.Entry
	Snapshot() []audit.Entry
	Restore(entries []audit.Entry)
	Verify() error
	LastSequence() uint64
}

// Persister stores the ledger snapshot.
type Persister interface {
	Load(ctx context.Context) (persistence.Snapshot, error)
	Save(ctx context.Context, snap persistence.Snapshot) error
}

// Notifier queues broadcast events without blocking.
type Notifier interface {
	Notify(ctx context.Context, event broadcast.Event) bool
}

// SheetSync queues spreadsheet row writes without blocking.
type SheetSync interface {
	Append(ctx context.Context, sheet string, row sheets.Row)
	Upsert(ctx context.Context, sheet, key string, row sheets.Row)
}

// Policy holds the opt-in vote rules. Both are off by default.
type Policy struct {
	// RequireRegistration rejects votes from unknown wallets.
	RequireRegistration bool
	// EnforceWindow rejects votes outside [startAt, endAt].
	EnforceWindow bool
}

// flushMark identifies the state captured by a snapshot.
type flushMark struct {
	ledger uint64
	audit  uint64
}

// Service orchestrates the ledger.
type Service struct {
	ledger    *store.Ledger
	audit     AuditLog
	persister Persister
	notifier  Notifier
	sheets    SheetSync
	logger    *slog.Logger
	metrics   *metrics.Metrics
	policy    Policy

	statsDays    int
	statsMinutes int

	persistMu   sync.Mutex
	flushed     flushMark
	baseVersion uint64
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithPersister(p Persister) Option {
	return func(s *Service) {
		s.persister = p
	}
}

func WithNotifier(n Notifier) Option {
	return func(s *Service) {
		s.notifier = n
	}
}

func WithSheetSync(sync SheetSync) Option {
	return func(s *Service) {
		s.sheets = sync
	}
}

func WithPolicy(p Policy) Option {
	return func(s *Service) {
		s.policy = p
	}
}

// WithStatsWindow sets the day and minute series lengths.
func WithStatsWindow(days, minutes int) Option {
	return func(s *Service) {
		if days > 0 {
			s.statsDays = days
		}
		if minutes > 0 {
			s.statsMinutes = minutes
		}
	}
}

// New constructs a Service over ledger and auditLog.
func New(ledger *store.Ledger, auditLog AuditLog, opts ...Option) (*Service, error) {
	if ledger == nil {
		return nil, errors.New("ledger is required")
	}
	if auditLog == nil {
		return nil, errors.New("audit log is required")
	}
	s := &Service{
		ledger:       ledger,
		audit:        auditLog,
		logger:       slog.Default(),
		statsDays:    7,
		statsMinutes: 60,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// -----------------------------------------------------------------------------
// Audit trail
// -----------------------------------------------------------------------------

func (s *Service) recordSuccess(ctx context.Context, action, actor string, attributes ...any) {
	s.appendAudit(ctx, action, actor, audit.OutcomeSuccess, "", attributes)
	s.logger.InfoContext(ctx, action,
		"outcome", audit.OutcomeSuccess,
		"actor", actor,
		"request_id", requestcontext.RequestID(ctx),
		"log_type", "audit",
	)
}

// recordFailure audits a rejected attempt, counts it and returns err.
func (s *Service) recordFailure(ctx context.Context, action, actor string, err error, attributes ...any) error {
	code := dErrors.CodeOf(err)
	s.appendAudit(ctx, action, actor, audit.OutcomeError, err.Error(), append(attributes, "code", string(code)))
	s.metrics.IncrementRejection(action, string(code))

	level := slog.LevelInfo
	if code == dErrors.CodeInternal {
		level = slog.LevelError
	}
	s.logger.Log(ctx, level, action,
		"outcome", audit.OutcomeError,
		"actor", actor,
		"code", code,
		"error", err,
		"request_id", requestcontext.RequestID(ctx),
		"log_type", "audit",
	)
	return err
}

// RecordDenied audits an action refused before it reached the ledger, such
// as an admin action without a valid token.
func (s *Service) RecordDenied(ctx context.Context, action string, err error) {
	_ = s.recordFailure(ctx, action, actorFromContext(ctx, "anonymous"), err)
}

func (s *Service) appendAudit(ctx context.Context, action, actor string, outcome audit.Outcome, msg string, attributes []any) {
	s.audit.Append(ctx, audit.Record{
		Timestamp:    requestcontext.Now(ctx),
		Action:       action,
		Actor:        actor,
		Details:      attrs.ToMap(attributes),
		Outcome:      outcome,
		ErrorMessage: msg,
		RequestID:    requestcontext.RequestID(ctx),
		Client:       device.Describe(ctx),
	})
}

// actorFromContext returns the admin subject when present.
func actorFromContext(ctx context.Context, fallback string) string {
	if subject, ok := requestcontext.Admin(ctx); ok && subject != "" {
		return subject
	}
	return fallback
}

// -----------------------------------------------------------------------------
// Fan-out
// -----------------------------------------------------------------------------

// Fan-out is queued from inside ledger.Update so queue order matches commit
// order. Notifier and SheetSync implementations must not block.

func (s *Service) notify(ctx context.Context, eventType string, data any) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(ctx, broadcast.Event{
		Type:      eventType,
		Timestamp: requestcontext.Now(ctx),
		RequestID: requestcontext.RequestID(ctx),
		Data:      data,
	})
}

func (s *Service) syncAppend(ctx context.Context, sheet string, row sheets.Row) {
	if s.sheets != nil {
		s.sheets.Append(ctx, sheet, row)
	}
}

func (s *Service) syncUpsert(ctx context.Context, sheet, key string, row sheets.Row) {
	if s.sheets != nil {
		s.sheets.Upsert(ctx, sheet, key, row)
	}
}

// -----------------------------------------------------------------------------
// Error translation
// -----------------------------------------------------------------------------

func translate(err error, notFound dErrors.Code, notFoundMsg string, conflict dErrors.Code, conflictMsg string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(notFound, notFoundMsg)
	case errors.Is(err, sentinel.ErrAlreadyUsed):
		return dErrors.New(conflict, conflictMsg)
	default:
		var de *dErrors.Error
		if errors.As(err, &de) {
			return err
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "ledger operation failed")
	}
}
