package service

import (
	"context"
	"errors"
	"time"

	"voteledger/internal/persistence"
	dErrors "voteledger/pkg/domain-errors"
	"voteledger/pkg/platform/sentinel"
)

// Snapshot captures the ledger and the audit trail as one document.
func (s *Service) Snapshot(_ context.Context) persistence.Snapshot {
	trail := s.audit.Snapshot()
	data, version := s.ledger.Export()
	return persistence.Snapshot{
		Version: s.baseVersion + version,
		SavedAt: time.Now().UTC(),
		Data:    data,
		Audit:   trail,
	}
}

// Restore loads the persisted snapshot into the ledger and audit trail. A
// missing, undecodable or inconsistent snapshot leaves the system empty.
// Only an unreachable backend is reported to the caller.
func (s *Service) Restore(ctx context.Context) error {
	if s.persister == nil {
		return nil
	}
	snap, err := s.persister.Load(ctx)
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		s.logger.InfoContext(ctx, "no snapshot found, starting empty")
		return nil
	case errors.Is(err, sentinel.ErrCorrupt):
		s.logger.WarnContext(ctx, "snapshot is corrupt, starting empty", "error", err)
		s.startEmptyAfter(persistence.StoredVersion(err))
		return nil
	case err != nil:
		return err
	}

	if err := s.ledger.Restore(snap.Data); err != nil {
		s.logger.WarnContext(ctx, "snapshot is inconsistent, starting empty", "error", err)
		s.startEmptyAfter(snap.Version)
		return nil
	}
	s.audit.Restore(snap.Audit)
	if err := s.audit.Verify(); err != nil {
		s.logger.WarnContext(ctx, "audit chain verification failed", "error", err)
	}

	s.persistMu.Lock()
	s.baseVersion = snap.Version
	s.flushed = flushMark{ledger: s.ledger.Version(), audit: s.audit.LastSequence()}
	s.persistMu.Unlock()

	s.logger.InfoContext(ctx, "snapshot restored",
		"version", snap.Version,
		"voters", len(snap.Voters),
		"elections", len(snap.Elections),
		"votes", len(snap.Votes),
		"audit_entries", len(snap.Audit),
	)
	return nil
}

// startEmptyAfter numbers the snapshots of an empty ledger past a rejected
// stored one, so backends that refuse older versions accept the next flush.
func (s *Service) startEmptyAfter(storedVersion uint64) {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()
	s.baseVersion = storedVersion
	s.flushed = flushMark{}
}

// Flush writes the current state if it has not been written yet. Used on
// shutdown so trailing failed attempts reach the audit file.
func (s *Service) Flush(ctx context.Context) error {
	return s.flush(ctx)
}

// persist is the write-through step after a committed mutation. Failures are
// logged and counted only; the next flush supersedes them.
func (s *Service) persist(ctx context.Context) {
	_ = s.flush(ctx)
}

func (s *Service) flush(ctx context.Context) error {
	if s.persister == nil {
		return nil
	}
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	snap := s.Snapshot(ctx)
	mark := flushMark{ledger: snap.Version - s.baseVersion, audit: lastSequence(snap)}
	if mark.ledger <= s.flushed.ledger && mark.audit <= s.flushed.audit {
		return nil
	}

	start := time.Now()
	err := s.persister.Save(ctx, snap)
	s.metrics.ObservePersist(start, err)
	if err != nil {
		s.logger.ErrorContext(ctx, "snapshot flush failed",
			"version", snap.Version,
			"error", err,
			"code", dErrors.CodePersistenceFailure,
		)
		return err
	}
	s.flushed = mark
	return nil
}

func lastSequence(snap persistence.Snapshot) uint64 {
	if n := len(snap.Audit); n > 0 {
		return snap.Audit[n-1].Sequence
	}
	return 0
}
