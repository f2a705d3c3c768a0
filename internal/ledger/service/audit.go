package service

import (
	"context"

	"voteledger/internal/audit"
)

// AuditPage is a slice of the audit trail plus the chain verification result
// for the whole trail.
type AuditPage struct {
	Entries  []audit.Entry
	Verified bool
}

// AuditLog returns entries with sequence > since, at most limit of them.
func (s *Service) AuditLog(ctx context.Context, since uint64, limit int) AuditPage {
	entries := s.audit.Entries(since, limit)
	if entries == nil {
		entries = []audit.Entry{}
	}
	err := s.audit.Verify()
	if err != nil {
		s.logger.WarnContext(ctx, "audit chain verification failed", "error", err)
	}
	return AuditPage{Entries: entries, Verified: err == nil}
}
