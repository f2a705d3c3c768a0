package service

import (
	"context"

	"voteledger/internal/ledger/models"
	"voteledger/internal/ledger/store"
	dErrors "voteledger/pkg/domain-errors"
)

// Results returns the election summary with candidates ordered by votes.
func (s *Service) Results(_ context.Context, electionID int) (models.Results, error) {
	var results models.Results
	err := s.ledger.View(func(st *store.State) error {
		r, err := st.Results(electionID)
		results = r
		return err
	})
	if err != nil {
		return models.Results{}, translate(err,
			dErrors.CodeElectionNotFound, "election not found",
			dErrors.CodeInternal, "results lookup failed")
	}
	return results, nil
}
