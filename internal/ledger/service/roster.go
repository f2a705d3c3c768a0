package service

import (
	"context"
	"strings"

	"voteledger/internal/audit"
	"voteledger/internal/broadcast"
	"voteledger/internal/ledger/models"
	"voteledger/internal/ledger/store"
	"voteledger/internal/sheets"
	dErrors "voteledger/pkg/domain-errors"
)

// AddCandidateInput carries the fields of a roster addition.
type AddCandidateInput struct {
	ElectionID  int
	Name        string
	Affiliation string
}

// AddCandidate appends a candidate to an election's roster. Candidate ids are
// dense within the election.
func (s *Service) AddCandidate(ctx context.Context, in AddCandidateInput) (models.Candidate, error) {
	action := audit.ActionAddCandidate
	actor := actorFromContext(ctx, "system")
	name := strings.TrimSpace(in.Name)

	candidate := models.Candidate{
		ElectionID:  in.ElectionID,
		Name:        name,
		Affiliation: strings.TrimSpace(in.Affiliation),
	}
	_, err := s.ledger.Update(func(st *store.State) error {
		if _, err := st.Election(in.ElectionID); err != nil {
			return dErrors.New(dErrors.CodeElectionNotFound, "election not found")
		}
		if name == "" {
			return dErrors.New(dErrors.CodeMissingField, "name is required")
		}
		candidate.CandidateID = st.NextCandidateID(in.ElectionID)
		if err := st.InsertCandidate(candidate); err != nil {
			return err
		}
		s.notify(ctx, broadcast.EventCandidateAdded, candidate)
		key, row := sheets.CandidateRow(candidate)
		s.syncUpsert(ctx, sheets.SheetCandidates, key, row)
		return nil
	})
	if err != nil {
		err = translate(err,
			dErrors.CodeElectionNotFound, "election not found",
			dErrors.CodeInternal, "candidate id collision")
		return models.Candidate{}, s.recordFailure(ctx, action, actor, err, "election_id", in.ElectionID)
	}

	s.recordSuccess(ctx, action, actor,
		"election_id", candidate.ElectionID,
		"candidate_id", candidate.CandidateID,
		"name", name,
	)
	s.metrics.IncrementCandidatesAdded()
	s.persist(ctx)
	return candidate, nil
}

// ListCandidates returns an election's roster in insertion order.
func (s *Service) ListCandidates(_ context.Context, electionID int) ([]models.Candidate, error) {
	var candidates []models.Candidate
	err := s.ledger.View(func(st *store.State) error {
		if _, err := st.Election(electionID); err != nil {
			return err
		}
		candidates = st.Candidates(electionID)
		return nil
	})
	if err != nil {
		return nil, translate(err,
			dErrors.CodeElectionNotFound, "election not found",
			dErrors.CodeInternal, "candidate lookup failed")
	}
	if candidates == nil {
		candidates = []models.Candidate{}
	}
	return candidates, nil
}

// ListAllCandidates returns every candidate grouped by election.
func (s *Service) ListAllCandidates(_ context.Context) []models.Candidate {
	var candidates []models.Candidate
	_ = s.ledger.View(func(st *store.State) error {
		candidates = st.AllCandidates()
		return nil
	})
	return candidates
}
