package service

import (
	"context"
	"strings"
	"time"

	"voteledger/internal/audit"
	"voteledger/internal/broadcast"
	"voteledger/internal/ledger/models"
	"voteledger/internal/ledger/store"
	"voteledger/internal/sheets"
	dErrors "voteledger/pkg/domain-errors"
	"voteledger/pkg/requestcontext"
)

// CreateElectionInput carries the fields of an election definition. Absent
// bounds leave the window open on that side.
type CreateElectionInput struct {
	Title       string
	Description string
	StartAt     *time.Time
	EndAt       *time.Time
}

// CreateElection adds an election with the next id. Admin gating happens in
// dispatch; the admin subject, when present, is recorded as the actor.
func (s *Service) CreateElection(ctx context.Context, in CreateElectionInput) (models.Election, error) {
	action := audit.ActionCreateElection
	actor := actorFromContext(ctx, "system")

	title := strings.TrimSpace(in.Title)
	if title == "" {
		err := dErrors.New(dErrors.CodeMissingField, "title is required")
		return models.Election{}, s.recordFailure(ctx, action, actor, err)
	}
	if in.StartAt != nil && in.EndAt != nil && in.EndAt.Before(*in.StartAt) {
		err := dErrors.New(dErrors.CodeInvalidField, "endDate is before startDate")
		return models.Election{}, s.recordFailure(ctx, action, actor, err, "title", title)
	}

	election := models.Election{
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		StartAt:     utcPtr(in.StartAt),
		EndAt:       utcPtr(in.EndAt),
		Status:      models.ElectionStatusActive,
		CreatedAt:   requestcontext.Now(ctx).UTC(),
	}
	_, err := s.ledger.Update(func(st *store.State) error {
		election.ElectionID = st.NextElectionID()
		if err := st.InsertElection(election); err != nil {
			return err
		}
		s.notify(ctx, broadcast.EventElectionCreated, election)
		key, row := sheets.ElectionRow(election)
		s.syncUpsert(ctx, sheets.SheetElections, key, row)
		return nil
	})
	if err != nil {
		err = translate(err,
			dErrors.CodeInternal, "election could not be stored",
			dErrors.CodeInternal, "election id collision")
		return models.Election{}, s.recordFailure(ctx, action, actor, err, "title", title)
	}

	s.recordSuccess(ctx, action, actor, "election_id", election.ElectionID, "title", title)
	s.metrics.IncrementElectionsCreated()
	s.persist(ctx)
	return election, nil
}

// ListActiveElections returns elections whose window contains the request
// time, ordered by id.
func (s *Service) ListActiveElections(ctx context.Context) []models.Election {
	now := requestcontext.Now(ctx)
	var active []models.Election
	_ = s.ledger.View(func(st *store.State) error {
		for _, e := range st.Elections() {
			if e.Status == models.ElectionStatusActive && e.IsOpenAt(now) {
				active = append(active, e)
			}
		}
		return nil
	})
	if active == nil {
		active = []models.Election{}
	}
	return active
}

// ListElections returns every election ordered by id.
func (s *Service) ListElections(_ context.Context) []models.Election {
	var elections []models.Election
	_ = s.ledger.View(func(st *store.State) error {
		elections = st.Elections()
		return nil
	})
	return elections
}

// FindElection looks up one election.
func (s *Service) FindElection(_ context.Context, electionID int) (models.Election, error) {
	var election models.Election
	err := s.ledger.View(func(st *store.State) error {
		e, err := st.Election(electionID)
		election = e
		return err
	})
	if err != nil {
		return models.Election{}, translate(err,
			dErrors.CodeElectionNotFound, "election not found",
			dErrors.CodeInternal, "election lookup failed")
	}
	return election, nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
