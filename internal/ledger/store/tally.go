package store

import (
	"math"
	"slices"

	"voteledger/internal/ledger/models"
	"voteledger/pkg/platform/sentinel"
)

// Recompute rebuilds the election's derived fields from the vote arena only.
// Cached counts are overwritten, never incremented, so the call is idempotent.
func (s *State) Recompute(electionID int) {
	e, ok := s.elections[electionID]
	if !ok {
		return
	}
	counts := make(map[int]int)
	for _, pos := range s.votesByElection[electionID] {
		counts[s.votes[pos].CandidateID]++
	}

	cands := s.candidates[electionID]
	total := 0
	for _, c := range cands {
		total += counts[c.CandidateID]
	}
	for _, c := range cands {
		c.Votes = counts[c.CandidateID]
		c.Percentage = percentage(c.Votes, total)
	}
	e.TotalVotes = total
}

// RecomputeAll rebuilds every election, used after loading a snapshot.
func (s *State) RecomputeAll() {
	for id := range s.elections {
		s.Recompute(id)
	}
}

// Results returns the election with its candidates sorted by votes
// descending. Ties keep insertion order.
func (s *State) Results(electionID int) (models.Results, error) {
	e, ok := s.elections[electionID]
	if !ok {
		return models.Results{}, sentinel.ErrNotFound
	}
	cands := s.Candidates(electionID)
	slices.SortStableFunc(cands, func(a, b models.Candidate) int {
		return b.Votes - a.Votes
	})
	return models.Results{Election: *e, Candidates: cands}, nil
}

func percentage(votes, total int) float64 {
	if total == 0 {
		return 0
	}
	return round2(float64(votes) / float64(total) * 100)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
