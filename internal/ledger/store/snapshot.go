package store

import (
	"fmt"
	"strings"

	"voteledger/internal/ledger/models"
)

// Data is the serializable content of the ledger, each collection in its
// canonical order. Derived fields are carried but ignored on restore.
type Data struct {
	Voters     []models.Voter     `json:"voters"`
	Elections  []models.Election  `json:"elections"`
	Candidates []models.Candidate `json:"candidates"`
	Votes      []models.Vote      `json:"votes"`
}

// Export copies the full data set and the version it reflects.
func (l *Ledger) Export() (Data, uint64) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	s := l.state
	return Data{
		Voters:     s.Voters(),
		Elections:  s.Elections(),
		Candidates: s.AllCandidates(),
		Votes:      s.Votes(),
	}, l.version
}

// Restore replaces the ledger with d after checking every invariant, then
// rebuilds all tallies from the votes. On error the ledger is unchanged.
func (l *Ledger) Restore(d Data) error {
	s, err := buildState(d)
	if err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.state = s
	return nil
}

func buildState(d Data) (*State, error) {
	s := newState()
	for _, v := range d.Voters {
		v.WalletID = strings.ToLower(v.WalletID)
		if err := s.InsertVoter(v); err != nil {
			return nil, fmt.Errorf("voter %s: %w", v.WalletID, err)
		}
	}
	for _, e := range d.Elections {
		e.TotalVotes = 0
		if err := s.InsertElection(e); err != nil {
			return nil, fmt.Errorf("election %d: %w", e.ElectionID, err)
		}
	}
	for _, c := range d.Candidates {
		c.Votes, c.Percentage = 0, 0
		if want := s.NextCandidateID(c.ElectionID); c.CandidateID != want {
			return nil, fmt.Errorf("candidate %d/%d: ids must be dense, expected %d", c.ElectionID, c.CandidateID, want)
		}
		if err := s.InsertCandidate(c); err != nil {
			return nil, fmt.Errorf("candidate %d/%d: %w", c.ElectionID, c.CandidateID, err)
		}
	}
	lastID := 0
	for _, v := range d.Votes {
		if v.VoteID <= lastID {
			return nil, fmt.Errorf("vote %d: ids must increase", v.VoteID)
		}
		lastID = v.VoteID
		v.WalletID = strings.ToLower(v.WalletID)
		key := voteKey{wallet: v.WalletID, electionID: v.ElectionID}
		if _, dup := s.voted[key]; dup {
			return nil, fmt.Errorf("vote %d: duplicate vote for wallet %s in election %d", v.VoteID, v.WalletID, v.ElectionID)
		}
		if s.candidate(v.ElectionID, v.CandidateID) == nil {
			return nil, fmt.Errorf("vote %d: unknown election %d or candidate %d", v.VoteID, v.ElectionID, v.CandidateID)
		}
		pos := len(s.votes)
		s.votes = append(s.votes, v)
		s.votesByElection[v.ElectionID] = append(s.votesByElection[v.ElectionID], pos)
		s.voted[key] = pos
	}
	s.RecomputeAll()
	return s, nil
}
