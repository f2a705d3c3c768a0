// Package store holds the authoritative in-memory ledger. All mutations run
// inside Update under one write lock; reads run inside View under the read
// lock and copy values out.
package store

import (
	"slices"
	"sync"

	"voteledger/internal/ledger/models"
	"voteledger/pkg/platform/sentinel"
)

type voteKey struct {
	wallet     string
	electionID int
}

// State is the ledger data set. It is only reachable through Update and
// View, which hold the ledger lock for the duration of the callback.
type State struct {
	voters     map[string]*models.Voter
	voterOrder []string

	elections     map[int]*models.Election
	electionOrder []int

	// candidates are kept in insertion order per election.
	candidates map[int][]*models.Candidate

	// votes is the arena; the maps index into it by position.
	votes           []models.Vote
	votesByElection map[int][]int
	voted           map[voteKey]int
}

func newState() *State {
	return &State{
		voters:          make(map[string]*models.Voter),
		elections:       make(map[int]*models.Election),
		candidates:      make(map[int][]*models.Candidate),
		votesByElection: make(map[int][]int),
		voted:           make(map[voteKey]int),
	}
}

// Ledger guards State with a single RWMutex and counts committed mutations.
type Ledger struct {
	mu      sync.RWMutex
	state   *State
	version uint64
}

func New() *Ledger {
	return &Ledger{state: newState()}
}

// Update runs fn under the write lock. When fn returns nil the ledger version
// advances and the new version is returned.
func (l *Ledger) Update(fn func(s *State) error) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := fn(l.state); err != nil {
		return l.version, err
	}
	l.version++
	return l.version, nil
}

// View runs fn under the read lock.
func (l *Ledger) View(fn func(s *State) error) error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return fn(l.state)
}

// Version returns the number of committed mutations.
func (l *Ledger) Version() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.version
}

// -----------------------------------------------------------------------------
// Voters
// -----------------------------------------------------------------------------

// Voter returns a copy of the voter with the given normalized wallet id.
func (s *State) Voter(wallet string) (models.Voter, error) {
	v, ok := s.voters[wallet]
	if !ok {
		return models.Voter{}, sentinel.ErrNotFound
	}
	return *v, nil
}

// HasVoter reports whether the wallet is registered.
func (s *State) HasVoter(wallet string) bool {
	_, ok := s.voters[wallet]
	return ok
}

// InsertVoter adds v. ErrAlreadyUsed when the wallet is taken.
func (s *State) InsertVoter(v models.Voter) error {
	if _, ok := s.voters[v.WalletID]; ok {
		return sentinel.ErrAlreadyUsed
	}
	s.voters[v.WalletID] = &v
	s.voterOrder = append(s.voterOrder, v.WalletID)
	return nil
}

// Voters lists voters in registration order.
func (s *State) Voters() []models.Voter {
	out := make([]models.Voter, 0, len(s.voterOrder))
	for _, w := range s.voterOrder {
		out = append(out, *s.voters[w])
	}
	return out
}

// -----------------------------------------------------------------------------
// Elections
// -----------------------------------------------------------------------------

// NextElectionID is max existing id + 1.
func (s *State) NextElectionID() int {
	next := 1
	for id := range s.elections {
		if id >= next {
			next = id + 1
		}
	}
	return next
}

// Election returns a copy of the election.
func (s *State) Election(id int) (models.Election, error) {
	e, ok := s.elections[id]
	if !ok {
		return models.Election{}, sentinel.ErrNotFound
	}
	return *e, nil
}

// InsertElection adds e. ErrAlreadyUsed when the id is taken.
func (s *State) InsertElection(e models.Election) error {
	if _, ok := s.elections[e.ElectionID]; ok {
		return sentinel.ErrAlreadyUsed
	}
	s.elections[e.ElectionID] = &e
	s.electionOrder = append(s.electionOrder, e.ElectionID)
	return nil
}

// Elections lists elections ordered by id.
func (s *State) Elections() []models.Election {
	out := make([]models.Election, 0, len(s.electionOrder))
	for _, id := range s.sortedElectionIDs() {
		out = append(out, *s.elections[id])
	}
	return out
}

func (s *State) sortedElectionIDs() []int {
	ids := slices.Clone(s.electionOrder)
	slices.Sort(ids)
	return ids
}

// -----------------------------------------------------------------------------
// Candidates
// -----------------------------------------------------------------------------

// NextCandidateID is the count of the election's candidates + 1.
func (s *State) NextCandidateID(electionID int) int {
	return len(s.candidates[electionID]) + 1
}

// Candidate returns a copy of an election-scoped candidate.
func (s *State) Candidate(electionID, candidateID int) (models.Candidate, error) {
	c := s.candidate(electionID, candidateID)
	if c == nil {
		return models.Candidate{}, sentinel.ErrNotFound
	}
	return *c, nil
}

func (s *State) candidate(electionID, candidateID int) *models.Candidate {
	for _, c := range s.candidates[electionID] {
		if c.CandidateID == candidateID {
			return c
		}
	}
	return nil
}

// InsertCandidate adds c to its election. ErrNotFound when the election is
// unknown, ErrAlreadyUsed when the id is taken within the election.
func (s *State) InsertCandidate(c models.Candidate) error {
	if _, ok := s.elections[c.ElectionID]; !ok {
		return sentinel.ErrNotFound
	}
	if s.candidate(c.ElectionID, c.CandidateID) != nil {
		return sentinel.ErrAlreadyUsed
	}
	s.candidates[c.ElectionID] = append(s.candidates[c.ElectionID], &c)
	return nil
}

// Candidates lists an election's candidates in insertion order.
func (s *State) Candidates(electionID int) []models.Candidate {
	list := s.candidates[electionID]
	out := make([]models.Candidate, 0, len(list))
	for _, c := range list {
		out = append(out, *c)
	}
	return out
}

// AllCandidates lists every candidate, grouped by election id.
func (s *State) AllCandidates() []models.Candidate {
	var out []models.Candidate
	for _, id := range s.sortedElectionIDs() {
		out = append(out, s.Candidates(id)...)
	}
	return out
}

// -----------------------------------------------------------------------------
// Votes
// -----------------------------------------------------------------------------

// HasVoted reports whether a vote exists for (wallet, electionID).
func (s *State) HasVoted(wallet string, electionID int) bool {
	_, ok := s.voted[voteKey{wallet: wallet, electionID: electionID}]
	return ok
}

// NextVoteID is max existing id + 1.
func (s *State) NextVoteID() int {
	if n := len(s.votes); n > 0 {
		return s.votes[n-1].VoteID + 1
	}
	return 1
}

// AppendVote appends v to the arena and recomputes its election's tally.
// The caller has already validated references; AppendVote still refuses a
// second vote for the same pair and dangling references.
func (s *State) AppendVote(v models.Vote) error {
	key := voteKey{wallet: v.WalletID, electionID: v.ElectionID}
	if _, ok := s.voted[key]; ok {
		return sentinel.ErrAlreadyUsed
	}
	if _, ok := s.elections[v.ElectionID]; !ok {
		return sentinel.ErrNotFound
	}
	if s.candidate(v.ElectionID, v.CandidateID) == nil {
		return sentinel.ErrNotFound
	}
	pos := len(s.votes)
	s.votes = append(s.votes, v)
	s.votesByElection[v.ElectionID] = append(s.votesByElection[v.ElectionID], pos)
	s.voted[key] = pos
	s.Recompute(v.ElectionID)
	return nil
}

// Votes returns the whole vote sequence in append order.
func (s *State) Votes() []models.Vote {
	return append([]models.Vote(nil), s.votes...)
}
