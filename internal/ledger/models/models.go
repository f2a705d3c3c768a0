package models

import "time"

// VoterStatus is the only mutable attribute of a Voter.
type VoterStatus string

const VoterStatusActive VoterStatus = "active"

// ElectionStatus is the administrative status of an election. Whether an
// election accepts votes right now is decided by its window, see IsOpenAt.
type ElectionStatus string

const ElectionStatusActive ElectionStatus = "active"

// Voter is a registered wallet. Created once per normalized wallet id.
type Voter struct {
	WalletID     string      `json:"walletId"`
	Name         string      `json:"name"`
	ExternalID   string      `json:"externalId"`
	Email        string      `json:"email,omitempty"`
	RegisteredAt time.Time   `json:"registeredAt"`
	Status       VoterStatus `json:"status"`
}

// Election is a votable contest. TotalVotes is a cache derived from the vote
// sequence and is rewritten by every tally recompute.
type Election struct {
	ElectionID  int            `json:"electionId"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	StartAt     *time.Time     `json:"startAt,omitempty"`
	EndAt       *time.Time     `json:"endAt,omitempty"`
	Status      ElectionStatus `json:"status"`
	TotalVotes  int            `json:"totalVotes"`
	CreatedAt   time.Time      `json:"createdAt"`
}

// IsOpenAt reports whether now falls inside the election window. Absent bounds
// are unbounded on that side.
func (e *Election) IsOpenAt(now time.Time) bool {
	if e.StartAt != nil && now.Before(*e.StartAt) {
		return false
	}
	if e.EndAt != nil && now.After(*e.EndAt) {
		return false
	}
	return true
}

// Candidate belongs to exactly one election. CandidateID is dense within that
// election only. Votes and Percentage are tally caches.
type Candidate struct {
	ElectionID  int     `json:"electionId"`
	CandidateID int     `json:"candidateId"`
	Name        string  `json:"name"`
	Affiliation string  `json:"affiliation,omitempty"`
	Votes       int     `json:"votes"`
	Percentage  float64 `json:"percentage"`
}

// Vote is immutable once appended.
type Vote struct {
	VoteID        int       `json:"voteId"`
	WalletID      string    `json:"walletId"`
	ElectionID    int       `json:"electionId"`
	CandidateID   int       `json:"candidateId"`
	CastAt        time.Time `json:"castAt"`
	ExternalTxRef string    `json:"externalTxRef,omitempty"`
}

// Results is the read projection of one election's tally.
type Results struct {
	Election   Election    `json:"election"`
	Candidates []Candidate `json:"candidates"`
}

// Totals are simple entity counts.
type Totals struct {
	Voters     int `json:"voters"`
	Elections  int `json:"elections"`
	Candidates int `json:"candidates"`
	Votes      int `json:"votes"`
}

// Bucket is one point of a time series.
type Bucket struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// Participation is votedVoters / totalVoters.
type Participation struct {
	VotedVoters int     `json:"votedVoters"`
	TotalVoters int     `json:"totalVoters"`
	Ratio       float64 `json:"ratio"`
}

// Stats bundles every dashboard projection.
type Stats struct {
	Totals                Totals                `json:"totals"`
	Participation         Participation         `json:"participation"`
	RegistrationsPerDay   []Bucket              `json:"registrationsPerDay"`
	VotesPerDay           []Bucket              `json:"votesPerDay"`
	VotesPerMinute        []Bucket              `json:"votesPerMinute"`
	ElectionParticipation map[int]Participation `json:"electionParticipation,omitempty"`
}
