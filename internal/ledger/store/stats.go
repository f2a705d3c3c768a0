package store

import (
	"time"

	"voteledger/internal/ledger/models"
)

const (
	dayKey    = "2006-01-02"
	minuteKey = "15:04"
)

// Totals counts every entity.
func (s *State) Totals() models.Totals {
	candidates := 0
	for _, list := range s.candidates {
		candidates += len(list)
	}
	return models.Totals{
		Voters:     len(s.voters),
		Elections:  len(s.elections),
		Candidates: candidates,
		Votes:      len(s.votes),
	}
}

// Participation is distinct voting wallets over registered voters across all
// elections.
func (s *State) Participation() models.Participation {
	wallets := make(map[string]struct{})
	for _, v := range s.votes {
		wallets[v.WalletID] = struct{}{}
	}
	return ratio(len(wallets), len(s.voters))
}

// ElectionParticipation scopes Participation to one election.
func (s *State) ElectionParticipation(electionID int) models.Participation {
	wallets := make(map[string]struct{})
	for _, pos := range s.votesByElection[electionID] {
		wallets[s.votes[pos].WalletID] = struct{}{}
	}
	return ratio(len(wallets), len(s.voters))
}

func ratio(voted, total int) models.Participation {
	p := models.Participation{VotedVoters: voted, TotalVoters: total}
	if total > 0 {
		p.Ratio = round2(float64(voted) / float64(total))
	}
	return p
}

// RegistrationsPerDay buckets voter registrations by UTC day over the last
// days days ending at now.
func (s *State) RegistrationsPerDay(now time.Time, days int) []models.Bucket {
	series := newSeries(now.UTC().Truncate(24*time.Hour), days, 24*time.Hour, dayKey)
	for _, v := range s.voters {
		series.add(v.RegisteredAt)
	}
	return series.buckets()
}

// VotesPerDay buckets votes by UTC day.
func (s *State) VotesPerDay(now time.Time, days int) []models.Bucket {
	series := newSeries(now.UTC().Truncate(24*time.Hour), days, 24*time.Hour, dayKey)
	for _, v := range s.votes {
		series.add(v.CastAt)
	}
	return series.buckets()
}

// VotesPerMinute buckets votes by UTC minute.
func (s *State) VotesPerMinute(now time.Time, minutes int) []models.Bucket {
	series := newSeries(now.UTC().Truncate(time.Minute), minutes, time.Minute, minuteKey)
	for _, v := range s.votes {
		series.add(v.CastAt)
	}
	return series.buckets()
}

// series is a fixed window of buckets ending at last, oldest first.
type series struct {
	first  time.Time
	last   time.Time
	step   time.Duration
	layout string
	counts []int
}

func newSeries(last time.Time, n int, step time.Duration, layout string) *series {
	if n <= 0 {
		n = 1
	}
	return &series{
		first:  last.Add(-time.Duration(n-1) * step),
		last:   last,
		step:   step,
		layout: layout,
		counts: make([]int, n),
	}
}

func (s *series) add(t time.Time) {
	b := t.UTC().Truncate(s.step)
	if b.Before(s.first) || b.After(s.last) {
		return
	}
	s.counts[int(b.Sub(s.first)/s.step)]++
}

func (s *series) buckets() []models.Bucket {
	out := make([]models.Bucket, len(s.counts))
	for i, c := range s.counts {
		out[i] = models.Bucket{
			Key:   s.first.Add(time.Duration(i) * s.step).Format(s.layout),
			Count: c,
		}
	}
	return out
}
