package service

import (
	"context"

	"voteledger/internal/ledger/models"
	"voteledger/internal/ledger/store"
	"voteledger/pkg/requestcontext"
)

// Stats computes the dashboard projections at the request time.
func (s *Service) Stats(ctx context.Context) models.Stats {
	now := requestcontext.Now(ctx)
	var stats models.Stats
	_ = s.ledger.View(func(st *store.State) error {
		stats = models.Stats{
			Totals:              st.Totals(),
			Participation:       st.Participation(),
			RegistrationsPerDay: st.RegistrationsPerDay(now, s.statsDays),
			VotesPerDay:         st.VotesPerDay(now, s.statsDays),
			VotesPerMinute:      st.VotesPerMinute(now, s.statsMinutes),
		}
		elections := st.Elections()
		if len(elections) > 0 {
			stats.ElectionParticipation = make(map[int]models.Participation, len(elections))
			for _, e := range elections {
				stats.ElectionParticipation[e.ElectionID] = st.ElectionParticipation(e.ElectionID)
			}
		}
		return nil
	})
	return stats
}
