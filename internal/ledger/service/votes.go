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
	"voteledger/pkg/requestcontext"
)

// CastVoteInput carries a ballot. ExternalTxRef is stored verbatim and never
// validated.
type CastVoteInput struct {
	WalletID      string
	ElectionID    int
	CandidateID   int
	ExternalTxRef string
}

// VoteReceipt is a committed vote together with the election results it
// produced.
type VoteReceipt struct {
	Vote    models.Vote
	Results models.Results
}

// CastVote records one vote per (wallet, election). The duplicate check, the
// append and the tally recompute run as one unit under the ledger write lock.
func (s *Service) CastVote(ctx context.Context, in CastVoteInput) (VoteReceipt, error) {
	action := audit.ActionCastVote
	actor := strings.TrimSpace(in.WalletID)
	details := []any{"election_id", in.ElectionID, "candidate_id", in.CandidateID}

	if actor == "" || in.ElectionID == 0 || in.CandidateID == 0 {
		err := dErrors.New(dErrors.CodeMissingParameters, "walletId, electionId and candidateId are required")
		return VoteReceipt{}, s.recordFailure(ctx, action, actor, err, details...)
	}
	wallet, err := models.NormalizeWallet(in.WalletID)
	if err != nil {
		return VoteReceipt{}, s.recordFailure(ctx, action, actor, err, details...)
	}
	actor = wallet

	now := requestcontext.Now(ctx).UTC()
	var receipt VoteReceipt
	_, err = s.ledger.Update(func(st *store.State) error {
		if s.policy.RequireRegistration && !st.HasVoter(wallet) {
			return dErrors.New(dErrors.CodeVoterNotRegistered, "wallet is not registered")
		}
		election, err := st.Election(in.ElectionID)
		if err != nil {
			return dErrors.New(dErrors.CodeElectionNotFound, "election not found")
		}
		if _, err := st.Candidate(in.ElectionID, in.CandidateID); err != nil {
			return dErrors.New(dErrors.CodeCandidateNotFound, "candidate not found in election")
		}
		if s.policy.EnforceWindow && !election.IsOpenAt(now) {
			return dErrors.New(dErrors.CodeElectionInactive, "election is not open for voting")
		}
		if st.HasVoted(wallet, in.ElectionID) {
			return dErrors.New(dErrors.CodeAlreadyVoted, "wallet has already voted in this election")
		}

		vote := models.Vote{
			VoteID:        st.NextVoteID(),
			WalletID:      wallet,
			ElectionID:    in.ElectionID,
			CandidateID:   in.CandidateID,
			CastAt:        now,
			ExternalTxRef: strings.TrimSpace(in.ExternalTxRef),
		}
		if err := st.AppendVote(vote); err != nil {
			return err
		}
		results, err := st.Results(in.ElectionID)
		if err != nil {
			return err
		}
		receipt = VoteReceipt{Vote: vote, Results: results}
		s.fanOutVote(ctx, receipt)
		return nil
	})
	if err != nil {
		err = translate(err,
			dErrors.CodeElectionNotFound, "election not found",
			dErrors.CodeAlreadyVoted, "wallet has already voted in this election")
		return VoteReceipt{}, s.recordFailure(ctx, action, actor, err, details...)
	}

	s.recordSuccess(ctx, action, actor, append(details, "vote_id", receipt.Vote.VoteID)...)
	s.metrics.IncrementVotesCast()
	s.persist(ctx)
	return receipt, nil
}

// fanOutVote queues the broadcast and the sheet rows for a committed vote. It
// runs under the ledger write lock so tally rows are queued in commit order.
func (s *Service) fanOutVote(ctx context.Context, receipt VoteReceipt) {
	s.notify(ctx, broadcast.EventVoteCast, map[string]any{
		"vote":    receipt.Vote,
		"results": receipt.Results,
	})
	s.syncAppend(ctx, sheets.SheetVotes, sheets.VoteRow(receipt.Vote))
	for _, c := range receipt.Results.Candidates {
		key, row := sheets.CandidateRow(c)
		s.syncUpsert(ctx, sheets.SheetCandidates, key, row)
	}
	key, row := sheets.ElectionRow(receipt.Results.Election)
	s.syncUpsert(ctx, sheets.SheetElections, key, row)
}

// HasVoted reports whether the wallet has a vote in the election. Malformed
// wallets have not voted.
func (s *Service) HasVoted(_ context.Context, walletID string, electionID int) (bool, error) {
	if strings.TrimSpace(walletID) == "" || electionID == 0 {
		return false, dErrors.New(dErrors.CodeMissingParameters, "walletId and electionId are required")
	}
	wallet, err := models.NormalizeWallet(walletID)
	if err != nil {
		return false, nil
	}
	var voted bool
	err = s.ledger.View(func(st *store.State) error {
		if _, err := st.Election(electionID); err != nil {
			return err
		}
		voted = st.HasVoted(wallet, electionID)
		return nil
	})
	if err != nil {
		return false, translate(err,
			dErrors.CodeElectionNotFound, "election not found",
			dErrors.CodeInternal, "vote lookup failed")
	}
	return voted, nil
}

// ListVotes returns the vote sequence in append order.
func (s *Service) ListVotes(_ context.Context) []models.Vote {
	var votes []models.Vote
	_ = s.ledger.View(func(st *store.State) error {
		votes = st.Votes()
		return nil
	})
	return votes
}
