package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voteledger/internal/audit"
	"voteledger/internal/ledger/service"
	"voteledger/internal/ledger/store"
	dErrors "voteledger/pkg/domain-errors"
	"voteledger/pkg/testutil"
)

func TestBallotLifecycle(t *testing.T) {
	ctx := testutil.AdminContext("ops@example.org", fixedNow)
	trail := audit.NewLog(audit.WithLogger(quietLogger()))
	svc, err := service.New(store.New(), trail,
		service.WithLogger(quietLogger()),
		service.WithPolicy(service.Policy{RequireRegistration: true}),
	)
	require.NoError(t, err)

	var electionID int
	testutil.Given(t, "an election with two candidates", func(t *testing.T) {
		election, err := svc.CreateElection(ctx, service.CreateElectionInput{Title: "Treasurer"})
		require.NoError(t, err)
		electionID = election.ElectionID
		for _, name := range []string{"Ines", "Jon"} {
			_, err := svc.AddCandidate(ctx, service.AddCandidateInput{ElectionID: electionID, Name: name})
			require.NoError(t, err)
		}
	})

	testutil.When(t, "an unregistered wallet casts a ballot", func(t *testing.T) {
		_, err := svc.CastVote(ctx, service.CastVoteInput{WalletID: wallet(7), ElectionID: electionID, CandidateID: 2})
		testutil.Then(t, "the ballot is refused", func(t *testing.T) {
			assert.True(t, dErrors.HasCode(err, dErrors.CodeVoterNotRegistered))
		})
	})

	testutil.When(t, "the wallet registers and votes", func(t *testing.T) {
		_, err := svc.RegisterVoter(ctx, service.RegisterVoterInput{WalletID: wallet(7), Name: "Kim", ExternalID: "K-7"})
		require.NoError(t, err)
		receipt, err := svc.CastVote(ctx, service.CastVoteInput{WalletID: wallet(7), ElectionID: electionID, CandidateID: 2})
		require.NoError(t, err)

		testutil.Then(t, "the tally follows the vote", func(t *testing.T) {
			assert.Equal(t, 1, receipt.Results.Election.TotalVotes)
			require.NotEmpty(t, receipt.Results.Candidates)
			assert.Equal(t, "Jon", receipt.Results.Candidates[0].Name)
			assert.Equal(t, 100.0, receipt.Results.Candidates[0].Percentage)
		})
	})

	testutil.When(t, "the same wallet votes again", func(t *testing.T) {
		_, err := svc.CastVote(ctx, service.CastVoteInput{WalletID: wallet(7), ElectionID: electionID, CandidateID: 1})
		testutil.Then(t, "it is rejected and nothing changes", func(t *testing.T) {
			assert.True(t, dErrors.HasCode(err, dErrors.CodeAlreadyVoted))
			res, err := svc.Results(context.Background(), electionID)
			require.NoError(t, err)
			assert.Equal(t, 1, res.Election.TotalVotes)
		})
	})

	testutil.Then(t, "every attempt is in the audit trail", func(t *testing.T) {
		// election, two candidates, refused vote, registration, vote, duplicate
		assert.Equal(t, 7, trail.Len())
		assert.NoError(t, trail.Verify())
	})
}
