package sheets_test

//go:generate mockgen -source=sink.go -destination=mocks/mocks.go -package=mocks Sink

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"voteledger/internal/ledger/models"
	"voteledger/internal/sheets"
	"voteledger/internal/sheets/mocks"
	"voteledger/pkg/platform/circuit"
)

type dropCounter struct{ n atomic.Int32 }

func (d *dropCounter) IncrementDropped(string) { d.n.Add(1) }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSyncerAppliesRowsInOrder(t *testing.T) {
	ctrl := gomock.NewController(t)
	sink := mocks.NewMockSink(ctrl)

	voter := models.Voter{WalletID: "0xabc", Name: "Ann"}
	key, row := sheets.VoterRow(voter)
	vote := sheets.VoteRow(models.Vote{VoteID: 1, WalletID: "0xabc", ElectionID: 1, CandidateID: 2})

	gomock.InOrder(
		sink.EXPECT().UpsertRow(gomock.Any(), sheets.SheetVoters, "0xabc", row).Return(nil),
		sink.EXPECT().AppendRow(gomock.Any(), sheets.SheetVotes, vote).Return(nil),
	)

	s := sheets.NewSyncer(sink, 8, sheets.WithLogger(quietLogger()))
	s.Upsert(context.Background(), sheets.SheetVoters, key, row)
	s.Append(context.Background(), sheets.SheetVotes, vote)
	require.NoError(t, s.Close(context.Background()))
}

func TestSyncerBreakerSkipsFailingSink(t *testing.T) {
	ctrl := gomock.NewController(t)
	sink := mocks.NewMockSink(ctrl)
	sink.EXPECT().AppendRow(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("sheet api down")).Times(2)

	drops := &dropCounter{}
	breaker := circuit.New("sheets", circuit.WithFailureThreshold(2), circuit.WithCooldown(time.Hour))
	s := sheets.NewSyncer(sink, 16,
		sheets.WithLogger(quietLogger()),
		sheets.WithBreaker(breaker),
		sheets.WithDropCounter(drops),
	)
	for i := 0; i < 5; i++ {
		s.Append(context.Background(), sheets.SheetVotes, sheets.Row{"voteId": i})
	}
	require.NoError(t, s.Close(context.Background()))

	assert.True(t, breaker.IsOpen())
	assert.Equal(t, int32(3), drops.n.Load())
}

func TestSyncerCloseIsIdempotent(t *testing.T) {
	ctrl := gomock.NewController(t)
	s := sheets.NewSyncer(mocks.NewMockSink(ctrl), 1, sheets.WithLogger(quietLogger()))
	require.NoError(t, s.Close(context.Background()))
	require.NoError(t, s.Close(context.Background()))
	s.Append(context.Background(), sheets.SheetVotes, sheets.Row{})
}

func TestRows(t *testing.T) {
	key, row := sheets.CandidateRow(models.Candidate{ElectionID: 3, CandidateID: 2, Name: "Bob", Votes: 4, Percentage: 50})
	assert.Equal(t, "3:2", key)
	assert.Equal(t, "Bob", row["name"])

	key, row = sheets.ElectionRow(models.Election{ElectionID: 7, Title: "E7", TotalVotes: 8})
	assert.Equal(t, "7", key)
	assert.Equal(t, 8, row["totalVotes"])
}
