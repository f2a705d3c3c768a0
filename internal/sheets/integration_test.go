//go:build integration

package sheets_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voteledger/internal/sheets"
	"voteledger/pkg/testutil/containers"
)

func TestPostgresSink(t *testing.T) {
	pg := containers.NewPostgresContainer(t)
	ctx := context.Background()

	sink, err := sheets.NewPostgresSink(ctx, pg.DSN)
	require.NoError(t, err)
	t.Cleanup(sink.Close)

	require.NoError(t, sink.UpsertRow(ctx, sheets.SheetElections, "1", sheets.Row{"title": "E1", "totalVotes": 0}))
	require.NoError(t, sink.UpsertRow(ctx, sheets.SheetElections, "1", sheets.Row{"title": "E1", "totalVotes": 1}))
	require.NoError(t, sink.AppendRow(ctx, sheets.SheetVotes, sheets.Row{"voteId": 1}))
	require.NoError(t, sink.AppendRow(ctx, sheets.SheetVotes, sheets.Row{"voteId": 2}))

	elections, err := sink.Rows(ctx, sheets.SheetElections)
	require.NoError(t, err)
	require.Len(t, elections, 1)
	assert.EqualValues(t, 1, elections[0]["totalVotes"])

	votes, err := sink.Rows(ctx, sheets.SheetVotes)
	require.NoError(t, err)
	require.Len(t, votes, 2)
	assert.EqualValues(t, 1, votes[0]["voteId"])
}
