//go:build integration

package persistence

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voteledger/pkg/platform/sentinel"
	txcontext "voteledger/pkg/platform/tx"
	"voteledger/pkg/testutil/containers"
)

func TestPostgresPersister(t *testing.T) {
	pg := containers.NewPostgresContainer(t)
	ctx := context.Background()

	p, err := OpenPostgres(ctx, pg.DSN)
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })

	_, err = p.Load(ctx)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)

	snap := sampleSnapshot(t)
	snap.Version = 5
	require.NoError(t, p.Save(ctx, snap))

	stale := sampleSnapshot(t)
	stale.Version = 2
	stale.Voters = nil
	assert.ErrorIs(t, p.Save(ctx, stale), sentinel.ErrStale)

	got, err := p.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), got.Version, "older versions never overwrite newer ones")
	assert.Len(t, got.Voters, 1)
}

func TestPostgresJoinsCallerTransaction(t *testing.T) {
	pg := containers.NewPostgresContainer(t)
	ctx := context.Background()

	p, err := OpenPostgres(ctx, pg.DSN)
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })

	tx, err := p.db.BeginTx(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, p.Save(txcontext.WithTx(ctx, tx), sampleSnapshot(t)))
	require.NoError(t, tx.Rollback())

	_, err = p.Load(ctx)
	assert.ErrorIs(t, err, sentinel.ErrNotFound, "a rolled back caller transaction discards the save")

	tx, err = p.db.BeginTx(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, p.Save(txcontext.WithTx(ctx, tx), sampleSnapshot(t)))
	require.NoError(t, tx.Commit())

	got, err := p.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), got.Version)
}

func TestPostgresCorruptRowKeepsVersion(t *testing.T) {
	pg := containers.NewPostgresContainer(t)
	ctx := context.Background()

	p, err := OpenPostgres(ctx, pg.DSN)
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })

	_, err = p.db.ExecContext(ctx,
		`INSERT INTO ledger_snapshot (id, version, saved_at, payload) VALUES (1, 50, now(), '{"voters": "none"}')`)
	require.NoError(t, err)

	_, err = p.Load(ctx)
	require.ErrorIs(t, err, sentinel.ErrCorrupt)
	assert.Equal(t, uint64(50), StoredVersion(err))
}

func TestRedisPersister(t *testing.T) {
	rc := containers.NewRedisContainer(t)
	ctx := context.Background()
	r := NewRedis(rc.Client, "voteledger:test")

	_, err := r.Load(ctx)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)

	snap := sampleSnapshot(t)
	require.NoError(t, r.Save(ctx, snap))
	got, err := r.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, snap.Votes, got.Votes)
}
