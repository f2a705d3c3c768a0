package persistence

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voteledger/internal/audit"
	"voteledger/internal/ledger/models"
	"voteledger/internal/ledger/store"
	"voteledger/pkg/platform/sentinel"
)

func sampleSnapshot(t *testing.T) Snapshot {
	t.Helper()
	now := time.Date(2026, 2, 2, 10, 0, 0, 0, time.UTC)
	log := audit.NewLog()
	log.Append(context.Background(), audit.Record{Action: audit.ActionRegisterVoter, Actor: "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa1", Timestamp: now})
	return Snapshot{
		Version: 3,
		SavedAt: now,
		Data: store.Data{
			Voters:     []models.Voter{{WalletID: "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa1", Name: "Ann", ExternalID: "X1", RegisteredAt: now, Status: models.VoterStatusActive}},
			Elections:  []models.Election{{ElectionID: 1, Title: "E1", Status: models.ElectionStatusActive, TotalVotes: 1, CreatedAt: now}},
			Candidates: []models.Candidate{{ElectionID: 1, CandidateID: 1, Name: "Alice", Votes: 1, Percentage: 100}},
			Votes:      []models.Vote{{VoteID: 1, WalletID: "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa1", ElectionID: 1, CandidateID: 1, CastAt: now}},
		},
		Audit: log.Snapshot(),
	}
}

func TestCodec(t *testing.T) {
	snap := sampleSnapshot(t)
	raw, err := Encode(snap)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"walletId"`)
	assert.Contains(t, string(raw), `"savedAt"`)
	assert.NotContains(t, string(raw), `"Data"`, "ledger collections are inlined")

	decoded, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, snap, decoded)
	assert.NoError(t, audit.VerifyEntries(decoded.Audit))

	_, err = Decode(nil)
	assert.ErrorIs(t, err, sentinel.ErrCorrupt)
	_, err = Decode([]byte("{\"voters\": ["))
	assert.ErrorIs(t, err, sentinel.ErrCorrupt)
	assert.Zero(t, StoredVersion(err))
}

func TestDecodeKeepsVersionOfMalformedDocument(t *testing.T) {
	_, err := Decode([]byte(`{"version": 50, "voters": "none"}`))
	require.ErrorIs(t, err, sentinel.ErrCorrupt)
	assert.Equal(t, uint64(50), StoredVersion(err))

	var ce *CorruptError
	require.ErrorAs(t, err, &ce)
	assert.Contains(t, ce.Error(), "decode snapshot")
}

func TestFile(t *testing.T) {
	ctx := context.Background()

	t.Run("missing file is not found", func(t *testing.T) {
		f := NewFile(filepath.Join(t.TempDir(), "none.json"))
		_, err := f.Load(ctx)
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("round trip creates directories and leaves no temp files", func(t *testing.T) {
		dir := t.TempDir()
		f := NewFile(filepath.Join(dir, "nested", "ledger.json"))
		snap := sampleSnapshot(t)
		require.NoError(t, f.Save(ctx, snap))

		snap.Version = 4
		require.NoError(t, f.Save(ctx, snap))

		got, err := f.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, uint64(4), got.Version)
		assert.Equal(t, snap.Votes, got.Votes)

		entries, err := os.ReadDir(filepath.Join(dir, "nested"))
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "ledger.json", entries[0].Name())
	})

	t.Run("corrupt file is reported and moved aside", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "ledger.json")
		require.NoError(t, os.WriteFile(path, []byte("not json"), 0o600))

		_, err := NewFile(path).Load(ctx)
		assert.ErrorIs(t, err, sentinel.ErrCorrupt)

		_, statErr := os.Stat(path)
		assert.True(t, os.IsNotExist(statErr))
		matches, _ := filepath.Glob(path + ".corrupt-*")
		assert.Len(t, matches, 1)
	})
}

func TestMemory(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_, err := m.Load(ctx)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)

	snap := sampleSnapshot(t)
	require.NoError(t, m.Save(ctx, snap))
	got, err := m.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, snap, got)
	assert.Equal(t, 1, m.Saves())

	m.SetRaw([]byte("{oops"))
	_, err = m.Load(ctx)
	assert.ErrorIs(t, err, sentinel.ErrCorrupt)
}
