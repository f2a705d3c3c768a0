package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voteledger/internal/audit"
	jwttoken "voteledger/internal/jwt_token"
	"voteledger/internal/ledger/service"
	"voteledger/internal/ledger/store"
	"voteledger/internal/persistence"
	dErrors "voteledger/pkg/domain-errors"
	"voteledger/pkg/requestcontext"
)

const (
	alice = "0x00000000000000000000000000000000000000a1"
	bob   = "0x00000000000000000000000000000000000000b2"
)

// writeSnapshot records a small election through the service and returns the
// path of the flushed snapshot file.
func writeSnapshot(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ledger.json")
	ctx := requestcontext.WithTime(context.Background(), time.Now().UTC())

	svc, err := service.New(store.New(), audit.NewLog(),
		service.WithLogger(discardLogger()),
		service.WithPersister(persistence.NewFile(path)),
	)
	require.NoError(t, err)

	election, err := svc.CreateElection(ctx, service.CreateElectionInput{Title: "Board"})
	require.NoError(t, err)
	for _, name := range []string{"Ada", "Grace"} {
		_, err := svc.AddCandidate(ctx, service.AddCandidateInput{ElectionID: election.ElectionID, Name: name})
		require.NoError(t, err)
	}
	for _, w := range []string{alice, bob} {
		_, err := svc.CastVote(ctx, service.CastVoteInput{WalletID: w, ElectionID: election.ElectionID, CandidateID: 1})
		require.NoError(t, err)
	}
	require.NoError(t, svc.Flush(ctx))
	return path
}

func TestResultsAndStats(t *testing.T) {
	path := writeSnapshot(t)
	var out bytes.Buffer

	require.NoError(t, run(context.Background(), []string{"-snapshot", path, "results", "-election", "1"}, &out))
	require.NoError(t, run(context.Background(), []string{"-snapshot", path, "stats"}, &out))

	err := run(context.Background(), []string{"-snapshot", path, "results", "-election", "9"}, &out)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeElectionNotFound))

	err = run(context.Background(), []string{"-snapshot", path, "results"}, &out)
	assert.ErrorContains(t, err, "-election")
}

func TestVerifyAudit(t *testing.T) {
	path := writeSnapshot(t)
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"-snapshot", path, "verify-audit"}, &out))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	snap, err := persistence.Decode(raw)
	require.NoError(t, err)
	snap.Audit[1].Actor = "mallory"
	raw, err = persistence.Encode(snap)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, raw, 0o600))

	err = run(context.Background(), []string{"-snapshot", path, "verify-audit"}, &out)
	var chainErr *audit.ChainError
	require.ErrorAs(t, err, &chainErr)
}

func TestExportVotesCSV(t *testing.T) {
	path := writeSnapshot(t)
	target := filepath.Join(t.TempDir(), "votes.csv")
	var out bytes.Buffer

	require.NoError(t, run(context.Background(), []string{"-snapshot", path, "export", "-collection", "votes", "-out", target}, &out))

	f, err := os.Open(target)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Contains(t, rows[1], alice)
	assert.Contains(t, rows[2], bob)
}

func TestExportRejectsUnknownCollection(t *testing.T) {
	path := writeSnapshot(t)
	var out bytes.Buffer
	err := run(context.Background(), []string{"-snapshot", path, "export", "-collection", "ballots"}, &out)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestMissingSnapshot(t *testing.T) {
	var out bytes.Buffer
	err := run(context.Background(), []string{"-snapshot", filepath.Join(t.TempDir(), "absent.json"), "stats"}, &out)
	assert.ErrorContains(t, err, "read snapshot")
}

func TestUnknownCommand(t *testing.T) {
	path := writeSnapshot(t)
	var out bytes.Buffer
	err := run(context.Background(), []string{"-snapshot", path, "recount"}, &out)
	assert.ErrorContains(t, err, "unknown command")
	assert.Contains(t, out.String(), "usage: ledgerctl")

	assert.Error(t, run(context.Background(), nil, &out))
}

func TestToken(t *testing.T) {
	t.Setenv("ADMIN_JWT_SECRET", "ledgerctl-secret")
	t.Setenv("PERSISTENCE_BACKEND", "memory")
	var out bytes.Buffer

	require.NoError(t, run(context.Background(), []string{"token", "-subject", "ops", "-ttl", "5m"}, &out))

	subject, err := jwttoken.NewJWTService("ledgerctl-secret", "voteledger").ValidateAdmin(strings.TrimSpace(out.String()))
	require.NoError(t, err)
	assert.Equal(t, "ops", subject)

	err = run(context.Background(), []string{"token", "-ttl", "soon"}, &out)
	assert.ErrorContains(t, err, "invalid -ttl")
}
