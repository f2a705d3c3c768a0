// Package sheets mirrors ledger rows into spreadsheet-style tabs for
// off-box reporting. The mirror is best effort; the ledger never waits on it.
package sheets

import (
	"context"
	"strconv"

	"voteledger/internal/ledger/models"
)

// Sheet names.
const (
	SheetVoters     = "Voters"
	SheetElections  = "Elections"
	SheetCandidates = "Candidates"
	SheetVotes      = "Votes"
)

// Row is one spreadsheet row keyed by column header.
type Row map[string]any

// Sink writes rows to a sheet backend.
type Sink interface {
	AppendRow(ctx context.Context, sheet string, row Row) error
	UpsertRow(ctx context.Context, sheet, key string, row Row) error
}

func VoterRow(v models.Voter) (string, Row) {
	return v.WalletID, Row{
		"walletId":     v.WalletID,
		"name":         v.Name,
		"externalId":   v.ExternalID,
		"email":        v.Email,
		"registeredAt": v.RegisteredAt,
		"status":       string(v.Status),
	}
}

func ElectionRow(e models.Election) (string, Row) {
	return strconv.Itoa(e.ElectionID), Row{
		"electionId":  e.ElectionID,
		"title":       e.Title,
		"description": e.Description,
		"startAt":     e.StartAt,
		"endAt":       e.EndAt,
		"status":      string(e.Status),
		"totalVotes":  e.TotalVotes,
		"createdAt":   e.CreatedAt,
	}
}

func CandidateRow(c models.Candidate) (string, Row) {
	return strconv.Itoa(c.ElectionID) + ":" + strconv.Itoa(c.CandidateID), Row{
		"electionId":  c.ElectionID,
		"candidateId": c.CandidateID,
		"name":        c.Name,
		"affiliation": c.Affiliation,
		"votes":       c.Votes,
		"percentage":  c.Percentage,
	}
}

func VoteRow(v models.Vote) Row {
	return Row{
		"voteId":        v.VoteID,
		"walletId":      v.WalletID,
		"electionId":    v.ElectionID,
		"candidateId":   v.CandidateID,
		"castAt":        v.CastAt,
		"externalTxRef": v.ExternalTxRef,
	}
}
