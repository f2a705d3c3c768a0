package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/pterm/pterm"

	"voteledger/internal/audit"
	"voteledger/internal/export"
	jwttoken "voteledger/internal/jwt_token"
	"voteledger/internal/ledger/models"
	"voteledger/internal/ledger/service"
	"voteledger/internal/persistence"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func runResults(ctx context.Context, svc *service.Service, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("results", flag.ContinueOnError)
	fs.SetOutput(out)
	electionID := fs.Int("election", 0, "election id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *electionID == 0 {
		return errors.New("results requires -election")
	}
	results, err := svc.Results(ctx, *electionID)
	if err != nil {
		return err
	}

	pterm.DefaultSection.Printfln("#%d %s (%d votes)", results.Election.ElectionID, results.Election.Title, results.Election.TotalVotes)
	data := pterm.TableData{{"Candidate", "Name", "Affiliation", "Votes", "Share"}}
	for _, c := range results.Candidates {
		data = append(data, []string{
			strconv.Itoa(c.CandidateID),
			c.Name,
			c.Affiliation,
			strconv.Itoa(c.Votes),
			strconv.FormatFloat(c.Percentage, 'f', 2, 64) + "%",
		})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func runStats(ctx context.Context, svc *service.Service) error {
	stats := svc.Stats(ctx)

	pterm.DefaultSection.Println("Totals")
	err := pterm.DefaultTable.WithHasHeader().WithData(pterm.TableData{
		{"Voters", "Elections", "Candidates", "Votes", "Participation"},
		{
			strconv.Itoa(stats.Totals.Voters),
			strconv.Itoa(stats.Totals.Elections),
			strconv.Itoa(stats.Totals.Candidates),
			strconv.Itoa(stats.Totals.Votes),
			fmt.Sprintf("%d/%d (%.2f)", stats.Participation.VotedVoters, stats.Participation.TotalVoters, stats.Participation.Ratio),
		},
	}).Render()
	if err != nil {
		return err
	}

	pterm.DefaultSection.Println("Per day")
	data := pterm.TableData{{"Day", "Registrations", "Votes"}}
	for i, b := range stats.VotesPerDay {
		data = append(data, []string{b.Key, strconv.Itoa(bucketCount(stats.RegistrationsPerDay, i)), strconv.Itoa(b.Count)})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func bucketCount(buckets []models.Bucket, i int) int {
	if i < len(buckets) {
		return buckets[i].Count
	}
	return 0
}

func runVerifyAudit(snap persistence.Snapshot) error {
	if err := audit.VerifyEntries(snap.Audit); err != nil {
		return err
	}
	pterm.Success.Printfln("audit chain intact: %d entries", len(snap.Audit))
	return nil
}

func runExport(snap persistence.Snapshot, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	fs.SetOutput(out)
	collectionName := fs.String("collection", "", "voters, elections, candidates, votes or audit")
	formatName := fs.String("format", "csv", "csv or xlsx")
	outPath := fs.String("out", "", "output file (default <collection>.<format>)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	collection, err := export.ParseCollection(*collectionName)
	if err != nil {
		return err
	}
	format, err := export.ParseFormat(*formatName)
	if err != nil {
		return err
	}
	path := *outPath
	if path == "" {
		path = export.FileName(collection, format)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := export.Write(f, snap, collection, format); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	pterm.Success.Printfln("wrote %s", path)
	return nil
}

func runToken(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	fs.SetOutput(out)
	subject := fs.String("subject", "admin", "token subject")
	ttlRaw := fs.String("ttl", "1h", "token lifetime")
	if err := fs.Parse(args); err != nil {
		return err
	}
	ttl, err := parseTTL(*ttlRaw)
	if err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Server.AdminJWTSecret == "" {
		return errors.New("ADMIN_JWT_SECRET is not set")
	}
	token, err := jwttoken.NewJWTService(cfg.Server.AdminJWTSecret, "voteledger").GenerateAdminToken(*subject, ttl)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, token)
	return nil
}
