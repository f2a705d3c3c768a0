package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pterm/pterm"

	"voteledger/internal/audit"
	"voteledger/internal/ledger/service"
	"voteledger/internal/ledger/store"
	"voteledger/internal/persistence"
	"voteledger/internal/platform/config"
)

const usage = `usage: ledgerctl [-snapshot path] <command> [options]

commands:
  results -election N                         tally for one election
  stats                                       totals, participation and series
  verify-audit                                walk the audit hash chain
  export -collection C [-format F] [-out P]   write a collection as csv or xlsx
  token [-subject S] [-ttl D]                 mint an admin token from ADMIN_JWT_SECRET
`

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("ledgerctl", flag.ContinueOnError)
	fs.SetOutput(out)
	fs.Usage = func() { fmt.Fprint(out, usage) }
	snapshotPath := fs.String("snapshot", defaultSnapshotPath(), "snapshot file to inspect")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errors.New("missing command")
	}
	pterm.SetDefaultOutput(out)

	cmd, rest := fs.Arg(0), fs.Args()[1:]
	if cmd == "token" {
		return runToken(rest, out)
	}

	snap, err := loadSnapshot(*snapshotPath)
	if err != nil {
		return err
	}
	switch cmd {
	case "results":
		svc, err := openService(snap)
		if err != nil {
			return err
		}
		return runResults(ctx, svc, rest, out)
	case "stats":
		svc, err := openService(snap)
		if err != nil {
			return err
		}
		return runStats(ctx, svc)
	case "verify-audit":
		return runVerifyAudit(snap)
	case "export":
		return runExport(snap, rest, out)
	default:
		fs.Usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func defaultSnapshotPath() string {
	if p := os.Getenv("SNAPSHOT_PATH"); p != "" {
		return p
	}
	return "data/ledger.json"
}

// loadSnapshot decodes the file without the persister's corrupt-file handling,
// so inspecting a damaged snapshot leaves it where it is.
func loadSnapshot(path string) (persistence.Snapshot, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return persistence.Snapshot{}, fmt.Errorf("read snapshot: %w", err)
	}
	snap, err := persistence.Decode(raw)
	if err != nil {
		return persistence.Snapshot{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return snap, nil
}

// openService rebuilds a read-only ledger from snap. Unlike the server it
// refuses inconsistent data instead of starting empty.
func openService(snap persistence.Snapshot) (*service.Service, error) {
	ledger := store.New()
	if err := ledger.Restore(snap.Data); err != nil {
		return nil, fmt.Errorf("snapshot is inconsistent: %w", err)
	}
	trail := audit.NewLog()
	trail.Restore(snap.Audit)
	return service.New(ledger, trail, service.WithLogger(discardLogger()))
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func parseTTL(raw string) (time.Duration, error) {
	ttl, err := time.ParseDuration(raw)
	if err != nil || ttl <= 0 {
		return 0, fmt.Errorf("invalid -ttl %q", raw)
	}
	return ttl, nil
}
