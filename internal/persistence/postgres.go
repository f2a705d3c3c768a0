package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq"

	"voteledger/pkg/platform/sentinel"
	txcontext "voteledger/pkg/platform/tx"
)

const createSnapshotTable = `
	CREATE TABLE IF NOT EXISTS ledger_snapshot (
		id        SMALLINT PRIMARY KEY CHECK (id = 1),
		version   BIGINT      NOT NULL,
		saved_at  TIMESTAMPTZ NOT NULL,
		payload   JSONB       NOT NULL
	)`

// Postgres keeps the snapshot in a single-row table.
type Postgres struct {
	db *sql.DB
}

// OpenPostgres connects with lib/pq and ensures the table exists.
func OpenPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	p := NewPostgres(db)
	if err := p.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return p, nil
}

// NewPostgres wraps an existing handle.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// Migrate creates the snapshot table.
func (p *Postgres) Migrate(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, createSnapshotTable); err != nil {
		return fmt.Errorf("create ledger_snapshot: %w", err)
	}
	return nil
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (p *Postgres) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return p.db
}

func (p *Postgres) Load(ctx context.Context) (Snapshot, error) {
	var (
		version int64
		payload []byte
	)
	err := p.execer(ctx).QueryRowContext(ctx, `SELECT version, payload FROM ledger_snapshot WHERE id = 1`).Scan(&version, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, sentinel.ErrNotFound
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("select snapshot: %w", err)
	}
	snap, err := Decode(payload)
	var ce *CorruptError
	if errors.As(err, &ce) && uint64(version) > ce.Version {
		ce.Version = uint64(version)
	}
	return snap, err
}

// Save upserts the row, joining the caller's transaction when ctx carries
// one. A row holding a newer version is left alone and reported as
// sentinel.ErrStale.
func (p *Postgres) Save(ctx context.Context, snap Snapshot) error {
	raw, err := Encode(snap)
	if err != nil {
		return err
	}
	res, err := p.execer(ctx).ExecContext(ctx, `
		INSERT INTO ledger_snapshot (id, version, saved_at, payload)
		VALUES (1, $1, $2, $3)
		ON CONFLICT (id) DO UPDATE
		SET version = EXCLUDED.version, saved_at = EXCLUDED.saved_at, payload = EXCLUDED.payload
		WHERE ledger_snapshot.version <= EXCLUDED.version`,
		int64(snap.Version), snap.SavedAt, raw,
	)
	if err != nil {
		return fmt.Errorf("upsert snapshot: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("upsert snapshot: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("snapshot version %d is older than the stored row: %w", snap.Version, sentinel.ErrStale)
	}
	return nil
}

// Close releases the connection pool.
func (p *Postgres) Close() error {
	return p.db.Close()
}
