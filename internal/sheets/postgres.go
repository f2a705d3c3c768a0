package sheets

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const createSheetRows = `
	CREATE TABLE IF NOT EXISTS sheet_rows (
		sheet      TEXT        NOT NULL,
		row_key    TEXT        NOT NULL,
		position   BIGSERIAL,
		data       JSONB       NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (sheet, row_key)
	)`

// PostgresSink stores every sheet in one sheet_rows table.
type PostgresSink struct {
	pool *pgxpool.Pool
}

// NewPostgresSink connects a pgx pool and ensures the table exists.
func NewPostgresSink(ctx context.Context, dsn string) (*PostgresSink, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create sheets pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping sheets database: %w", err)
	}
	if _, err := pool.Exec(ctx, createSheetRows); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create sheet_rows: %w", err)
	}
	return &PostgresSink{pool: pool}, nil
}

// AppendRow inserts a row under a generated key.
func (s *PostgresSink) AppendRow(ctx context.Context, sheet string, row Row) error {
	return s.UpsertRow(ctx, sheet, uuid.NewString(), row)
}

// UpsertRow inserts or replaces the row stored under key.
func (s *PostgresSink) UpsertRow(ctx context.Context, sheet, key string, row Row) error {
	data, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("marshal %s row: %w", sheet, err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO sheet_rows (sheet, row_key, data, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (sheet, row_key) DO UPDATE
		SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at`,
		sheet, key, data, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("upsert %s row %s: %w", sheet, key, err)
	}
	return nil
}

// Rows returns a sheet's rows in insertion order.
func (s *PostgresSink) Rows(ctx context.Context, sheet string) ([]Row, error) {
	rows, err := s.pool.Query(ctx, `SELECT data FROM sheet_rows WHERE sheet = $1 ORDER BY position`, sheet)
	if err != nil {
		return nil, fmt.Errorf("query %s rows: %w", sheet, err)
	}
	return pgx.CollectRows(rows, func(r pgx.CollectableRow) (Row, error) {
		var raw []byte
		if err := r.Scan(&raw); err != nil {
			return nil, err
		}
		var row Row
		if err := json.Unmarshal(raw, &row); err != nil {
			return nil, err
		}
		return row, nil
	})
}

// Close releases the pool.
func (s *PostgresSink) Close() {
	s.pool.Close()
}
