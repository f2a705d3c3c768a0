// Package tx carries an open *sql.Tx through a context so persisters can
// join a transaction started by their caller.
package tx

import (
	"context"
	"database/sql"
)

type ctxKey struct{}

// WithTx returns ctx carrying tx. A nil tx leaves ctx unchanged.
func WithTx(ctx context.Context, tx *sql.Tx) context.Context {
	if tx == nil {
		return ctx
	}
	return context.WithValue(ctx, ctxKey{}, tx)
}

// From returns the transaction stored by WithTx.
func From(ctx context.Context) (*sql.Tx, bool) {
	tx, ok := ctx.Value(ctxKey{}).(*sql.Tx)
	return tx, ok
}
