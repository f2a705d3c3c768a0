package testutil

import (
	"context"
	"time"

	"voteledger/pkg/requestcontext"
)

// AdminContext returns a context carrying an admin principal and a fixed clock,
// as the admin and requesttime middleware would leave it.
func AdminContext(subject string, now time.Time) context.Context {
	ctx := requestcontext.WithAdmin(context.Background(), subject)
	return requestcontext.WithTime(ctx, now)
}
