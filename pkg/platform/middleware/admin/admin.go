// Package admin resolves the admin principal from a bearer token.
//
// Authenticate never rejects: it only marks the context when a valid admin
// token is present, so a single dispatch endpoint can gate individual
// actions. RequireAdmin rejects whole routes.
package admin

import (
	"log/slog"
	"net/http"
	"strings"

	dErrors "voteledger/pkg/domain-errors"
	"voteledger/pkg/platform/httputil"
	"voteledger/pkg/requestcontext"
)

// Validator checks a bearer token and returns the admin subject.
type Validator interface {
	ValidateAdmin(token string) (string, error)
}

// Authenticate attaches the admin subject to the request context when the
// Authorization header carries a valid admin token.
func Authenticate(validator Validator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || token == "" || validator == nil {
				next.ServeHTTP(w, r)
				return
			}
			ctx := r.Context()
			subject, err := validator.ValidateAdmin(token)
			if err != nil {
				logger.WarnContext(ctx, "admin token rejected",
					"error", err,
					"request_id", requestcontext.RequestID(ctx),
				)
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(requestcontext.WithAdmin(ctx, subject)))
		})
	}
}

// RequireAdmin rejects requests that Authenticate did not mark as admin.
func RequireAdmin(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if _, ok := requestcontext.Admin(ctx); !ok {
				logger.WarnContext(ctx, "admin route denied",
					"path", r.URL.Path,
					"request_id", requestcontext.RequestID(ctx),
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "admin token required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
