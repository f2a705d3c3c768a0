package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"voteledger/pkg/platform/middleware/admin"
	"voteledger/pkg/platform/middleware/metadata"
	"voteledger/pkg/platform/middleware/request"
	"voteledger/pkg/platform/middleware/requesttime"
)

// NewRouter builds the chi router with the shared middleware chain. A nil
// validator disables admin authentication, so admin routes always deny.
func NewRouter(h *Handler, validator admin.Validator, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(request.Recovery(logger))
	r.Use(request.Logger(logger))
	r.Use(metadata.ClientMetadata)
	r.Use(requesttime.Middleware)
	if validator != nil {
		r.Use(admin.Authenticate(validator, logger))
	}
	h.Register(r)
	return r
}
