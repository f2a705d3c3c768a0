// Package httptransport exposes the ledger over HTTP: the action endpoint,
// the server-sent event stream, admin exports, health and metrics.
package httptransport

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"voteledger/internal/broadcast"
	"voteledger/internal/dispatch"
	"voteledger/internal/persistence"
	"voteledger/internal/platform/metrics"
	dErrors "voteledger/pkg/domain-errors"
	"voteledger/pkg/platform/httputil"
	"voteledger/pkg/platform/middleware/admin"
	"voteledger/pkg/requestcontext"
)

const maxActionBody = 1 << 20

// Dispatcher runs one raw action request.
type Dispatcher interface {
	DispatchRaw(ctx context.Context, raw []byte) (string, dispatch.Response, error)
}

// EventSource feeds the SSE stream.
type EventSource interface {
	Subscribe() (<-chan broadcast.Event, func())
	Since(seq uint64) []broadcast.Event
}

// Snapshotter provides the read-only view exports are built from.
type Snapshotter interface {
	Snapshot(ctx context.Context) persistence.Snapshot
}

// Handler serves every ledger route.
type Handler struct {
	dispatcher Dispatcher
	events     EventSource
	snapshots  Snapshotter
	metrics    *metrics.Metrics
	logger     *slog.Logger
	heartbeat  time.Duration
}

type Option func(*Handler)

func WithMetrics(m *metrics.Metrics) Option {
	return func(h *Handler) {
		h.metrics = m
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) {
		h.logger = logger
	}
}

// WithHeartbeat sets the SSE keep-alive interval.
func WithHeartbeat(d time.Duration) Option {
	return func(h *Handler) {
		if d > 0 {
			h.heartbeat = d
		}
	}
}

func New(d Dispatcher, events EventSource, snapshots Snapshotter, opts ...Option) *Handler {
	h := &Handler{
		dispatcher: d,
		events:     events,
		snapshots:  snapshots,
		logger:     slog.Default(),
		heartbeat:  15 * time.Second,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register mounts the ledger routes on r.
func (h *Handler) Register(r chi.Router) {
	r.Post("/api", h.handleAction)
	r.Post("/", h.handleAction)
	r.Get("/health", h.handleHealth)
	if h.metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.metrics.Handler())
	}
	if h.events != nil {
		r.Get("/events", h.handleEvents)
	}
	r.Group(func(r chi.Router) {
		r.Use(admin.RequireAdmin(h.logger))
		r.Get("/export/{collection}", h.handleExport)
	})
}

func (h *Handler) handleAction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxActionBody))
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeBadRequest, "request body could not be read"))
		return
	}
	if len(raw) == 0 {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "request body is empty"))
		return
	}

	action, resp, err := h.dispatcher.DispatchRaw(ctx, raw)
	if err != nil {
		if dErrors.CodeOf(err) == dErrors.CodeInternal {
			h.logger.ErrorContext(ctx, "action failed",
				"action", action,
				"error", err,
				"request_id", requestcontext.RequestID(ctx),
			)
		}
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, resp)
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
