package httptransport

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"voteledger/internal/broadcast"
	dErrors "voteledger/pkg/domain-errors"
	"voteledger/pkg/platform/httputil"
	"voteledger/pkg/requestcontext"
)

// handleEvents streams broadcast events as server-sent events. A client
// reconnecting with Last-Event-ID first receives the buffered events it
// missed.
func (h *Handler) handleEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	flusher, ok := w.(http.Flusher)
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "streaming unsupported"))
		return
	}

	// Subscribe before replaying so nothing published in between is lost.
	events, cancel := h.events.Subscribe()
	defer cancel()
	h.metrics.AddSSESubscribers(1)
	defer h.metrics.AddSSESubscribers(-1)

	header := w.Header()
	header.Set("Content-Type", "text/event-stream")
	header.Set("Cache-Control", "no-cache")
	header.Set("Connection", "keep-alive")
	header.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	var lastSent uint64
	if id, err := strconv.ParseUint(strings.TrimSpace(r.Header.Get("Last-Event-ID")), 10, 64); err == nil {
		lastSent = id
		for _, e := range h.events.Since(id) {
			if err := writeEvent(w, e); err != nil {
				return
			}
			lastSent = e.Sequence
		}
	}
	_, _ = io.WriteString(w, ": connected\n\n")
	flusher.Flush()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := io.WriteString(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case e, ok := <-events:
			if !ok {
				return
			}
			if e.Sequence != 0 && e.Sequence <= lastSent {
				continue
			}
			if err := writeEvent(w, e); err != nil {
				h.logger.DebugContext(ctx, "event stream closed",
					"error", err,
					"request_id", requestcontext.RequestID(ctx),
				)
				return
			}
			lastSent = e.Sequence
			flusher.Flush()
		}
	}
}

func writeEvent(w io.Writer, e broadcast.Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	_, err = fmt.Fprintf(w, "id: %d\nevent: %s\ndata: %s\n\n", e.Sequence, e.Type, data)
	return err
}
