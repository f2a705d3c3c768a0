package httptransport

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"voteledger/internal/export"
	dErrors "voteledger/pkg/domain-errors"
	"voteledger/pkg/platform/httputil"
	"voteledger/pkg/requestcontext"
)

const collectionAll = "all"

// handleExport renders one collection, or every collection as a workbook for
// /export/all?format=xlsx.
func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	name := chi.URLParam(r, "collection")
	snap := h.snapshots.Snapshot(ctx)

	var (
		buf      bytes.Buffer
		filename string
	)
	if name == collectionAll {
		if format != export.FormatXLSX {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "the full export is only available as xlsx"))
			return
		}
		err = export.WriteWorkbook(&buf, snap)
		filename = "voteledger.xlsx"
	} else {
		collection, perr := export.ParseCollection(name)
		if perr != nil {
			httputil.WriteError(w, perr)
			return
		}
		err = export.Write(&buf, snap, collection, format)
		filename = export.FileName(collection, format)
	}
	if err != nil {
		h.logger.ErrorContext(ctx, "export failed",
			"collection", name,
			"format", format,
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "export failed"))
		return
	}

	w.Header().Set("Content-Type", export.ContentType(format))
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
