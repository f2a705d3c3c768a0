// Package httputil writes the action response envelope shared by every
// endpoint: {"success": true, ...fields} or {"success": false, "error", "message"}.
package httputil

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	dErrors "voteledger/pkg/domain-errors"
)

const maxBodyBytes = 1 << 20

// ErrorBody is the failure envelope.
type ErrorBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteSuccess merges fields into a success envelope. A nil map yields
// {"success": true}.
func WriteSuccess(w http.ResponseWriter, fields map[string]any) {
	body := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		body[k] = v
	}
	body["success"] = true
	WriteJSON(w, http.StatusOK, body)
}

// WriteError maps a coded error to its status and writes the failure
// envelope. Internal failures never leak their message.
func WriteError(w http.ResponseWriter, err error) {
	WriteJSON(w, dErrors.ToHTTPStatus(dErrors.CodeOf(err)), ErrorBody{
		Success: false,
		Error:   string(dErrors.CodeOf(err)),
		Message: dErrors.PublicMessage(err),
	})
}

// DecodeJSON reads a bounded JSON body into v. Malformed input is reported as
// CodeBadRequest.
func DecodeJSON(r *http.Request, v any) error {
	body := http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return dErrors.New(dErrors.CodeBadRequest, "request body is empty")
		}
		return dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid JSON body")
	}
	return nil
}
