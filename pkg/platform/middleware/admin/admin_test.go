package admin

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"voteledger/pkg/requestcontext"
)

type stubValidator map[string]string

func (s stubValidator) ValidateAdmin(token string) (string, error) {
	if subject, ok := s[token]; ok {
		return subject, nil
	}
	return "", errors.New("bad token")
}

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func TestAuthenticate(t *testing.T) {
	validator := stubValidator{"good": "ops"}
	var gotSubject string
	var gotAdmin bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSubject, gotAdmin = requestcontext.Admin(r.Context())
	})
	handler := Authenticate(validator, newLogger())(next)

	cases := []struct {
		name    string
		header  string
		admin   bool
		subject string
	}{
		{"no header", "", false, ""},
		{"wrong scheme", "Basic good", false, ""},
		{"invalid token", "Bearer nope", false, ""},
		{"valid token", "Bearer good", true, "ops"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gotSubject, gotAdmin = "", false
			req := httptest.NewRequest(http.MethodPost, "/api", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			handler.ServeHTTP(httptest.NewRecorder(), req)
			assert.Equal(t, tc.admin, gotAdmin)
			assert.Equal(t, tc.subject, gotSubject)
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	handler := RequireAdmin(newLogger())(next)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/export/votes", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), `"error":"Unauthorized"`)

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/export/votes", nil)
	req = req.WithContext(requestcontext.WithAdmin(req.Context(), "ops"))
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
}
