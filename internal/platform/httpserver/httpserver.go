package httpserver

import (
	"net/http"
	"time"
)

// New builds an HTTP server with sane defaults for this project. WriteTimeout
// stays unset so /events streams are not cut off.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
