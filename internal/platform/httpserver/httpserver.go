package httpserver

import (
	"log/slog"
	"net/http"
	"time"
)

// New builds the HTTP server. WriteTimeout leaves room for a cold directory
// fetch plus the border fan-out; net/http's own errors go to logger.
func New(addr string, handler http.Handler, logger *slog.Logger) *http.Server {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      45 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	if logger != nil {
		srv.ErrorLog = slog.NewLogLogger(logger.Handler(), slog.LevelWarn)
	}
	return srv
}
