package httpserver

import (
	"log/slog"
	"net/http"
	"time"
)

// New builds an HTTP server whose internal errors go to logger. Reads are
// bounded only at the header stage; handlers run to completion.
func New(addr string, handler http.Handler, logger *slog.Logger) *http.Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}
}
