package httpserver

import (
	"net/http"

	"sentinela/internal/platform/config"
)

// New builds the HTTP server for the monitoring and compliance endpoints.
// Timeouts come from config: the dispatch handlers do store-bound work only,
// so slow requests indicate a stuck dependency, not a big payload.
func New(cfg config.HTTP, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
}
