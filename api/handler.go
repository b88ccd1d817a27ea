//go:build ignore

package api

import (
	"net/http"

	"github.com/jmuralla/taskhive-backend/api/handlers"
	"github.com/jmuralla/taskhive-backend/api/middleware"
	"github.com/jmuralla/taskhive-backend/pkg/config"
	"github.com/jmuralla/taskhive-backend/pkg/logger"
)

// NewHandler returns the HTTP handler that cmd/api wires into its server.
func NewHandler(cfg *config.Config, logg *logger.Logger) http.Handler {
	mux := http.NewServeMux()

	// Routes
	mux.HandleFunc("/healthz", handlers.Healthz(cfg, logg))
	mux.HandleFunc("/demo-error", handlers.DemoError(logg))

	// Middleware chain (outermost first)
	h := middleware.RequestID(logg)(mux)
	h = middleware.Logging(logg)(h)

	return h
}
