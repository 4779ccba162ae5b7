package persons

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MissingMap/MM-Backend/internal/middleware"
)

// SetupRoutes builds the /persons router. Every endpoint requires the shared
// bearer secret.
func SetupRoutes(h *Handler, secret string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.BearerAuth(secret))

	r.Get("/nearby", h.Nearby)
	r.Get("/{id}", h.Get)

	return r
}

// PipelineRoutes builds the /pipeline router behind the same secret.
func PipelineRoutes(h *Handler, secret string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.BearerAuth(secret))

	r.Post("/refresh", h.Refresh)
	r.Get("/runs", h.Runs)

	return r
}
