package email

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers email verification routes.
func (h *Handler) RegisterRoutes(r chi.Router, limit func(http.Handler) http.Handler) {
	r.With(limit).Get("/verify-email/{id}/{token}", h.VerifyEmail)
}
