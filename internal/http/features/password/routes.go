package password

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers registration and login routes behind their rate limiters.
func (h *Handler) RegisterRoutes(r chi.Router, registerLimit, loginLimit func(http.Handler) http.Handler) {
	r.With(registerLimit).Post("/register", h.Register)
	r.With(loginLimit).Post("/login", h.Login)
}
