package users

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers the account administration routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/users", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
		r.Put("/{id}/profile", h.UpdateProfile)
		r.Put("/{id}/upgrade", h.Upgrade)
		r.Post("/{id}/unlock", h.Unlock)
	})
}
