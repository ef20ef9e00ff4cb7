package me

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/joshua31324324/user-management/internal/http/features/common"
	"github.com/joshua31324324/user-management/internal/http/middleware"
	"github.com/joshua31324324/user-management/internal/httputil"
	"github.com/joshua31324324/user-management/pkg/auth"
	"go.uber.org/zap"
)

// Handler handles the caller's own profile.
type Handler struct {
	logger *zap.Logger
	users  *auth.UserService
}

// NewHandler creates a new me handler.
func NewHandler(logger *zap.Logger, users *auth.UserService) *Handler {
	return &Handler{
		logger: logger,
		users:  users,
	}
}

// RegisterRoutes registers the profile routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/me", h.GetMe)
	r.Put("/me", h.UpdateMe)
}

// GetMe returns the current user's profile.
// GET /me
func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFrom(r.Context())

	user, err := h.users.Get(r.Context(), actor, actor.ID)
	if err != nil {
		httputil.WriteError(w, r, h.logger, err)
		return
	}

	httputil.JSON(w, http.StatusOK, common.NewUserResponse(user))
}

// UpdateMe applies a partial update to the current user's profile.
// PUT /me
func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFrom(r.Context())

	var req auth.ProfileUpdate
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteDecodeError(w, r, h.logger, err)
		return
	}

	user, err := h.users.Update(r.Context(), actor, actor.ID, req)
	if err != nil {
		httputil.WriteError(w, r, h.logger, err)
		return
	}

	httputil.JSON(w, http.StatusOK, common.NewUserResponse(user))
}
