package users

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/joshua31324324/user-management/internal/http/features/common"
	"github.com/joshua31324324/user-management/internal/http/middleware"
	"github.com/joshua31324324/user-management/internal/httputil"
	"github.com/joshua31324324/user-management/pkg/auth"
	"github.com/joshua31324324/user-management/pkg/domain"
	"go.uber.org/zap"
)

// Handler handles account administration endpoints.
type Handler struct {
	logger *zap.Logger
	users  *auth.UserService
}

// NewHandler creates a new users handler.
func NewHandler(logger *zap.Logger, users *auth.UserService) *Handler {
	return &Handler{
		logger: logger,
		users:  users,
	}
}

// CreateRequest represents an account created by a manager or admin.
type CreateRequest struct {
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Name     *string `json:"name,omitempty"`
	Role     string  `json:"role,omitempty"`
}

// List returns one page of accounts.
// GET /users?page=1&size=20
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page, err := queryInt(r, "page", 1)
	if err != nil {
		httputil.WriteError(w, r, h.logger, err)
		return
	}
	size, err := queryInt(r, "size", auth.DefaultPageSize)
	if err != nil {
		httputil.WriteError(w, r, h.logger, err)
		return
	}

	result, err := h.users.List(r.Context(), middleware.ActorFrom(r.Context()), page, size)
	if err != nil {
		httputil.WriteError(w, r, h.logger, err)
		return
	}

	httputil.JSON(w, http.StatusOK, common.NewPageResponse(result))
}

// Create adds an account.
// POST /users
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteDecodeError(w, r, h.logger, err)
		return
	}

	user, err := h.users.Create(r.Context(), middleware.ActorFrom(r.Context()), auth.CreateUserRequest{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Role:     req.Role,
	})
	if err != nil {
		httputil.WriteError(w, r, h.logger, err)
		return
	}

	httputil.JSON(w, http.StatusCreated, common.NewUserResponse(user))
}

// Get returns one account.
// GET /users/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.Get(r.Context(), middleware.ActorFrom(r.Context()), common.ParseUserID(chi.URLParam(r, "id")))
	if err != nil {
		httputil.WriteError(w, r, h.logger, err)
		return
	}

	httputil.JSON(w, http.StatusOK, common.NewUserResponse(user))
}

// Update applies a partial update.
// PUT /users/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, h.users.Update)
}

// UpdateProfile replaces the profile; name is required.
// PUT /users/{id}/profile
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, h.users.UpdateProfile)
}

type updateFunc func(ctx context.Context, actor domain.Actor, id uuid.UUID, upd auth.ProfileUpdate) (*domain.User, error)

func (h *Handler) update(w http.ResponseWriter, r *http.Request, apply updateFunc) {
	var req auth.ProfileUpdate
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteDecodeError(w, r, h.logger, err)
		return
	}

	user, err := apply(r.Context(), middleware.ActorFrom(r.Context()), common.ParseUserID(chi.URLParam(r, "id")), req)
	if err != nil {
		httputil.WriteError(w, r, h.logger, err)
		return
	}

	httputil.JSON(w, http.StatusOK, common.NewUserResponse(user))
}

// Delete removes an account.
// DELETE /users/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.users.Delete(r.Context(), middleware.ActorFrom(r.Context()), common.ParseUserID(chi.URLParam(r, "id"))); err != nil {
		httputil.WriteError(w, r, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Upgrade promotes an account to professional.
// PUT /users/{id}/upgrade
func (h *Handler) Upgrade(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.Upgrade(r.Context(), middleware.ActorFrom(r.Context()), common.ParseUserID(chi.URLParam(r, "id")))
	if err != nil {
		httputil.WriteError(w, r, h.logger, err)
		return
	}

	httputil.JSON(w, http.StatusOK, common.NewUserResponse(user))
}

// Unlock clears an account's lockout.
// POST /users/{id}/unlock
func (h *Handler) Unlock(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.Unlock(r.Context(), middleware.ActorFrom(r.Context()), common.ParseUserID(chi.URLParam(r, "id")))
	if err != nil {
		httputil.WriteError(w, r, h.logger, err)
		return
	}

	httputil.JSON(w, http.StatusOK, common.NewUserResponse(user))
}

func queryInt(r *http.Request, key string, fallback int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return 0, domain.InvalidField(key, "must be a positive integer")
	}
	return v, nil
}
