package email

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/joshua31324324/user-management/internal/httputil"
	"github.com/joshua31324324/user-management/pkg/auth"
	"github.com/joshua31324324/user-management/pkg/domain"
	"go.uber.org/zap"
)

// Handler serves email verification links.
type Handler struct {
	logger   *zap.Logger
	accounts *auth.AccountService
}

// NewHandler creates a new email verification handler.
func NewHandler(logger *zap.Logger, accounts *auth.AccountService) *Handler {
	return &Handler{
		logger:   logger,
		accounts: accounts,
	}
}

type MessageResponse struct {
	Message string `json:"message"`
}

// VerifyEmail confirms the address of the account named in the link.
// GET /verify-email/{id}/{token}
func (h *Handler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, r, h.logger, domain.ErrVerificationTokenInvalid)
		return
	}

	if _, err := h.accounts.VerifyEmail(r.Context(), id, chi.URLParam(r, "token")); err != nil {
		httputil.WriteError(w, r, h.logger, err)
		return
	}

	h.logger.Info("email verified", zap.String("user_id", id.String()))
	httputil.JSON(w, http.StatusOK, MessageResponse{Message: "Email verified successfully"})
}
