package password

import (
	"net/http"
	"strings"
	"time"

	"github.com/joshua31324324/user-management/internal/http/features/common"
	"github.com/joshua31324324/user-management/internal/httputil"
	"github.com/joshua31324324/user-management/pkg/auth"
	"github.com/joshua31324324/user-management/pkg/domain"
	"go.uber.org/zap"
)

// Handler handles registration and password login.
type Handler struct {
	logger       *zap.Logger
	accounts     *auth.AccountService
	cookieConfig httputil.CookieConfig
}

// NewHandler creates a new password handler.
func NewHandler(logger *zap.Logger, accounts *auth.AccountService, cookieConfig httputil.CookieConfig) *Handler {
	return &Handler{
		logger:       logger,
		accounts:     accounts,
		cookieConfig: cookieConfig,
	}
}

// RegisterRequest represents a registration request.
type RegisterRequest struct {
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Name     *string `json:"name,omitempty"`
	Role     string  `json:"role,omitempty"`
}

// TokenResponse is returned by a successful login.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Register handles self-service registration.
// POST /register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteDecodeError(w, r, h.logger, err)
		return
	}

	user, err := h.accounts.Register(r.Context(), auth.RegisterRequest{
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

// Login exchanges credentials for an access token. It accepts the OAuth2
// password form (username, password) or a JSON body with email or username.
// POST /login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	body, err := httputil.DecodeBody(r)
	if err != nil {
		httputil.WriteDecodeError(w, r, h.logger, err)
		return
	}

	identifier := body["username"]
	if identifier == "" {
		identifier = body["email"]
	}
	if strings.TrimSpace(identifier) == "" {
		httputil.WriteError(w, r, h.logger, domain.MissingField("username"))
		return
	}
	if body["password"] == "" {
		httputil.WriteError(w, r, h.logger, domain.MissingField("password"))
		return
	}

	token, err := h.accounts.Login(r.Context(), identifier, body["password"])
	if err != nil {
		httputil.WriteError(w, r, h.logger, err)
		return
	}

	httputil.SetAccessTokenCookie(w, token.Token, time.Until(token.ExpiresAt), h.cookieConfig)
	httputil.JSON(w, http.StatusOK, TokenResponse{
		AccessToken: token.Token,
		TokenType:   token.TokenType,
	})
}
