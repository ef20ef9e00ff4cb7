package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joshua31324324/user-management/internal/config"
	"github.com/joshua31324324/user-management/internal/http/features/email"
	"github.com/joshua31324324/user-management/internal/http/features/me"
	"github.com/joshua31324324/user-management/internal/http/features/password"
	"github.com/joshua31324324/user-management/internal/http/features/users"
	"github.com/joshua31324324/user-management/internal/http/middleware"
	"github.com/joshua31324324/user-management/internal/httputil"
	"github.com/joshua31324324/user-management/pkg/auth"
	"go.uber.org/zap"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Logger          *zap.Logger
	Tokens          middleware.TokenValidator
	Accounts        *auth.AccountService
	Users           *auth.UserService
	RateLimitConfig config.RateLimitConfig
	SecurityHeaders config.SecurityHeadersConfig
	Validation      config.ValidationConfig
	CookieSecure    bool
}

// NewRouter creates a new HTTP router with all routes registered.
func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(middleware.Recover(logger))
	r.Use(middleware.Logging(logger))
	r.Use(chimw.StripSlashes)
	r.Use(middleware.SecurityHeaders(cfg.SecurityHeaders))
	r.Use(middleware.RequestSizeLimit(cfg.Validation.MaxRequestBodySize))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	limiters := middleware.CreateRateLimiters(cfg.RateLimitConfig, logger)

	password.NewHandler(logger, cfg.Accounts, httputil.DefaultCookieConfig(cfg.CookieSecure)).
		RegisterRoutes(r, limiters.Register, limiters.Login)
	email.NewHandler(logger, cfg.Accounts).RegisterRoutes(r, limiters.Verify)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(cfg.Tokens))
		r.Use(limiters.Profile)

		me.NewHandler(logger, cfg.Users).RegisterRoutes(r)
		users.NewHandler(logger, cfg.Users).RegisterRoutes(r)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httputil.Error(w, http.StatusNotFound, "Not Found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httputil.Error(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	return r
}
