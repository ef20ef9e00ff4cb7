// Package idm assembles the user-management service: account storage,
// token issuing, authorization and the HTTP surface.
//
// Basic usage:
//
//	db, _ := sql.Open("postgres", "postgres://localhost/myapp?sslmode=disable")
//
//	svc, err := idm.New(idm.Config{
//	    DB:        db,
//	    JWTSecret: "your-secret-key-at-least-32-chars",
//	})
//	if err != nil {
//	    log.Fatal(err) // fails if migrations haven't been run
//	}
//
//	http.ListenAndServe(":8080", svc.Router())
//
// Tests and single-process deployments can pass an in-memory Store instead
// of a DB.
package idm

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/joshua31324324/user-management/internal/config"
	httpserver "github.com/joshua31324324/user-management/internal/http"
	"github.com/joshua31324324/user-management/internal/http/middleware"
	"github.com/joshua31324324/user-management/internal/httputil"
	"github.com/joshua31324324/user-management/pkg/auth"
	"github.com/joshua31324324/user-management/pkg/domain"
	"github.com/joshua31324324/user-management/pkg/repository"
	"go.uber.org/zap"
)

const minSecretLength = 32

// Config holds the configuration for the service.
type Config struct {
	// DB is a Postgres connection. Either DB or Store is required.
	DB *sql.DB

	// Store overrides DB with another account store.
	Store auth.AccountStore

	// JWTSecret is the HS256 signing key (required, min 32 chars).
	JWTSecret string

	// JWTIssuer is the issuer claim in access tokens (default: "user-management").
	JWTIssuer string

	// AccessTokenTTL is the lifetime of access tokens (default: 30 minutes).
	AccessTokenTTL time.Duration

	// MaxLoginAttempts is the consecutive failure count that locks an account (default: 5).
	MaxLoginAttempts int

	// PasswordPolicy applies to registration and admin-created accounts.
	// Nil accepts any non-empty password.
	PasswordPolicy *auth.PasswordPolicy

	EmailRules auth.EmailRules

	// Notifier delivers verification tokens (default: discards them).
	Notifier auth.Notifier

	// Logger is the structured logger (default: no-op).
	Logger *zap.Logger

	RateLimit       config.RateLimitConfig
	SecurityHeaders config.SecurityHeadersConfig
	Validation      config.ValidationConfig
	CookieSecure    bool
}

// IDM is a wired service instance.
type IDM struct {
	config   Config
	store    auth.AccountStore
	tokens   *auth.TokenService
	accounts *auth.AccountService
	users    *auth.UserService
}

// New creates a service instance. With a DB it verifies that the users table
// exists; run repository.Migrate first.
func New(cfg Config) (*IDM, error) {
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)

	store := cfg.Store
	if store == nil {
		if err := validateSchema(context.Background(), cfg.DB); err != nil {
			return nil, err
		}
		store = repository.NewUsersRepository(cfg.DB)
	}

	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.JWTIssuer, cfg.AccessTokenTTL)
	authz := auth.NewPolicy()
	lifecycle := auth.NewLoginLifecycle(store, tokens, cfg.MaxLoginAttempts, cfg.Logger)
	profiles := auth.NewProfileUpdatePolicy(authz, cfg.EmailRules)

	return &IDM{
		config:   cfg,
		store:    store,
		tokens:   tokens,
		accounts: auth.NewAccountService(store, lifecycle, cfg.PasswordPolicy, cfg.EmailRules, cfg.Notifier, cfg.Logger),
		users:    auth.NewUserService(store, authz, profiles, lifecycle, cfg.PasswordPolicy, cfg.EmailRules, cfg.Logger),
	}, nil
}

// Router returns the HTTP handler with every route registered:
//
//	GET    /health
//	POST   /register
//	POST   /login
//	GET    /verify-email/{id}/{token}
//	GET    /me
//	PUT    /me
//	GET    /users
//	POST   /users
//	GET    /users/{id}
//	PUT    /users/{id}
//	DELETE /users/{id}
//	PUT    /users/{id}/profile
//	PUT    /users/{id}/upgrade
//	POST   /users/{id}/unlock
func (i *IDM) Router() http.Handler {
	return httpserver.NewRouter(httpserver.RouterConfig{
		Logger:          i.config.Logger,
		Tokens:          i.tokens,
		Accounts:        i.accounts,
		Users:           i.users,
		RateLimitConfig: i.config.RateLimit,
		SecurityHeaders: i.config.SecurityHeaders,
		Validation:      i.config.Validation,
		CookieSecure:    i.config.CookieSecure,
	})
}

// Accounts returns the registration and login service.
func (i *IDM) Accounts() *auth.AccountService {
	return i.accounts
}

// Users returns the authorized account management service.
func (i *IDM) Users() *auth.UserService {
	return i.users
}

// Tokens returns the access token service.
func (i *IDM) Tokens() *auth.TokenService {
	return i.tokens
}

// Store returns the underlying account store.
func (i *IDM) Store() auth.AccountStore {
	return i.store
}

// AuthMiddleware resolves the caller of each request. Use it to protect your
// own routes:
//
//	r.Group(func(r chi.Router) {
//	    r.Use(svc.AuthMiddleware())
//	    r.Get("/protected", handler)
//	})
func (i *IDM) AuthMiddleware() func(http.Handler) http.Handler {
	return middleware.Authenticate(i.tokens)
}

// ActorFromContext returns the caller resolved by AuthMiddleware.
func ActorFromContext(ctx context.Context) domain.Actor {
	return middleware.ActorFrom(ctx)
}

// HealthHandler returns a simple health check handler.
func (i *IDM) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httputil.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

type discardNotifier struct{}

func (discardNotifier) SendVerification(context.Context, *domain.User, string) error {
	return nil
}

func validateConfig(cfg *Config) error {
	if cfg.DB == nil && cfg.Store == nil {
		return errors.New("idm: DB or Store is required")
	}
	if cfg.JWTSecret == "" {
		return errors.New("idm: JWTSecret is required")
	}
	if len(cfg.JWTSecret) < minSecretLength {
		return fmt.Errorf("idm: JWTSecret must be at least %d characters", minSecretLength)
	}
	if cfg.MaxLoginAttempts < 0 {
		return errors.New("idm: MaxLoginAttempts must not be negative")
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.JWTIssuer == "" {
		cfg.JWTIssuer = "user-management"
	}
	if cfg.AccessTokenTTL == 0 {
		cfg.AccessTokenTTL = 30 * time.Minute
	}
	if cfg.MaxLoginAttempts == 0 {
		cfg.MaxLoginAttempts = auth.DefaultMaxLoginAttempts
	}
	if cfg.Notifier == nil {
		cfg.Notifier = discardNotifier{}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
}

// validateSchema checks that the users table exists.
func validateSchema(ctx context.Context, db *sql.DB) error {
	const query = `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = 'public' AND table_name = $1
	`

	var name string
	err := db.QueryRowContext(ctx, query, "users").Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return errors.New("idm: missing table 'users' - run migrations first")
	}
	if err != nil {
		return fmt.Errorf("idm: failed to check schema: %w", err)
	}
	return nil
}
