package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"
	"github.com/joshua31324324/user-management/internal/config"
	"github.com/joshua31324324/user-management/internal/httputil"
	"go.uber.org/zap"
)

// RateLimitConfig holds rate limiting configuration for a specific endpoint type.
type RateLimitConfig struct {
	Requests int
	Window   time.Duration
	Logger   *zap.Logger
}

// RateLimit limits each client IP to cfg.Requests per cfg.Window. A
// non-positive Requests disables the limiter.
func RateLimit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	if cfg.Requests <= 0 || cfg.Window <= 0 {
		return NoRateLimit()
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return httprate.Limit(
		cfg.Requests,
		cfg.Window,
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			logger.Warn("rate limit exceeded",
				zap.String("ip", r.RemoteAddr),
				zap.String("path", r.URL.Path),
				zap.String("method", r.Method),
			)
			httputil.Error(w, http.StatusTooManyRequests, "rate limit exceeded. please try again later")
		}),
	)
}

// NoRateLimit returns a no-op middleware when rate limiting is disabled.
func NoRateLimit() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return next
	}
}

// RateLimiters holds one limiter per endpoint group.
type RateLimiters struct {
	Login    func(http.Handler) http.Handler
	Register func(http.Handler) http.Handler
	Verify   func(http.Handler) http.Handler
	Profile  func(http.Handler) http.Handler
}

// CreateRateLimiters builds the per-group limiters. Each group keeps its own
// per-IP budget.
func CreateRateLimiters(cfg config.RateLimitConfig, logger *zap.Logger) RateLimiters {
	if !cfg.Enabled {
		noOp := NoRateLimit()
		return RateLimiters{Login: noOp, Register: noOp, Verify: noOp, Profile: noOp}
	}

	limiter := func(requests int, window time.Duration) func(http.Handler) http.Handler {
		return RateLimit(RateLimitConfig{Requests: requests, Window: window, Logger: logger})
	}

	return RateLimiters{
		Login:    limiter(cfg.LoginLimit, cfg.LoginWindow),
		Register: limiter(cfg.RegisterLimit, cfg.RegisterWindow),
		Verify:   limiter(cfg.VerifyLimit, cfg.VerifyWindow),
		Profile:  limiter(cfg.ProfileLimit, cfg.ProfileWindow),
	}
}
