package middleware

import (
	"net/http"
	"strconv"

	"github.com/joshua31324324/user-management/internal/config"
)

type header struct {
	name  string
	value string
}

// responseHeaders resolves the configured values once. Empty values are skipped.
func responseHeaders(cfg config.SecurityHeadersConfig) []header {
	candidates := []header{
		{"Content-Security-Policy", cfg.CSP},
		{"X-Frame-Options", cfg.FrameOptions},
		{"X-Content-Type-Options", cfg.ContentTypeOptions},
		{"X-XSS-Protection", cfg.XSSProtection},
		{"Referrer-Policy", cfg.ReferrerPolicy},
		{"Permissions-Policy", cfg.PermissionsPolicy},
		// Account data must not be cached by intermediaries.
		{"Cache-Control", "no-store"},
	}
	if cfg.HSTSMaxAge > 0 {
		candidates = append(candidates, header{"Strict-Transport-Security", "max-age=" + strconv.Itoa(cfg.HSTSMaxAge) + "; includeSubDomains"})
	}

	headers := candidates[:0]
	for _, h := range candidates {
		if h.value != "" {
			headers = append(headers, h)
		}
	}
	return headers
}

// SecurityHeaders sets the configured security headers on every response.
func SecurityHeaders(cfg config.SecurityHeadersConfig) func(http.Handler) http.Handler {
	if !cfg.Enabled {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	headers := responseHeaders(cfg)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, h := range headers {
				w.Header().Set(h.name, h.value)
			}
			next.ServeHTTP(w, r)
		})
	}
}
