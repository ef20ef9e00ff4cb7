package httputil

import (
	"net/http"
	"time"
)

const accessTokenCookie = "access_token"

// CookieConfig controls the attributes of the access token cookie.
type CookieConfig struct {
	Domain   string
	Path     string
	Secure   bool
	SameSite http.SameSite
}

// DefaultCookieConfig scopes the cookie to the whole site. Secure should be
// true whenever the service is reached over HTTPS.
func DefaultCookieConfig(secure bool) CookieConfig {
	return CookieConfig{
		Path:     "/",
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// SetAccessTokenCookie mirrors a login's bearer token into an HttpOnly cookie
// that expires with the token.
func SetAccessTokenCookie(w http.ResponseWriter, token string, ttl time.Duration, cfg CookieConfig) {
	maxAge := int(ttl / time.Second)
	if maxAge <= 0 {
		// Session cookie.
		maxAge = 0
	}

	http.SetCookie(w, &http.Cookie{
		Name:     accessTokenCookie,
		Value:    token,
		Path:     cfg.Path,
		Domain:   cfg.Domain,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: cfg.SameSite,
	})
}

// GetAccessTokenFromCookie returns the token a browser client sent back.
func GetAccessTokenFromCookie(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(accessTokenCookie)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}
