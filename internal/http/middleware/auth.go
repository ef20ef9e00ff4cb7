package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/joshua31324324/user-management/internal/httputil"
	"github.com/joshua31324324/user-management/pkg/domain"
)

type contextKey string

// ActorKey is the context key for the authenticated actor.
const ActorKey contextKey = "actor"

// TokenValidator turns an access token into the actor it was issued to.
type TokenValidator interface {
	Validate(token string) (domain.Actor, error)
}

// Authenticate resolves the caller from the Authorization header, falling back
// to the access_token cookie for web clients. Requests without a token carry
// domain.Anonymous; requests with an invalid token are rejected with 401.
func Authenticate(tokens TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := bearerToken(r)
			if tokenString == "" {
				if token, ok := httputil.GetAccessTokenFromCookie(r); ok {
					tokenString = token
				}
			}

			actor := domain.Anonymous
			if tokenString != "" {
				var err error
				actor, err = tokens.Validate(tokenString)
				if err != nil {
					w.Header().Set("WWW-Authenticate", "Bearer")
					httputil.Error(w, http.StatusUnauthorized, "Could not validate credentials")
					return
				}
			}

			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		})
	}
}

func bearerToken(r *http.Request) string {
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// WithActor returns a copy of ctx carrying actor.
func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, ActorKey, actor)
}

// ActorFrom extracts the actor from the request context, or domain.Anonymous.
func ActorFrom(ctx context.Context) domain.Actor {
	if actor, ok := ctx.Value(ActorKey).(domain.Actor); ok {
		return actor
	}
	return domain.Anonymous
}
