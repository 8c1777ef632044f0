package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/edvin/dockpanel/internal/api/response"
)

type contextKey string

const ActorKey contextKey = "actor"

// AdminActor is recorded as the acting user for requests authenticated
// with the admin key.
const AdminActor = "admin"

// Auth returns a middleware that admits only requests carrying the admin
// key, either as X-API-Key or as a bearer token.
func Auth(adminKey string) func(http.Handler) http.Handler {
	want := []byte(adminKey)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get("X-API-Key")
			if key == "" {
				key = extractAPIKey(r)
			}
			if key == "" {
				response.WriteError(w, http.StatusUnauthorized, "missing API key")
				return
			}
			if len(want) == 0 || subtle.ConstantTimeCompare([]byte(key), want) != 1 {
				response.WriteError(w, http.StatusUnauthorized, "invalid API key")
				return
			}

			ctx := context.WithValue(r.Context(), ActorKey, AdminActor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractAPIKey returns the token of an "Authorization: Bearer" header.
func extractAPIKey(r *http.Request) string {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}

// Actor returns the authenticated actor, or "" outside the auth middleware.
func Actor(ctx context.Context) string {
	actor, _ := ctx.Value(ActorKey).(string)
	return actor
}
