package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/rogerio-castellano/inventory-master/internal/auth"
	"github.com/rs/zerolog/log"
)

type contextKey string

const (
	userIDKey = contextKey("user_id")
	roleKey   = contextKey("role")
)

func authenticate(w http.ResponseWriter, r *http.Request, next http.Handler, raw string) {
	_, claims, err := auth.TokenClaims(raw)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	sub, _ := claims["sub"].(string)
	userID, err := uuid.Parse(sub)
	if err != nil {
		log.Debug().Str("sub", sub).Msg("token subject is not a uuid")
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}
	role, _ := claims["role"].(string)

	ctx := context.WithValue(r.Context(), userIDKey, userID)
	ctx = context.WithValue(ctx, roleKey, role)
	next.ServeHTTP(w, r.WithContext(ctx))
}

// Auth requires a valid "Authorization: Bearer" access token.
func Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			http.Error(w, "missing or invalid token", http.StatusUnauthorized)
			return
		}
		authenticate(w, r, next, header)
	})
}

// AuthFromQuery accepts the access token from the access_token query
// parameter as well, since EventSource cannot set headers.
func AuthFromQuery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
			authenticate(w, r, next, header)
			return
		}
		token := r.URL.Query().Get("access_token")
		if token == "" {
			http.Error(w, "missing or invalid token", http.StatusUnauthorized)
			return
		}
		authenticate(w, r, next, token)
	})
}

// RequireRole lets only users with role through. It must run after Auth.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if RoleFromContext(r.Context()) != role {
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(userIDKey).(uuid.UUID)
	return id, ok
}

func RoleFromContext(ctx context.Context) string {
	role, _ := ctx.Value(roleKey).(string)
	return role
}
