package handlers

import (
	"context"
	"net/http"
	"slices"
	"strings"

	"github.com/agendly/agendly/libs/auth"
	"github.com/agendly/agendly/libs/httpx"
)

type ctxKey int

const claimsKey ctxKey = iota

// ClaimsFromContext returns the verified claims RequireAuth stored, or nil
// on an unauthenticated request.
func ClaimsFromContext(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(claimsKey).(*auth.Claims)
	return claims
}

// RequireAuth verifies the Bearer token and, when roles are given, rejects
// tokens whose role is not among them.
func RequireAuth(secret string, roles ...string) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
			if !strings.HasPrefix(header, "Bearer ") || token == "" {
				http.Error(w, "missing or invalid Authorization header", http.StatusUnauthorized)
				return
			}

			claims, err := auth.ParseAndVerifyHS256(token, secret)
			if err != nil {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}
			if len(roles) > 0 && !slices.Contains(roles, claims.Role) {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey, claims)))
		})
	}
}
