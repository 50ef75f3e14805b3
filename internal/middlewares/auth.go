package middlewares

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/sbilibin2017/gw-user-service/internal/jwt"
	"github.com/sbilibin2017/gw-user-service/internal/logger"
)

// TokenParser defines the minimal token interface needed by the middleware.
type TokenParser interface {
	TokenFromRequest(ctx context.Context, r *http.Request) (string, error)
	ParseAccess(ctx context.Context, tokenString string) (*jwt.Claims, error)
}

// contextKey is an unexported type for keys in context.
type contextKey struct{}

var claimsKey = contextKey{}

// ClaimsFromContext retrieves the authenticated identity from the
// context. Returns nil if the request was not authenticated.
func ClaimsFromContext(ctx context.Context) *jwt.Claims {
	claims, _ := ctx.Value(claimsKey).(*jwt.Claims)
	return claims
}

func setClaims(ctx context.Context, claims *jwt.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// AuthMiddleware validates the bearer token and attaches the decoded
// identity to the request context. A missing token is 401, a rejected
// token is 403.
func AuthMiddleware(parser TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			tokenString, err := parser.TokenFromRequest(ctx, r)
			if err != nil {
				writeAuthError(w, http.StatusUnauthorized, "Access token required")
				return
			}

			claims, err := parser.ParseAccess(ctx, tokenString)
			if err != nil {
				logger.Log.Debugw("token rejected", "err", err)
				writeAuthError(w, http.StatusForbidden, "Invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(setClaims(ctx, claims)))
		})
	}
}

// RequireRole rejects authenticated requests whose role is not in the
// allowed set. Must be applied after AuthMiddleware.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := ClaimsFromContext(r.Context())
			if claims == nil {
				writeAuthError(w, http.StatusUnauthorized, "Authentication required")
				return
			}

			if !allowed[claims.Role] {
				writeAuthError(w, http.StatusForbidden, "Insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"error": map[string]any{
			"message": message,
			"status":  status,
		},
	})
}
