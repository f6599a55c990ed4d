package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/studyhall-ai/studyhall/internal/api"
	"github.com/studyhall-ai/studyhall/internal/auth"
	"github.com/studyhall-ai/studyhall/internal/domain"
)

type contextKey string

const UserKey contextKey = "user"

// TokenVerifier validates a bearer token and returns its claims.
type TokenVerifier interface {
	Verify(tokenString string) (*auth.Claims, error)
}

// UserProvisioner resolves a token subject to a user record, creating a
// student account on first sight.
type UserProvisioner interface {
	Provision(ctx context.Context, subject, email string) (*domain.User, error)
}

func JWTAuth(verifier TokenVerifier, users UserProvisioner) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				api.Error(w, http.StatusUnauthorized, domain.ErrCodeUnauthorized, "missing authorization header")
				return
			}

			if !strings.HasPrefix(authHeader, "Bearer ") {
				api.Error(w, http.StatusUnauthorized, domain.ErrCodeUnauthorized, "invalid authorization format")
				return
			}

			token := strings.TrimPrefix(authHeader, "Bearer ")

			claims, err := verifier.Verify(token)
			if err != nil {
				api.Error(w, http.StatusUnauthorized, domain.ErrCodeUnauthorized, "invalid or expired token")
				return
			}

			user, err := users.Provision(r.Context(), claims.Subject, claims.Email)
			if err != nil {
				api.HandleError(w, err)
				return
			}

			// Outer middleware read the identity through this header after
			// the handler returns; their context predates this one.
			r.Header.Set("X-User-ID", user.ID)
			ctx := context.WithValue(r.Context(), UserKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUser returns the authenticated user from context.
func GetUser(ctx context.Context) *domain.User {
	user, _ := ctx.Value(UserKey).(*domain.User)
	return user
}

// GetUserID returns the authenticated user's id from context.
func GetUserID(ctx context.Context) string {
	if user := GetUser(ctx); user != nil {
		return user.ID
	}
	return ""
}
