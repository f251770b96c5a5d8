package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/user/contactdesk-go/apperror"
	"github.com/user/contactdesk-go/config"
)

// ContextKey is a private key type for context values, preventing collisions
// with keys set by other packages.
type ContextKey string

const (
	// UserIDKey is the context key under which the authenticated user's id
	// is stored by JWTMiddleware.
	UserIDKey ContextKey = "userID"
)

// JWTMiddleware validates the bearer token on incoming requests and resolves
// it to a numeric user id in the request context. Handlers behind this
// middleware trust only that context value for authorization; user ids in
// request bodies or paths are never used as the caller identity.
func JWTMiddleware(cfg *config.AuthConfig) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				WriteError(w, r, apperror.NewAuthError("authorization header is missing", nil))
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				WriteError(w, r, apperror.NewAuthError("authorization header format must be Bearer {token}", nil))
				return
			}

			claims := &Claims{}
			token, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
				}
				return []byte(cfg.JWTSecret), nil
			})
			if err != nil {
				WriteError(w, r, apperror.NewAuthError("invalid or expired token", err))
				return
			}
			if !token.Valid {
				WriteError(w, r, apperror.NewAuthError("invalid token", nil))
				return
			}

			// The identity claim must resolve to a usable user id; a token
			// without one authenticates nobody.
			if claims.UserID <= 0 {
				WriteError(w, r, apperror.NewAuthError("token is missing the user identity claim", nil))
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, claims.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserIDFromContext retrieves the authenticated user id placed in the
// context by JWTMiddleware. The second return value is false when the
// request never passed through the middleware.
func GetUserIDFromContext(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(UserIDKey).(int64)
	return userID, ok
}
