package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/hugh/hr-manager/internal/auth"
	"github.com/hugh/hr-manager/internal/database/models"
)

type contextKey string

const SessionUserKey contextKey = "session_user"

// Session rejects requests without a live session and attaches the
// resolved user to the request context. The token is read from the session
// cookie, or from an Authorization: Bearer header for API clients.
func Session(validator auth.SessionValidator, cookieName string) func(http.Handler) http.Handler {
	if cookieName == "" {
		cookieName = auth.SessionCookieName
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := sessionToken(r, cookieName)
			if token == "" {
				writeError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			user, err := validator.ValidateToken(r.Context(), token)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			ctx := context.WithValue(r.Context(), SessionUserKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func sessionToken(r *http.Request, cookieName string) string {
	if cookie, err := r.Cookie(cookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}

	return ""
}

// Helper functions to extract values from context
func GetSessionUser(ctx context.Context) *auth.SessionUser {
	if user, ok := ctx.Value(SessionUserKey).(*auth.SessionUser); ok {
		return user
	}
	return nil
}

func GetUserID(ctx context.Context) uint {
	if user := GetSessionUser(ctx); user != nil {
		return user.ID
	}
	return 0
}

func GetUserRole(ctx context.Context) models.Role {
	if user := GetSessionUser(ctx); user != nil {
		return user.Role
	}
	return ""
}

// RequireRole admits the request only if the session user holds one of
// roles. An empty list admits any authenticated user. Must run after
// Session.
func RequireRole(roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := GetSessionUser(r.Context())
			if user == nil {
				writeError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			if len(roles) == 0 {
				next.ServeHTTP(w, r)
				return
			}

			for _, role := range roles {
				if user.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			writeError(w, http.StatusForbidden, "Forbidden")
		})
	}
}
