package api

import (
	"context"
	"errors"
	"net/http"

	"mikroblog/internal/auth"
	"mikroblog/internal/models"
)

type contextKey string

const userContextKey = contextKey("user")

// AuthMiddleware resolves the acting user for endpoints that require one.
// With no strategies configured the request proceeds anonymously (legacy
// open-posting mode). The identity lives only in the request context.
func (s *Server) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.resolver.Enabled() {
			next.ServeHTTP(w, r)
			return
		}

		user, err := s.resolver.Resolve(r.Context(), r.Header.Get("Authorization"))
		if err != nil {
			if errors.Is(err, auth.ErrUnauthenticated) {
				writeError(w, http.StatusUnauthorized, "")
			} else {
				writeError(w, http.StatusInternalServerError, "")
			}
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func GetUserFromContext(ctx context.Context) *models.User {
	if user, ok := ctx.Value(userContextKey).(*models.User); ok {
		return user
	}
	return nil
}
