package middleware

import (
	"context"
	"net/http"
	"os"
	"strings"

	"github.com/vaughan-dsouza/storygram/internal/utils"
)

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}

	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// Auth rejects requests without a valid access token and pushes the
// user's id into the request context.
func Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		claims, err := utils.VerifyToken(token, os.Getenv("ACCESS_SECRET"))
		if err != nil {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), utils.CtxUserIDKey, claims.UserID())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OptionalAuth attaches the user's id when a valid token is present but
// lets anonymous requests through. The feed uses it: signed-out viewers
// still see posts, just without their own like state.
func OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token := bearerToken(r); token != "" {
			if claims, err := utils.VerifyToken(token, os.Getenv("ACCESS_SECRET")); err == nil {
				ctx := context.WithValue(r.Context(), utils.CtxUserIDKey, claims.UserID())
				r = r.WithContext(ctx)
			}
		}
		next.ServeHTTP(w, r)
	})
}
