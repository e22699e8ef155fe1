package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/akormin/logoorder/internal/service"
)

type contextKey int

const (
	contextKeyLogin contextKey = iota
)

// Auth verifies the operator session token. The token is taken from the
// Authorization header ("Bearer <token>") or, failing that, the auth_token
// cookie.
func Auth(ts service.TokenService) func(handler http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := ""
			if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
				tokenString = strings.TrimPrefix(h, "Bearer ")
			} else if cookie, err := r.Cookie("auth_token"); err == nil {
				tokenString = cookie.Value
			}
			if tokenString == "" {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			payload, err := ts.VerifyToken(tokenString)
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), contextKeyLogin, payload.Login)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Login extracts the authenticated operator login from the request context
func Login(ctx context.Context) (string, bool) {
	login, ok := ctx.Value(contextKeyLogin).(string)
	return login, ok
}
