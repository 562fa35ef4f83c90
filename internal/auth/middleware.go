package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// contextKey is private so no other package can read or shadow the values.
type contextKey string

const (
	userIDKey contextKey = "userID"
	tokenKey  contextKey = "token"
)

// CookieName is the cookie that carries the session token.
const CookieName = "token"

var errNoToken = errors.New("auth: no token")

// RequireAuth rejects requests without a valid session with 401 and a JSON
// body in the same shape the handlers use for errors.
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, userID, err := authenticate(r, tokens)
			if err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error":"unauthorized","message":"valid authentication required"}`))
				return
			}
			next.ServeHTTP(w, r.WithContext(withSession(r.Context(), userID, token)))
		})
	}
}

// OptionalAuth attaches the session when one is present and valid, and lets
// anonymous requests through untouched. The game page runs behind it.
func OptionalAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token, userID, err := authenticate(r, tokens); err == nil {
				r = r.WithContext(withSession(r.Context(), userID, token))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// UserIDFromContext returns (0, false) for anonymous requests.
func UserIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey).(int64)
	return id, ok && id > 0
}

// TokenFromContext returns the raw token the request authenticated with, so
// it can be forwarded to the API.
func TokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey).(string)
	return token
}

func withSession(ctx context.Context, userID int64, token string) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	return context.WithValue(ctx, tokenKey, token)
}

// authenticate prefers the Authorization header over the cookie.
func authenticate(r *http.Request, tokens *TokenService) (string, int64, error) {
	token := bearerToken(r)
	if token == "" {
		if cookie, err := r.Cookie(CookieName); err == nil {
			token = cookie.Value
		}
	}
	if token == "" {
		return "", 0, errNoToken
	}

	userID, err := tokens.Validate(token)
	if err != nil {
		return "", 0, err
	}
	return token, userID, nil
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) < 7 || !strings.EqualFold(h[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(h[7:])
}
