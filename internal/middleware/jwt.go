package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/crucial707/phonebook/internal/auth"
	"github.com/crucial707/phonebook/internal/metrics"
	"github.com/crucial707/phonebook/internal/models"
)

type key string

const UserKey key = "user"

// TokenValidator resolves a bearer token to a user. *auth.Service implements it.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (models.User, error)
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(authHeader, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// Unauthorized writes a 401 with the Bearer challenge header.
func Unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	writeJSONError(w, message, http.StatusUnauthorized)
}

// JWTMiddleware rejects requests without a valid bearer token and stores the
// resolved user in the request context.
func JWTMiddleware(v TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr, ok := BearerToken(r)
			if !ok {
				metrics.IncAuthEvent("validate", metrics.OutcomeRejected)
				Unauthorized(w, "not authenticated")
				return
			}

			user, err := v.ValidateToken(r.Context(), tokenStr)
			if err != nil {
				if errors.Is(err, auth.ErrUnauthorized) {
					metrics.IncAuthEvent("validate", metrics.OutcomeRejected)
					Unauthorized(w, auth.ErrUnauthorized.Error())
					return
				}
				metrics.IncAuthEvent("validate", metrics.OutcomeError)
				slog.Error("validate token", "path", r.URL.Path, "error", err)
				writeJSONError(w, "internal server error", http.StatusInternalServerError)
				return
			}

			metrics.IncAuthEvent("validate", metrics.OutcomeOK)
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// GetUser returns the authenticated user stored by JWTMiddleware.
func GetUser(ctx context.Context) (models.User, bool) {
	user, ok := ctx.Value(UserKey).(models.User)
	return user, ok
}

// WithUser returns a context carrying user, as JWTMiddleware would set it.
func WithUser(ctx context.Context, user models.User) context.Context {
	return context.WithValue(ctx, UserKey, user)
}
