package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Idahel/js-project-api/internal/store"
	"github.com/Idahel/js-project-api/types"
)

const (
	msgNoToken      = "Unauthorized: No access token provided."
	msgInvalidToken = "Unauthorized: Access token invalid or missing."
)

type contextKey string

const contextUserKey contextKey = "user"

var (
	errMissingToken   = errors.New("missing access token")
	errMalformedToken = errors.New("malformed authorization header")
)

// TokenAuthenticator resolves an access token to the user holding it.
type TokenAuthenticator interface {
	Authenticate(ctx context.Context, token string) (types.User, error)
}

// RequireAuth looks the bearer token up in the store and attaches the
// resolved user to the request.
func RequireAuth(auth TokenAuthenticator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := bearerToken(r)
			if errors.Is(err, errMissingToken) {
				writeError(w, http.StatusUnauthorized, msgNoToken, nil)
				return
			}
			if err != nil {
				logger.WarnContext(r.Context(), "rejected authorization header", "path", r.URL.Path)
				writeError(w, http.StatusUnauthorized, msgInvalidToken, nil)
				return
			}

			user, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					logger.WarnContext(r.Context(), "rejected access token", "path", r.URL.Path)
					writeError(w, http.StatusUnauthorized, msgInvalidToken, nil)
					return
				}
				logger.ErrorContext(r.Context(), "failed to resolve access token", "error", err)
				writeError(w, http.StatusInternalServerError, "Could not verify access token.", nil)
				return
			}

			ctx := context.WithValue(r.Context(), contextUserKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext returns the user attached by RequireAuth.
func UserFromContext(ctx context.Context) (types.User, bool) {
	user, ok := ctx.Value(contextUserKey).(types.User)
	return user, ok
}

// authedHandlerFunc receives the authenticated caller as an argument.
type authedHandlerFunc func(w http.ResponseWriter, r *http.Request, user types.User)

// withUser adapts fn to http.HandlerFunc. It must run behind RequireAuth.
func withUser(fn authedHandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, msgInvalidToken, nil)
			return
		}
		fn(w, r, user)
	}
}

// bearerToken extracts the token from an "Authorization: Bearer <token>"
// header.
func bearerToken(r *http.Request) (string, error) {
	auth := strings.TrimSpace(r.Header.Get("Authorization"))
	if auth == "" || strings.EqualFold(auth, "Bearer") {
		return "", errMissingToken
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errMalformedToken
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", errMissingToken
	}
	return token, nil
}
