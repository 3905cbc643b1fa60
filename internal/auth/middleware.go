package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/logo-playground/api/internal/httputil"
)

// ContextKey is a type for context keys to avoid collisions
type ContextKey string

const (
	SessionContextKey ContextKey = "session"
)

// Middleware gates routes that require an authenticated session. Resolution
// always runs before any resource logic: a request without a live session
// never reaches a repository.
type Middleware struct {
	sessions *SessionManager
}

func NewMiddleware(sessions *SessionManager) *Middleware {
	return &Middleware{sessions: sessions}
}

// RequireSession rejects the request with 401 unless a live session resolves,
// and attaches the resolved session to the request context.
func (m *Middleware) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := ExtractToken(r)
		if !ok {
			httputil.RespondErrorWithCode(w, "invalid authorization header format", httputil.CodeInvalidAuthHeader, http.StatusUnauthorized)
			return
		}
		if token == "" {
			httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
			return
		}

		session, err := m.sessions.Resolve(r.Context(), token)
		if err != nil {
			if errors.Is(err, ErrSessionExpired) {
				httputil.RespondErrorWithCode(w, "session has expired", httputil.CodeSessionExpired, http.StatusUnauthorized)
				return
			}
			if errors.Is(err, ErrSessionNotFound) {
				httputil.RespondErrorWithCode(w, "invalid session", httputil.CodeSessionInvalid, http.StatusUnauthorized)
				return
			}
			httputil.RespondErrorWithCode(w, "failed to resolve session", httputil.CodeInternalError, http.StatusInternalServerError)
			return
		}

		ctx := context.WithValue(r.Context(), SessionContextKey, session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ExtractToken pulls the session token from the Authorization header, falling
// back to the session cookie. The second return value is false only when an
// Authorization header is present but malformed.
func ExtractToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1], true
		}
		return "", false
	}

	cookieToken, err := GetSessionTokenFromCookie(r)
	if err != nil {
		return "", true
	}
	return cookieToken, true
}

// GetSessionFromContext extracts the resolved session from the request context
func GetSessionFromContext(ctx context.Context) (*Session, bool) {
	session, ok := ctx.Value(SessionContextKey).(*Session)
	return session, ok
}

// GetUserIDFromContext extracts the authenticated user ID from the request context
func GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	session, ok := GetSessionFromContext(ctx)
	if !ok {
		return uuid.Nil, false
	}
	return session.UserID, true
}
