package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/logo-playground/api/internal/user"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")
)

// Session binds an opaque token to one authenticated user for a bounded
// lifetime. The only transitions are logout and expiry, both terminal.
type Session struct {
	UserID    uuid.UUID
	Email     string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the session's lifetime has passed.
func (s *Session) Expired() bool {
	return time.Now().After(s.ExpiresAt)
}

// SessionManager issues, resolves, and destroys sessions on top of a
// SessionRepository.
type SessionManager struct {
	sessions SessionRepository
	duration time.Duration
}

func NewSessionManager(sessions SessionRepository, duration time.Duration) *SessionManager {
	return &SessionManager{sessions: sessions, duration: duration}
}

// Create issues a new session for the user and returns the opaque token the
// caller round-trips (cookie or Authorization header).
func (m *SessionManager) Create(ctx context.Context, u *user.User) (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}

	now := time.Now()
	session := &Session{
		UserID:    u.ID,
		Email:     u.Email,
		CreatedAt: now,
		ExpiresAt: now.Add(m.duration),
	}

	if err := m.sessions.Store(ctx, hashToken(token), session); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}

	return token, nil
}

// Resolve returns the session bound to the token if it is live and unexpired.
// An expired session is destroyed on sight.
func (m *SessionManager) Resolve(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, ErrSessionNotFound
	}

	tokenHash := hashToken(token)
	session, err := m.sessions.Get(ctx, tokenHash)
	if err != nil {
		return nil, err
	}

	if session.Expired() {
		if err := m.sessions.Delete(ctx, tokenHash); err != nil {
			return nil, fmt.Errorf("failed to delete expired session: %w", err)
		}
		return nil, ErrSessionExpired
	}

	return session, nil
}

// Destroy removes the session identified by the token. Destroying an
// already-absent session is not an error.
func (m *SessionManager) Destroy(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return m.sessions.Delete(ctx, hashToken(token))
}
