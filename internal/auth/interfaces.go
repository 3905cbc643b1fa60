package auth

import (
	"context"

	"github.com/google/uuid"

	"github.com/logo-playground/api/internal/user"
)

// UserRepository is the credential store consumed by the auth service.
// Implementations include the Postgres repository in internal/user and the
// in-memory store in internal/memstore.
type UserRepository interface {
	Create(ctx context.Context, email, passwordHash string) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
}

// SessionRepository persists sessions keyed by hashed token.
// Delete is idempotent: removing an absent session is not an error.
type SessionRepository interface {
	Store(ctx context.Context, tokenHash string, session *Session) error
	Get(ctx context.Context, tokenHash string) (*Session, error)
	Delete(ctx context.Context, tokenHash string) error
}
