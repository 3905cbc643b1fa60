package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/logo-playground/api/internal/database"
)

// Repository handles session persistence in Postgres. Unlike the Redis store
// there is no TTL machinery; the SessionManager checks expiry on resolve and
// deletes what it finds stale.
type Repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

// Store inserts a session row keyed by token digest.
func (r *Repository) Store(ctx context.Context, tokenHash string, session *Session) error {
	dbSession := &database.Session{
		TokenHash: tokenHash,
		UserID:    session.UserID,
		Email:     session.Email,
		ExpiresAt: session.ExpiresAt,
		CreatedAt: session.CreatedAt,
	}

	_, err := r.db.NewInsert().
		Model(dbSession).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}

	return nil
}

// Get retrieves a session by its token digest.
func (r *Repository) Get(ctx context.Context, tokenHash string) (*Session, error) {
	dbSession := new(database.Session)
	err := r.db.NewSelect().
		Model(dbSession).
		Where("token_hash = ?", tokenHash).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return &Session{
		UserID:    dbSession.UserID,
		Email:     dbSession.Email,
		CreatedAt: dbSession.CreatedAt,
		ExpiresAt: dbSession.ExpiresAt,
	}, nil
}

// Delete removes a session row. Zero rows affected is fine; logout is
// idempotent.
func (r *Repository) Delete(ctx context.Context, tokenHash string) error {
	_, err := r.db.NewDelete().
		Model((*database.Session)(nil)).
		Where("token_hash = ?", tokenHash).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	return nil
}
