package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/logo-playground/api/internal/user"
)

// UserStore is an in-memory credential store.
type UserStore struct {
	mu      sync.RWMutex
	byID    map[uuid.UUID]user.User
	byEmail map[string]uuid.UUID
}

func NewUserStore() *UserStore {
	return &UserStore{
		byID:    make(map[uuid.UUID]user.User),
		byEmail: make(map[string]uuid.UUID),
	}
}

// Create inserts a new user, enforcing email uniqueness under the same lock
// that performs the insert.
func (s *UserStore) Create(ctx context.Context, email, passwordHash string) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byEmail[email]; exists {
		return nil, user.ErrDuplicateEmail
	}

	now := time.Now()
	u := user.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	s.byID[u.ID] = u
	s.byEmail[email] = u.ID

	copied := u
	return &copied, nil
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[email]
	if !ok {
		return nil, user.ErrNotFound
	}
	u := s.byID[id]
	return &u, nil
}

func (s *UserStore) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.byID[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	return &u, nil
}
