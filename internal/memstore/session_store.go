package memstore

import (
	"context"
	"sync"

	"github.com/logo-playground/api/internal/auth"
)

// SessionStore is an in-memory session table keyed by token digest. Expiry is
// checked by the SessionManager on resolve, matching the Postgres store.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]auth.Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]auth.Session)}
}

func (s *SessionStore) Store(ctx context.Context, tokenHash string, session *auth.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[tokenHash] = *session
	return nil
}

func (s *SessionStore) Get(ctx context.Context, tokenHash string) (*auth.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[tokenHash]
	if !ok {
		return nil, auth.ErrSessionNotFound
	}
	return &session, nil
}

// Delete removes a session; removing an absent one is a no-op.
func (s *SessionStore) Delete(ctx context.Context, tokenHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, tokenHash)
	return nil
}
