package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"

	"github.com/google/uuid"

	"github.com/logo-playground/api/internal/user"
	"github.com/logo-playground/api/internal/validation"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

const minPasswordLength = 8

// Service handles credential verification and account creation.
type Service struct {
	users UserRepository
}

func NewService(users UserRepository) *Service {
	return &Service{users: users}
}

// Register creates a new user account. Validation reports every violated
// field at once; a taken email surfaces as user.ErrDuplicateEmail.
func (s *Service) Register(ctx context.Context, email, password string) (*user.User, error) {
	verr := validation.NewErrors()

	if email == "" {
		verr.Add("email", "email is required")
	} else if len(email) > 254 {
		verr.Add("email", "email must be at most 254 characters")
	} else if _, err := mail.ParseAddress(email); err != nil {
		verr.Add("email", "email must be a valid email address")
	}

	if password == "" {
		verr.Add("password", "password is required")
	} else if len(password) < minPasswordLength {
		verr.Add("password", fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}

	if err := verr.ErrOrNil(); err != nil {
		return nil, err
	}

	passwordHash, err := hashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	newUser, err := s.users.Create(ctx, email, passwordHash)
	if err != nil {
		if errors.Is(err, user.ErrDuplicateEmail) {
			return nil, user.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return newUser, nil
}

// Login verifies credentials and returns the matching user. Unknown email and
// wrong password are deliberately indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (*user.User, error) {
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	existingUser, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !verifyPassword(existingUser.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	return existingUser, nil
}

// GetUser loads a user by ID. Used by the me endpoint to return the full
// record for the identity attached to the request.
func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*user.User, error) {
	return s.users.GetByID(ctx, id)
}
