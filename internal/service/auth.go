// Package service provides the business logic of the notes server:
// authentication, note storage and AI summarization, delegating persistence
// to repository interfaces.
package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/atinyakov/GophNotes/internal/models"
	"github.com/google/uuid"
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 8

// AuthRepository defines the persistence operations
// required by the authentication service.
type AuthRepository interface {
	// CreateUser stores a new user; duplicates yield models.ErrConflict.
	CreateUser(ctx context.Context, user models.User) error
	// GetUserByEmail returns the user with the given login or models.ErrNotFound.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	// CreateSession stores an issued session.
	CreateSession(ctx context.Context, s models.Session) error
	// GetSession resolves a token or returns models.ErrNotFound.
	GetSession(ctx context.Context, token string) (*models.Session, error)
	// DeleteSession revokes a token.
	DeleteSession(ctx context.Context, token string) error
}

// AuthService implements sign up, sign in and token validation.
type AuthService struct {
	// repo performs the data-layer operations.
	repo AuthRepository
	// ttl is the lifetime of issued sessions.
	ttl time.Duration
	// now is replaceable in tests.
	now func() time.Time
}

// NewAuthService constructs a new AuthService issuing sessions valid for ttl.
func NewAuthService(repo AuthRepository, ttl time.Duration) *AuthService {
	return &AuthService{repo: repo, ttl: ttl, now: time.Now}
}

// SignUp registers a user and opens a session for it.
func (s *AuthService) SignUp(ctx context.Context, email, password string) (*models.Session, error) {
	email = normalizeEmail(email)
	if _, err := mail.ParseAddress(email); err != nil || len(password) < MinPasswordLength {
		return nil, models.ErrInvalidSignUp
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	user := models.User{ID: uuid.NewString(), Email: email, PasswordHash: hash}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return s.issue(ctx, user)
}

// SignIn checks credentials and opens a new session. Unknown users and wrong
// passwords both yield models.ErrInvalidCredentials.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*models.Session, error) {
	user, err := s.repo.GetUserByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, models.ErrNotFound) {
		return nil, models.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	ok, err := VerifyPassword(user.PasswordHash, password)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return nil, models.ErrInvalidCredentials
	}
	return s.issue(ctx, *user)
}

// Validate resolves a bearer token into a live session. Unknown and expired
// tokens yield models.ErrUnauthorized.
func (s *AuthService) Validate(ctx context.Context, token string) (*models.Session, error) {
	if token == "" {
		return nil, models.ErrUnauthorized
	}
	sess, err := s.repo.GetSession(ctx, token)
	if errors.Is(err, models.ErrNotFound) {
		return nil, models.ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}
	if !sess.Active(s.now()) {
		return nil, models.ErrUnauthorized
	}
	return sess, nil
}

// SignOut revokes token.
func (s *AuthService) SignOut(ctx context.Context, token string) error {
	return s.repo.DeleteSession(ctx, token)
}

func (s *AuthService) issue(ctx context.Context, user models.User) (*models.Session, error) {
	sess := models.Session{
		Token:     uuid.NewString(),
		UserID:    user.ID,
		Email:     user.Email,
		ExpiresAt: s.now().Add(s.ttl).UTC(),
	}
	if err := s.repo.CreateSession(ctx, sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
