// Package service provides business logic for accounts and tasks,
// delegating persistence to repository interfaces.
package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/ndubrovin/TaskKeeper/internal/models"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials is returned when login email or password
	// does not match a stored account.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrEmailTaken is returned when signup uses an existing email.
	ErrEmailTaken = errors.New("email already registered")
	// ErrUserNotFound is returned when a token's subject no longer exists.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidInput is returned when a request body fails validation.
	ErrInvalidInput = errors.New("invalid input")
)

// UserRepository defines the persistence operations required by the
// authentication service.
type UserRepository interface {
	// UserByEmail fetches a user record with its password hash.
	UserByEmail(ctx context.Context, email string) (*models.UserRecord, error)
	// UserByID fetches the public user snapshot.
	UserByID(ctx context.Context, id string) (*models.User, error)
	// EmailExists returns true if the email is already registered.
	EmailExists(ctx context.Context, email string) (bool, error)
	// CreateUser inserts a new user record.
	CreateUser(ctx context.Context, rec models.UserRecord) error
}

// TokenIssuer signs bearer tokens for authenticated users.
type TokenIssuer interface {
	Issue(userID string) (string, error)
}

// AuthService implements login, signup, and token-subject lookup.
type AuthService struct {
	repo   UserRepository
	tokens TokenIssuer
}

// NewAuthService constructs an AuthService from its dependencies.
func NewAuthService(repo UserRepository, tokens TokenIssuer) *AuthService {
	return &AuthService{repo: repo, tokens: tokens}
}

// Login verifies the password against the stored bcrypt hash and issues
// a token. An unknown email and a wrong password both come back as
// ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	rec, err := s.repo.UserByEmail(ctx, strings.ToLower(email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("lookup user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword(rec.PasswordHash, []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}
	token, err := s.tokens.Issue(rec.ID)
	if err != nil {
		return "", nil, err
	}
	user := rec.User
	return token, &user, nil
}

// Register creates an account and issues a token for it.
func (s *AuthService) Register(ctx context.Context, email, password, username string) (string, *models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" || strings.TrimSpace(username) == "" {
		return "", nil, fmt.Errorf("%w: email, password, and username are required", ErrInvalidInput)
	}

	exists, err := s.repo.EmailExists(ctx, email)
	if err != nil {
		return "", nil, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return "", nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", nil, fmt.Errorf("hash password: %w", err)
	}

	rec := models.UserRecord{
		User: models.User{
			ID:       uuid.NewString(),
			Email:    email,
			Username: strings.TrimSpace(username),
		},
		PasswordHash: hash,
	}
	if err := s.repo.CreateUser(ctx, rec); err != nil {
		return "", nil, fmt.Errorf("create user: %w", err)
	}

	token, err := s.tokens.Issue(rec.ID)
	if err != nil {
		return "", nil, err
	}
	user := rec.User
	return token, &user, nil
}

// UserByID resolves a verified token subject to its user snapshot.
func (s *AuthService) UserByID(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.UserByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	return user, nil
}
