// Package auth verifies credentials, registers accounts and manages the
// browser session records kept in Redis.
package auth

import (
	"context" // Context for store operations
	"errors"  // Sentinel errors
	"strings" // Username normalization

	"parking_system/internal/domain" // Domain models

	"github.com/sirupsen/logrus" // Logging library
	"golang.org/x/crypto/bcrypt" // Password hashing
)

// MinPasswordLength is the registration password floor.
const MinPasswordLength = 6

// Errors surfaced to the request boundary
var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrDuplicateIdentity  = errors.New("username or email already exists")
	ErrWeakCredential     = errors.New("password is too short")
)

// UserStore is the slice of persistence the identity component needs.
type UserStore interface {
	// UserByUsername returns the user or nil when absent.
	UserByUsername(ctx context.Context, username string) (*domain.User, error)
	// IdentityTaken reports whether the username or email is already used.
	IdentityTaken(ctx context.Context, username, email string) (bool, error)
	// CreateUser inserts the user row.
	CreateUser(ctx context.Context, user *domain.User) error
}

// Service implements registration and credential verification.
type Service struct {
	users UserStore
}

// NewService returns an identity service backed by the given store.
func NewService(users UserStore) *Service {
	return &Service{users: users}
}

// Register creates a non-admin account. The password must be at least
// MinPasswordLength characters; username and email must both be unused.
func (s *Service) Register(ctx context.Context, username, email, password string) (*domain.User, error) {
	if len(password) < MinPasswordLength {
		return nil, ErrWeakCredential
	}
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	taken, err := s.users.IdentityTaken(ctx, username, email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrDuplicateIdentity
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"user_id":  user.ID,
		"username": username,
	}).Info("User registered")
	return user, nil
}

// Authenticate verifies the username/password pair and returns the user.
// Unknown usernames and wrong passwords are indistinguishable to the caller.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := s.users.UserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	logrus.WithFields(logrus.Fields{
		"user_id":  user.ID,
		"username": user.Username,
		"is_admin": user.IsAdmin,
	}).Info("User authenticated")
	return user, nil
}
