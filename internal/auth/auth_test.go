package auth

import (
	"context"
	"errors"
	"testing"

	"parking_system/internal/domain"

	"golang.org/x/crypto/bcrypt"
)

// fakeUserStore is an in-memory UserStore keyed by username.
type fakeUserStore struct {
	nextID uint
	users  map[string]*domain.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]*domain.User)}
}

func (f *fakeUserStore) UserByUsername(_ context.Context, username string) (*domain.User, error) {
	u, ok := f.users[username]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserStore) IdentityTaken(_ context.Context, username, email string) (bool, error) {
	for _, u := range f.users {
		if u.Username == username || u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUserStore) CreateUser(_ context.Context, user *domain.User) error {
	f.nextID++
	user.ID = f.nextID
	cp := *user
	f.users[user.Username] = &cp
	return nil
}

func TestRegisterPasswordLengthBoundary(t *testing.T) {
	svc := NewService(newFakeUserStore())

	// Five characters is too short
	if _, err := svc.Register(context.Background(), "alice", "alice@example.com", "12345"); !errors.Is(err, ErrWeakCredential) {
		t.Fatalf("5-char password: expected ErrWeakCredential, got %v", err)
	}
	// Six characters is the floor
	user, err := svc.Register(context.Background(), "alice", "alice@example.com", "123456")
	if err != nil {
		t.Fatalf("6-char password: %v", err)
	}
	if user.IsAdmin {
		t.Fatalf("registration must never create admins")
	}
	if user.PasswordHash == "123456" {
		t.Fatalf("password stored unhashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("123456")); err != nil {
		t.Fatalf("stored hash does not verify: %v", err)
	}
}

func TestRegisterDuplicateIdentity(t *testing.T) {
	store := newFakeUserStore()
	svc := NewService(store)

	if _, err := svc.Register(context.Background(), "alice", "alice@example.com", "secret1"); err != nil {
		t.Fatalf("first Register: %v", err)
	}
	// Same username
	if _, err := svc.Register(context.Background(), "alice", "other@example.com", "secret1"); !errors.Is(err, ErrDuplicateIdentity) {
		t.Fatalf("duplicate username: expected ErrDuplicateIdentity, got %v", err)
	}
	// Same email, different username
	if _, err := svc.Register(context.Background(), "bob", "alice@example.com", "secret1"); !errors.Is(err, ErrDuplicateIdentity) {
		t.Fatalf("duplicate email: expected ErrDuplicateIdentity, got %v", err)
	}
}

func TestAuthenticate(t *testing.T) {
	store := newFakeUserStore()
	svc := NewService(store)
	if _, err := svc.Register(context.Background(), "alice", "alice@example.com", "secret1"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	user, err := svc.Authenticate(context.Background(), "alice", "secret1")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if user.Username != "alice" {
		t.Fatalf("wrong user returned: %+v", user)
	}

	if _, err := svc.Authenticate(context.Background(), "alice", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password: expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Authenticate(context.Background(), "nobody", "secret1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown user: expected ErrInvalidCredentials, got %v", err)
	}
}
