package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/news-api/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

type userLookup interface {
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// BcryptVerifier verifies passwords against bcrypt hashes in the user store.
type BcryptVerifier struct {
	users userLookup
	cost  int
	// dummy is compared against when the account does not exist so that
	// unknown and known usernames take the same time.
	dummy []byte
}

// NewBcryptVerifier returns a verifier hashing at cost; cost <= 0 means
// bcrypt.DefaultCost.
func NewBcryptVerifier(users userLookup, cost int) (*BcryptVerifier, error) {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), cost)
	if err != nil {
		return nil, err
	}
	return &BcryptVerifier{users: users, cost: cost, dummy: dummy}, nil
}

func (v *BcryptVerifier) Verify(ctx context.Context, username, password string) (*domain.User, error) {
	u, err := v.lookup(ctx, username)
	if err != nil {
		_ = bcrypt.CompareHashAndPassword(v.dummy, []byte(password))
		return nil, domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	if !u.Active() {
		return nil, domain.ErrInvalidCredentials
	}
	return u, nil
}

func (v *BcryptVerifier) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), v.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", fmt.Errorf("password too long: %w", domain.ErrBadRequest)
	}
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (v *BcryptVerifier) lookup(ctx context.Context, username string) (*domain.User, error) {
	if strings.Contains(username, "@") {
		return v.users.GetByEmail(ctx, NormalizeEmail(username))
	}
	return v.users.GetByUsername(ctx, username)
}

// NormalizeEmail is the canonical form of an email used as a lookup key
// and as the verification identity.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
