package auth

import (
	"context"

	"github.com/news-api/internal/domain"
)

// CredentialVerifier checks primary credentials and hashes new passwords.
type CredentialVerifier interface {
	// Verify returns the active user identified by username (or email) when
	// password matches. Every failure is domain.ErrInvalidCredentials.
	Verify(ctx context.Context, username, password string) (*domain.User, error)
	Hash(password string) (string, error)
}

// TokenIssuer mints the session token handed out after a completed login.
type TokenIssuer interface {
	Issue(ctx context.Context, principal domain.Principal) (string, error)
}
