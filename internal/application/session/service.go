package session

import (
	"context"
	"fmt"
	"time"

	"github.com/news-api/internal/domain"
	"github.com/news-api/internal/pkg/id"
)

type Service interface {
	// Issue persists a session for principal and returns its signed token.
	Issue(ctx context.Context, principal domain.Principal) (string, error)
	GetCurrent(ctx context.Context, sessionID string) (*domain.Session, error)
	Logout(ctx context.Context, sessionID string) error
	// Active reports whether the session may still be used.
	Active(ctx context.Context, sessionID string) (bool, error)
}

type sessionStore interface {
	Put(ctx context.Context, s *domain.Session) error
	Get(ctx context.Context, sessionID string) (*domain.Session, error)
	Disable(ctx context.Context, sessionID string) error
}

type userStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
}

type tokenSigner interface {
	Sign(principal domain.Principal, sessionID string) (string, error)
	Expiry() time.Duration
}

type service struct {
	sessions sessionStore
	users    userStore
	signer   tokenSigner
	now      func() time.Time
}

type ServiceDeps struct {
	SessionRepo sessionStore
	UserRepo    userStore
	Signer      tokenSigner
	Now         func() time.Time
}

func NewService(deps ServiceDeps) Service {
	s := &service{
		sessions: deps.SessionRepo,
		users:    deps.UserRepo,
		signer:   deps.Signer,
		now:      deps.Now,
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func (s *service) Issue(ctx context.Context, principal domain.Principal) (string, error) {
	now := s.now().UTC()
	sess := &domain.Session{
		SessionID: id.New(),
		UserID:    principal.UserID,
		Enable:    true,
		ExpiresAt: now.Add(s.signer.Expiry()).Unix(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.sessions.Put(ctx, sess); err != nil {
		return "", fmt.Errorf("persist session: %w", err)
	}
	return s.signer.Sign(principal, sess.SessionID)
}

func (s *service) GetCurrent(ctx context.Context, sessionID string) (*domain.Session, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !s.usable(sess) {
		return nil, fmt.Errorf("session expired: %w", domain.ErrUnauthorized)
	}
	u, err := s.users.Get(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}
	sess.User = u
	return sess, nil
}

func (s *service) Logout(ctx context.Context, sessionID string) error {
	return s.sessions.Disable(ctx, sessionID)
}

func (s *service) Active(ctx context.Context, sessionID string) (bool, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return false, err
	}
	return s.usable(sess), nil
}

func (s *service) usable(sess *domain.Session) bool {
	return sess.Enable && s.now().Unix() < sess.ExpiresAt
}
