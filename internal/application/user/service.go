package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/news-api/internal/domain"
	"github.com/news-api/internal/pkg/id"
	"golang.org/x/crypto/bcrypt"
)

// DynamoDB attribute names used in partial update maps.
const (
	fieldPhone          = "phone"
	fieldPhoneConfirmed = "phone_confirmed"
	fieldFirstName      = "first_name"
	fieldLastName       = "last_name"
	fieldProfilePic     = "profile_pic"
	fieldRole           = "role"
	fieldEnable         = "enable"
	fieldPasswordHash   = "password_hash"
)

const defaultPageSize = 50

type Service interface {
	List(ctx context.Context, limit int, cursor string) ([]domain.User, string, error)
	Get(ctx context.Context, userID string) (*domain.User, error)
	Profile(ctx context.Context, principal domain.Principal) (*domain.User, error)
	Update(ctx context.Context, principal domain.Principal, userID string, req domain.UpdateUserRequest) (*domain.User, error)
	Delete(ctx context.Context, principal domain.Principal, userID string) error
	ChangeRole(ctx context.Context, userID, role string) (*domain.User, error)
	ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error
	// SeedAdmin creates the initial admin account unless username exists.
	SeedAdmin(ctx context.Context, username, email, password string) error
}

type userStore interface {
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	Put(ctx context.Context, u *domain.User) error
	ScanPage(ctx context.Context, limit int32, cursor string) ([]domain.User, string, error)
	Get(ctx context.Context, userID string) (*domain.User, error)
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
	SoftDelete(ctx context.Context, userID string) error
}

type sessionStore interface {
	SoftDeleteByUser(ctx context.Context, userID string) error
}

type passwordHasher interface {
	Hash(password string) (string, error)
}

type service struct {
	repo        userStore
	sessionRepo sessionStore
	hasher      passwordHasher
	now         func() time.Time
}

type ServiceDeps struct {
	UserRepo    userStore
	SessionRepo sessionStore
	Hasher      passwordHasher
	Now         func() time.Time
}

func NewService(deps ServiceDeps) Service {
	s := &service{
		repo:        deps.UserRepo,
		sessionRepo: deps.SessionRepo,
		hasher:      deps.Hasher,
		now:         deps.Now,
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func (s *service) List(ctx context.Context, limit int, cursor string) ([]domain.User, string, error) {
	if limit < 1 {
		limit = defaultPageSize
	}
	return s.repo.ScanPage(ctx, int32(limit), cursor)
}

func (s *service) Get(ctx context.Context, userID string) (*domain.User, error) {
	return s.repo.Get(ctx, userID)
}

func (s *service) Profile(ctx context.Context, principal domain.Principal) (*domain.User, error) {
	return s.repo.Get(ctx, principal.UserID)
}

func (s *service) Update(ctx context.Context, principal domain.Principal, userID string, req domain.UpdateUserRequest) (*domain.User, error) {
	if principal.UserID != userID && !principal.IsAdmin() {
		return nil, fmt.Errorf("cannot update another user: %w", domain.ErrForbidden)
	}
	if (req.Role != nil || req.Enable != nil) && !principal.IsAdmin() {
		return nil, fmt.Errorf("only admins may change role or status: %w", domain.ErrForbidden)
	}
	current, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.FirstName != nil {
		updates[fieldFirstName] = *req.FirstName
	}
	if req.LastName != nil {
		updates[fieldLastName] = *req.LastName
	}
	if req.Phone != nil {
		updates[fieldPhone] = *req.Phone
		if current.Phone == nil || *current.Phone != *req.Phone {
			updates[fieldPhoneConfirmed] = false
		}
	}
	if req.ProfilePic != nil {
		updates[fieldProfilePic] = *req.ProfilePic
	}
	if req.Password != nil {
		hash, err := s.hasher.Hash(*req.Password)
		if err != nil {
			return nil, err
		}
		updates[fieldPasswordHash] = hash
	}
	if req.Role != nil {
		if !domain.ValidRole(*req.Role) {
			return nil, fmt.Errorf("invalid role: %w", domain.ErrBadRequest)
		}
		updates[fieldRole] = *req.Role
	}
	if req.Enable != nil {
		if *req.Enable != 0 && *req.Enable != 1 {
			return nil, fmt.Errorf("enable must be 0 or 1: %w", domain.ErrBadRequest)
		}
		updates[fieldEnable] = *req.Enable
	}
	if len(updates) == 0 {
		return current, nil
	}
	if err := s.repo.Update(ctx, userID, updates); err != nil {
		return nil, err
	}
	if req.Enable != nil && *req.Enable == 0 {
		s.revokeSessions(ctx, userID)
	}
	return s.repo.Get(ctx, userID)
}

func (s *service) Delete(ctx context.Context, principal domain.Principal, userID string) error {
	if principal.UserID != userID && !principal.IsAdmin() {
		return fmt.Errorf("cannot delete another user: %w", domain.ErrForbidden)
	}
	if err := s.repo.SoftDelete(ctx, userID); err != nil {
		return err
	}
	return s.sessionRepo.SoftDeleteByUser(ctx, userID)
}

func (s *service) ChangeRole(ctx context.Context, userID, role string) (*domain.User, error) {
	role = strings.ToUpper(role)
	if !domain.ValidRole(role) {
		return nil, fmt.Errorf("invalid role %q: %w", role, domain.ErrBadRequest)
	}
	if err := s.repo.Update(ctx, userID, map[string]interface{}{fieldRole: role}); err != nil {
		return nil, err
	}
	slog.Info("role changed", "user_id", userID, "role", role)
	return s.repo.Get(ctx, userID)
}

func (s *service) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	u, err := s.repo.Get(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(currentPassword)); err != nil {
		return fmt.Errorf("current password is incorrect: %w", domain.ErrUnauthorized)
	}
	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	return s.repo.Update(ctx, userID, map[string]interface{}{fieldPasswordHash: hash})
}

func (s *service) SeedAdmin(ctx context.Context, username, email, password string) error {
	if username == "" || email == "" || password == "" {
		slog.Info("admin seed skipped: credentials not configured")
		return nil
	}
	_, err := s.repo.GetByUsername(ctx, username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("look up admin: %w", err)
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return err
	}
	now := s.now().UTC()
	u := &domain.User{
		UserID:       id.New(),
		Username:     username,
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
		FirstName:    "Admin",
		LastName:     "User",
		Enable:       1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Put(ctx, u); err != nil {
		return err
	}
	slog.Info("admin user created", "user_id", u.UserID, "username", username)
	return nil
}

func (s *service) revokeSessions(ctx context.Context, userID string) {
	if err := s.sessionRepo.SoftDeleteByUser(ctx, userID); err != nil {
		slog.Warn("failed to revoke sessions", "user_id", userID, "err", err)
	}
}
