package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/news-api/internal/application/twofactor"
	"github.com/news-api/internal/domain"
	"github.com/news-api/internal/pkg/id"
)

const (
	// DefaultPasswordMinLength applies to password resets when none is configured.
	DefaultPasswordMinLength = 6

	pendingLoginPrefix = "pending-login:"
)

// Messages returned to clients.
const (
	MessageCodeSent       = "A verification code has been sent to your email."
	MessageIfAccount      = "If an account exists for this email, a verification code has been sent."
	MessageResent         = "If an account exists for this email, a new verification code has been sent. If your sign-in has expired, log in again to receive a code."
	MessagePasswordUpdate = "Password updated successfully."
)

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResult is the outcome of a successful primary-credential check.
// PendingTwoFactor is its only variant; failures are errors.
type LoginResult interface{ isLoginResult() }

// PendingTwoFactor reports that a code was sent and the login is waiting on
// it. It grants no access.
type PendingTwoFactor struct {
	UserID            string `json:"id"`
	Username          string `json:"username"`
	Email             string `json:"email"`
	Role              string `json:"role"`
	RequiresTwoFactor bool   `json:"requiresTwoFactor"`
	Message           string `json:"message"`
}

func (*PendingTwoFactor) isLoginResult() {}

// VerifyResult is the outcome of submitting a login code: *SessionToken or
// InvalidOrExpired.
type VerifyResult interface{ isVerifyResult() }

type SessionToken struct {
	Token    string `json:"token"`
	UserID   string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

func (*SessionToken) isVerifyResult() {}

// InvalidOrExpired covers a missing, expired or wrong code alike.
type InvalidOrExpired struct{}

func (InvalidOrExpired) isVerifyResult() {}

type Service interface {
	Login(ctx context.Context, req LoginRequest) (LoginResult, error)
	VerifyLogin(ctx context.Context, email, code string) (VerifyResult, error)
	// CompleteLogin mints a session for username. Callers must have verified
	// a login code for the user first.
	CompleteLogin(ctx context.Context, username string) (*SessionToken, error)
	Register(ctx context.Context, req domain.CreateUserRequest) (*domain.User, error)
	ResendCode(ctx context.Context, email string) error
	RequestReset(ctx context.Context, email string) error
	VerifyReset(ctx context.Context, email, code, newPassword string) error
	RequestPhoneConfirmation(ctx context.Context, principal domain.Principal) error
	ValidatePhoneCode(ctx context.Context, principal domain.Principal, code string) error
}

type userStore interface {
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Get(ctx context.Context, userID string) (*domain.User, error)
	Put(ctx context.Context, u *domain.User) error
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
}

type sessionRevoker interface {
	SoftDeleteByUser(ctx context.Context, userID string) error
}

type service struct {
	users       userStore
	sessions    sessionRevoker
	verifier    CredentialVerifier
	issuer      TokenIssuer
	emailCodes  twofactor.Service
	phoneCodes  twofactor.Service
	pending     twofactor.Store
	pendingTTL  time.Duration
	minPassword int
	now         func() time.Time
}

type ServiceDeps struct {
	UserRepo    userStore
	SessionRepo sessionRevoker
	Verifier    CredentialVerifier
	Issuer      TokenIssuer
	EmailCodes  twofactor.Service
	PhoneCodes  twofactor.Service
	// Pending records which emails passed the password check and may finish
	// a login with a code. It is usually the same store as the codes.
	Pending           twofactor.Store
	CodeTTL           time.Duration
	PasswordMinLength int
	Now               func() time.Time
}

func NewService(deps ServiceDeps) Service {
	s := &service{
		users:       deps.UserRepo,
		sessions:    deps.SessionRepo,
		verifier:    deps.Verifier,
		issuer:      deps.Issuer,
		emailCodes:  deps.EmailCodes,
		phoneCodes:  deps.PhoneCodes,
		pending:     deps.Pending,
		pendingTTL:  deps.CodeTTL,
		minPassword: deps.PasswordMinLength,
		now:         deps.Now,
	}
	if s.pendingTTL <= 0 {
		s.pendingTTL = twofactor.DefaultCodeTTL
	}
	if s.minPassword <= 0 {
		s.minPassword = DefaultPasswordMinLength
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func (s *service) Login(ctx context.Context, req LoginRequest) (LoginResult, error) {
	u, err := s.verifier.Verify(ctx, req.Username, req.Password)
	if err != nil {
		slog.Info("login rejected", "username", req.Username)
		return nil, domain.ErrInvalidCredentials
	}
	email := NormalizeEmail(u.Email)
	if err := s.pending.Put(ctx, pendingLoginPrefix+email, u.UserID, s.pendingTTL); err != nil {
		return nil, fmt.Errorf("record pending login: %w", err)
	}
	if err := s.emailCodes.IssueCode(ctx, email); err != nil {
		return nil, err
	}
	return &PendingTwoFactor{
		UserID:            u.UserID,
		Username:          u.Username,
		Email:             u.Email,
		Role:              u.Role,
		RequiresTwoFactor: true,
		Message:           MessageCodeSent,
	}, nil
}

func (s *service) VerifyLogin(ctx context.Context, email, code string) (VerifyResult, error) {
	email = NormalizeEmail(email)
	pending, err := s.pending.Get(ctx, pendingLoginPrefix+email)
	if errors.Is(err, domain.ErrNotFound) {
		return InvalidOrExpired{}, nil
	}
	if err != nil {
		return nil, err
	}
	if pending.Expired(s.now()) {
		_, _ = s.pending.RemoveIfMatch(ctx, pending)
		return InvalidOrExpired{}, nil
	}

	ok, err := s.emailCodes.VerifyCode(ctx, email, code)
	if err != nil {
		return nil, err
	}
	if !ok {
		return InvalidOrExpired{}, nil
	}
	if _, err := s.pending.RemoveIfMatch(ctx, pending); err != nil {
		slog.Warn("failed to clear pending login", "identity", email, "err", err)
	}

	u, err := s.users.Get(ctx, pending.Code)
	if errors.Is(err, domain.ErrNotFound) {
		return InvalidOrExpired{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load user %s: %w", pending.Code, err)
	}
	if !u.Active() {
		return InvalidOrExpired{}, nil
	}
	tok, err := s.CompleteLogin(ctx, u.Username)
	if err != nil {
		return nil, err
	}
	return tok, nil
}

func (s *service) CompleteLogin(ctx context.Context, username string) (*SessionToken, error) {
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("resolve user %q: %w", username, err)
	}
	token, err := s.issuer.Issue(ctx, u.Principal())
	if err != nil {
		slog.Error("token issuance failed", "user_id", u.UserID, "err", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrTokenIssuance, err)
	}
	slog.Info("login completed", "user_id", u.UserID)
	return &SessionToken{
		Token:    token,
		UserID:   u.UserID,
		Username: u.Username,
		Email:    u.Email,
		Role:     u.Role,
	}, nil
}

func (s *service) Register(ctx context.Context, req domain.CreateUserRequest) (*domain.User, error) {
	email := NormalizeEmail(req.Email)
	if _, err := s.users.GetByUsername(ctx, req.Username); err == nil {
		return nil, fmt.Errorf("username already taken: %w", domain.ErrConflict)
	}
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("email already registered: %w", domain.ErrConflict)
	}
	hash, err := s.verifier.Hash(req.Password)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	u := &domain.User{
		UserID:       id.New(),
		Username:     req.Username,
		Email:        email,
		Phone:        req.Phone,
		PasswordHash: hash,
		Role:         domain.RoleReader,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Enable:       1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Put(ctx, u); err != nil {
		return nil, err
	}
	slog.Info("user registered", "user_id", u.UserID)
	return u, nil
}

// ResendCode replaces the outstanding code for an active account. A pending
// login that is still live is extended with the new code. Once that window
// has lapsed the new code only serves a password reset: no pending login is
// created here, so the user has to pass the password check again to sign in.
// Unknown emails and delivery failures are not reported to the caller.
func (s *service) ResendCode(ctx context.Context, email string) error {
	email = NormalizeEmail(email)
	u, ok := s.activeByEmail(ctx, email)
	if !ok {
		return nil
	}
	if rec, err := s.pending.Get(ctx, pendingLoginPrefix+email); err == nil && !rec.Expired(s.now()) {
		if err := s.pending.Put(ctx, pendingLoginPrefix+email, u.UserID, s.pendingTTL); err != nil {
			slog.Error("failed to extend pending login", "user_id", u.UserID, "err", err)
		}
	}
	s.issueQuietly(ctx, u, email)
	return nil
}

// RequestReset sends a reset code to an active account. Unknown emails and
// delivery failures are not reported to the caller.
func (s *service) RequestReset(ctx context.Context, email string) error {
	email = NormalizeEmail(email)
	u, ok := s.activeByEmail(ctx, email)
	if !ok {
		return nil
	}
	s.issueQuietly(ctx, u, email)
	return nil
}

// issueQuietly sends a code and only logs failures, so the response for a
// registered email matches the one for an unknown email.
func (s *service) issueQuietly(ctx context.Context, u *domain.User, email string) {
	if err := s.emailCodes.IssueCode(ctx, email); err != nil {
		slog.Error("failed to issue verification code", "user_id", u.UserID, "err", err)
	}
}

func (s *service) VerifyReset(ctx context.Context, email, code, newPassword string) error {
	if len(newPassword) < s.minPassword {
		return fmt.Errorf("password must be at least %d characters: %w", s.minPassword, domain.ErrBadRequest)
	}
	email = NormalizeEmail(email)
	ok, err := s.emailCodes.VerifyCode(ctx, email, code)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrInvalidCode
	}
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return domain.ErrInvalidCode
	}
	hash, err := s.verifier.Hash(newPassword)
	if err != nil {
		return err
	}
	if err := s.users.Update(ctx, u.UserID, map[string]interface{}{"password_hash": hash}); err != nil {
		return err
	}
	if s.sessions != nil {
		if err := s.sessions.SoftDeleteByUser(ctx, u.UserID); err != nil {
			slog.Warn("failed to revoke sessions after password reset", "user_id", u.UserID, "err", err)
		}
	}
	slog.Info("password reset", "user_id", u.UserID)
	return nil
}

func (s *service) RequestPhoneConfirmation(ctx context.Context, principal domain.Principal) error {
	u, err := s.users.Get(ctx, principal.UserID)
	if err != nil {
		return err
	}
	if u.Phone == nil || *u.Phone == "" {
		return fmt.Errorf("no phone number on account: %w", domain.ErrBadRequest)
	}
	if u.PhoneConfirmed {
		return fmt.Errorf("phone number already confirmed: %w", domain.ErrConflict)
	}
	return s.phoneCodes.IssueCode(ctx, *u.Phone)
}

func (s *service) ValidatePhoneCode(ctx context.Context, principal domain.Principal, code string) error {
	u, err := s.users.Get(ctx, principal.UserID)
	if err != nil {
		return err
	}
	if u.Phone == nil || *u.Phone == "" {
		return fmt.Errorf("no phone number on account: %w", domain.ErrBadRequest)
	}
	ok, err := s.phoneCodes.VerifyCode(ctx, *u.Phone, code)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrInvalidCode
	}
	return s.users.Update(ctx, u.UserID, map[string]interface{}{"phone_confirmed": true})
}

func (s *service) activeByEmail(ctx context.Context, email string) (*domain.User, bool) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			slog.Warn("user lookup failed", "identity", email, "err", err)
		}
		return nil, false
	}
	if !u.Active() {
		return nil, false
	}
	return u, true
}
