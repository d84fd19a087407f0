package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/news-api/internal/application/twofactor"
	"github.com/news-api/internal/domain"
	"github.com/news-api/internal/infrastructure/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// --- mocks ---

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) Get(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) Put(ctx context.Context, u *domain.User) error {
	return m.Called(ctx, u).Error(0)
}
func (m *mockUserStore) Update(ctx context.Context, userID string, updates map[string]interface{}) error {
	return m.Called(ctx, userID, updates).Error(0)
}

type mockSessionRevoker struct{ mock.Mock }

func (m *mockSessionRevoker) SoftDeleteByUser(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

type mockIssuer struct{ mock.Mock }

func (m *mockIssuer) Issue(ctx context.Context, p domain.Principal) (string, error) {
	args := m.Called(ctx, p)
	return args.String(0), args.Error(1)
}

// inbox records every code sent, keyed by recipient.
type inbox struct {
	mu    sync.Mutex
	codes map[string]string
	fail  error
}

func (b *inbox) SendCode(_ context.Context, to, code string, _ time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.codes == nil {
		b.codes = map[string]string{}
	}
	b.codes[to] = code
	return b.fail
}

func (b *inbox) last(to string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.codes[to]
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

// --- harness ---

type harness struct {
	svc    Service
	users  *mockUserStore
	issuer *mockIssuer
	revoke *mockSessionRevoker
	store  *memory.VerificationStore
	mail   *inbox
	sms    *inbox
	clock  *fakeClock
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		users:  &mockUserStore{},
		issuer: &mockIssuer{},
		revoke: &mockSessionRevoker{},
		mail:   &inbox{},
		sms:    &inbox{},
		clock:  &fakeClock{t: time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)},
	}
	h.store = memory.NewVerificationStore(h.clock.Now)
	verifier, err := NewBcryptVerifier(h.users, bcrypt.MinCost)
	require.NoError(t, err)
	emailCodes := twofactor.NewService(twofactor.ServiceDeps{
		Store: h.store, Sender: h.mail, TTL: 5 * time.Minute, Now: h.clock.Now,
	})
	phoneCodes := twofactor.NewService(twofactor.ServiceDeps{
		Store: h.store, Sender: h.sms, TTL: 5 * time.Minute, Now: h.clock.Now, Channel: "sms",
	})
	h.svc = NewService(ServiceDeps{
		UserRepo:    h.users,
		SessionRepo: h.revoke,
		Verifier:    verifier,
		Issuer:      h.issuer,
		EmailCodes:  emailCodes,
		PhoneCodes:  phoneCodes,
		Pending:     h.store,
		CodeTTL:     5 * time.Minute,
		Now:         h.clock.Now,
	})
	return h
}

func (h *harness) alice(t *testing.T) *domain.User {
	t.Helper()
	u := &domain.User{
		UserID:       "u1",
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: hashOf(t, "correctpw"),
		Role:         domain.RoleWriter,
		Enable:       1,
	}
	h.users.On("GetByUsername", mock.Anything, "alice").Return(u, nil)
	h.users.On("GetByEmail", mock.Anything, "alice@example.com").Return(u, nil)
	h.users.On("Get", mock.Anything, "u1").Return(u, nil)
	return u
}

// --- Login ---

func TestLogin_IssuesCodeWithoutToken(t *testing.T) {
	h := newHarness(t)
	h.alice(t)

	res, err := h.svc.Login(context.Background(), LoginRequest{Username: "alice", Password: "correctpw"})
	require.NoError(t, err)

	pending, ok := res.(*PendingTwoFactor)
	require.True(t, ok)
	assert.True(t, pending.RequiresTwoFactor)
	assert.Equal(t, "alice@example.com", pending.Email)
	assert.Equal(t, domain.RoleWriter, pending.Role)

	rec, err := h.store.Get(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, h.mail.last("alice@example.com"), rec.Code)
	h.issuer.AssertNotCalled(t, "Issue", mock.Anything, mock.Anything)
}

func TestLogin_UnknownUserStoresNothing(t *testing.T) {
	h := newHarness(t)
	h.users.On("GetByUsername", mock.Anything, "unknown").Return(nil, domain.ErrNotFound)

	_, err := h.svc.Login(context.Background(), LoginRequest{Username: "unknown", Password: "pw"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidCredentials))

	assert.Equal(t, 0, h.store.Len())
	for _, email := range []string{"unknown", "unknown@example.com", "alice@example.com"} {
		_, err := h.store.Get(context.Background(), email)
		assert.True(t, errors.Is(err, domain.ErrNotFound), email)
	}
	assert.Empty(t, h.mail.codes)
}

func TestLogin_WrongPasswordStoresNothing(t *testing.T) {
	h := newHarness(t)
	h.alice(t)

	_, err := h.svc.Login(context.Background(), LoginRequest{Username: "alice", Password: "nope"})
	assert.True(t, errors.Is(err, domain.ErrInvalidCredentials))
	assert.Equal(t, 0, h.store.Len())
}

func TestLogin_DeliveryFailure(t *testing.T) {
	h := newHarness(t)
	h.alice(t)
	h.mail.fail = errors.New("smtp down")

	_, err := h.svc.Login(context.Background(), LoginRequest{Username: "alice", Password: "correctpw"})
	assert.True(t, errors.Is(err, domain.ErrDelivery))
}

// --- VerifyLogin ---

func TestVerifyLogin_Success(t *testing.T) {
	h := newHarness(t)
	u := h.alice(t)
	h.issuer.On("Issue", mock.Anything, u.Principal()).Return("jwt-token", nil)
	ctx := context.Background()

	_, err := h.svc.Login(ctx, LoginRequest{Username: "alice", Password: "correctpw"})
	require.NoError(t, err)

	res, err := h.svc.VerifyLogin(ctx, "Alice@Example.com", h.mail.last("alice@example.com"))
	require.NoError(t, err)
	tok, ok := res.(*SessionToken)
	require.True(t, ok)
	assert.Equal(t, "jwt-token", tok.Token)
	assert.Equal(t, "u1", tok.UserID)
	assert.Equal(t, domain.RoleWriter, tok.Role)
	assert.Equal(t, 0, h.store.Len(), "code and pending login are consumed")

	res, err = h.svc.VerifyLogin(ctx, "alice@example.com", h.mail.last("alice@example.com"))
	require.NoError(t, err)
	assert.IsType(t, InvalidOrExpired{}, res)
	h.issuer.AssertNumberOfCalls(t, "Issue", 1)
}

func TestVerifyLogin_WrongCodeThenRight(t *testing.T) {
	h := newHarness(t)
	u := h.alice(t)
	h.issuer.On("Issue", mock.Anything, u.Principal()).Return("jwt-token", nil)
	ctx := context.Background()

	_, err := h.svc.Login(ctx, LoginRequest{Username: "alice", Password: "correctpw"})
	require.NoError(t, err)
	code := h.mail.last("alice@example.com")
	wrong := fmt.Sprintf("%06d", 0)
	if wrong == code {
		wrong = "999999"
	}

	res, err := h.svc.VerifyLogin(ctx, "alice@example.com", wrong)
	require.NoError(t, err)
	assert.IsType(t, InvalidOrExpired{}, res)

	res, err = h.svc.VerifyLogin(ctx, "alice@example.com", code)
	require.NoError(t, err)
	assert.IsType(t, &SessionToken{}, res)
}

func TestVerifyLogin_Expired(t *testing.T) {
	h := newHarness(t)
	h.alice(t)
	ctx := context.Background()

	_, err := h.svc.Login(ctx, LoginRequest{Username: "alice", Password: "correctpw"})
	require.NoError(t, err)
	h.clock.Advance(6 * time.Minute)

	res, err := h.svc.VerifyLogin(ctx, "alice@example.com", h.mail.last("alice@example.com"))
	require.NoError(t, err)
	assert.IsType(t, InvalidOrExpired{}, res)
	h.issuer.AssertNotCalled(t, "Issue", mock.Anything, mock.Anything)
}

func TestVerifyLogin_ResetCodeCannotLogIn(t *testing.T) {
	h := newHarness(t)
	h.alice(t)
	ctx := context.Background()

	require.NoError(t, h.svc.RequestReset(ctx, "alice@example.com"))
	code := h.mail.last("alice@example.com")

	res, err := h.svc.VerifyLogin(ctx, "alice@example.com", code)
	require.NoError(t, err)
	assert.IsType(t, InvalidOrExpired{}, res)
	h.issuer.AssertNotCalled(t, "Issue", mock.Anything, mock.Anything)

	// the reset code is still usable for its own flow
	_, err = h.store.Get(ctx, "alice@example.com")
	assert.NoError(t, err)
}

func TestVerifyLogin_IssuerFailure(t *testing.T) {
	h := newHarness(t)
	u := h.alice(t)
	h.issuer.On("Issue", mock.Anything, u.Principal()).Return("", errors.New("kms unavailable"))
	ctx := context.Background()

	_, err := h.svc.Login(ctx, LoginRequest{Username: "alice", Password: "correctpw"})
	require.NoError(t, err)

	res, err := h.svc.VerifyLogin(ctx, "alice@example.com", h.mail.last("alice@example.com"))
	assert.Nil(t, res)
	assert.True(t, errors.Is(err, domain.ErrTokenIssuance))
}

func TestVerifyLogin_UserLookupFailureIsNotInvalidCode(t *testing.T) {
	h := newHarness(t)
	u := &domain.User{UserID: "u5", Username: "erin", Email: "erin@example.com", PasswordHash: hashOf(t, "correctpw"), Enable: 1}
	h.users.On("GetByUsername", mock.Anything, "erin").Return(u, nil)
	h.users.On("Get", mock.Anything, "u5").Return(nil, errors.New("dynamo throttled"))
	ctx := context.Background()

	_, err := h.svc.Login(ctx, LoginRequest{Username: "erin", Password: "correctpw"})
	require.NoError(t, err)

	res, err := h.svc.VerifyLogin(ctx, "erin@example.com", h.mail.last("erin@example.com"))
	assert.Nil(t, res)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dynamo throttled")
	h.issuer.AssertNotCalled(t, "Issue", mock.Anything, mock.Anything)
}

func TestVerifyLogin_DisabledAfterLoginIsInvalid(t *testing.T) {
	h := newHarness(t)
	u := &domain.User{UserID: "u6", Username: "finn", Email: "finn@example.com", PasswordHash: hashOf(t, "correctpw"), Enable: 1}
	h.users.On("GetByUsername", mock.Anything, "finn").Return(u, nil)
	h.users.On("Get", mock.Anything, "u6").Return(&domain.User{UserID: "u6", Username: "finn", Enable: 0}, nil)
	ctx := context.Background()

	_, err := h.svc.Login(ctx, LoginRequest{Username: "finn", Password: "correctpw"})
	require.NoError(t, err)

	res, err := h.svc.VerifyLogin(ctx, "finn@example.com", h.mail.last("finn@example.com"))
	require.NoError(t, err)
	assert.IsType(t, InvalidOrExpired{}, res)
}

// --- ResendCode ---

func TestResendCode_SupersedesOldCode(t *testing.T) {
	h := newHarness(t)
	u := h.alice(t)
	h.issuer.On("Issue", mock.Anything, u.Principal()).Return("jwt-token", nil)
	ctx := context.Background()

	_, err := h.svc.Login(ctx, LoginRequest{Username: "alice", Password: "correctpw"})
	require.NoError(t, err)
	first := h.mail.last("alice@example.com")

	h.clock.Advance(4 * time.Minute)
	second := first
	for second == first {
		require.NoError(t, h.svc.ResendCode(ctx, "alice@example.com"))
		second = h.mail.last("alice@example.com")
	}

	res, err := h.svc.VerifyLogin(ctx, "alice@example.com", first)
	require.NoError(t, err)
	assert.IsType(t, InvalidOrExpired{}, res)

	// the pending login was extended with the resend
	h.clock.Advance(3 * time.Minute)
	res, err = h.svc.VerifyLogin(ctx, "alice@example.com", second)
	require.NoError(t, err)
	assert.IsType(t, &SessionToken{}, res)
}

func TestResendCode_AfterLoginWindowOnlyServesReset(t *testing.T) {
	h := newHarness(t)
	h.alice(t)
	h.users.On("Update", mock.Anything, "u1", mock.Anything).Return(nil)
	h.revoke.On("SoftDeleteByUser", mock.Anything, "u1").Return(nil)
	ctx := context.Background()

	_, err := h.svc.Login(ctx, LoginRequest{Username: "alice", Password: "correctpw"})
	require.NoError(t, err)
	h.clock.Advance(6 * time.Minute)

	require.NoError(t, h.svc.ResendCode(ctx, "alice@example.com"))
	fresh := h.mail.last("alice@example.com")

	res, err := h.svc.VerifyLogin(ctx, "alice@example.com", fresh)
	require.NoError(t, err)
	assert.IsType(t, InvalidOrExpired{}, res)
	h.issuer.AssertNotCalled(t, "Issue", mock.Anything, mock.Anything)

	// the fresh code is untouched and still completes a reset
	require.NoError(t, h.svc.VerifyReset(ctx, "alice@example.com", fresh, "brandnew"))
}

func TestResendCode_DeliveryFailureIsSilent(t *testing.T) {
	h := newHarness(t)
	h.alice(t)
	h.mail.fail = errors.New("smtp down")

	require.NoError(t, h.svc.ResendCode(context.Background(), "alice@example.com"))
	assert.Equal(t, 1, h.store.Len(), "code stays stored for a later resend")
}

func TestResendCode_UnknownEmailIsSilent(t *testing.T) {
	h := newHarness(t)
	h.users.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, domain.ErrNotFound)

	require.NoError(t, h.svc.ResendCode(context.Background(), "ghost@example.com"))
	assert.Equal(t, 0, h.store.Len())
}

// --- Register ---

func TestRegister_Conflicts(t *testing.T) {
	h := newHarness(t)
	h.alice(t)
	ctx := context.Background()

	_, err := h.svc.Register(ctx, domain.CreateUserRequest{Username: "alice", Email: "new@example.com", Password: "secret1"})
	assert.True(t, errors.Is(err, domain.ErrConflict))

	h.users.On("GetByUsername", mock.Anything, "alice2").Return(nil, domain.ErrNotFound)
	_, err = h.svc.Register(ctx, domain.CreateUserRequest{Username: "alice2", Email: "ALICE@example.com", Password: "secret1"})
	assert.True(t, errors.Is(err, domain.ErrConflict))
}

func TestRegister_DefaultsToReader(t *testing.T) {
	h := newHarness(t)
	h.users.On("GetByUsername", mock.Anything, "bob").Return(nil, domain.ErrNotFound)
	h.users.On("GetByEmail", mock.Anything, "bob@example.com").Return(nil, domain.ErrNotFound)
	h.users.On("Put", mock.Anything, mock.AnythingOfType("*domain.User")).Return(nil)

	u, err := h.svc.Register(context.Background(), domain.CreateUserRequest{
		Username: "bob", Email: "Bob@Example.com", Password: "secret1", FirstName: "Bob", LastName: "B",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleReader, u.Role)
	assert.Equal(t, "bob@example.com", u.Email)
	assert.Equal(t, 1, u.Enable)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("secret1")))
	assert.Equal(t, 0, h.store.Len(), "registration issues no code")
}

// --- Password reset ---

func TestVerifyReset_WeakPasswordLeavesCode(t *testing.T) {
	h := newHarness(t)
	h.alice(t)
	ctx := context.Background()
	require.NoError(t, h.svc.RequestReset(ctx, "alice@example.com"))

	for _, weak := range []string{"", "123"} {
		err := h.svc.VerifyReset(ctx, "alice@example.com", h.mail.last("alice@example.com"), weak)
		assert.True(t, errors.Is(err, domain.ErrBadRequest), weak)
	}

	_, err := h.store.Get(ctx, "alice@example.com")
	assert.NoError(t, err, "code not consumed by a rejected password")
}

func TestVerifyReset_Success(t *testing.T) {
	h := newHarness(t)
	h.alice(t)
	h.users.On("Update", mock.Anything, "u1", mock.MatchedBy(func(m map[string]interface{}) bool {
		hash, _ := m["password_hash"].(string)
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte("brandnew")) == nil
	})).Return(nil)
	h.revoke.On("SoftDeleteByUser", mock.Anything, "u1").Return(nil)
	ctx := context.Background()

	require.NoError(t, h.svc.RequestReset(ctx, "alice@example.com"))
	code := h.mail.last("alice@example.com")
	require.NoError(t, h.svc.VerifyReset(ctx, "alice@example.com", code, "brandnew"))

	err := h.svc.VerifyReset(ctx, "alice@example.com", code, "brandnew")
	assert.True(t, errors.Is(err, domain.ErrInvalidCode))
	h.issuer.AssertNotCalled(t, "Issue", mock.Anything, mock.Anything)
	h.users.AssertNumberOfCalls(t, "Update", 1)
	h.revoke.AssertExpectations(t)
}

func TestRequestReset_DeliveryFailureIsSilent(t *testing.T) {
	h := newHarness(t)
	h.alice(t)
	h.mail.fail = errors.New("smtp down")

	require.NoError(t, h.svc.RequestReset(context.Background(), "alice@example.com"))
}

func TestRequestReset_UnknownEmailIsSilent(t *testing.T) {
	h := newHarness(t)
	h.users.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, domain.ErrNotFound)

	require.NoError(t, h.svc.RequestReset(context.Background(), "ghost@example.com"))
	assert.Equal(t, 0, h.store.Len())
}

// --- Phone confirmation ---

func TestPhoneConfirmation(t *testing.T) {
	h := newHarness(t)
	phone := "+15551234567"
	u := &domain.User{UserID: "u2", Username: "carol", Phone: &phone, Enable: 1}
	h.users.On("Get", mock.Anything, "u2").Return(u, nil)
	h.users.On("Update", mock.Anything, "u2", map[string]interface{}{"phone_confirmed": true}).Return(nil)
	ctx := context.Background()
	p := u.Principal()

	require.NoError(t, h.svc.RequestPhoneConfirmation(ctx, p))
	code := h.sms.last(phone)
	require.NotEmpty(t, code)

	err := h.svc.ValidatePhoneCode(ctx, p, "not-it")
	assert.True(t, errors.Is(err, domain.ErrInvalidCode))

	require.NoError(t, h.svc.ValidatePhoneCode(ctx, p, code))
	h.users.AssertExpectations(t)
}

func TestPhoneConfirmation_NoPhone(t *testing.T) {
	h := newHarness(t)
	h.users.On("Get", mock.Anything, "u3").Return(&domain.User{UserID: "u3", Enable: 1}, nil)

	err := h.svc.RequestPhoneConfirmation(context.Background(), domain.Principal{UserID: "u3"})
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}
