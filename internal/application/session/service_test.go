package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/news-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockSessionStore struct{ mock.Mock }

func (m *mockSessionStore) Put(ctx context.Context, s *domain.Session) error {
	return m.Called(ctx, s).Error(0)
}
func (m *mockSessionStore) Get(ctx context.Context, sessionID string) (*domain.Session, error) {
	args := m.Called(ctx, sessionID)
	if s, _ := args.Get(0).(*domain.Session); s != nil {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockSessionStore) Disable(ctx context.Context, sessionID string) error {
	return m.Called(ctx, sessionID).Error(0)
}

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) Get(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockSigner struct{ mock.Mock }

func (m *mockSigner) Sign(p domain.Principal, sessionID string) (string, error) {
	args := m.Called(p, sessionID)
	return args.String(0), args.Error(1)
}
func (m *mockSigner) Expiry() time.Duration { return 24 * time.Hour }

var fixedNow = time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)

func newService(ss *mockSessionStore, us *mockUserStore, sg *mockSigner) Service {
	return NewService(ServiceDeps{
		SessionRepo: ss,
		UserRepo:    us,
		Signer:      sg,
		Now:         func() time.Time { return fixedNow },
	})
}

// --- Issue ---

func TestIssue_PersistsSessionAndSigns(t *testing.T) {
	ss := &mockSessionStore{}
	sg := &mockSigner{}
	p := domain.Principal{UserID: "u1", Username: "alice", Role: domain.RoleReader}

	var saved *domain.Session
	ss.On("Put", mock.Anything, mock.AnythingOfType("*domain.Session")).
		Run(func(args mock.Arguments) { saved = args.Get(1).(*domain.Session) }).
		Return(nil)
	sg.On("Sign", p, mock.AnythingOfType("string")).Return("signed", nil)

	tok, err := newService(ss, nil, sg).Issue(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, "signed", tok)
	require.NotNil(t, saved)
	assert.Equal(t, "u1", saved.UserID)
	assert.True(t, saved.Enable)
	assert.Equal(t, fixedNow.Add(24*time.Hour).Unix(), saved.ExpiresAt)
	sg.AssertCalled(t, "Sign", p, saved.SessionID)
}

func TestIssue_StoreFailureSkipsSigning(t *testing.T) {
	ss := &mockSessionStore{}
	sg := &mockSigner{}
	ss.On("Put", mock.Anything, mock.Anything).Return(errors.New("dynamo down"))

	_, err := newService(ss, nil, sg).Issue(context.Background(), domain.Principal{UserID: "u1"})
	require.Error(t, err)
	sg.AssertNotCalled(t, "Sign", mock.Anything, mock.Anything)
}

// --- GetCurrent ---

func TestGetCurrent_AttachesUser(t *testing.T) {
	ss := &mockSessionStore{}
	us := &mockUserStore{}
	ss.On("Get", mock.Anything, "s1").Return(&domain.Session{SessionID: "s1", UserID: "u1", Enable: true, ExpiresAt: fixedNow.Add(time.Hour).Unix()}, nil)
	us.On("Get", mock.Anything, "u1").Return(&domain.User{UserID: "u1", Username: "alice"}, nil)

	sess, err := newService(ss, us, nil).GetCurrent(context.Background(), "s1")
	require.NoError(t, err)
	require.NotNil(t, sess.User)
	assert.Equal(t, "alice", sess.User.Username)
}

func TestGetCurrent_Disabled(t *testing.T) {
	ss := &mockSessionStore{}
	ss.On("Get", mock.Anything, "s1").Return(&domain.Session{SessionID: "s1", Enable: false, ExpiresAt: fixedNow.Add(time.Hour).Unix()}, nil)

	_, err := newService(ss, nil, nil).GetCurrent(context.Background(), "s1")
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

// --- Active / Logout ---

func TestActive(t *testing.T) {
	ss := &mockSessionStore{}
	ss.On("Get", mock.Anything, "live").Return(&domain.Session{Enable: true, ExpiresAt: fixedNow.Add(time.Minute).Unix()}, nil)
	ss.On("Get", mock.Anything, "stale").Return(&domain.Session{Enable: true, ExpiresAt: fixedNow.Add(-time.Minute).Unix()}, nil)
	ss.On("Get", mock.Anything, "gone").Return(nil, domain.ErrNotFound)
	svc := newService(ss, nil, nil)

	ok, err := svc.Active(context.Background(), "live")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.Active(context.Background(), "stale")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = svc.Active(context.Background(), "gone")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestLogout(t *testing.T) {
	ss := &mockSessionStore{}
	ss.On("Disable", mock.Anything, "s1").Return(nil)

	require.NoError(t, newService(ss, nil, nil).Logout(context.Background(), "s1"))
	ss.AssertExpectations(t)
}
