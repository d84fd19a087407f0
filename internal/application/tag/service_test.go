package tag

import (
	"context"
	"errors"
	"testing"

	"github.com/news-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockTagStore struct{ mock.Mock }

func (m *mockTagStore) Scan(ctx context.Context) ([]domain.Tag, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Tag), args.Error(1)
}
func (m *mockTagStore) Get(ctx context.Context, tagID string) (*domain.Tag, error) {
	args := m.Called(ctx, tagID)
	if t, _ := args.Get(0).(*domain.Tag); t != nil {
		return t, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockTagStore) GetByName(ctx context.Context, name string) (*domain.Tag, error) {
	args := m.Called(ctx, name)
	if t, _ := args.Get(0).(*domain.Tag); t != nil {
		return t, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockTagStore) Put(ctx context.Context, t *domain.Tag) error {
	return m.Called(ctx, t).Error(0)
}
func (m *mockTagStore) Update(ctx context.Context, tagID string, updates map[string]interface{}) error {
	return m.Called(ctx, tagID, updates).Error(0)
}
func (m *mockTagStore) HardDelete(ctx context.Context, tagID string) error {
	return m.Called(ctx, tagID).Error(0)
}

func TestCreate(t *testing.T) {
	repo := &mockTagStore{}
	repo.On("GetByName", mock.Anything, "golang").Return(nil, domain.ErrNotFound)
	repo.On("Put", mock.Anything, mock.AnythingOfType("*domain.Tag")).Return(nil)

	tag, err := NewService(repo).Create(context.Background(), domain.TagInput{Name: "golang "})
	require.NoError(t, err)
	assert.Equal(t, "golang", tag.Name)
}

func TestCreate_Duplicate(t *testing.T) {
	repo := &mockTagStore{}
	repo.On("GetByName", mock.Anything, "golang").Return(&domain.Tag{TagID: "t1"}, nil)

	_, err := NewService(repo).Create(context.Background(), domain.TagInput{Name: "golang"})
	assert.True(t, errors.Is(err, domain.ErrConflict))
}

func TestRename(t *testing.T) {
	repo := &mockTagStore{}
	repo.On("GetByName", mock.Anything, "go").Return(nil, domain.ErrNotFound)
	repo.On("Update", mock.Anything, "t1", map[string]interface{}{"name": "go"}).Return(nil)
	repo.On("Get", mock.Anything, "t1").Return(&domain.Tag{TagID: "t1", Name: "go"}, nil)

	tag, err := NewService(repo).Rename(context.Background(), "t1", domain.TagInput{Name: "go"})
	require.NoError(t, err)
	assert.Equal(t, "go", tag.Name)
}

func TestLookupFailureSurfaces(t *testing.T) {
	repo := &mockTagStore{}
	boom := errors.New("throttled")
	repo.On("GetByName", mock.Anything, "go").Return(nil, boom)

	_, err := NewService(repo).Create(context.Background(), domain.TagInput{Name: "go"})
	assert.ErrorIs(t, err, boom)
}
