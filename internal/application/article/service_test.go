package article

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/news-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockArticleStore struct{ mock.Mock }

func (m *mockArticleStore) Put(ctx context.Context, a *domain.Article) error {
	return m.Called(ctx, a).Error(0)
}
func (m *mockArticleStore) Get(ctx context.Context, articleID string) (*domain.Article, error) {
	args := m.Called(ctx, articleID)
	if a, _ := args.Get(0).(*domain.Article); a != nil {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockArticleStore) Update(ctx context.Context, articleID string, updates map[string]interface{}) error {
	return m.Called(ctx, articleID, updates).Error(0)
}
func (m *mockArticleStore) Delete(ctx context.Context, articleID string) error {
	return m.Called(ctx, articleID).Error(0)
}
func (m *mockArticleStore) IncrementViews(ctx context.Context, articleID string) error {
	return m.Called(ctx, articleID).Error(0)
}
func (m *mockArticleStore) List(ctx context.Context, f domain.ArticleFilter) ([]domain.Article, error) {
	args := m.Called(ctx, f)
	return args.Get(0).([]domain.Article), args.Error(1)
}

type mockImageStore struct{ mock.Mock }

func (m *mockImageStore) Put(ctx context.Context, img *domain.ArticleImage) error {
	return m.Called(ctx, img).Error(0)
}
func (m *mockImageStore) Get(ctx context.Context, imageID string) (*domain.ArticleImage, error) {
	args := m.Called(ctx, imageID)
	if img, _ := args.Get(0).(*domain.ArticleImage); img != nil {
		return img, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockImageStore) ListByArticle(ctx context.Context, articleID string) ([]domain.ArticleImage, error) {
	args := m.Called(ctx, articleID)
	return args.Get(0).([]domain.ArticleImage), args.Error(1)
}
func (m *mockImageStore) Delete(ctx context.Context, imageID string) error {
	return m.Called(ctx, imageID).Error(0)
}

type mockObjectStore struct {
	mock.Mock
	uploaded []byte
}

func (m *mockObjectStore) Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.uploaded = data
	return m.Called(ctx, key, size, contentType).Error(0)
}
func (m *mockObjectStore) PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	args := m.Called(ctx, key, ttl)
	return args.String(0), args.Error(1)
}
func (m *mockObjectStore) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

type mockCommentStore struct{ mock.Mock }

func (m *mockCommentStore) DeleteByArticle(ctx context.Context, articleID string) ([]string, error) {
	args := m.Called(ctx, articleID)
	return args.Get(0).([]string), args.Error(1)
}

type mockReplyStore struct{ mock.Mock }

func (m *mockReplyStore) DeleteByComment(ctx context.Context, commentID string) error {
	return m.Called(ctx, commentID).Error(0)
}

type mockLookup struct{ mock.Mock }

func (m *mockLookup) Get(ctx context.Context, id string) (*domain.Category, error) {
	args := m.Called(ctx, id)
	if c, _ := args.Get(0).(*domain.Category); c != nil {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockTagLookup struct{ mock.Mock }

func (m *mockTagLookup) Get(ctx context.Context, id string) (*domain.Tag, error) {
	args := m.Called(ctx, id)
	if t, _ := args.Get(0).(*domain.Tag); t != nil {
		return t, args.Error(1)
	}
	return nil, args.Error(1)
}

type harness struct {
	articles   *mockArticleStore
	images     *mockImageStore
	objects    *mockObjectStore
	comments   *mockCommentStore
	replies    *mockReplyStore
	categories *mockLookup
	tags       *mockTagLookup
	svc        Service
}

var (
	fixedNow = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	writer   = domain.Principal{UserID: "w1", Username: "wendy", Role: domain.RoleWriter}
	other    = domain.Principal{UserID: "w2", Username: "will", Role: domain.RoleWriter}
	admin    = domain.Principal{UserID: "a1", Username: "admin", Role: domain.RoleAdmin}
)

func newHarness() *harness {
	h := &harness{
		articles:   &mockArticleStore{},
		images:     &mockImageStore{},
		objects:    &mockObjectStore{},
		comments:   &mockCommentStore{},
		replies:    &mockReplyStore{},
		categories: &mockLookup{},
		tags:       &mockTagLookup{},
	}
	h.svc = NewService(ServiceDeps{
		ArticleRepo:  h.articles,
		ImageRepo:    h.images,
		Objects:      h.objects,
		CommentRepo:  h.comments,
		ReplyRepo:    h.replies,
		CategoryRepo: h.categories,
		TagRepo:      h.tags,
		Now:          func() time.Time { return fixedNow },
	})
	return h
}

func strPtr(s string) *string { return &s }

// --- reads ---

func TestListPublished_ForcesStatusAndSortsNewestFirst(t *testing.T) {
	h := newHarness()
	h.articles.On("List", mock.Anything, domain.ArticleFilter{Status: domain.ArticlePublished, TagID: "t1"}).Return([]domain.Article{
		{ArticleID: "old", CreatedAt: fixedNow.Add(-time.Hour)},
		{ArticleID: "new", CreatedAt: fixedNow},
	}, nil)

	out, err := h.svc.ListPublished(context.Background(), domain.ArticleFilter{Status: domain.ArticleDraft, TagID: "t1"})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "new", out[0].ArticleID)
}

func TestView_CountsPublishedRead(t *testing.T) {
	h := newHarness()
	h.articles.On("Get", mock.Anything, "a1").Return(&domain.Article{ArticleID: "a1", Status: domain.ArticlePublished, Views: 4}, nil)
	h.articles.On("IncrementViews", mock.Anything, "a1").Return(nil)

	a, err := h.svc.View(context.Background(), "a1")
	require.NoError(t, err)
	assert.Equal(t, int64(5), a.Views)
}

func TestView_DraftIsHidden(t *testing.T) {
	h := newHarness()
	h.articles.On("Get", mock.Anything, "a1").Return(&domain.Article{ArticleID: "a1", Status: domain.ArticleDraft}, nil)

	_, err := h.svc.View(context.Background(), "a1")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	h.articles.AssertNotCalled(t, "IncrementViews", mock.Anything, mock.Anything)
}

func TestSearch_MatchesAnyTextFieldCaseInsensitive(t *testing.T) {
	h := newHarness()
	h.articles.On("List", mock.Anything, domain.ArticleFilter{Status: domain.ArticlePublished, CategoryID: "c1"}).Return([]domain.Article{
		{ArticleID: "title", Title: "Budget Passes", CreatedAt: fixedNow.Add(-2 * time.Hour)},
		{ArticleID: "body", Content: "the new budget was approved", CreatedAt: fixedNow},
		{ArticleID: "desc", Description: "BUDGET recap", CreatedAt: fixedNow.Add(-time.Hour)},
		{ArticleID: "miss", Title: "Weather", CreatedAt: fixedNow},
	}, nil)

	out, err := h.svc.Search(context.Background(), "  budget ", domain.ArticleFilter{Status: domain.ArticleDraft, CategoryID: "c1"})
	require.NoError(t, err)
	ids := make([]string, 0, len(out))
	for _, a := range out {
		ids = append(ids, a.ArticleID)
	}
	assert.Equal(t, []string{"body", "desc", "title"}, ids)
}

func TestSearch_BlankKeyword(t *testing.T) {
	h := newHarness()

	_, err := h.svc.Search(context.Background(), "   ", domain.ArticleFilter{})
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
	h.articles.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestTop_OrdersByViewsAndLimits(t *testing.T) {
	h := newHarness()
	h.articles.On("List", mock.Anything, domain.ArticleFilter{Status: domain.ArticlePublished}).Return([]domain.Article{
		{ArticleID: "a", Views: 3, CreatedAt: fixedNow.Add(-3 * time.Hour)},
		{ArticleID: "b", Views: 10, CreatedAt: fixedNow.Add(-2 * time.Hour)},
		{ArticleID: "c", Views: 3, CreatedAt: fixedNow},
		{ArticleID: "d", Views: 1, CreatedAt: fixedNow.Add(-time.Hour)},
	}, nil)

	out, err := h.svc.Top(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, "b", out[0].ArticleID)
	assert.Equal(t, "c", out[1].ArticleID)
	assert.Equal(t, "a", out[2].ArticleID)
}

func TestTop_DefaultCount(t *testing.T) {
	h := newHarness()
	items := make([]domain.Article, 8)
	for i := range items {
		items[i] = domain.Article{ArticleID: string(rune('a' + i)), Views: int64(i)}
	}
	h.articles.On("List", mock.Anything, domain.ArticleFilter{Status: domain.ArticlePublished}).Return(items, nil)

	out, err := h.svc.Top(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, out, DefaultTopCount)
	assert.Equal(t, int64(7), out[0].Views)
}

// --- writes ---

func TestCreate_DefaultsToDraft(t *testing.T) {
	h := newHarness()
	h.categories.On("Get", mock.Anything, "c1").Return(&domain.Category{CategoryID: "c1"}, nil)
	h.tags.On("Get", mock.Anything, "t1").Return(&domain.Tag{TagID: "t1"}, nil)
	h.articles.On("Put", mock.Anything, mock.AnythingOfType("*domain.Article")).Return(nil)

	a, err := h.svc.Create(context.Background(), writer, domain.ArticleInput{
		Title:      "Budget passes",
		Content:    "...",
		CategoryID: strPtr("c1"),
		TagIDs:     []string{"t1", "t1"},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ArticleDraft, a.Status)
	assert.Equal(t, "w1", a.AuthorID)
	assert.Equal(t, []string{"t1"}, a.TagIDs)
	assert.Equal(t, fixedNow, a.CreatedAt)
}

func TestCreate_UnknownCategory(t *testing.T) {
	h := newHarness()
	h.categories.On("Get", mock.Anything, "nope").Return(nil, domain.ErrNotFound)

	_, err := h.svc.Create(context.Background(), writer, domain.ArticleInput{Title: "x", Content: "y", CategoryID: strPtr("nope")})
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
	h.articles.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}

func TestUpdate_OtherAuthorForbidden(t *testing.T) {
	h := newHarness()
	h.articles.On("Get", mock.Anything, "a1").Return(&domain.Article{ArticleID: "a1", AuthorID: "w1"}, nil)

	_, err := h.svc.Update(context.Background(), other, "a1", domain.ArticleInput{Title: "x", Content: "y"})
	assert.True(t, errors.Is(err, domain.ErrForbidden))
}

func TestUpdate_AdminMayEditAny(t *testing.T) {
	h := newHarness()
	h.articles.On("Get", mock.Anything, "a1").Return(&domain.Article{ArticleID: "a1", AuthorID: "w1"}, nil)
	h.articles.On("Update", mock.Anything, "a1", map[string]interface{}{
		fieldTitle:         "New",
		fieldContent:       "Body",
		fieldDescription:   "",
		fieldFeaturedImage: (*string)(nil),
		fieldCategoryID:    (*string)(nil),
		fieldTagIDs:        []string(nil),
		fieldStatus:        domain.ArticlePublished,
	}).Return(nil)

	_, err := h.svc.Update(context.Background(), admin, "a1", domain.ArticleInput{Title: "New", Content: "Body", Status: domain.ArticlePublished})
	require.NoError(t, err)
	h.articles.AssertExpectations(t)
}

func TestUpdateStatus_OwnerPublishes(t *testing.T) {
	h := newHarness()
	h.articles.On("Get", mock.Anything, "a1").Return(&domain.Article{ArticleID: "a1", AuthorID: "w1", Status: domain.ArticleDraft}, nil).Once()
	h.articles.On("Update", mock.Anything, "a1", map[string]interface{}{fieldStatus: domain.ArticlePublished}).Return(nil)
	h.articles.On("Get", mock.Anything, "a1").Return(&domain.Article{ArticleID: "a1", AuthorID: "w1", Status: domain.ArticlePublished}, nil).Once()

	a, err := h.svc.UpdateStatus(context.Background(), writer, "a1", "published")
	require.NoError(t, err)
	assert.Equal(t, domain.ArticlePublished, a.Status)
	h.articles.AssertExpectations(t)
}

func TestUpdateStatus_OtherAuthorForbidden(t *testing.T) {
	h := newHarness()
	h.articles.On("Get", mock.Anything, "a1").Return(&domain.Article{ArticleID: "a1", AuthorID: "w1", Status: domain.ArticleDraft}, nil)

	_, err := h.svc.UpdateStatus(context.Background(), other, "a1", domain.ArticleArchived)
	assert.True(t, errors.Is(err, domain.ErrForbidden))
	h.articles.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateStatus_UnknownStatus(t *testing.T) {
	h := newHarness()

	_, err := h.svc.UpdateStatus(context.Background(), admin, "a1", "DELETED")
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
	h.articles.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestDelete_CascadesImagesAndDiscussion(t *testing.T) {
	h := newHarness()
	h.articles.On("Get", mock.Anything, "a1").Return(&domain.Article{ArticleID: "a1", AuthorID: "w1"}, nil)
	h.images.On("ListByArticle", mock.Anything, "a1").Return([]domain.ArticleImage{{ImageID: "i1", Object: "articles/a1/i1.png"}}, nil)
	h.objects.On("Delete", mock.Anything, "articles/a1/i1.png").Return(nil)
	h.images.On("Delete", mock.Anything, "i1").Return(nil)
	h.comments.On("DeleteByArticle", mock.Anything, "a1").Return([]string{"c1", "c2"}, nil)
	h.replies.On("DeleteByComment", mock.Anything, "c1").Return(nil)
	h.replies.On("DeleteByComment", mock.Anything, "c2").Return(errors.New("throttled"))
	h.articles.On("Delete", mock.Anything, "a1").Return(nil)

	require.NoError(t, h.svc.Delete(context.Background(), writer, "a1"))
	h.objects.AssertExpectations(t)
	h.replies.AssertExpectations(t)
	h.articles.AssertCalled(t, "Delete", mock.Anything, "a1")
}

// --- images ---

func TestUploadImage_HashesAndStores(t *testing.T) {
	h := newHarness()
	body := "fake-png-bytes"
	sum := sha256.Sum256([]byte(body))
	h.articles.On("Get", mock.Anything, "a1").Return(&domain.Article{ArticleID: "a1", AuthorID: "w1"}, nil)
	h.objects.On("Upload", mock.Anything, mock.MatchedBy(func(k string) bool { return strings.HasPrefix(k, "articles/a1/") }), int64(len(body)), "image/png").Return(nil)
	h.objects.On("PresignedURL", mock.Anything, mock.Anything, ImageURLTTL).Return("https://signed", nil)
	h.images.On("Put", mock.Anything, mock.AnythingOfType("*domain.ArticleImage")).Return(nil)

	img, err := h.svc.UploadImage(context.Background(), writer, "a1", UploadInput{
		Reader:      strings.NewReader(body),
		Filename:    "../../etc/photo 1.png",
		ContentType: "image/png",
		Size:        int64(len(body)),
	})
	require.NoError(t, err)
	assert.Equal(t, hex.EncodeToString(sum[:]), img.Hash)
	assert.Equal(t, "photo_1.png", img.Name)
	assert.Equal(t, "https://signed", img.URL)
	assert.Equal(t, body, string(h.objects.uploaded))
}

func TestUploadImage_RejectsNonImage(t *testing.T) {
	h := newHarness()
	h.articles.On("Get", mock.Anything, "a1").Return(&domain.Article{ArticleID: "a1", AuthorID: "w1"}, nil)

	_, err := h.svc.UploadImage(context.Background(), writer, "a1", UploadInput{Reader: strings.NewReader("x"), ContentType: "application/pdf"})
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestUploadImage_RecordFailureRemovesObject(t *testing.T) {
	h := newHarness()
	h.articles.On("Get", mock.Anything, "a1").Return(&domain.Article{ArticleID: "a1", AuthorID: "w1"}, nil)
	h.objects.On("Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	h.objects.On("Delete", mock.Anything, mock.Anything).Return(nil)
	h.images.On("Put", mock.Anything, mock.Anything).Return(errors.New("dynamo down"))

	_, err := h.svc.UploadImage(context.Background(), writer, "a1", UploadInput{Reader: strings.NewReader("x"), ContentType: "image/jpeg", Size: 1})
	require.Error(t, err)
	h.objects.AssertNumberOfCalls(t, "Delete", 1)
}

func TestDeleteImage_WrongArticle(t *testing.T) {
	h := newHarness()
	h.articles.On("Get", mock.Anything, "a1").Return(&domain.Article{ArticleID: "a1", AuthorID: "w1"}, nil)
	h.images.On("Get", mock.Anything, "i9").Return(&domain.ArticleImage{ImageID: "i9", ArticleID: "a2"}, nil)

	err := h.svc.DeleteImage(context.Background(), writer, "a1", "i9")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	h.objects.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		"photo.png":         "photo.png",
		"../../etc/passwd":  "passwd",
		`C:\Users\x\a b.jp`: "a_b.jp",
		"..":                "_",
		"":                  "_",
	}
	for in, want := range cases {
		assert.Equal(t, want, sanitizeFilename(in), in)
	}
}
