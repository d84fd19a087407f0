package article

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/news-api/internal/domain"
	"github.com/news-api/internal/pkg/id"
)

// DynamoDB attribute names used in partial update maps.
const (
	fieldTitle         = "title"
	fieldContent       = "content"
	fieldDescription   = "description"
	fieldFeaturedImage = "featured_image"
	fieldStatus        = "status"
	fieldCategoryID    = "category_id"
	fieldTagIDs        = "tag_ids"
)

// Top article listing bounds.
const (
	DefaultTopCount = 5
	MaxTopCount     = 50
)

// ImageURLTTL bounds the lifetime of presigned image links.
const ImageURLTTL = 15 * time.Minute

type UploadInput struct {
	Reader      io.Reader
	Filename    string
	ContentType string
	Size        int64
	Caption     string
}

type Service interface {
	// ListPublished lists published articles, newest first. f.Status is ignored.
	ListPublished(ctx context.Context, f domain.ArticleFilter) ([]domain.Article, error)
	// View returns a published article and counts the read.
	View(ctx context.Context, articleID string) (*domain.Article, error)
	// Search matches keyword case-insensitively against the title, content
	// and description of published articles.
	Search(ctx context.Context, keyword string, f domain.ArticleFilter) ([]domain.Article, error)
	// Top returns up to n published articles ordered by views.
	Top(ctx context.Context, n int) ([]domain.Article, error)
	ListAll(ctx context.Context, f domain.ArticleFilter) ([]domain.Article, error)
	ListOwn(ctx context.Context, principal domain.Principal, status string) ([]domain.Article, error)
	GetForEdit(ctx context.Context, principal domain.Principal, articleID string) (*domain.Article, error)
	Create(ctx context.Context, principal domain.Principal, input domain.ArticleInput) (*domain.Article, error)
	Update(ctx context.Context, principal domain.Principal, articleID string, input domain.ArticleInput) (*domain.Article, error)
	Delete(ctx context.Context, principal domain.Principal, articleID string) error
	UpdateStatus(ctx context.Context, principal domain.Principal, articleID, status string) (*domain.Article, error)

	UploadImage(ctx context.Context, principal domain.Principal, articleID string, input UploadInput) (*domain.ArticleImage, error)
	ListImages(ctx context.Context, articleID string) ([]domain.ArticleImage, error)
	DeleteImage(ctx context.Context, principal domain.Principal, articleID, imageID string) error
}

type articleStore interface {
	Put(ctx context.Context, a *domain.Article) error
	Get(ctx context.Context, articleID string) (*domain.Article, error)
	Update(ctx context.Context, articleID string, updates map[string]interface{}) error
	Delete(ctx context.Context, articleID string) error
	IncrementViews(ctx context.Context, articleID string) error
	List(ctx context.Context, f domain.ArticleFilter) ([]domain.Article, error)
}

type imageStore interface {
	Put(ctx context.Context, img *domain.ArticleImage) error
	Get(ctx context.Context, imageID string) (*domain.ArticleImage, error)
	ListByArticle(ctx context.Context, articleID string) ([]domain.ArticleImage, error)
	Delete(ctx context.Context, imageID string) error
}

type objectStore interface {
	Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

type commentStore interface {
	DeleteByArticle(ctx context.Context, articleID string) ([]string, error)
}

type replyStore interface {
	DeleteByComment(ctx context.Context, commentID string) error
}

type categoryLookup interface {
	Get(ctx context.Context, categoryID string) (*domain.Category, error)
}

type tagLookup interface {
	Get(ctx context.Context, tagID string) (*domain.Tag, error)
}

type service struct {
	articles   articleStore
	images     imageStore
	objects    objectStore
	comments   commentStore
	replies    replyStore
	categories categoryLookup
	tags       tagLookup
	objectKey  func(articleID, imageID, filename string) string
	now        func() time.Time
}

type ServiceDeps struct {
	ArticleRepo  articleStore
	ImageRepo    imageStore
	Objects      objectStore
	CommentRepo  commentStore
	ReplyRepo    replyStore
	CategoryRepo categoryLookup
	TagRepo      tagLookup
	// ObjectKey builds the storage key of an uploaded image.
	ObjectKey func(articleID, imageID, filename string) string
	Now       func() time.Time
}

func NewService(deps ServiceDeps) Service {
	s := &service{
		articles:   deps.ArticleRepo,
		images:     deps.ImageRepo,
		objects:    deps.Objects,
		comments:   deps.CommentRepo,
		replies:    deps.ReplyRepo,
		categories: deps.CategoryRepo,
		tags:       deps.TagRepo,
		objectKey:  deps.ObjectKey,
		now:        deps.Now,
	}
	if s.objectKey == nil {
		s.objectKey = func(articleID, imageID, _ string) string {
			return "articles/" + articleID + "/" + imageID
		}
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func (s *service) ListPublished(ctx context.Context, f domain.ArticleFilter) ([]domain.Article, error) {
	f.Status = domain.ArticlePublished
	return s.list(ctx, f)
}

func (s *service) View(ctx context.Context, articleID string) (*domain.Article, error) {
	a, err := s.articles.Get(ctx, articleID)
	if err != nil {
		return nil, err
	}
	if a.Status != domain.ArticlePublished {
		return nil, fmt.Errorf("article %s: %w", articleID, domain.ErrNotFound)
	}
	if err := s.articles.IncrementViews(ctx, articleID); err != nil {
		slog.Warn("failed to count article view", "article_id", articleID, "err", err)
		return a, nil
	}
	a.Views++
	return a, nil
}

func (s *service) Search(ctx context.Context, keyword string, f domain.ArticleFilter) ([]domain.Article, error) {
	keyword = strings.ToLower(strings.TrimSpace(keyword))
	if keyword == "" {
		return nil, fmt.Errorf("keyword is required: %w", domain.ErrBadRequest)
	}
	f.Status = domain.ArticlePublished
	items, err := s.list(ctx, f)
	if err != nil {
		return nil, err
	}
	out := items[:0]
	for _, a := range items {
		if strings.Contains(strings.ToLower(a.Title), keyword) ||
			strings.Contains(strings.ToLower(a.Content), keyword) ||
			strings.Contains(strings.ToLower(a.Description), keyword) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *service) Top(ctx context.Context, n int) ([]domain.Article, error) {
	if n <= 0 {
		n = DefaultTopCount
	}
	if n > MaxTopCount {
		n = MaxTopCount
	}
	items, err := s.list(ctx, domain.ArticleFilter{Status: domain.ArticlePublished})
	if err != nil {
		return nil, err
	}
	// Stable on the newest-first order, so equal view counts favour recent articles.
	sort.SliceStable(items, func(i, j int) bool { return items[i].Views > items[j].Views })
	if len(items) > n {
		items = items[:n]
	}
	return items, nil
}

func (s *service) ListAll(ctx context.Context, f domain.ArticleFilter) ([]domain.Article, error) {
	return s.list(ctx, f)
}

func (s *service) ListOwn(ctx context.Context, principal domain.Principal, status string) ([]domain.Article, error) {
	return s.list(ctx, domain.ArticleFilter{AuthorID: principal.UserID, Status: strings.ToUpper(status)})
}

func (s *service) GetForEdit(ctx context.Context, principal domain.Principal, articleID string) (*domain.Article, error) {
	return s.owned(ctx, principal, articleID)
}

func (s *service) Create(ctx context.Context, principal domain.Principal, input domain.ArticleInput) (*domain.Article, error) {
	if err := s.checkRefs(ctx, input); err != nil {
		return nil, err
	}
	status := input.Status
	if status == "" {
		status = domain.ArticleDraft
	}
	now := s.now().UTC()
	a := &domain.Article{
		ArticleID:     id.New(),
		Title:         input.Title,
		Content:       input.Content,
		Description:   input.Description,
		FeaturedImage: input.FeaturedImage,
		Status:        status,
		AuthorID:      principal.UserID,
		CategoryID:    input.CategoryID,
		TagIDs:        dedupe(input.TagIDs),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.articles.Put(ctx, a); err != nil {
		return nil, err
	}
	slog.Info("article created", "article_id", a.ArticleID, "author_id", a.AuthorID)
	return a, nil
}

func (s *service) Update(ctx context.Context, principal domain.Principal, articleID string, input domain.ArticleInput) (*domain.Article, error) {
	if _, err := s.owned(ctx, principal, articleID); err != nil {
		return nil, err
	}
	if err := s.checkRefs(ctx, input); err != nil {
		return nil, err
	}
	updates := map[string]interface{}{
		fieldTitle:         input.Title,
		fieldContent:       input.Content,
		fieldDescription:   input.Description,
		fieldFeaturedImage: input.FeaturedImage,
		fieldCategoryID:    input.CategoryID,
		fieldTagIDs:        dedupe(input.TagIDs),
	}
	if input.Status != "" {
		updates[fieldStatus] = input.Status
	}
	if err := s.articles.Update(ctx, articleID, updates); err != nil {
		return nil, err
	}
	return s.articles.Get(ctx, articleID)
}

func (s *service) UpdateStatus(ctx context.Context, principal domain.Principal, articleID, status string) (*domain.Article, error) {
	status = strings.ToUpper(status)
	if !validStatus(status) {
		return nil, fmt.Errorf("unknown article status %q: %w", status, domain.ErrBadRequest)
	}
	a, err := s.owned(ctx, principal, articleID)
	if err != nil {
		return nil, err
	}
	if a.Status == status {
		return a, nil
	}
	if err := s.articles.Update(ctx, articleID, map[string]interface{}{fieldStatus: status}); err != nil {
		return nil, err
	}
	slog.Info("article status changed", "article_id", articleID, "from", a.Status, "to", status, "by", principal.UserID)
	return s.articles.Get(ctx, articleID)
}

// Delete removes the article with its images and discussion.
func (s *service) Delete(ctx context.Context, principal domain.Principal, articleID string) error {
	if _, err := s.owned(ctx, principal, articleID); err != nil {
		return err
	}
	images, err := s.images.ListByArticle(ctx, articleID)
	if err != nil {
		return err
	}
	for i := range images {
		s.removeImage(ctx, &images[i])
	}
	commentIDs, err := s.comments.DeleteByArticle(ctx, articleID)
	if err != nil {
		return err
	}
	for _, cid := range commentIDs {
		if err := s.replies.DeleteByComment(ctx, cid); err != nil {
			slog.Warn("failed to delete replies", "comment_id", cid, "err", err)
		}
	}
	if err := s.articles.Delete(ctx, articleID); err != nil {
		return err
	}
	slog.Info("article deleted", "article_id", articleID, "by", principal.UserID)
	return nil
}

func (s *service) UploadImage(ctx context.Context, principal domain.Principal, articleID string, input UploadInput) (*domain.ArticleImage, error) {
	if _, err := s.owned(ctx, principal, articleID); err != nil {
		return nil, err
	}
	if !strings.HasPrefix(input.ContentType, "image/") {
		return nil, fmt.Errorf("unsupported content type %q: %w", input.ContentType, domain.ErrBadRequest)
	}
	imageID := id.New()
	key := s.objectKey(articleID, imageID, input.Filename)
	hasher := sha256.New()
	tee := io.TeeReader(input.Reader, hasher)
	if err := s.objects.Upload(ctx, key, tee, input.Size, input.ContentType); err != nil {
		return nil, err
	}
	img := &domain.ArticleImage{
		ImageID:    imageID,
		ArticleID:  articleID,
		Object:     key,
		Size:       input.Size,
		Type:       input.ContentType,
		Name:       sanitizeFilename(input.Filename),
		Hash:       hex.EncodeToString(hasher.Sum(nil)),
		Caption:    input.Caption,
		UploadedBy: principal.UserID,
		CreatedAt:  s.now().UTC(),
	}
	if err := s.images.Put(ctx, img); err != nil {
		if delErr := s.objects.Delete(ctx, key); delErr != nil {
			slog.Warn("failed to remove orphaned object", "key", key, "err", delErr)
		}
		return nil, err
	}
	s.sign(ctx, img)
	return img, nil
}

func (s *service) ListImages(ctx context.Context, articleID string) ([]domain.ArticleImage, error) {
	images, err := s.images.ListByArticle(ctx, articleID)
	if err != nil {
		return nil, err
	}
	for i := range images {
		s.sign(ctx, &images[i])
	}
	return images, nil
}

func (s *service) DeleteImage(ctx context.Context, principal domain.Principal, articleID, imageID string) error {
	if _, err := s.owned(ctx, principal, articleID); err != nil {
		return err
	}
	img, err := s.images.Get(ctx, imageID)
	if err != nil {
		return err
	}
	if img.ArticleID != articleID {
		return fmt.Errorf("image %s: %w", imageID, domain.ErrNotFound)
	}
	if err := s.objects.Delete(ctx, img.Object); err != nil {
		return err
	}
	return s.images.Delete(ctx, imageID)
}

func (s *service) list(ctx context.Context, f domain.ArticleFilter) ([]domain.Article, error) {
	items, err := s.articles.List(ctx, f)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
	return items, nil
}

// owned loads an article the principal may modify: its author or any admin.
func (s *service) owned(ctx context.Context, principal domain.Principal, articleID string) (*domain.Article, error) {
	a, err := s.articles.Get(ctx, articleID)
	if err != nil {
		return nil, err
	}
	if a.AuthorID != principal.UserID && !principal.IsAdmin() {
		return nil, fmt.Errorf("article belongs to another author: %w", domain.ErrForbidden)
	}
	return a, nil
}

func (s *service) checkRefs(ctx context.Context, input domain.ArticleInput) error {
	if input.CategoryID != nil && *input.CategoryID != "" {
		if _, err := s.categories.Get(ctx, *input.CategoryID); err != nil {
			return fmt.Errorf("unknown category %s: %w", *input.CategoryID, domain.ErrBadRequest)
		}
	}
	for _, tid := range input.TagIDs {
		if _, err := s.tags.Get(ctx, tid); err != nil {
			return fmt.Errorf("unknown tag %s: %w", tid, domain.ErrBadRequest)
		}
	}
	return nil
}

func (s *service) removeImage(ctx context.Context, img *domain.ArticleImage) {
	if err := s.objects.Delete(ctx, img.Object); err != nil {
		slog.Warn("failed to delete image object", "key", img.Object, "err", err)
	}
	if err := s.images.Delete(ctx, img.ImageID); err != nil {
		slog.Warn("failed to delete image record", "image_id", img.ImageID, "err", err)
	}
}

func (s *service) sign(ctx context.Context, img *domain.ArticleImage) {
	url, err := s.objects.PresignedURL(ctx, img.Object, ImageURLTTL)
	if err != nil {
		slog.Warn("failed to presign image", "image_id", img.ImageID, "err", err)
		return
	}
	img.URL = url
}

func validStatus(status string) bool {
	for _, st := range domain.ArticleStatuses {
		if st == status {
			return true
		}
	}
	return false
}

func dedupe(ids []string) []string {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// sanitizeFilename keeps the base name with only alphanumerics, dot, dash and
// underscore.
func sanitizeFilename(name string) string {
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	var b strings.Builder
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') || r == '.' || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	if result := b.String(); result != "" && result != "." && result != ".." {
		return result
	}
	return "_"
}
