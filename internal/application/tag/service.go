package tag

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/news-api/internal/domain"
	"github.com/news-api/internal/pkg/id"
)

type Service interface {
	List(ctx context.Context) ([]domain.Tag, error)
	Get(ctx context.Context, tagID string) (*domain.Tag, error)
	Create(ctx context.Context, input domain.TagInput) (*domain.Tag, error)
	Rename(ctx context.Context, tagID string, input domain.TagInput) (*domain.Tag, error)
	Delete(ctx context.Context, tagID string) error
}

type tagStore interface {
	Scan(ctx context.Context) ([]domain.Tag, error)
	Get(ctx context.Context, tagID string) (*domain.Tag, error)
	GetByName(ctx context.Context, name string) (*domain.Tag, error)
	Put(ctx context.Context, t *domain.Tag) error
	Update(ctx context.Context, tagID string, updates map[string]interface{}) error
	HardDelete(ctx context.Context, tagID string) error
}

type service struct {
	repo tagStore
}

func NewService(repo tagStore) Service {
	return &service{repo: repo}
}

func (s *service) List(ctx context.Context) ([]domain.Tag, error) {
	return s.repo.Scan(ctx)
}

func (s *service) Get(ctx context.Context, tagID string) (*domain.Tag, error) {
	return s.repo.Get(ctx, tagID)
}

func (s *service) Create(ctx context.Context, input domain.TagInput) (*domain.Tag, error) {
	name := strings.TrimSpace(input.Name)
	if err := s.ensureNameFree(ctx, name, ""); err != nil {
		return nil, err
	}
	t := &domain.Tag{TagID: id.New(), Name: name, CreatedAt: time.Now().UTC()}
	if err := s.repo.Put(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *service) Rename(ctx context.Context, tagID string, input domain.TagInput) (*domain.Tag, error) {
	name := strings.TrimSpace(input.Name)
	if err := s.ensureNameFree(ctx, name, tagID); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, tagID, map[string]interface{}{"name": name}); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, tagID)
}

func (s *service) Delete(ctx context.Context, tagID string) error {
	return s.repo.HardDelete(ctx, tagID)
}

func (s *service) ensureNameFree(ctx context.Context, name, selfID string) error {
	existing, err := s.repo.GetByName(ctx, name)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if existing.TagID != selfID {
		return fmt.Errorf("tag %q already exists: %w", name, domain.ErrConflict)
	}
	return nil
}
