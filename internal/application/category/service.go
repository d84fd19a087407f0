package category

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/news-api/internal/domain"
	"github.com/news-api/internal/pkg/id"
)

// DynamoDB attribute names used in partial update maps.
const (
	fieldName        = "name"
	fieldDescription = "description"
)

type Service interface {
	List(ctx context.Context) ([]domain.Category, error)
	Get(ctx context.Context, categoryID string) (*domain.Category, error)
	Create(ctx context.Context, input domain.CategoryInput) (*domain.Category, error)
	Update(ctx context.Context, categoryID string, input domain.CategoryInput) (*domain.Category, error)
	Delete(ctx context.Context, categoryID string) error // hard delete
}

type categoryStore interface {
	Scan(ctx context.Context) ([]domain.Category, error)
	Get(ctx context.Context, categoryID string) (*domain.Category, error)
	GetByName(ctx context.Context, name string) (*domain.Category, error)
	Put(ctx context.Context, c *domain.Category) error
	Update(ctx context.Context, categoryID string, updates map[string]interface{}) error
	HardDelete(ctx context.Context, categoryID string) error
}

type service struct {
	repo categoryStore
}

func NewService(repo categoryStore) Service {
	return &service{repo: repo}
}

func (s *service) List(ctx context.Context) ([]domain.Category, error) {
	return s.repo.Scan(ctx)
}

func (s *service) Get(ctx context.Context, categoryID string) (*domain.Category, error) {
	return s.repo.Get(ctx, categoryID)
}

func (s *service) Create(ctx context.Context, input domain.CategoryInput) (*domain.Category, error) {
	name := strings.TrimSpace(input.Name)
	if err := s.ensureNameFree(ctx, name, ""); err != nil {
		return nil, err
	}
	c := &domain.Category{
		CategoryID:  id.New(),
		Name:        name,
		Description: input.Description,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.repo.Put(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *service) Update(ctx context.Context, categoryID string, input domain.CategoryInput) (*domain.Category, error) {
	name := strings.TrimSpace(input.Name)
	if err := s.ensureNameFree(ctx, name, categoryID); err != nil {
		return nil, err
	}
	updates := map[string]interface{}{fieldName: name, fieldDescription: input.Description}
	if err := s.repo.Update(ctx, categoryID, updates); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, categoryID)
}

func (s *service) Delete(ctx context.Context, categoryID string) error {
	return s.repo.HardDelete(ctx, categoryID)
}

// ensureNameFree fails with ErrConflict when another category owns name.
func (s *service) ensureNameFree(ctx context.Context, name, selfID string) error {
	existing, err := s.repo.GetByName(ctx, name)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if existing.CategoryID != selfID {
		return fmt.Errorf("category %q already exists: %w", name, domain.ErrConflict)
	}
	return nil
}
