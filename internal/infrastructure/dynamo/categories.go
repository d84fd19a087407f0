package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/news-api/internal/domain"
)

// CategoryRepo provides typed DynamoDB operations for the categories table.
// GSI: name-index.
type CategoryRepo struct {
	t table
}

func NewCategoryRepo(client *dynamodb.Client, tableName string) *CategoryRepo {
	return &CategoryRepo{t: table{client: client, name: tableName, pk: "category_id"}}
}

func (r *CategoryRepo) Put(ctx context.Context, c *domain.Category) error {
	return r.t.put(ctx, c)
}

func (r *CategoryRepo) Get(ctx context.Context, categoryID string) (*domain.Category, error) {
	c, err := getItem[domain.Category](ctx, r.t, categoryID)
	if err != nil {
		return nil, fmt.Errorf("category %s: %w", categoryID, err)
	}
	return c, nil
}

func (r *CategoryRepo) GetByName(ctx context.Context, name string) (*domain.Category, error) {
	return queryOne[domain.Category](ctx, r.t, "name-index", "name", name)
}

func (r *CategoryRepo) Scan(ctx context.Context) ([]domain.Category, error) {
	return scanAll[domain.Category](ctx, r.t)
}

func (r *CategoryRepo) Update(ctx context.Context, categoryID string, updates map[string]interface{}) error {
	return r.t.update(ctx, categoryID, updates)
}

// HardDelete permanently removes a category (no soft delete for categories).
func (r *CategoryRepo) HardDelete(ctx context.Context, categoryID string) error {
	return r.t.delete(ctx, categoryID)
}
