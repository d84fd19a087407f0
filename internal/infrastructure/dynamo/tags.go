package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/news-api/internal/domain"
)

// TagRepo provides typed DynamoDB operations for the tags table.
// GSI: name-index.
type TagRepo struct {
	t table
}

func NewTagRepo(client *dynamodb.Client, tableName string) *TagRepo {
	return &TagRepo{t: table{client: client, name: tableName, pk: "tag_id"}}
}

func (r *TagRepo) Put(ctx context.Context, tag *domain.Tag) error {
	return r.t.put(ctx, tag)
}

func (r *TagRepo) Get(ctx context.Context, tagID string) (*domain.Tag, error) {
	tag, err := getItem[domain.Tag](ctx, r.t, tagID)
	if err != nil {
		return nil, fmt.Errorf("tag %s: %w", tagID, err)
	}
	return tag, nil
}

func (r *TagRepo) GetByName(ctx context.Context, name string) (*domain.Tag, error) {
	return queryOne[domain.Tag](ctx, r.t, "name-index", "name", name)
}

func (r *TagRepo) Scan(ctx context.Context) ([]domain.Tag, error) {
	return scanAll[domain.Tag](ctx, r.t)
}

func (r *TagRepo) Update(ctx context.Context, tagID string, updates map[string]interface{}) error {
	return r.t.update(ctx, tagID, updates)
}

func (r *TagRepo) HardDelete(ctx context.Context, tagID string) error {
	return r.t.delete(ctx, tagID)
}
