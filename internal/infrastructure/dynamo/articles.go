package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/news-api/internal/domain"
)

// ArticleRepo provides typed DynamoDB operations for the articles table.
// GSIs: author_id-index, status-index.
type ArticleRepo struct {
	t table
}

func NewArticleRepo(client *dynamodb.Client, tableName string) *ArticleRepo {
	return &ArticleRepo{t: table{client: client, name: tableName, pk: "article_id"}}
}

func (r *ArticleRepo) Put(ctx context.Context, a *domain.Article) error {
	return r.t.put(ctx, a)
}

func (r *ArticleRepo) Get(ctx context.Context, articleID string) (*domain.Article, error) {
	a, err := getItem[domain.Article](ctx, r.t, articleID)
	if err != nil {
		return nil, fmt.Errorf("article %s: %w", articleID, err)
	}
	return a, nil
}

func (r *ArticleRepo) Update(ctx context.Context, articleID string, updates map[string]interface{}) error {
	updates[fieldUpdatedAt] = time.Now().UTC()
	return r.t.update(ctx, articleID, updates)
}

func (r *ArticleRepo) Delete(ctx context.Context, articleID string) error {
	return r.t.delete(ctx, articleID)
}

func (r *ArticleRepo) IncrementViews(ctx context.Context, articleID string) error {
	return r.t.increment(ctx, articleID, fieldViews, 1)
}

// List returns the articles matching f. Author and status filters are served
// by their GSI; the rest are applied in memory.
func (r *ArticleRepo) List(ctx context.Context, f domain.ArticleFilter) ([]domain.Article, error) {
	var (
		items []domain.Article
		err   error
	)
	switch {
	case f.AuthorID != "":
		items, err = queryIndex[domain.Article](ctx, r.t, "author_id-index", "author_id", f.AuthorID)
	case f.Status != "":
		items, err = queryIndex[domain.Article](ctx, r.t, "status-index", "status", f.Status)
	default:
		items, err = scanAll[domain.Article](ctx, r.t)
	}
	if err != nil {
		return nil, err
	}
	out := make([]domain.Article, 0, len(items))
	for i := range items {
		if f.Match(&items[i]) {
			out = append(out, items[i])
		}
	}
	return out, nil
}
