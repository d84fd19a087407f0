package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/news-api/internal/domain"
)

// ArticleImageRepo stores metadata for images kept in S3.
// GSI: article_id-index.
type ArticleImageRepo struct {
	t table
}

func NewArticleImageRepo(client *dynamodb.Client, tableName string) *ArticleImageRepo {
	return &ArticleImageRepo{t: table{client: client, name: tableName, pk: "image_id"}}
}

func (r *ArticleImageRepo) Put(ctx context.Context, img *domain.ArticleImage) error {
	return r.t.put(ctx, img)
}

func (r *ArticleImageRepo) Get(ctx context.Context, imageID string) (*domain.ArticleImage, error) {
	img, err := getItem[domain.ArticleImage](ctx, r.t, imageID)
	if err != nil {
		return nil, fmt.Errorf("image %s: %w", imageID, err)
	}
	return img, nil
}

func (r *ArticleImageRepo) ListByArticle(ctx context.Context, articleID string) ([]domain.ArticleImage, error) {
	return queryIndex[domain.ArticleImage](ctx, r.t, "article_id-index", "article_id", articleID)
}

func (r *ArticleImageRepo) Delete(ctx context.Context, imageID string) error {
	return r.t.delete(ctx, imageID)
}
