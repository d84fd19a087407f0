package dynamo

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/news-api/internal/domain"
)

// CommentRepo provides typed DynamoDB operations for the comments table.
// GSI: article_id-index.
type CommentRepo struct {
	t table
}

func NewCommentRepo(client *dynamodb.Client, tableName string) *CommentRepo {
	return &CommentRepo{t: table{client: client, name: tableName, pk: "comment_id"}}
}

func (r *CommentRepo) Put(ctx context.Context, c *domain.Comment) error {
	return r.t.put(ctx, c)
}

func (r *CommentRepo) Get(ctx context.Context, commentID string) (*domain.Comment, error) {
	c, err := getItem[domain.Comment](ctx, r.t, commentID)
	if err != nil {
		return nil, fmt.Errorf("comment %s: %w", commentID, err)
	}
	return c, nil
}

// ListByArticle returns an article's comments, oldest first.
func (r *CommentRepo) ListByArticle(ctx context.Context, articleID string) ([]domain.Comment, error) {
	items, err := queryIndex[domain.Comment](ctx, r.t, "article_id-index", "article_id", articleID)
	if err != nil {
		return nil, err
	}
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.Before(items[j].CreatedAt) })
	return items, nil
}

func (r *CommentRepo) All(ctx context.Context) ([]domain.Comment, error) {
	return scanAll[domain.Comment](ctx, r.t)
}

func (r *CommentRepo) Update(ctx context.Context, commentID string, updates map[string]interface{}) error {
	updates[fieldUpdatedAt] = time.Now().UTC()
	return r.t.update(ctx, commentID, updates)
}

func (r *CommentRepo) Delete(ctx context.Context, commentID string) error {
	return r.t.delete(ctx, commentID)
}

func (r *CommentRepo) IncrementLikes(ctx context.Context, commentID string) error {
	return r.t.increment(ctx, commentID, fieldLikes, 1)
}

// DeleteByArticle removes every comment on an article and returns their IDs.
func (r *CommentRepo) DeleteByArticle(ctx context.Context, articleID string) ([]string, error) {
	items, err := queryIndex[domain.Comment](ctx, r.t, "article_id-index", "article_id", articleID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(items))
	for _, c := range items {
		if err := r.t.delete(ctx, c.CommentID); err != nil {
			slog.Warn("failed to delete comment", "comment_id", c.CommentID, "article_id", articleID, "err", err)
			continue
		}
		ids = append(ids, c.CommentID)
	}
	return ids, nil
}

// ReplyRepo provides typed DynamoDB operations for the replies table.
// GSI: comment_id-index.
type ReplyRepo struct {
	t table
}

func NewReplyRepo(client *dynamodb.Client, tableName string) *ReplyRepo {
	return &ReplyRepo{t: table{client: client, name: tableName, pk: "reply_id"}}
}

func (r *ReplyRepo) Put(ctx context.Context, rep *domain.Reply) error {
	return r.t.put(ctx, rep)
}

func (r *ReplyRepo) Get(ctx context.Context, replyID string) (*domain.Reply, error) {
	rep, err := getItem[domain.Reply](ctx, r.t, replyID)
	if err != nil {
		return nil, fmt.Errorf("reply %s: %w", replyID, err)
	}
	return rep, nil
}

// ListByComment returns a comment's replies, oldest first.
func (r *ReplyRepo) ListByComment(ctx context.Context, commentID string) ([]domain.Reply, error) {
	items, err := queryIndex[domain.Reply](ctx, r.t, "comment_id-index", "comment_id", commentID)
	if err != nil {
		return nil, err
	}
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.Before(items[j].CreatedAt) })
	return items, nil
}

func (r *ReplyRepo) Update(ctx context.Context, replyID string, updates map[string]interface{}) error {
	updates[fieldUpdatedAt] = time.Now().UTC()
	return r.t.update(ctx, replyID, updates)
}

func (r *ReplyRepo) Delete(ctx context.Context, replyID string) error {
	return r.t.delete(ctx, replyID)
}

func (r *ReplyRepo) DeleteByComment(ctx context.Context, commentID string) error {
	items, err := queryIndex[domain.Reply](ctx, r.t, "comment_id-index", "comment_id", commentID)
	if err != nil {
		return err
	}
	for _, rep := range items {
		if err := r.t.delete(ctx, rep.ReplyID); err != nil {
			return err
		}
	}
	return nil
}

func (r *ReplyRepo) IncrementLikes(ctx context.Context, replyID string) error {
	return r.t.increment(ctx, replyID, fieldLikes, 1)
}
