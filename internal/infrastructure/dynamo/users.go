package dynamo

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/news-api/internal/domain"
)

// UserRepo provides typed DynamoDB operations for the users table.
// GSIs: username-index, email-index.
type UserRepo struct {
	t table
}

func NewUserRepo(client *dynamodb.Client, tableName string) *UserRepo {
	return &UserRepo{t: table{client: client, name: tableName, pk: "user_id"}}
}

func (r *UserRepo) Put(ctx context.Context, u *domain.User) error {
	return r.t.put(ctx, u)
}

func (r *UserRepo) Get(ctx context.Context, userID string) (*domain.User, error) {
	u, err := getItem[domain.User](ctx, r.t, userID)
	if err != nil {
		return nil, fmt.Errorf("user %s: %w", userID, err)
	}
	return u, nil
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return queryOne[domain.User](ctx, r.t, "username-index", "username", username)
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return queryOne[domain.User](ctx, r.t, "email-index", "email", email)
}

func (r *UserRepo) Update(ctx context.Context, userID string, updates map[string]interface{}) error {
	updates[fieldUpdatedAt] = time.Now().UTC()
	return r.t.update(ctx, userID, updates)
}

// SoftDelete disables the account and stamps deleted_at.
func (r *UserRepo) SoftDelete(ctx context.Context, userID string) error {
	return r.Update(ctx, userID, map[string]interface{}{
		fieldEnable:    0,
		fieldDeletedAt: time.Now().UTC(),
	})
}

// ScanPage returns a page of enabled users.
// cursor is a base64-encoded user_id used as ExclusiveStartKey; the returned
// cursor is empty on the last page.
func (r *UserRepo) ScanPage(ctx context.Context, limit int32, cursor string) ([]domain.User, string, error) {
	input := &dynamodb.ScanInput{
		TableName:                aws.String(r.t.name),
		FilterExpression:         aws.String("#e = :one"),
		ExpressionAttributeNames: map[string]string{"#e": fieldEnable},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":one": &types.AttributeValueMemberN{Value: "1"},
		},
		Limit: aws.Int32(limit),
	}
	if cursor != "" {
		userID, err := decodeCursor(cursor)
		if err != nil {
			return nil, "", fmt.Errorf("invalid cursor: %w", domain.ErrBadRequest)
		}
		input.ExclusiveStartKey = strKey("user_id", userID)
	}
	out, err := r.t.client.Scan(ctx, input)
	if err != nil {
		return nil, "", err
	}
	users := []domain.User{}
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &users); err != nil {
		return nil, "", err
	}
	nextCursor := ""
	if v, ok := out.LastEvaluatedKey["user_id"].(*types.AttributeValueMemberS); ok {
		nextCursor = encodeCursor(v.Value)
	}
	return users, nextCursor, nil
}

// All returns every user, including disabled ones.
func (r *UserRepo) All(ctx context.Context) ([]domain.User, error) {
	return scanAll[domain.User](ctx, r.t)
}

func encodeCursor(id string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(id))
}

func decodeCursor(cursor string) (string, error) {
	b, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
