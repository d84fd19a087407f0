package dynamo

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/news-api/internal/domain"
)

// verificationItem is the stored form of a domain.VerificationRecord.
// expires_at is the table TTL attribute (Unix seconds); expires_at_ns keeps
// the exact expiry for comparisons.
type verificationItem struct {
	Identity    string `dynamodbav:"identity"`
	Code        string `dynamodbav:"code"`
	ExpiresAt   int64  `dynamodbav:"expires_at"`
	ExpiresAtNs int64  `dynamodbav:"expires_at_ns"`
}

func (i verificationItem) record() *domain.VerificationRecord {
	return &domain.VerificationRecord{
		Identity:  i.Identity,
		Code:      i.Code,
		ExpiresAt: time.Unix(0, i.ExpiresAtNs).UTC(),
	}
}

// VerificationRepo stores one-time codes keyed by identity (PK: identity).
// It is shared by every API instance, unlike the in-memory store.
type VerificationRepo struct {
	client    *dynamodb.Client
	tableName string
	now       func() time.Time
}

func NewVerificationRepo(client *dynamodb.Client, tableName string) *VerificationRepo {
	return &VerificationRepo{client: client, tableName: tableName, now: time.Now}
}

func (r *VerificationRepo) Put(ctx context.Context, identity, code string, ttl time.Duration) error {
	exp := r.now().Add(ttl)
	item, err := attributevalue.MarshalMap(verificationItem{
		Identity:    identity,
		Code:        code,
		ExpiresAt:   exp.Unix(),
		ExpiresAtNs: exp.UnixNano(),
	})
	if err != nil {
		return fmt.Errorf("marshal verification: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *VerificationRepo) Get(ctx context.Context, identity string) (*domain.VerificationRecord, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            strKey("identity", identity),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("verification not found: %w", domain.ErrNotFound)
	}
	var item verificationItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, err
	}
	return item.record(), nil
}

func (r *VerificationRepo) Remove(ctx context.Context, identity string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("identity", identity),
	})
	return err
}

func (r *VerificationRepo) RemoveIfMatch(ctx context.Context, rec *domain.VerificationRecord) (bool, error) {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 strKey("identity", rec.Identity),
		ConditionExpression: aws.String("#c = :c AND #e = :e"),
		ExpressionAttributeNames: map[string]string{
			"#c": "code",
			"#e": "expires_at_ns",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":c": strVal(rec.Code),
			":e": &types.AttributeValueMemberN{Value: strconv.FormatInt(rec.ExpiresAt.UnixNano(), 10)},
		},
	})
	if isConditionFailed(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
