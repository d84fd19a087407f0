package dynamo

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/news-api/internal/config"
)

// tableSpec describes one table: its string hash key and the string
// attributes that get a hash-only GSI named "<attr>-index".
type tableSpec struct {
	name    string
	pk      string
	indexes []string
	ttl     string
}

func tableSpecs(tables config.DynamoTables) []tableSpec {
	return []tableSpec{
		{name: tables.Users, pk: "user_id", indexes: []string{"username", "email"}},
		{name: tables.Sessions, pk: "session_id", indexes: []string{"user_id"}, ttl: "expires_at"},
		{name: tables.Articles, pk: "article_id", indexes: []string{"author_id", "status"}},
		{name: tables.ArticleImages, pk: "image_id", indexes: []string{"article_id"}},
		{name: tables.Categories, pk: "category_id", indexes: []string{"name"}},
		{name: tables.Tags, pk: "tag_id", indexes: []string{"name"}},
		{name: tables.Comments, pk: "comment_id", indexes: []string{"article_id"}},
		{name: tables.Replies, pk: "reply_id", indexes: []string{"comment_id"}},
		{name: tables.VerificationCodes, pk: "identity", ttl: "expires_at"},
	}
}

// Bootstrap creates all DynamoDB tables and GSIs if they don't already exist.
// Safe to call on every startup.
func Bootstrap(ctx context.Context, client *dynamodb.Client, tables config.DynamoTables) {
	for _, spec := range tableSpecs(tables) {
		createTable(ctx, client, spec.input())
		if spec.ttl != "" {
			enableTTL(ctx, client, spec.name, spec.ttl)
		}
	}
}

func (s tableSpec) input() *dynamodb.CreateTableInput {
	attrs := []types.AttributeDefinition{
		{AttributeName: aws.String(s.pk), AttributeType: types.ScalarAttributeTypeS},
	}
	var gsis []types.GlobalSecondaryIndex
	for _, attr := range s.indexes {
		attrs = append(attrs, types.AttributeDefinition{
			AttributeName: aws.String(attr), AttributeType: types.ScalarAttributeTypeS,
		})
		gsis = append(gsis, gsi(attr+"-index", attr))
	}
	return &dynamodb.CreateTableInput{
		TableName:            aws.String(s.name),
		BillingMode:          types.BillingModePayPerRequest,
		AttributeDefinitions: attrs,
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String(s.pk), KeyType: types.KeyTypeHash},
		},
		GlobalSecondaryIndexes: gsis,
	}
}

func gsi(indexName, hashKey string) types.GlobalSecondaryIndex {
	return types.GlobalSecondaryIndex{
		IndexName: aws.String(indexName),
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String(hashKey), KeyType: types.KeyTypeHash},
		},
		Projection: &types.Projection{ProjectionType: types.ProjectionTypeAll},
	}
}

func createTable(ctx context.Context, client *dynamodb.Client, input *dynamodb.CreateTableInput) {
	_, err := client.CreateTable(ctx, input)
	if err != nil {
		var riue *types.ResourceInUseException
		if !errors.As(err, &riue) {
			slog.Warn("could not create table", "table", *input.TableName, "err", err)
		}
		return
	}
	slog.Info("created table", "table", *input.TableName)
}

func enableTTL(ctx context.Context, client *dynamodb.Client, tableName, ttlAttr string) {
	_, err := client.UpdateTimeToLive(ctx, &dynamodb.UpdateTimeToLiveInput{
		TableName: aws.String(tableName),
		TimeToLiveSpecification: &types.TimeToLiveSpecification{
			Enabled:       aws.Bool(true),
			AttributeName: aws.String(ttlAttr),
		},
	})
	if err != nil {
		slog.Warn("could not enable TTL", "table", tableName, "err", err)
	}
}
