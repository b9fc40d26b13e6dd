/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	goerrors "errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/suparena/nftregistry/datastore"
	"github.com/suparena/nftregistry/errors"
	"github.com/suparena/nftregistry/registry"
	"github.com/suparena/nftregistry/storagemodels"
)

const (
	attrPK         = "PK"
	attrSK         = "SK"
	attrEntityType = "EntityType"
	attrVersion    = "Version"
)

// API is the part of the DynamoDB client used by DynamodbDataStore.
type API interface {
	GetItem(ctx context.Context, params *sdk.GetItemInput, optFns ...func(*sdk.Options)) (*sdk.GetItemOutput, error)
	PutItem(ctx context.Context, params *sdk.PutItemInput, optFns ...func(*sdk.Options)) (*sdk.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *sdk.DeleteItemInput, optFns ...func(*sdk.Options)) (*sdk.DeleteItemOutput, error)
	Query(ctx context.Context, params *sdk.QueryInput, optFns ...func(*sdk.Options)) (*sdk.QueryOutput, error)
}

// DynamodbDataStore implements datastore.DataStore[T] by using AWS DynamoDB as the underlying data store.
type DynamodbDataStore[T any] struct {
	client    API
	tableName string
}

var _ datastore.DataStore[storagemodels.StateDocument] = (*DynamodbDataStore[storagemodels.StateDocument])(nil)

// ClientConfig holds what is needed to reach a DynamoDB table.
type ClientConfig struct {
	AccessKey string
	SecretKey string
	Region    string
	// Endpoint overrides the service endpoint, e.g. for DynamoDB Local.
	Endpoint string
}

// NewDynamoDBClient initializes a DynamoDB client. Static credentials are used
// when an access key is given; otherwise the default credential chain applies.
func NewDynamoDBClient(ctx context.Context, cc ClientConfig) (*sdk.Client, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(cc.Region)}
	if cc.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cc.AccessKey, cc.SecretKey, ""),
		))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	client := sdk.NewFromConfig(cfg, func(o *sdk.Options) {
		if cc.Endpoint != "" {
			o.BaseEndpoint = aws.String(cc.Endpoint)
		}
	})

	slog.Info("DynamoDB client initialized", "region", cc.Region, "endpoint", cc.Endpoint)
	return client, nil
}

// NewDynamodbDataStore constructs a new DynamodbDataStore for type T.
func NewDynamodbDataStore[T any](ctx context.Context, cc ClientConfig, tableName string) (*DynamodbDataStore[T], error) {
	client, err := NewDynamoDBClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create DynamoDB client: %w", err)
	}
	return NewWithClient[T](client, tableName), nil
}

// NewWithClient constructs a DynamodbDataStore over an existing client.
func NewWithClient[T any](client API, tableName string) *DynamodbDataStore[T] {
	return &DynamodbDataStore[T]{
		client:    client,
		tableName: tableName,
	}
}

// GetOne retrieves a single item from DynamoDB using a string key.
// A missing item yields a NotFoundError.
func (d *DynamodbDataStore[T]) GetOne(ctx context.Context, key string) (*T, error) {
	k, err := registry.KeyForString[T](key)
	if err != nil {
		return nil, fmt.Errorf("failed to build key: %w", err)
	}

	out, err := d.client.GetItem(ctx, &sdk.GetItemInput{
		TableName:      &d.tableName,
		Key:            keyAttributes(k),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("GetItem error: %w", err)
	}
	if out.Item == nil {
		name, _ := registry.TypeName[T]()
		return nil, errors.NewNotFoundError(name, key)
	}

	result, err := decodeItem[T](out.Item)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Put stores the given entity, using the registered index map of T
// to populate partition/sort keys.
func (d *DynamodbDataStore[T]) Put(ctx context.Context, entity T) error {
	return d.PutWithCondition(ctx, entity, storagemodels.WriteCondition{})
}

// PutWithCondition stores entity only if cond holds for the stored item.
func (d *DynamodbDataStore[T]) PutWithCondition(ctx context.Context, entity T, cond storagemodels.WriteCondition) error {
	av, err := encodeItem(entity)
	if err != nil {
		return err
	}

	input := &sdk.PutItemInput{
		TableName: &d.tableName,
		Item:      av,
	}
	condition, names, values := buildConditionExpression(cond)
	if condition != "" {
		input.ConditionExpression = aws.String(condition)
		input.ExpressionAttributeNames = names
		input.ExpressionAttributeValues = values
	}

	_, err = d.client.PutItem(ctx, input)
	if err != nil {
		// If the condition fails, DynamoDB returns a ConditionalCheckFailedException
		var cfe *types.ConditionalCheckFailedException
		if goerrors.As(err, &cfe) {
			return errors.NewConditionFailedError("put", condition)
		}
		return fmt.Errorf("PutItem failed: %w", err)
	}
	return nil
}

// Delete removes an item from DynamoDB using a string key.
func (d *DynamodbDataStore[T]) Delete(ctx context.Context, key string) error {
	k, err := registry.KeyForString[T](key)
	if err != nil {
		return fmt.Errorf("failed to build key for Delete: %w", err)
	}

	_, err = d.client.DeleteItem(ctx, &sdk.DeleteItemInput{
		TableName: &d.tableName,
		Key:       keyAttributes(k),
	})
	if err != nil {
		return fmt.Errorf("failed to delete item in DynamoDB: %w", err)
	}
	return nil
}

// encodeItem marshals entity and injects its key and EntityType attributes.
func encodeItem[T any](entity T) (map[string]types.AttributeValue, error) {
	k, err := registry.KeyFor(entity)
	if err != nil {
		return nil, fmt.Errorf("failed to build key: %w", err)
	}
	name, err := registry.TypeName[T]()
	if err != nil {
		return nil, err
	}

	av, err := attributevalue.MarshalMap(entity)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal entity: %w", err)
	}
	av[attrPK] = &types.AttributeValueMemberS{Value: k.PK}
	av[attrSK] = &types.AttributeValueMemberS{Value: k.SK}
	av[attrEntityType] = &types.AttributeValueMemberS{Value: name}
	return av, nil
}

// decodeItem checks the EntityType attribute and unmarshals item into T.
func decodeItem[T any](item map[string]types.AttributeValue) (T, error) {
	var result T
	if attr, ok := item[attrEntityType]; ok {
		var entityType string
		if err := attributevalue.Unmarshal(attr, &entityType); err != nil {
			return result, fmt.Errorf("failed to unmarshal EntityType: %w", err)
		}
		if want, err := registry.TypeName[T](); err == nil && entityType != want {
			return result, fmt.Errorf("item has EntityType %q, expected %q", entityType, want)
		}
	}
	if err := attributevalue.UnmarshalMap(item, &result); err != nil {
		return result, fmt.Errorf("failed to unmarshal item: %w", err)
	}
	return result, nil
}

// buildConditionExpression transforms a WriteCondition into:
//   - a condition expression (e.g., "attribute_not_exists(PK)")
//   - a corresponding map of expression attribute names
//   - a corresponding map of expression attribute values
func buildConditionExpression(cond storagemodels.WriteCondition) (string,
	map[string]string,
	map[string]types.AttributeValue) {

	var clauses []string
	var names map[string]string
	var values map[string]types.AttributeValue

	if cond.IfNotExists {
		clauses = append(clauses, "attribute_not_exists("+attrPK+")")
	}
	if cond.IfVersion != nil {
		clauses = append(clauses, "#ver = :ver")
		names = map[string]string{"#ver": attrVersion}
		values = map[string]types.AttributeValue{
			":ver": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", *cond.IfVersion)},
		}
	}
	return strings.Join(clauses, " AND "), names, values
}

func keyAttributes(k registry.Key) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		attrPK: &types.AttributeValueMemberS{Value: k.PK},
		attrSK: &types.AttributeValueMemberS{Value: k.SK},
	}
}

func stringAttr(item map[string]types.AttributeValue, name string) string {
	if s, ok := item[name].(*types.AttributeValueMemberS); ok {
		return s.Value
	}
	return ""
}
