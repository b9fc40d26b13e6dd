/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/suparena/nftregistry/errors"
	"github.com/suparena/nftregistry/storagemodels"
)

// Query reads one partition in sort key order, following pagination until
// params.Limit items are collected or the partition is exhausted.
// Every item is checked against the EntityType registered for T.
func (d *DynamodbDataStore[T]) Query(ctx context.Context, params *storagemodels.QueryParams) ([]T, error) {
	input, err := d.buildQueryInput(params, params.Limit)
	if err != nil {
		return nil, err
	}

	var results []T
	for {
		out, err := d.client.Query(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("query error: %w", err)
		}

		for _, item := range out.Items {
			obj, err := decodeItem[T](item)
			if err != nil {
				return nil, err
			}
			results = append(results, obj)
			if params.Limit > 0 && len(results) >= int(params.Limit) {
				return results, nil
			}
		}

		if len(out.LastEvaluatedKey) == 0 {
			return results, nil
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
}

// buildQueryInput translates backend-neutral QueryParams into a DynamoDB query.
func (d *DynamodbDataStore[T]) buildQueryInput(params *storagemodels.QueryParams, pageSize int32) (*sdk.QueryInput, error) {
	if params == nil || params.PartitionKey == "" {
		return nil, errors.NewValidationError("PartitionKey", "query requires a partition key")
	}

	keyCondition := attrPK + " = :pk"
	values := map[string]types.AttributeValue{
		":pk": &types.AttributeValueMemberS{Value: params.PartitionKey},
	}
	if params.SortKeyPrefix != "" {
		keyCondition += " AND begins_with(" + attrSK + ", :skp)"
		values[":skp"] = &types.AttributeValueMemberS{Value: params.SortKeyPrefix}
	}

	input := &sdk.QueryInput{
		TableName:                 &d.tableName,
		KeyConditionExpression:    aws.String(keyCondition),
		ExpressionAttributeValues: values,
		ScanIndexForward:          aws.Bool(!params.Descending),
	}
	if pageSize > 0 {
		input.Limit = aws.Int32(pageSize)
	}
	if params.StartAfter != "" {
		input.ExclusiveStartKey = map[string]types.AttributeValue{
			attrPK: &types.AttributeValueMemberS{Value: params.PartitionKey},
			attrSK: &types.AttributeValueMemberS{Value: params.StartAfter},
		}
	}
	return input, nil
}
