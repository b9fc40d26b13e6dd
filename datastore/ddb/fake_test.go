/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// fakeAPI is an in-memory table understanding the expressions DynamodbDataStore emits.
type fakeAPI struct {
	mu        sync.Mutex
	items     map[string]map[string]types.AttributeValue
	pageCap   int32
	queryErrs []error
	queries   int
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{items: make(map[string]map[string]types.AttributeValue)}
}

func fakeKey(item map[string]types.AttributeValue) string {
	return stringAttr(item, attrPK) + "|" + stringAttr(item, attrSK)
}

func (f *fakeAPI) GetItem(_ context.Context, in *sdk.GetItemInput, _ ...func(*sdk.Options)) (*sdk.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return &sdk.GetItemOutput{Item: f.items[fakeKey(in.Key)]}, nil
}

func (f *fakeAPI) PutItem(_ context.Context, in *sdk.PutItemInput, _ ...func(*sdk.Options)) (*sdk.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := fakeKey(in.Item)
	existing := f.items[key]
	cond := aws.ToString(in.ConditionExpression)
	failed := &types.ConditionalCheckFailedException{Message: aws.String("The conditional request failed")}

	if strings.Contains(cond, "attribute_not_exists(PK)") && existing != nil {
		return nil, failed
	}
	if strings.Contains(cond, "#ver = :ver") {
		want := in.ExpressionAttributeValues[":ver"].(*types.AttributeValueMemberN).Value
		have, ok := existing[in.ExpressionAttributeNames["#ver"]].(*types.AttributeValueMemberN)
		if !ok || have.Value != want {
			return nil, failed
		}
	}

	f.items[key] = in.Item
	return &sdk.PutItemOutput{}, nil
}

func (f *fakeAPI) DeleteItem(_ context.Context, in *sdk.DeleteItemInput, _ ...func(*sdk.Options)) (*sdk.DeleteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.items, fakeKey(in.Key))
	return &sdk.DeleteItemOutput{}, nil
}

func (f *fakeAPI) Query(_ context.Context, in *sdk.QueryInput, _ ...func(*sdk.Options)) (*sdk.QueryOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.queries++
	if len(f.queryErrs) > 0 {
		err := f.queryErrs[0]
		f.queryErrs = f.queryErrs[1:]
		return nil, err
	}

	pk := in.ExpressionAttributeValues[":pk"].(*types.AttributeValueMemberS).Value
	prefix := ""
	if v, ok := in.ExpressionAttributeValues[":skp"]; ok {
		prefix = v.(*types.AttributeValueMemberS).Value
	}
	forward := in.ScanIndexForward == nil || *in.ScanIndexForward

	var matched []map[string]types.AttributeValue
	for _, item := range f.items {
		if stringAttr(item, attrPK) == pk && strings.HasPrefix(stringAttr(item, attrSK), prefix) {
			matched = append(matched, item)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		a, b := stringAttr(matched[i], attrSK), stringAttr(matched[j], attrSK)
		if forward {
			return a < b
		}
		return a > b
	})

	if in.ExclusiveStartKey != nil {
		start := stringAttr(in.ExclusiveStartKey, attrSK)
		rest := matched[:0:0]
		for _, item := range matched {
			sk := stringAttr(item, attrSK)
			if (forward && sk > start) || (!forward && sk < start) {
				rest = append(rest, item)
			}
		}
		matched = rest
	}

	limit := int32(0)
	if in.Limit != nil {
		limit = *in.Limit
	}
	if f.pageCap > 0 && (limit == 0 || f.pageCap < limit) {
		limit = f.pageCap
	}

	out := &sdk.QueryOutput{Items: matched}
	if limit > 0 && int(limit) < len(matched) {
		out.Items = matched[:limit]
		last := out.Items[limit-1]
		out.LastEvaluatedKey = map[string]types.AttributeValue{
			attrPK: last[attrPK],
			attrSK: last[attrSK],
		}
	}
	return out, nil
}
