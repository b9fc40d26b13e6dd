/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/nftregistry/errors"
	"github.com/suparena/nftregistry/registry"
	"github.com/suparena/nftregistry/storagemodels"
)

func testState() storagemodels.StateDocument {
	return storagemodels.StateDocument{
		Registry: "main",
		Admin:    "GADMIN",
		Counter:  2,
		Assets: []storagemodels.AssetEntry{
			{ID: 1, Owner: "GBOB", Creator: "GALICE", URI: "ipfs://one"},
			{ID: 2, Owner: "GALICE", Creator: "GALICE", URI: "ipfs://two"},
		},
		Royalties: []storagemodels.RoyaltyEntry{{ID: 1, Percentage: 10}},
		Version:   1,
	}
}

func TestPutAndGetOne(t *testing.T) {
	ctx := context.Background()
	api := newFakeAPI()
	store := NewWithClient[storagemodels.StateDocument](api, "nftregistry")

	require.NoError(t, store.Put(ctx, testState()))

	raw := api.items["REGISTRY#main|STATE"]
	require.NotNil(t, raw, "item should be stored under the expanded key")
	assert.Equal(t, registry.StateEntity, stringAttr(raw, attrEntityType))

	got, err := store.GetOne(ctx, "main")
	require.NoError(t, err)
	assert.Equal(t, "GADMIN", got.Admin)
	assert.Equal(t, uint64(2), got.Counter)
	assert.Equal(t, testState().Assets, got.Assets)
	assert.Equal(t, testState().Royalties, got.Royalties)

	_, err = store.GetOne(ctx, "other")
	assert.True(t, errors.IsNotFound(err), "expected not found, got %v", err)
}

func TestPutWithCondition(t *testing.T) {
	ctx := context.Background()
	store := NewWithClient[storagemodels.StateDocument](newFakeAPI(), "nftregistry")
	doc := testState()

	require.NoError(t, store.PutWithCondition(ctx, doc, storagemodels.WriteCondition{IfNotExists: true}))

	err := store.PutWithCondition(ctx, doc, storagemodels.WriteCondition{IfNotExists: true})
	assert.True(t, errors.IsConditionFailed(err), "second create should fail, got %v", err)

	stale := uint64(4)
	doc.Version = 5
	err = store.PutWithCondition(ctx, doc, storagemodels.WriteCondition{IfVersion: &stale})
	assert.True(t, errors.IsConditionFailed(err), "stale version should fail, got %v", err)

	current := uint64(1)
	doc.Version = 2
	require.NoError(t, store.PutWithCondition(ctx, doc, storagemodels.WriteCondition{IfVersion: &current}))

	got, err := store.GetOne(ctx, "main")
	require.NoError(t, err)
	assert.Equal(t, uint64(2), got.Version)
}

func TestGetOneRejectsForeignEntityType(t *testing.T) {
	api := newFakeAPI()
	api.items["REGISTRY#main|STATE"] = map[string]types.AttributeValue{
		attrPK:         &types.AttributeValueMemberS{Value: "REGISTRY#main"},
		attrSK:         &types.AttributeValueMemberS{Value: "STATE"},
		attrEntityType: &types.AttributeValueMemberS{Value: registry.BalanceEntity},
	}
	store := NewWithClient[storagemodels.StateDocument](api, "nftregistry")

	_, err := store.GetOne(context.Background(), "main")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "EntityType")
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	api := newFakeAPI()
	store := NewWithClient[storagemodels.StateDocument](api, "nftregistry")

	require.NoError(t, store.Put(ctx, testState()))
	require.NoError(t, store.Delete(ctx, "main"))
	assert.Empty(t, api.items)
}

func putEvents(t *testing.T, store *DynamodbDataStore[storagemodels.NotificationRecord], registryName string, n int) {
	t.Helper()
	for i := 1; i <= n; i++ {
		rec := storagemodels.NotificationRecord{
			Registry: registryName,
			ID:       fmt.Sprintf("%04d", i),
			Kind:     string(storagemodels.KindMint),
			Topics:   []string{"GBOB", "GALICE"},
			Payload:  uint64(i),
		}
		require.NoError(t, store.Put(context.Background(), rec))
	}
}

func TestQuery(t *testing.T) {
	ctx := context.Background()
	api := newFakeAPI()
	api.pageCap = 2
	store := NewWithClient[storagemodels.NotificationRecord](api, "nftregistry")
	putEvents(t, store, "main", 5)
	putEvents(t, store, "other", 1)

	pk, err := registry.PartitionKey[storagemodels.NotificationRecord]("main")
	require.NoError(t, err)

	t.Run("AllPages", func(t *testing.T) {
		api.queries = 0
		got, err := store.Query(ctx, &storagemodels.QueryParams{PartitionKey: pk})
		require.NoError(t, err)
		require.Len(t, got, 5)
		assert.Equal(t, "0001", got[0].ID)
		assert.Equal(t, "0005", got[4].ID)
		assert.Equal(t, 3, api.queries, "five items at two per page")
	})

	t.Run("Descending", func(t *testing.T) {
		got, err := store.Query(ctx, &storagemodels.QueryParams{PartitionKey: pk, Descending: true, Limit: 2})
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "0005", got[0].ID)
		assert.Equal(t, "0004", got[1].ID)
	})

	t.Run("StartAfter", func(t *testing.T) {
		got, err := store.Query(ctx, &storagemodels.QueryParams{PartitionKey: pk, StartAfter: "EVENT#0003"})
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "0004", got[0].ID)
	})

	t.Run("SortKeyPrefix", func(t *testing.T) {
		got, err := store.Query(ctx, &storagemodels.QueryParams{PartitionKey: pk, SortKeyPrefix: "EVENT#000"})
		require.NoError(t, err)
		assert.Len(t, got, 5)

		got, err = store.Query(ctx, &storagemodels.QueryParams{PartitionKey: pk, SortKeyPrefix: "NOPE"})
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("MissingPartitionKey", func(t *testing.T) {
		_, err := store.Query(ctx, &storagemodels.QueryParams{})
		assert.True(t, errors.IsValidationError(err), "got %v", err)
	})
}

func TestBuildConditionExpression(t *testing.T) {
	version := uint64(3)
	tests := []struct {
		name     string
		cond     storagemodels.WriteCondition
		wantExpr string
		wantVals int
	}{
		{"None", storagemodels.WriteCondition{}, "", 0},
		{"IfNotExists", storagemodels.WriteCondition{IfNotExists: true}, "attribute_not_exists(PK)", 0},
		{"IfVersion", storagemodels.WriteCondition{IfVersion: &version}, "#ver = :ver", 1},
		{"Both", storagemodels.WriteCondition{IfNotExists: true, IfVersion: &version}, "attribute_not_exists(PK) AND #ver = :ver", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expr, names, values := buildConditionExpression(tt.cond)
			assert.Equal(t, tt.wantExpr, expr)
			assert.Len(t, values, tt.wantVals)
			if tt.cond.IfVersion != nil {
				assert.Equal(t, attrVersion, names["#ver"])
				assert.Equal(t, "3", values[":ver"].(*types.AttributeValueMemberN).Value)
			}
		})
	}
}

// TestDynamoDBIntegration runs against a real table when one is configured.
func TestDynamoDBIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}
	_ = godotenv.Load()

	table := os.Getenv("NFTREGISTRY_AWS_TABLE")
	if table == "" {
		t.Skip("NFTREGISTRY_AWS_TABLE not set")
	}

	ctx := context.Background()
	store, err := NewDynamodbDataStore[storagemodels.StateDocument](ctx, ClientConfig{
		AccessKey: os.Getenv("NFTREGISTRY_AWS_ACCESS_KEY"),
		SecretKey: os.Getenv("NFTREGISTRY_AWS_SECRET_KEY"),
		Region:    os.Getenv("NFTREGISTRY_AWS_REGION"),
		Endpoint:  os.Getenv("NFTREGISTRY_AWS_ENDPOINT"),
	}, table)
	require.NoError(t, err)

	doc := testState()
	doc.Registry = "integration-test"
	require.NoError(t, store.Put(ctx, doc))
	t.Cleanup(func() { _ = store.Delete(ctx, doc.Registry) })

	got, err := store.GetOne(ctx, doc.Registry)
	require.NoError(t, err)
	assert.Equal(t, doc.Admin, got.Admin)
}
