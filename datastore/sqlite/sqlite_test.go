/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package sqlite_test

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/nftregistry/datastore/sqlite"
	"github.com/suparena/nftregistry/errors"
	"github.com/suparena/nftregistry/registry"
	"github.com/suparena/nftregistry/storagemodels"
)

func newTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	db, err := sqlite.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func testState() storagemodels.StateDocument {
	return storagemodels.StateDocument{
		Registry: "main",
		Admin:    "GADMIN",
		Counter:  1,
		Assets: []storagemodels.AssetEntry{
			{ID: 1, Owner: "GBOB", Creator: "GALICE", URI: "ipfs://one"},
		},
		Royalties: []storagemodels.RoyaltyEntry{{ID: 1, Percentage: 15}},
		Version:   1,
	}
}

func TestGetOneAndPut(t *testing.T) {
	ctx := context.Background()
	store := sqlite.New[storagemodels.StateDocument](newTestDB(t))

	_, err := store.GetOne(ctx, "main")
	assert.True(t, errors.IsNotFound(err), "got %v", err)

	require.NoError(t, store.Put(ctx, testState()))

	got, err := store.GetOne(ctx, "main")
	require.NoError(t, err)
	assert.Equal(t, "GADMIN", got.Admin)
	assert.Equal(t, testState().Assets, got.Assets)
	assert.Equal(t, testState().Royalties, got.Royalties)

	// Unconditional put replaces the item
	doc := testState()
	doc.Counter = 9
	require.NoError(t, store.Put(ctx, doc))
	got, err = store.GetOne(ctx, "main")
	require.NoError(t, err)
	assert.Equal(t, uint64(9), got.Counter)
}

func TestPutWithCondition(t *testing.T) {
	ctx := context.Background()
	store := sqlite.New[storagemodels.StateDocument](newTestDB(t))
	doc := testState()

	require.NoError(t, store.PutWithCondition(ctx, doc, storagemodels.WriteCondition{IfNotExists: true}))

	err := store.PutWithCondition(ctx, doc, storagemodels.WriteCondition{IfNotExists: true})
	assert.True(t, errors.IsConditionFailed(err), "second create: %v", err)

	stale := uint64(3)
	doc.Version = 4
	err = store.PutWithCondition(ctx, doc, storagemodels.WriteCondition{IfVersion: &stale})
	assert.True(t, errors.IsConditionFailed(err), "stale version: %v", err)

	current := uint64(1)
	doc.Version = 2
	require.NoError(t, store.PutWithCondition(ctx, doc, storagemodels.WriteCondition{IfVersion: &current}))

	// The old version no longer matches
	doc.Version = 3
	err = store.PutWithCondition(ctx, doc, storagemodels.WriteCondition{IfVersion: &current})
	assert.True(t, errors.IsConditionFailed(err), "replayed version: %v", err)

	missing := testState()
	missing.Registry = "missing"
	err = store.PutWithCondition(ctx, missing, storagemodels.WriteCondition{IfVersion: &current})
	assert.True(t, errors.IsConditionFailed(err), "absent item: %v", err)
}

func TestEntityTypesShareTable(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	docs := sqlite.New[storagemodels.StateDocument](db)
	balances := sqlite.New[storagemodels.Balance](db)

	require.NoError(t, docs.Put(ctx, testState()))
	key := storagemodels.BalanceKey("XLM", "GBOB")
	require.NoError(t, balances.Put(ctx, storagemodels.Balance{Key: key, Asset: "XLM", Holder: "GBOB", Amount: "100"}))

	var n int
	require.NoError(t, db.SQL().QueryRowContext(ctx, `SELECT count(*) FROM items`).Scan(&n))
	assert.Equal(t, 2, n)

	var entityType string
	require.NoError(t, db.SQL().QueryRowContext(ctx,
		`SELECT entity_type FROM items WHERE pk = ?`, "BALANCE#"+key).Scan(&entityType))
	assert.Equal(t, registry.BalanceEntity, entityType)
}

func putEvents(t *testing.T, store *sqlite.DataStore[storagemodels.NotificationRecord], name string, n int) {
	t.Helper()
	for i := 1; i <= n; i++ {
		require.NoError(t, store.Put(context.Background(), storagemodels.NotificationRecord{
			Registry: name,
			ID:       fmt.Sprintf("%04d", i),
			Kind:     string(storagemodels.KindTransfer),
			Topics:   []string{"GALICE", "GBOB"},
			Payload:  uint64(i),
		}))
	}
}

func TestQuery(t *testing.T) {
	ctx := context.Background()
	store := sqlite.New[storagemodels.NotificationRecord](newTestDB(t))
	putEvents(t, store, "main", 5)
	putEvents(t, store, "other", 2)

	pk, err := registry.PartitionKey[storagemodels.NotificationRecord]("main")
	require.NoError(t, err)

	got, err := store.Query(ctx, &storagemodels.QueryParams{PartitionKey: pk})
	require.NoError(t, err)
	require.Len(t, got, 5)
	assert.Equal(t, "0001", got[0].ID)
	assert.Equal(t, []string{"GALICE", "GBOB"}, got[0].Topics)

	got, err = store.Query(ctx, &storagemodels.QueryParams{PartitionKey: pk, Descending: true, Limit: 2})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "0005", got[0].ID)

	got, err = store.Query(ctx, &storagemodels.QueryParams{PartitionKey: pk, StartAfter: "EVENT#0004"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "0005", got[0].ID)

	got, err = store.Query(ctx, &storagemodels.QueryParams{PartitionKey: pk, SortKeyPrefix: "event#"})
	require.NoError(t, err)
	assert.Empty(t, got, "prefix match is case-sensitive")

	_, err = store.Query(ctx, &storagemodels.QueryParams{})
	assert.True(t, errors.IsValidationError(err))
}

func TestStream(t *testing.T) {
	ctx := context.Background()
	store := sqlite.New[storagemodels.NotificationRecord](newTestDB(t))
	putEvents(t, store, "main", 7)

	pk, err := registry.PartitionKey[storagemodels.NotificationRecord]("main")
	require.NoError(t, err)

	var pages int
	var ids []string
	for r := range store.Stream(ctx, &storagemodels.QueryParams{PartitionKey: pk},
		storagemodels.WithPageSize(3),
		storagemodels.WithProgressHandler(func(p storagemodels.StreamProgress) { pages = p.PagesProcessed }),
	) {
		require.NoError(t, r.Error)
		ids = append(ids, r.Item.ID)
		assert.Equal(t, "EVENT#"+r.Item.ID, r.Meta.SortKey)
	}
	assert.Len(t, ids, 7)
	assert.Equal(t, "0007", ids[6])
	assert.Equal(t, 3, pages)

	// Limit applies across pages
	count := 0
	for r := range store.Stream(ctx, &storagemodels.QueryParams{PartitionKey: pk, Limit: 4}, storagemodels.WithPageSize(3)) {
		require.NoError(t, r.Error)
		count++
	}
	assert.Equal(t, 4, count)

	// A failed query ends the stream with one error
	var results []storagemodels.StreamResult[storagemodels.NotificationRecord]
	for r := range store.Stream(ctx, &storagemodels.QueryParams{}) {
		results = append(results, r)
	}
	require.Len(t, results, 1)
	assert.Error(t, results[0].Error)
}

func TestDeleteAndReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "registry.db")

	db, err := sqlite.Open(ctx, path)
	require.NoError(t, err)
	store := sqlite.New[storagemodels.StateDocument](db)
	require.NoError(t, store.Put(ctx, testState()))
	require.NoError(t, db.Close())

	db, err = sqlite.Open(ctx, path)
	require.NoError(t, err)
	defer db.Close()
	store = sqlite.New[storagemodels.StateDocument](db)

	got, err := store.GetOne(ctx, "main")
	require.NoError(t, err)
	assert.Equal(t, "GADMIN", got.Admin)

	require.NoError(t, store.Delete(ctx, "main"))
	require.NoError(t, store.Delete(ctx, "main"), "deleting a missing item is not an error")
	_, err = store.GetOne(ctx, "main")
	assert.True(t, errors.IsNotFound(err))
}
