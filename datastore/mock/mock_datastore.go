/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package mock provides mock implementations of the DataStore interface for testing
package mock

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/suparena/nftregistry/datastore"
	"github.com/suparena/nftregistry/errors"
	"github.com/suparena/nftregistry/registry"
	"github.com/suparena/nftregistry/storagemodels"
)

// DataStore is a mock implementation of datastore.DataStore[T] for testing.
// Types with a registered index map are keyed exactly like the real backends.
type DataStore[T any] struct {
	mu          sync.RWMutex
	data        map[string]entry[T]
	queryFunc   func(ctx context.Context, params *storagemodels.QueryParams) ([]T, error)
	streamFunc  func(ctx context.Context, params *storagemodels.QueryParams, opts ...storagemodels.StreamOption) <-chan storagemodels.StreamResult[T]
	getKeyFunc  func(entity T) string
	getError    error
	putError    error
	deleteError error
	puts        int
}

type entry[T any] struct {
	key  registry.Key
	item T
}

var _ datastore.DataStore[struct{}] = (*DataStore[struct{}])(nil)

// New creates a new mock DataStore
func New[T any]() *DataStore[T] {
	return &DataStore[T]{
		data: make(map[string]entry[T]),
	}
}

// WithGetKeyFunc sets a custom function to extract keys from entities
func (m *DataStore[T]) WithGetKeyFunc(f func(T) string) *DataStore[T] {
	m.getKeyFunc = f
	return m
}

// WithQueryFunc sets a custom query function for testing
func (m *DataStore[T]) WithQueryFunc(f func(ctx context.Context, params *storagemodels.QueryParams) ([]T, error)) *DataStore[T] {
	m.queryFunc = f
	return m
}

// WithStreamFunc sets a custom stream function for testing
func (m *DataStore[T]) WithStreamFunc(f func(ctx context.Context, params *storagemodels.QueryParams, opts ...storagemodels.StreamOption) <-chan storagemodels.StreamResult[T]) *DataStore[T] {
	m.streamFunc = f
	return m
}

// WithGetError makes GetOne operations return an error
func (m *DataStore[T]) WithGetError(err error) *DataStore[T] {
	m.getError = err
	return m
}

// WithPutError makes Put and PutWithCondition operations return an error
func (m *DataStore[T]) WithPutError(err error) *DataStore[T] {
	m.putError = err
	return m
}

// WithDeleteError makes Delete operations return an error
func (m *DataStore[T]) WithDeleteError(err error) *DataStore[T] {
	m.deleteError = err
	return m
}

// GetOne retrieves an entity by key
func (m *DataStore[T]) GetOne(ctx context.Context, key string) (*T, error) {
	if m.getError != nil {
		return nil, m.getError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if e, exists := m.data[m.lookupKey(key)]; exists {
		item := e.item
		return &item, nil
	}

	var zero T
	return nil, errors.NewNotFoundError(fmt.Sprintf("%T", zero), key)
}

// Put stores an entity
func (m *DataStore[T]) Put(ctx context.Context, entity T) error {
	return m.PutWithCondition(ctx, entity, storagemodels.WriteCondition{})
}

// PutWithCondition stores an entity if cond holds against the stored item
func (m *DataStore[T]) PutWithCondition(ctx context.Context, entity T, cond storagemodels.WriteCondition) error {
	if m.putError != nil {
		return m.putError
	}

	key, err := m.extractKey(entity)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	id := joinKey(key)
	existing, exists := m.data[id]
	if cond.IfNotExists && exists {
		return errors.NewConditionFailedError("put", "attribute_not_exists(PK)")
	}
	if cond.IfVersion != nil {
		if !exists || datastore.VersionOf(existing.item) != *cond.IfVersion {
			return errors.NewConditionFailedError("put", fmt.Sprintf("Version = %d", *cond.IfVersion))
		}
	}

	m.data[id] = entry[T]{key: key, item: entity}
	m.puts++
	return nil
}

// Query returns the items of one partition in sort key order
func (m *DataStore[T]) Query(ctx context.Context, params *storagemodels.QueryParams) ([]T, error) {
	if m.queryFunc != nil {
		return m.queryFunc(ctx, params)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	matched := make([]entry[T], 0, len(m.data))
	for _, e := range m.data {
		if params.PartitionKey != "" && e.key.PK != params.PartitionKey {
			continue
		}
		if !strings.HasPrefix(e.key.SK, params.SortKeyPrefix) {
			continue
		}
		if params.StartAfter != "" {
			if !params.Descending && e.key.SK <= params.StartAfter {
				continue
			}
			if params.Descending && e.key.SK >= params.StartAfter {
				continue
			}
		}
		matched = append(matched, e)
	}
	sort.Slice(matched, func(i, j int) bool {
		if params.Descending {
			return matched[i].key.SK > matched[j].key.SK
		}
		return matched[i].key.SK < matched[j].key.SK
	})
	if params.Limit > 0 && len(matched) > int(params.Limit) {
		matched = matched[:params.Limit]
	}

	results := make([]T, 0, len(matched))
	for _, e := range matched {
		results = append(results, e.item)
	}
	return results, nil
}

// Stream returns a channel of the Query results
func (m *DataStore[T]) Stream(ctx context.Context, params *storagemodels.QueryParams, opts ...storagemodels.StreamOption) <-chan storagemodels.StreamResult[T] {
	if m.streamFunc != nil {
		return m.streamFunc(ctx, params, opts...)
	}

	options := storagemodels.ApplyStreamOptions(opts...)
	resultChan := make(chan storagemodels.StreamResult[T], options.BufferSize)

	go func() {
		defer close(resultChan)

		items, err := m.Query(ctx, params)
		if err != nil {
			resultChan <- storagemodels.StreamResult[T]{Error: err}
			return
		}

		for i, v := range items {
			select {
			case <-ctx.Done():
				return
			case resultChan <- storagemodels.StreamResult[T]{
				Item: v,
				Meta: storagemodels.StreamMeta{
					Index:      int64(i),
					PageNumber: 1,
					Timestamp:  time.Now(),
				},
			}:
			}
		}
	}()

	return resultChan
}

// Delete removes an entity by key
func (m *DataStore[T]) Delete(ctx context.Context, key string) error {
	if m.deleteError != nil {
		return m.deleteError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.lookupKey(key)
	if _, exists := m.data[id]; !exists {
		var zero T
		return errors.NewNotFoundError(fmt.Sprintf("%T", zero), key)
	}

	delete(m.data, id)
	return nil
}

// Helper methods for testing

// GetData returns a copy of the stored entities keyed by "PK|SK"
func (m *DataStore[T]) GetData() map[string]T {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make(map[string]T, len(m.data))
	for k, e := range m.data {
		result[k] = e.item
	}
	return result
}

// Count returns the number of stored entities
func (m *DataStore[T]) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

// PutCount returns the number of successful writes
func (m *DataStore[T]) PutCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.puts
}

// Clear removes all data
func (m *DataStore[T]) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[string]entry[T])
}

// extractKey derives the storage key of an entity
func (m *DataStore[T]) extractKey(entity T) (registry.Key, error) {
	if m.getKeyFunc != nil {
		k := m.getKeyFunc(entity)
		if k == "" {
			return registry.Key{}, errors.NewValidationError("key", "unable to extract key from entity")
		}
		return registry.Key{PK: k, SK: k}, nil
	}
	if _, ok := registry.GetIndexMap[T](); ok {
		return registry.KeyFor(entity)
	}
	// Simplified fallback for unregistered test types
	k := fmt.Sprintf("key_%v", entity)
	return registry.Key{PK: k, SK: k}, nil
}

// lookupKey maps a string key to the internal map key
func (m *DataStore[T]) lookupKey(key string) string {
	if m.getKeyFunc == nil {
		if k, err := registry.KeyForString[T](key); err == nil {
			return joinKey(k)
		}
	}
	return joinKey(registry.Key{PK: key, SK: key})
}

func joinKey(k registry.Key) string {
	return k.PK + "|" + k.SK
}
