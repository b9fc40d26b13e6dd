/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package datastore

import (
	"context"

	"github.com/suparena/nftregistry/storagemodels"
)

type DataStore[T any] interface {
	// GetOne returns a NotFoundError when no item is stored under key.
	GetOne(ctx context.Context, key string) (*T, error)

	Put(ctx context.Context, entity T) error

	// PutWithCondition returns a ConditionFailedError when cond does not hold.
	PutWithCondition(ctx context.Context, entity T, cond storagemodels.WriteCondition) error

	Query(ctx context.Context, params *storagemodels.QueryParams) ([]T, error)

	Stream(ctx context.Context, params *storagemodels.QueryParams, opts ...storagemodels.StreamOption) <-chan storagemodels.StreamResult[T]

	Delete(ctx context.Context, key string) error
}

// Versioned is implemented by entities that take part in IfVersion conditions.
type Versioned interface {
	StoreVersion() uint64
}

// VersionOf returns the stored version of entity, or 0 if it is not Versioned.
func VersionOf(entity any) uint64 {
	if v, ok := entity.(Versioned); ok {
		return v.StoreVersion()
	}
	return 0
}
