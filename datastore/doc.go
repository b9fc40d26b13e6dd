/*
Package datastore defines the core interfaces of the registry's persistence layer.

The main interface is DataStore[T], which provides generic CRUD operations for any entity type T:

	type DataStore[T any] interface {
	    GetOne(ctx context.Context, key string) (*T, error)
	    Put(ctx context.Context, entity T) error
	    PutWithCondition(ctx context.Context, entity T, cond storagemodels.WriteCondition) error
	    Query(ctx context.Context, params *storagemodels.QueryParams) ([]T, error)
	    Stream(ctx context.Context, params *storagemodels.QueryParams, opts ...storagemodels.StreamOption) <-chan storagemodels.StreamResult[T]
	    Delete(ctx context.Context, key string) error
	}

StateStore adapts a DataStore[storagemodels.StateDocument] to the load/create/save
cycle the registry host runs for every call, with optimistic locking on the
document Version.

Implementations:
  - ddb: DynamoDB implementation with support for single-table design
  - sqlite: single-file SQLite implementation storing JSON documents
  - mock: In-memory mock implementation for testing

The package uses Go generics to ensure type safety at compile time while maintaining
flexibility for different storage backends.
*/
package datastore
