/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package nftregistry

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/suparena/nftregistry/config"
	"github.com/suparena/nftregistry/datastore"
	"github.com/suparena/nftregistry/datastore/ddb"
	"github.com/suparena/nftregistry/datastore/mock"
	"github.com/suparena/nftregistry/datastore/sqlite"
	"github.com/suparena/nftregistry/storagemodels"
)

// Stores groups the typed datastores of one backend. All of them share a
// single table, told apart by the EntityType of each item.
type Stores struct {
	States   datastore.DataStore[storagemodels.StateDocument]
	Events   datastore.DataStore[storagemodels.NotificationRecord]
	Balances datastore.DataStore[storagemodels.Balance]

	closeFn func() error
}

// NewStores wraps already opened datastores. closeFn may be nil.
func NewStores(
	states datastore.DataStore[storagemodels.StateDocument],
	events datastore.DataStore[storagemodels.NotificationRecord],
	balances datastore.DataStore[storagemodels.Balance],
	closeFn func() error,
) *Stores {
	return &Stores{States: states, Events: events, Balances: balances, closeFn: closeFn}
}

// MemoryStores returns process-local stores that vanish on exit.
func MemoryStores() *Stores {
	return NewStores(
		mock.New[storagemodels.StateDocument](),
		mock.New[storagemodels.NotificationRecord](),
		mock.New[storagemodels.Balance](),
		nil,
	)
}

// OpenStores opens the backend selected by cfg.Backend.
func OpenStores(ctx context.Context, cfg config.Config) (*Stores, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return MemoryStores(), nil

	case config.BackendSQLite:
		db, err := sqlite.Open(ctx, cfg.SQLite.Path)
		if err != nil {
			return nil, err
		}
		return NewStores(
			sqlite.New[storagemodels.StateDocument](db),
			sqlite.New[storagemodels.NotificationRecord](db),
			sqlite.New[storagemodels.Balance](db),
			db.Close,
		), nil

	case config.BackendDynamoDB:
		client, err := ddb.NewDynamoDBClient(ctx, ddb.ClientConfig{
			AccessKey: cfg.AWS.AccessKey,
			SecretKey: cfg.AWS.SecretKey,
			Region:    cfg.AWS.Region,
			Endpoint:  cfg.AWS.Endpoint,
		})
		if err != nil {
			return nil, err
		}
		table := cfg.AWS.Table
		return NewStores(
			ddb.NewWithClient[storagemodels.StateDocument](client, table),
			ddb.NewWithClient[storagemodels.NotificationRecord](client, table),
			ddb.NewWithClient[storagemodels.Balance](client, table),
			nil,
		), nil

	default:
		return nil, fmt.Errorf("unsupported backend %q", cfg.Backend)
	}
}

// StateStore returns the state of the registry called name.
func (s *Stores) StateStore(name string) *datastore.StateStore {
	return datastore.NewStateStore(s.States, name)
}

// Close releases the backend.
func (s *Stores) Close() error {
	if s.closeFn == nil {
		return nil
	}
	if err := s.closeFn(); err != nil {
		slog.Warn("failed to close stores", "error", err)
		return err
	}
	return nil
}
