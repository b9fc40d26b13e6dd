/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package notify

import (
	"context"
	goerrors "errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/suparena/nftregistry/datastore"
	"github.com/suparena/nftregistry/registry"
	"github.com/suparena/nftregistry/storagemodels"
)

// Publisher receives the notifications of one committed registry call.
type Publisher interface {
	Publish(ctx context.Context, notes []storagemodels.Notification) error
}

// EventLog persists notifications so they can be replayed in emission order.
type EventLog struct {
	store    datastore.DataStore[storagemodels.NotificationRecord]
	registry string
	now      func() time.Time
}

// NewEventLog returns an EventLog for the named registry.
func NewEventLog(store datastore.DataStore[storagemodels.NotificationRecord], registryName string) *EventLog {
	return &EventLog{
		store:    store,
		registry: registryName,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Publish appends notes to the log.
func (l *EventLog) Publish(ctx context.Context, notes []storagemodels.Notification) error {
	for _, n := range notes {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate event id: %w", err)
		}
		topics := make([]string, len(n.Topics))
		for i, t := range n.Topics {
			topics[i] = string(t)
		}
		rec := storagemodels.NotificationRecord{
			Registry:  l.registry,
			ID:        id.String(),
			Kind:      string(n.Kind),
			Topics:    topics,
			Payload:   uint64(n.Payload),
			EmittedAt: l.now(),
		}
		if err := l.store.PutWithCondition(ctx, rec, storagemodels.WriteCondition{IfNotExists: true}); err != nil {
			return fmt.Errorf("failed to append %s event: %w", n.Kind, err)
		}
	}
	return nil
}

// ListOptions selects a page of the log.
type ListOptions struct {
	// After resumes after the record with this ID.
	After string
	// Limit caps the page; zero returns everything.
	Limit int32
	// Newest lists the most recent records first.
	Newest bool
}

// List returns records in emission order, or newest first.
func (l *EventLog) List(ctx context.Context, opts ListOptions) ([]storagemodels.NotificationRecord, error) {
	params, err := l.params(opts)
	if err != nil {
		return nil, err
	}
	return l.store.Query(ctx, params)
}

// Replay streams the whole log to fn in emission order, stopping at the first error.
func (l *EventLog) Replay(ctx context.Context, fn func(storagemodels.NotificationRecord) error, opts ...storagemodels.StreamOption) error {
	params, err := l.params(ListOptions{})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var errs []error
	for result := range l.store.Stream(ctx, params, opts...) {
		if result.Error != nil {
			errs = append(errs, result.Error)
			continue
		}
		if err := fn(result.Item); err != nil {
			return err
		}
	}
	return goerrors.Join(errs...)
}

func (l *EventLog) params(opts ListOptions) (*storagemodels.QueryParams, error) {
	pk, err := registry.PartitionKey[storagemodels.NotificationRecord](l.registry)
	if err != nil {
		return nil, err
	}
	prefix := registry.SortKeyPrefix[storagemodels.NotificationRecord]()
	params := &storagemodels.QueryParams{
		PartitionKey:  pk,
		SortKeyPrefix: prefix,
		Limit:         opts.Limit,
		Descending:    opts.Newest,
	}
	if opts.After != "" {
		params.StartAfter = prefix + opts.After
	}
	return params, nil
}
