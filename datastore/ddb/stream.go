/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	goerrors "errors"
	"fmt"
	"log/slog"
	"time"

	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/suparena/nftregistry/storagemodels"
)

// Stream walks the pages of a partition and delivers every item on the returned
// channel. The channel is closed when the partition is exhausted, a page fails
// for good, or ctx is cancelled.
func (d *DynamodbDataStore[T]) Stream(ctx context.Context, params *storagemodels.QueryParams, opts ...storagemodels.StreamOption) <-chan storagemodels.StreamResult[T] {
	s := &pageStreamer[T]{
		store:   d,
		options: storagemodels.ApplyStreamOptions(opts...),
		started: time.Now(),
	}
	s.out = make(chan storagemodels.StreamResult[T], s.options.BufferSize)

	go s.run(ctx, params)
	return s.out
}

// pageStreamer holds the position of one Stream call. It is owned by a single goroutine.
type pageStreamer[T any] struct {
	store   *DynamodbDataStore[T]
	options storagemodels.StreamOptions
	out     chan storagemodels.StreamResult[T]

	started time.Time
	items   int64
	pages   int
	lastKey string
	errs    []error
}

func (s *pageStreamer[T]) run(ctx context.Context, params *storagemodels.QueryParams) {
	defer close(s.out)

	input, err := s.store.buildQueryInput(params, s.options.PageSize)
	if err != nil {
		s.send(ctx, storagemodels.StreamResult[T]{Error: err, Meta: s.meta("")})
		return
	}

	for ctx.Err() == nil {
		page, err := s.store.queryWithRetry(ctx, input, s.options)
		if err != nil {
			if s.options.ErrorHandler != nil && s.options.ErrorHandler(err) {
				// the same page is requested again
				s.errs = append(s.errs, err)
				continue
			}
			s.send(ctx, storagemodels.StreamResult[T]{Error: fmt.Errorf("query failed: %w", err), Meta: s.meta("")})
			return
		}

		s.pages++
		for _, raw := range page.Items {
			if !s.send(ctx, s.decode(raw)) {
				return
			}
		}
		s.report()

		if len(page.LastEvaluatedKey) == 0 {
			return
		}
		input.ExclusiveStartKey = page.LastEvaluatedKey
	}
}

// decode turns one raw item into a result and advances the position.
func (s *pageStreamer[T]) decode(raw map[string]types.AttributeValue) storagemodels.StreamResult[T] {
	meta := s.meta(stringAttr(raw, attrSK))
	s.items++
	s.lastKey = meta.SortKey

	item, err := decodeItem[T](raw)
	if err != nil {
		s.errs = append(s.errs, err)
		return storagemodels.StreamResult[T]{Error: err, Meta: meta}
	}
	return storagemodels.StreamResult[T]{Item: item, Meta: meta}
}

func (s *pageStreamer[T]) meta(sortKey string) storagemodels.StreamMeta {
	return storagemodels.StreamMeta{
		Index:      s.items,
		PageNumber: s.pages,
		SortKey:    sortKey,
		Timestamp:  time.Now(),
	}
}

// send reports false when ctx was cancelled before the consumer took r.
func (s *pageStreamer[T]) send(ctx context.Context, r storagemodels.StreamResult[T]) bool {
	select {
	case <-ctx.Done():
		return false
	case s.out <- r:
		return true
	}
}

func (s *pageStreamer[T]) report() {
	if s.options.ProgressHandler == nil {
		return
	}
	p := storagemodels.StreamProgress{
		ItemsProcessed: s.items,
		PagesProcessed: s.pages,
		LastKey:        s.lastKey,
		Errors:         s.errs,
		StartTime:      s.started,
	}
	if elapsed := time.Since(s.started).Seconds(); elapsed > 0 {
		p.CurrentRate = float64(s.items) / elapsed
	}
	s.options.ProgressHandler(p)
}

// queryWithRetry runs one page query, retrying throttling and server faults
// with a linearly growing backoff.
func (d *DynamodbDataStore[T]) queryWithRetry(ctx context.Context, input *sdk.QueryInput, options storagemodels.StreamOptions) (*sdk.QueryOutput, error) {
	var err error
	for attempt := 1; attempt <= options.MaxRetries+1; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		var out *sdk.QueryOutput
		if out, err = d.client.Query(ctx, input); err == nil {
			return out, nil
		}
		if !isRetryableError(err) {
			return nil, err
		}
		if attempt > options.MaxRetries {
			break
		}

		wait := time.Duration(attempt) * options.RetryBackoff
		slog.Debug("retrying DynamoDB query", "table", d.tableName, "attempt", attempt, "backoff", wait, "error", err)
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
	return nil, fmt.Errorf("query failed after %d retries: %w", options.MaxRetries, err)
}

// isRetryableError reports whether err is throttling, a server fault, or an
// SDK error that marks itself retryable.
func isRetryableError(err error) bool {
	var (
		throughput *types.ProvisionedThroughputExceededException
		limit      *types.RequestLimitExceeded
		internal   *types.InternalServerError
	)
	if goerrors.As(err, &throughput) || goerrors.As(err, &limit) || goerrors.As(err, &internal) {
		return true
	}

	var retryable interface{ IsRetryable() bool }
	return goerrors.As(err, &retryable) && retryable.IsRetryable()
}
