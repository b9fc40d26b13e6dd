/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package sqlite

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/suparena/nftregistry/storagemodels"
)

// Stream pages through a partition, PageSize rows at a time, resuming each
// page after the last sort key seen.
func (s *DataStore[T]) Stream(ctx context.Context, params *storagemodels.QueryParams, opts ...storagemodels.StreamOption) <-chan storagemodels.StreamResult[T] {
	options := storagemodels.ApplyStreamOptions(opts...)
	resultCh := make(chan storagemodels.StreamResult[T], options.BufferSize)

	go s.streamWorker(ctx, params, options, resultCh)

	return resultCh
}

func (s *DataStore[T]) streamWorker(
	ctx context.Context,
	params *storagemodels.QueryParams,
	options storagemodels.StreamOptions,
	resultCh chan<- storagemodels.StreamResult[T],
) {
	defer close(resultCh)

	var index int64
	var pageNumber int
	var errs []error
	startTime := time.Now()
	lastKey := ""
	if params != nil {
		lastKey = params.StartAfter
	}
	delivered := int32(0)

	send := func(r storagemodels.StreamResult[T]) bool {
		select {
		case <-ctx.Done():
			return false
		case resultCh <- r:
			return true
		}
	}

	for {
		pageSize := options.PageSize
		if params != nil && params.Limit > 0 && params.Limit-delivered < pageSize {
			pageSize = params.Limit - delivered
		}

		rows, err := s.pageWithRetry(ctx, params, lastKey, pageSize, options)
		if err != nil {
			send(storagemodels.StreamResult[T]{
				Error: fmt.Errorf("query failed: %w", err),
				Meta:  storagemodels.StreamMeta{Index: index, PageNumber: pageNumber, Timestamp: time.Now()},
			})
			return
		}
		pageNumber++

		for _, r := range rows {
			result := storagemodels.StreamResult[T]{
				Item:  r.item,
				Error: r.err,
				Meta: storagemodels.StreamMeta{
					Index:      index,
					PageNumber: pageNumber,
					SortKey:    r.sk,
					Timestamp:  time.Now(),
				},
			}
			if !send(result) {
				return
			}
			if r.err != nil {
				errs = append(errs, r.err)
			}
			index++
			delivered++
			lastKey = r.sk
		}

		if options.ProgressHandler != nil {
			progress := storagemodels.StreamProgress{
				ItemsProcessed: index,
				PagesProcessed: pageNumber,
				LastKey:        lastKey,
				Errors:         errs,
				StartTime:      startTime,
			}
			if elapsed := time.Since(startTime).Seconds(); elapsed > 0 {
				progress.CurrentRate = float64(index) / elapsed
			}
			options.ProgressHandler(progress)
		}

		if pageSize <= 0 || int32(len(rows)) < pageSize || (params.Limit > 0 && delivered >= params.Limit) {
			return
		}
	}
}

// pageWithRetry retries a failed page while the ErrorHandler asks to continue.
func (s *DataStore[T]) pageWithRetry(
	ctx context.Context,
	params *storagemodels.QueryParams,
	startAfter string,
	pageSize int32,
	options storagemodels.StreamOptions,
) ([]row[T], error) {
	for attempt := 0; ; attempt++ {
		rows, err := s.queryPage(ctx, params, startAfter, pageSize)
		if err == nil {
			return rows, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if options.ErrorHandler == nil || !options.ErrorHandler(err) || attempt >= options.MaxRetries {
			return nil, err
		}
		slog.Debug("retrying SQLite page", "attempt", attempt+1, "error", err)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(attempt+1) * options.RetryBackoff):
		}
	}
}
