/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package notify

import (
	"context"
	goerrors "errors"

	"github.com/suparena/nftregistry/storagemodels"
)

// Fanout publishes to every publisher in order. One failing publisher does not
// stop the others; their errors are joined.
type Fanout []Publisher

// Publish implements Publisher.
func (f Fanout) Publish(ctx context.Context, notes []storagemodels.Notification) error {
	var errs []error
	for _, p := range f {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, notes); err != nil {
			errs = append(errs, err)
		}
	}
	return goerrors.Join(errs...)
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(ctx context.Context, notes []storagemodels.Notification) error

// Publish calls f.
func (f PublisherFunc) Publish(ctx context.Context, notes []storagemodels.Notification) error {
	return f(ctx, notes)
}
