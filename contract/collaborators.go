/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package contract

import (
	"context"
	"math/big"

	"github.com/suparena/nftregistry/storagemodels"
)

// Authorizer proves that the caller acts as addr. A non-nil error denies the call.
type Authorizer interface {
	RequireAuth(ctx context.Context, addr storagemodels.Address) error
}

// AuthorizerFunc adapts a function to Authorizer.
type AuthorizerFunc func(ctx context.Context, addr storagemodels.Address) error

// RequireAuth calls f.
func (f AuthorizerFunc) RequireAuth(ctx context.Context, addr storagemodels.Address) error {
	return f(ctx, addr)
}

// PaymentMover moves amount units of asset from one address to another.
type PaymentMover interface {
	Transfer(ctx context.Context, from, to storagemodels.Address, amount *big.Int, asset storagemodels.Address) error
}

// PaymentMoverFunc adapts a function to PaymentMover.
type PaymentMoverFunc func(ctx context.Context, from, to storagemodels.Address, amount *big.Int, asset storagemodels.Address) error

// Transfer calls f.
func (f PaymentMoverFunc) Transfer(ctx context.Context, from, to storagemodels.Address, amount *big.Int, asset storagemodels.Address) error {
	return f(ctx, from, to, amount, asset)
}

// NotificationSink receives the notifications an operation emits.
type NotificationSink interface {
	Emit(n storagemodels.Notification)
}

// Journal is a NotificationSink that buffers notifications in emission order.
type Journal []storagemodels.Notification

// Emit appends n.
func (j *Journal) Emit(n storagemodels.Notification) {
	*j = append(*j, n)
}

// Env carries the collaborators of one call. Events may be nil.
type Env struct {
	Auth     Authorizer
	Payments PaymentMover
	Events   NotificationSink
}

func (e Env) emit(n storagemodels.Notification) {
	if e.Events != nil {
		e.Events.Emit(n)
	}
}
