/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package nftregistry

import (
	"context"
	"log/slog"
	"math/big"
	"strconv"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/suparena/nftregistry/contract"
	"github.com/suparena/nftregistry/errors"
	"github.com/suparena/nftregistry/notify"
	"github.com/suparena/nftregistry/storagemodels"
)

// StateStore loads and commits the state aggregate of one registry.
type StateStore interface {
	// Load returns the state and the version it was stored at, or an error
	// matching errors.ErrUninitialized when nothing was stored yet.
	Load(ctx context.Context) (*storagemodels.State, uint64, error)
	// Create stores the first state.
	Create(ctx context.Context, st *storagemodels.State) error
	// Save replaces the state stored at version.
	Save(ctx context.Context, st *storagemodels.State, version uint64) error
}

// Registry hosts the registry operations. Calls are serialized; each one
// either commits all of its effects or none of them.
type Registry struct {
	mu        sync.Mutex
	store     StateStore
	auth      contract.Authorizer
	payments  contract.PaymentMover
	publisher notify.Publisher
	logger    *slog.Logger
	tracer    trace.Tracer
}

// New returns a Registry over store. auth decides who may act as an address
// and payments settles royalties.
func New(store StateStore, auth contract.Authorizer, payments contract.PaymentMover, opts ...Option) *Registry {
	r := &Registry{
		store:    store,
		auth:     auth,
		payments: payments,
		logger:   slog.Default(),
		tracer:   defaultTracer(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Initialize records admin. It can succeed only once per registry.
func (r *Registry) Initialize(ctx context.Context, admin storagemodels.Address) (err error) {
	ctx, span := r.start(ctx, "initialize", attribute.String(attrAdmin, string(admin)))
	defer func() { r.end(span, err) }()

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, _, err = r.store.Load(ctx); err == nil {
		return errors.ErrAlreadyInitialized
	} else if !errors.IsUninitialized(err) {
		return err
	}

	st := storagemodels.NewState()
	if err = contract.Initialize(st, admin); err != nil {
		return err
	}
	if err = r.store.Create(ctx, st); err != nil {
		return err
	}
	r.logger.Info("registry initialized", "admin", admin)
	return nil
}

// Mint creates a new asset owned by owner and returns its identifier.
func (r *Registry) Mint(ctx context.Context, creator, owner storagemodels.Address, uri string) (id storagemodels.AssetID, err error) {
	ctx, span := r.start(ctx, "mint",
		attribute.String(attrCreator, string(creator)),
		attribute.String(attrOwner, string(owner)),
	)
	defer func() { r.end(span, err) }()

	err = r.update(ctx, func(env contract.Env, st *storagemodels.State) error {
		if err := contract.Mint(ctx, env, st, creator, owner, uri); err != nil {
			return err
		}
		id = storagemodels.AssetID(st.Counter)
		return nil
	})
	if err != nil {
		return 0, err
	}
	span.SetAttributes(attribute.String(attrAssetID, id.String()))
	r.logger.Info("asset minted", "id", id, "creator", creator, "owner", owner)
	return id, nil
}

// Transfer moves asset id from from to to.
func (r *Registry) Transfer(ctx context.Context, from, to storagemodels.Address, id storagemodels.AssetID) (err error) {
	ctx, span := r.start(ctx, "transfer",
		attribute.String(attrFrom, string(from)),
		attribute.String(attrTo, string(to)),
		attribute.String(attrAssetID, id.String()),
	)
	defer func() { r.end(span, err) }()

	err = r.update(ctx, func(env contract.Env, st *storagemodels.State) error {
		return contract.Transfer(ctx, env, st, from, to, id)
	})
	if err != nil {
		return err
	}
	r.logger.Info("asset transferred", "id", id, "from", from, "to", to)
	return nil
}

// SetRoyalty stores the royalty percentage of id.
func (r *Registry) SetRoyalty(ctx context.Context, creator storagemodels.Address, id storagemodels.AssetID, pct uint64) (err error) {
	ctx, span := r.start(ctx, "set_royalty",
		attribute.String(attrCreator, string(creator)),
		attribute.String(attrAssetID, id.String()),
		attribute.String(attrPercentage, strconv.FormatUint(pct, 10)),
	)
	defer func() { r.end(span, err) }()

	err = r.update(ctx, func(env contract.Env, st *storagemodels.State) error {
		return contract.SetRoyalty(ctx, env, st, creator, id, pct)
	})
	if err != nil {
		return err
	}
	r.logger.Info("royalty set", "id", id, "creator", creator, "pct", pct)
	return nil
}

// PayRoyalty moves the royalty share of amount, in paymentAsset, from buyer
// to the creator of id.
func (r *Registry) PayRoyalty(ctx context.Context, buyer storagemodels.Address, id storagemodels.AssetID, amount *big.Int, paymentAsset storagemodels.Address) (err error) {
	ctx, span := r.start(ctx, "pay_royalty",
		attribute.String(attrBuyer, string(buyer)),
		attribute.String(attrAssetID, id.String()),
		attribute.String(attrAmount, amount.String()),
		attribute.String(attrPaymentAsset, string(paymentAsset)),
	)
	defer func() { r.end(span, err) }()

	r.mu.Lock()
	defer r.mu.Unlock()

	st, _, err := r.load(ctx)
	if err != nil {
		return err
	}
	env := contract.Env{Auth: r.auth, Payments: r.payments}
	if err = contract.PayRoyalty(ctx, env, st, buyer, id, amount, paymentAsset); err != nil {
		return err
	}
	r.logger.Info("royalty paid", "id", id, "buyer", buyer, "amount", amount.String(), "asset", paymentAsset)
	return nil
}

// Get returns the record of id. ok is false for identifiers never minted.
func (r *Registry) Get(ctx context.Context, id storagemodels.AssetID) (rec storagemodels.AssetRecord, ok bool, err error) {
	ctx, span := r.start(ctx, "get", attribute.String(attrAssetID, id.String()))
	defer func() { r.end(span, err) }()

	r.mu.Lock()
	defer r.mu.Unlock()

	st, _, err := r.store.Load(ctx)
	if err != nil {
		return storagemodels.AssetRecord{}, false, err
	}
	return contract.Get(st, id)
}

// Royalty returns the stored royalty percentage of id. ok is false when none was set.
func (r *Registry) Royalty(ctx context.Context, id storagemodels.AssetID) (pct uint64, ok bool, err error) {
	ctx, span := r.start(ctx, "royalty", attribute.String(attrAssetID, id.String()))
	defer func() { r.end(span, err) }()

	r.mu.Lock()
	defer r.mu.Unlock()

	st, _, err := r.store.Load(ctx)
	if err != nil {
		return 0, false, err
	}
	return contract.Royalty(st, id)
}

// update runs op on a copy of the stored state, saves the copy if op
// succeeds and then publishes what op emitted.
func (r *Registry) update(ctx context.Context, op func(contract.Env, *storagemodels.State) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	st, version, err := r.load(ctx)
	if err != nil {
		return err
	}

	var journal contract.Journal
	env := contract.Env{Auth: r.auth, Payments: r.payments, Events: &journal}
	next := st.Clone()
	if err := op(env, next); err != nil {
		return err
	}
	if !next.Initialized() {
		// op must have rejected an uninitialized registry already.
		return errors.ErrUninitialized
	}
	if err := r.store.Save(ctx, next, version); err != nil {
		return err
	}

	r.publish(ctx, journal)
	return nil
}

// load returns the stored state. An uninitialized registry yields an empty
// state so that the operation still checks authorization before it reports
// errors.ErrUninitialized.
func (r *Registry) load(ctx context.Context) (*storagemodels.State, uint64, error) {
	st, version, err := r.store.Load(ctx)
	if err != nil {
		if errors.IsUninitialized(err) {
			return storagemodels.NewState(), 0, nil
		}
		return nil, 0, err
	}
	return st, version, nil
}

func (r *Registry) publish(ctx context.Context, notes []storagemodels.Notification) {
	if r.publisher == nil || len(notes) == 0 {
		return
	}
	if err := r.publisher.Publish(ctx, notes); err != nil {
		r.logger.Error("failed to publish notifications", "count", len(notes), "error", err)
		trace.SpanFromContext(ctx).AddEvent(eventPublishFailed, trace.WithAttributes(
			attribute.String("error", err.Error()),
		))
	}
}

func (r *Registry) start(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return r.tracer.Start(ctx, spanPrefix+op,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
}

func (r *Registry) end(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
