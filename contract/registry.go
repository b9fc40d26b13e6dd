/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package contract

import (
	"context"
	"math"
	"math/big"

	"github.com/suparena/nftregistry/errors"
	"github.com/suparena/nftregistry/storagemodels"
)

const assetEntity = "Asset"

// Initialize records admin and creates the empty tables.
func Initialize(st *storagemodels.State, admin storagemodels.Address) error {
	if st.Initialized() {
		return errors.ErrAlreadyInitialized
	}
	if admin == "" {
		return errors.NewValidationError("admin", "must not be empty")
	}
	st.Admin = &admin
	st.Counter = 0
	st.Assets = make(map[storagemodels.AssetID]storagemodels.AssetRecord)
	st.Royalties = make(map[storagemodels.AssetID]uint64)
	return nil
}

// Mint assigns the next identifier to a new asset owned by owner and emits a
// mint notification carrying it.
func Mint(ctx context.Context, env Env, st *storagemodels.State, creator, owner storagemodels.Address, uri string) error {
	if err := requireAuth(ctx, env, creator); err != nil {
		return err
	}
	if err := requireInitialized(st); err != nil {
		return err
	}
	if st.Counter == math.MaxUint64 {
		return errors.NewValidationError("counter", "identifier space exhausted")
	}

	id := storagemodels.AssetID(st.Counter + 1)
	st.Assets[id] = storagemodels.AssetRecord{Owner: owner, Creator: creator, URI: uri}
	st.Counter = uint64(id)

	env.emit(storagemodels.NewMintNotification(owner, creator, id))
	return nil
}

// Transfer hands asset id from its current owner to to.
func Transfer(ctx context.Context, env Env, st *storagemodels.State, from, to storagemodels.Address, id storagemodels.AssetID) error {
	if err := requireAuth(ctx, env, from); err != nil {
		return err
	}
	if err := requireInitialized(st); err != nil {
		return err
	}
	rec, ok := st.Assets[id]
	if !ok {
		return errors.NewNotFoundError(assetEntity, id.String())
	}
	if rec.Owner != from {
		return errors.NewNotOwnerError(uint64(id), string(from), string(rec.Owner))
	}

	rec.Owner = to
	st.Assets[id] = rec

	env.emit(storagemodels.NewTransferNotification(from, to, id))
	return nil
}

// SetRoyalty stores pct as the royalty rate of id. Only the caller's control of
// creator is checked; neither authorship nor existence of id is.
func SetRoyalty(ctx context.Context, env Env, st *storagemodels.State, creator storagemodels.Address, id storagemodels.AssetID, pct uint64) error {
	if err := requireAuth(ctx, env, creator); err != nil {
		return err
	}
	if err := requireInitialized(st); err != nil {
		return err
	}
	st.Royalties[id] = pct
	return nil
}

// PayRoyalty moves the creator's cut of amount from buyer to the creator of id.
// Nothing is moved when no positive rate is set. State is never modified.
func PayRoyalty(ctx context.Context, env Env, st *storagemodels.State, buyer storagemodels.Address, id storagemodels.AssetID, amount *big.Int, paymentAsset storagemodels.Address) error {
	if err := requireAuth(ctx, env, buyer); err != nil {
		return err
	}
	if err := requireInitialized(st); err != nil {
		return err
	}
	rec, ok := st.Assets[id]
	if !ok {
		return errors.NewNotFoundError(assetEntity, id.String())
	}

	pct := st.Royalties[id]
	if pct == 0 {
		return nil
	}
	royalty, err := RoyaltyAmount(amount, pct)
	if err != nil {
		return err
	}
	if env.Payments == nil {
		return &errors.PaymentError{From: string(buyer), To: string(rec.Creator), Amount: royalty.String(), Asset: string(paymentAsset)}
	}
	if err := env.Payments.Transfer(ctx, buyer, rec.Creator, royalty, paymentAsset); err != nil {
		if errors.IsPaymentFailed(err) {
			return err
		}
		return &errors.PaymentError{
			From:   string(buyer),
			To:     string(rec.Creator),
			Amount: royalty.String(),
			Asset:  string(paymentAsset),
			Err:    err,
		}
	}
	return nil
}

// Get returns the record of id. ok is false for identifiers never minted.
func Get(st *storagemodels.State, id storagemodels.AssetID) (rec storagemodels.AssetRecord, ok bool, err error) {
	if err := requireInitialized(st); err != nil {
		return storagemodels.AssetRecord{}, false, err
	}
	rec, ok = st.Assets[id]
	return rec, ok, nil
}

// Royalty returns the stored royalty rate of id. ok is false when none was set.
func Royalty(st *storagemodels.State, id storagemodels.AssetID) (pct uint64, ok bool, err error) {
	if err := requireInitialized(st); err != nil {
		return 0, false, err
	}
	pct, ok = st.Royalties[id]
	return pct, ok, nil
}

func requireAuth(ctx context.Context, env Env, addr storagemodels.Address) error {
	if env.Auth == nil {
		return errors.NewAuthorizationError(string(addr), "no authorizer configured")
	}
	if err := env.Auth.RequireAuth(ctx, addr); err != nil {
		if errors.IsUnauthorized(err) {
			return err
		}
		return errors.NewAuthorizationError(string(addr), err.Error())
	}
	return nil
}

func requireInitialized(st *storagemodels.State) error {
	if !st.Initialized() {
		return errors.ErrUninitialized
	}
	if st.Assets == nil {
		st.Assets = make(map[storagemodels.AssetID]storagemodels.AssetRecord)
	}
	if st.Royalties == nil {
		st.Royalties = make(map[storagemodels.AssetID]uint64)
	}
	return nil
}
