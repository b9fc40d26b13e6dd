/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package payment

import (
	"context"
	goerrors "errors"
	"fmt"
	"log/slog"
	"math/big"
	"sync"

	"github.com/suparena/nftregistry/datastore"
	"github.com/suparena/nftregistry/errors"
	"github.com/suparena/nftregistry/storagemodels"
)

// ErrInsufficientFunds is wrapped by a PaymentError when the payer's balance is too low.
var ErrInsufficientFunds = goerrors.New("insufficient balance")

const defaultMaxAttempts = 3

// Ledger is a PaymentMover keeping one Balance per (asset, holder).
type Ledger struct {
	store       datastore.DataStore[storagemodels.Balance]
	logger      *slog.Logger
	maxAttempts int
	mu          sync.Mutex
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithLogger sets the ledger's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Ledger) {
		l.logger = logger
	}
}

// WithMaxAttempts bounds the read-modify-write attempts of one balance update.
func WithMaxAttempts(n int) Option {
	return func(l *Ledger) {
		if n > 0 {
			l.maxAttempts = n
		}
	}
}

// NewLedger returns a Ledger persisting balances in store.
func NewLedger(store datastore.DataStore[storagemodels.Balance], opts ...Option) *Ledger {
	l := &Ledger{
		store:       store,
		logger:      slog.Default(),
		maxAttempts: defaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// BalanceOf returns the holder's balance of asset, zero if none was recorded.
func (l *Ledger) BalanceOf(ctx context.Context, asset, holder storagemodels.Address) (*big.Int, error) {
	_, amount, err := l.load(ctx, asset, holder)
	return amount, err
}

// Credit adds a non-negative amount to the holder's balance of asset.
func (l *Ledger) Credit(ctx context.Context, asset, holder storagemodels.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return errors.NewValidationError("amount", "credit must be a non-negative integer")
	}
	if holder == "" || asset == "" {
		return errors.NewValidationError("holder", "asset and holder are required")
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	return l.adjust(ctx, asset, holder, amount)
}

// Transfer implements contract.PaymentMover. A zero amount succeeds without
// touching any balance.
func (l *Ledger) Transfer(ctx context.Context, from, to storagemodels.Address, amount *big.Int, asset storagemodels.Address) error {
	fail := func(err error) error {
		a := "<nil>"
		if amount != nil {
			a = amount.String()
		}
		return &errors.PaymentError{From: string(from), To: string(to), Amount: a, Asset: string(asset), Err: err}
	}

	if amount == nil || amount.Sign() < 0 {
		return fail(errors.NewValidationError("amount", "must be a non-negative integer"))
	}
	if amount.Sign() == 0 {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	_, balance, err := l.load(ctx, asset, from)
	if err != nil {
		return fail(err)
	}
	if balance.Cmp(amount) < 0 {
		return fail(fmt.Errorf("%w: have %s, need %s", ErrInsufficientFunds, balance, amount))
	}
	if from == to {
		return nil
	}

	if err := l.adjust(ctx, asset, from, new(big.Int).Neg(amount)); err != nil {
		return fail(err)
	}
	if err := l.adjust(ctx, asset, to, amount); err != nil {
		// Put the debited amount back so the payer is not left short.
		if refundErr := l.adjust(ctx, asset, from, amount); refundErr != nil {
			l.logger.Error("failed to refund payer after failed credit",
				"asset", asset, "from", from, "amount", amount.String(), "error", refundErr)
		}
		return fail(err)
	}

	l.logger.Debug("payment settled", "asset", asset, "from", from, "to", to, "amount", amount.String())
	return nil
}

// adjust adds delta to one balance, retrying when another writer got there first.
func (l *Ledger) adjust(ctx context.Context, asset, holder storagemodels.Address, delta *big.Int) error {
	var err error
	for attempt := 0; attempt < l.maxAttempts; attempt++ {
		var current *storagemodels.Balance
		var amount *big.Int
		current, amount, err = l.load(ctx, asset, holder)
		if err != nil {
			return err
		}

		next := storagemodels.Balance{
			Key:    storagemodels.BalanceKey(asset, holder),
			Asset:  string(asset),
			Holder: string(holder),
			Amount: new(big.Int).Add(amount, delta).String(),
		}
		cond := storagemodels.WriteCondition{IfNotExists: true}
		if current != nil {
			version := current.Version
			next.Version = version + 1
			cond = storagemodels.WriteCondition{IfVersion: &version}
		} else {
			next.Version = 1
		}

		err = l.store.PutWithCondition(ctx, next, cond)
		if err == nil {
			return nil
		}
		if !errors.IsConditionFailed(err) {
			return err
		}
		l.logger.Debug("balance changed concurrently, retrying", "key", next.Key, "attempt", attempt+1)
	}
	return err
}

// load returns the stored balance (nil when absent) and its amount.
func (l *Ledger) load(ctx context.Context, asset, holder storagemodels.Address) (*storagemodels.Balance, *big.Int, error) {
	key := storagemodels.BalanceKey(asset, holder)
	b, err := l.store.GetOne(ctx, key)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, new(big.Int), nil
		}
		return nil, nil, fmt.Errorf("failed to read balance %q: %w", key, err)
	}
	amount, ok := new(big.Int).SetString(b.Amount, 10)
	if !ok {
		return nil, nil, fmt.Errorf("balance %q holds a malformed amount %q", key, b.Amount)
	}
	return b, amount, nil
}
