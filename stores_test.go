/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package nftregistry_test

import (
	"context"
	"math/big"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/nftregistry"
	"github.com/suparena/nftregistry/auth"
	"github.com/suparena/nftregistry/config"
	"github.com/suparena/nftregistry/errors"
	"github.com/suparena/nftregistry/notify"
	"github.com/suparena/nftregistry/payment"
)

func TestOpenStores(t *testing.T) {
	ctx := context.Background()

	t.Run("Memory", func(t *testing.T) {
		cfg := config.Defaults()
		cfg.Backend = config.BackendMemory
		stores, err := nftregistry.OpenStores(ctx, cfg)
		require.NoError(t, err)
		assert.NoError(t, stores.Close())
	})

	t.Run("Unsupported", func(t *testing.T) {
		cfg := config.Defaults()
		cfg.Backend = "redis"
		_, err := nftregistry.OpenStores(ctx, cfg)
		assert.ErrorContains(t, err, "unsupported backend")
	})

	t.Run("SQLiteSurvivesReopen", func(t *testing.T) {
		cfg := config.Defaults()
		cfg.SQLite.Path = filepath.Join(t.TempDir(), "registry.db")

		stores, err := nftregistry.OpenStores(ctx, cfg)
		require.NoError(t, err)
		ledger := payment.NewLedger(stores.Balances)
		require.NoError(t, ledger.Credit(ctx, usdc, buyer, big.NewInt(250)))

		reg := nftregistry.New(stores.StateStore(cfg.Registry), auth.NewSigners(admin, creator, buyer), ledger,
			nftregistry.WithPublisher(notify.NewEventLog(stores.Events, cfg.Registry)))
		require.NoError(t, reg.Initialize(ctx, admin))
		id, err := reg.Mint(ctx, creator, alice, "ipfs://kept")
		require.NoError(t, err)
		require.NoError(t, reg.SetRoyalty(ctx, creator, id, 20))
		require.NoError(t, reg.PayRoyalty(ctx, buyer, id, big.NewInt(250), usdc))
		require.NoError(t, stores.Close())

		stores, err = nftregistry.OpenStores(ctx, cfg)
		require.NoError(t, err)
		defer stores.Close()

		reg = nftregistry.New(stores.StateStore(cfg.Registry), auth.NewSigners(), payment.NewLedger(stores.Balances))
		rec, ok, err := reg.Get(ctx, id)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, alice, rec.Owner)
		pct, _, err := reg.Royalty(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, uint64(20), pct)

		balance, err := payment.NewLedger(stores.Balances).BalanceOf(ctx, usdc, creator)
		require.NoError(t, err)
		assert.Equal(t, "50", balance.String())

		records, err := notify.NewEventLog(stores.Events, cfg.Registry).List(ctx, notify.ListOptions{})
		require.NoError(t, err)
		assert.Len(t, records, 1)

		_, _, err = nftregistry.New(stores.StateStore("other"), nil, nil).Get(ctx, id)
		assert.ErrorIs(t, err, errors.ErrUninitialized, "registries sharing a table are independent")
	})
}
