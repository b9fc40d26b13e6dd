/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package main

import (
	"context"
	goerrors "errors"
	"fmt"
	"math/big"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/suparena/nftregistry"
	"github.com/suparena/nftregistry/contract"
	"github.com/suparena/nftregistry/errors"
	"github.com/suparena/nftregistry/notify"
	"github.com/suparena/nftregistry/storagemodels"
)

// annotationOffline marks commands that need neither configuration nor storage.
const annotationOffline = "offline"

func (a *app) initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init ADMIN",
		Short: "Initialize the registry with its administrator",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			admin := storagemodels.Address(args[0])
			if err := a.registry.Initialize(cmd.Context(), admin); err != nil {
				return err
			}
			return a.print(map[string]string{"registry": a.cfg.Registry, "admin": string(admin)})
		},
	}
}

func (a *app) mintCmd() *cobra.Command {
	var creator, owner, uri string
	cmd := &cobra.Command{
		Use:   "mint",
		Short: "Mint a new asset; the creator must sign",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sub := a.broker.Subscribe(cmd.Context(), storagemodels.KindMint)
			id, err := a.registry.Mint(cmd.Context(), storagemodels.Address(creator), storagemodels.Address(owner), uri)
			if err != nil {
				return err
			}
			return a.print(mintView{ID: id, Notifications: drain(sub)})
		},
	}
	cmd.Flags().StringVar(&creator, "creator", "", "creator address")
	cmd.Flags().StringVar(&owner, "owner", "", "initial owner address")
	cmd.Flags().StringVar(&uri, "uri", "", "metadata URI")
	_ = cmd.MarkFlagRequired("creator")
	_ = cmd.MarkFlagRequired("owner")
	return cmd
}

func (a *app) transferCmd() *cobra.Command {
	var from, to string
	cmd := &cobra.Command{
		Use:   "transfer ID",
		Short: "Transfer an asset; the current owner must sign",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseAssetID(args[0])
			if err != nil {
				return err
			}
			sub := a.broker.Subscribe(cmd.Context(), storagemodels.KindTransfer)
			if err := a.registry.Transfer(cmd.Context(), storagemodels.Address(from), storagemodels.Address(to), id); err != nil {
				return err
			}
			return a.print(transferView{ID: id, Owner: storagemodels.Address(to), Notifications: drain(sub)})
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "current owner address")
	cmd.Flags().StringVar(&to, "to", "", "new owner address")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func (a *app) getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get ID",
		Short: "Show an asset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseAssetID(args[0])
			if err != nil {
				return err
			}
			rec, ok, err := a.registry.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			if !ok {
				return errors.NewNotFoundError("Asset", id.String())
			}
			return a.print(assetView{ID: id, Owner: rec.Owner, Creator: rec.Creator, URI: rec.URI})
		},
	}
}

func (a *app) royaltyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "royalty",
		Short: "Set, show and pay royalties",
	}

	var creator string
	set := &cobra.Command{
		Use:   "set ID PCT",
		Short: "Set the royalty percentage of an asset; the named creator must sign",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseAssetID(args[0])
			if err != nil {
				return err
			}
			pct, err := strconv.ParseUint(args[1], 10, 64)
			if err != nil {
				return errors.NewValidationError("pct", fmt.Sprintf("%q is not a non-negative integer", args[1]))
			}
			if err := a.registry.SetRoyalty(cmd.Context(), storagemodels.Address(creator), id, pct); err != nil {
				return err
			}
			return a.print(royaltyView{ID: id, Pct: pct, Set: true})
		},
	}
	set.Flags().StringVar(&creator, "creator", "", "creator address")
	_ = set.MarkFlagRequired("creator")

	get := &cobra.Command{
		Use:   "get ID",
		Short: "Show the royalty percentage of an asset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseAssetID(args[0])
			if err != nil {
				return err
			}
			pct, ok, err := a.registry.Royalty(cmd.Context(), id)
			if err != nil {
				return err
			}
			return a.print(royaltyView{ID: id, Pct: pct, Set: ok})
		},
	}

	var buyer, amount, asset string
	pay := &cobra.Command{
		Use:   "pay ID",
		Short: "Pay the creator's royalty on a sale; the buyer must sign",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseAssetID(args[0])
			if err != nil {
				return err
			}
			value, err := parseAmount(amount)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if err := a.registry.PayRoyalty(ctx, storagemodels.Address(buyer), id, value, storagemodels.Address(asset)); err != nil {
				return err
			}

			rec, _, err := a.registry.Get(ctx, id)
			if err != nil {
				return err
			}
			pct, _, err := a.registry.Royalty(ctx, id)
			if err != nil {
				return err
			}
			royalty := new(big.Int)
			if pct > 0 {
				if royalty, err = contract.RoyaltyAmount(value, pct); err != nil {
					return err
				}
			}
			return a.print(paymentView{
				ID:      id,
				Buyer:   storagemodels.Address(buyer),
				Creator: rec.Creator,
				Asset:   storagemodels.Address(asset),
				Amount:  value.String(),
				Royalty: royalty.String(),
			})
		},
	}
	pay.Flags().StringVar(&buyer, "buyer", "", "buyer address")
	pay.Flags().StringVar(&amount, "amount", "", "sale amount in the payment asset's smallest unit")
	pay.Flags().StringVar(&asset, "asset", "", "payment asset address")
	for _, name := range []string{"buyer", "amount", "asset"} {
		_ = pay.MarkFlagRequired(name)
	}

	cmd.AddCommand(set, get, pay)
	return cmd
}

func (a *app) fundCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fund ASSET HOLDER AMOUNT",
		Short: "Credit a balance of the local payment ledger",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			asset, holder := storagemodels.Address(args[0]), storagemodels.Address(args[1])
			value, err := parseAmount(args[2])
			if err != nil {
				return err
			}
			if err := a.ledger.Credit(cmd.Context(), asset, holder, value); err != nil {
				return err
			}
			return a.printBalance(cmd, asset, holder)
		},
	}
}

func (a *app) balanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "balance ASSET HOLDER",
		Short: "Show a balance of the local payment ledger",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.printBalance(cmd, storagemodels.Address(args[0]), storagemodels.Address(args[1]))
		},
	}
}

func (a *app) printBalance(cmd *cobra.Command, asset, holder storagemodels.Address) error {
	amount, err := a.ledger.BalanceOf(cmd.Context(), asset, holder)
	if err != nil {
		return err
	}
	return a.print(balanceView{Asset: asset, Holder: holder, Amount: amount.String()})
}

func (a *app) eventsCmd() *cobra.Command {
	var opts notify.ListOptions
	var all bool
	var pageSize int32
	cmd := &cobra.Command{
		Use:   "events",
		Short: "List mint and transfer notifications in emission order",
		Long: `List mint and transfer notifications in emission order.

With --all the whole log is read page by page and every event is written as
soon as it is read: one JSON object per line, or one YAML document each.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if all {
				return a.streamEvents(cmd.Context(), pageSize)
			}
			records, err := a.events.List(cmd.Context(), opts)
			if err != nil {
				return err
			}
			views := make([]eventView, len(records))
			for i, rec := range records {
				views[i] = newEventView(rec)
			}
			return a.print(views)
		},
	}
	cmd.Flags().Int32Var(&opts.Limit, "limit", 0, "maximum number of events (0 lists all)")
	cmd.Flags().StringVar(&opts.After, "after", "", "list events after this event id")
	cmd.Flags().BoolVar(&opts.Newest, "newest", false, "list the most recent events first")
	cmd.Flags().BoolVar(&all, "all", false, "stream the whole log page by page")
	cmd.Flags().Int32Var(&pageSize, "page-size", 100, "events read per page with --all")
	cmd.MarkFlagsMutuallyExclusive("all", "limit")
	cmd.MarkFlagsMutuallyExclusive("all", "after")
	cmd.MarkFlagsMutuallyExclusive("all", "newest")
	return cmd
}

func (a *app) streamEvents(ctx context.Context, pageSize int32) error {
	if pageSize <= 0 {
		return errors.NewValidationError("page-size", "must be positive")
	}
	enc := a.newStreamEncoder()
	progress := func(p storagemodels.StreamProgress) {
		a.logger.Debug("event page read", "pages", p.PagesProcessed, "events", p.ItemsProcessed, "last", p.LastKey)
	}
	err := a.events.Replay(ctx, func(rec storagemodels.NotificationRecord) error {
		return enc.Encode(newEventView(rec))
	}, storagemodels.WithPageSize(pageSize), storagemodels.WithProgressHandler(progress))
	return goerrors.Join(err, enc.Close())
}

func (a *app) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Show version information",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationOffline: "true"},
		RunE: func(*cobra.Command, []string) error {
			if a.output != outputJSON {
				a.output = outputYAML
			}
			return a.print(nftregistry.GetVersionInfo())
		},
	}
}

func parseAssetID(s string) (storagemodels.AssetID, error) {
	id, err := storagemodels.ParseAssetID(s)
	if err != nil {
		return 0, errors.NewValidationError("id", fmt.Sprintf("%q is not an asset identifier", s))
	}
	return id, nil
}

// parseAmount accepts a decimal integer in the signed 128-bit range.
func parseAmount(s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, errors.NewValidationError("amount", fmt.Sprintf("%q is not an integer", s))
	}
	if !contract.InAmountRange(v) {
		return nil, errors.NewValidationError("amount", "must be a signed 128-bit integer")
	}
	return v, nil
}
