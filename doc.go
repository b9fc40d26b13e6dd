/*
Package nftregistry hosts a single-collection NFT registry with creator royalties.

A registry is initialized once with an administrator. After that, anyone whose
address the Authorizer accepts can mint assets, transfer the assets they own,
set a royalty percentage on an asset and pay the royalty owed on a sale. The
royalty share is moved by a PaymentMover; the registry itself never holds funds.

Every call runs against a copy of the stored state and is committed only when
it succeeds, so a failed call leaves no trace. Calls on one Registry are
serialized, and writers in other processes are fenced off by the version of
the stored state document. Mint and transfer notifications are handed to the
configured Publisher once the call is committed.

The operations themselves live in package contract; this package wires them
to storage, authorization, payments, logging and tracing.

Basic Usage:

	stores, _ := nftregistry.OpenStores(ctx, cfg)
	defer stores.Close()

	signers := auth.NewSigners("GADMIN", "GALICE")
	ledger := payment.NewLedger(stores.Balances)
	events := notify.NewEventLog(stores.Events, cfg.Registry)

	reg := nftregistry.New(stores.StateStore(cfg.Registry), signers, ledger,
		nftregistry.WithPublisher(events))

	_ = reg.Initialize(ctx, "GADMIN")
	id, _ := reg.Mint(ctx, "GALICE", "GALICE", "ipfs://meta/1")
	_ = reg.SetRoyalty(ctx, "GALICE", id, 10)

Storage backends are DynamoDB (package datastore/ddb), a local SQLite file
(package datastore/sqlite) and process memory (package datastore/mock).
*/
package nftregistry
