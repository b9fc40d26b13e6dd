/*
Package payment provides the registry's PaymentMover: a ledger of balances per
(asset, holder), persisted through any datastore.DataStore[storagemodels.Balance].

	ledger := payment.NewLedger(sqlite.New[storagemodels.Balance](db))
	_ = ledger.Credit(ctx, "XLM", "GBUYER", big.NewInt(1000))
	err := ledger.Transfer(ctx, "GBUYER", "GCREATOR", big.NewInt(100), "XLM")

Amounts are arbitrary-precision integers stored as base-10 strings. Transfer
rejects negative amounts and overdrafts with an errors.PaymentError; a zero
amount is accepted and writes nothing.

Every balance update is a versioned read-modify-write, so two processes
sharing a table cannot lose updates. Within one process a mutex serializes
transfers. A transfer debits the payer first and refunds it if the credit to
the payee fails.
*/
package payment
