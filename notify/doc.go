/*
Package notify delivers the registry's mint and transfer notifications to
external observers. The registry itself never reads them back.

Publishers:
  - Broker fans notifications out to live in-process subscribers, optionally
    filtered by kind. Publishing never blocks; a subscriber that falls behind
    loses notifications, counted by Dropped and visible as gaps in Seq.
  - EventLog appends every notification to a DataStore under a time-ordered
    UUIDv7 identifier, so the log can be listed or replayed in emission order.
  - Fanout combines several publishers.

Wiring:

	broker := notify.NewBroker()
	events := notify.NewEventLog(sqlite.New[storagemodels.NotificationRecord](db), "main")
	reg := nftregistry.New(store, signers, ledger,
	    nftregistry.WithPublisher(notify.Fanout{events, broker}))

	for d := range broker.Subscribe(ctx, storagemodels.KindTransfer) {
	    slog.Info("transfer", "seq", d.Seq, "asset", d.Payload)
	}
*/
package notify
