/*
Package storagemodels defines the data structures shared by the registry core,
its storage backends and its observers.

Domain Types:

	Address      // account identity
	AssetID      // identifier assigned at mint, starting at 1
	AssetRecord  // {Owner, Creator, URI}
	State        // {Admin, Counter, Assets, Royalties}, the whole registry

Persisted Types:

StateDocument is the storage form of State. Tables are flattened into slices
sorted by identifier and the document carries a Version for optimistic
locking:

	doc := NewStateDocument("main", st, 3)
	st := doc.State()

NotificationRecord and Balance are stored by the event log and the payment
ledger.

QueryParams:
Backend-neutral parameters for reading one partition in sort key order:

	params := &QueryParams{
	    PartitionKey:  "REGISTRY#main#EVENTS",
	    SortKeyPrefix: "EVENT#",
	    Limit:         100,
	}

StreamOptions:
Configuration for streaming behavior:

	opts := []StreamOption{
	    WithBufferSize(100),
	    WithPageSize(25),
	    WithMaxRetries(3),
	    WithProgressHandler(progressFunc),
	}
*/
package storagemodels
