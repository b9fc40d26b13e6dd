/*
Package ddb provides a DynamoDB implementation of the DataStore interface.

The DynamodbDataStore supports:
  - Single-table design, with the registry state, its event log and payment
    balances living side by side under distinct partition keys
  - Macro-based key expansion (e.g., "REGISTRY#{Registry}")
  - Paginated streaming with retry logic
  - Conditional writes for create-once and optimistic locking
  - EntityType injection, checked again on every read

Key Features:

Macro Expansion:
Keys use macros that are replaced with entity field values:

	indexMap := map[string]string{
	    "PK": "REGISTRY#{Registry}#EVENTS", // Becomes "REGISTRY#main#EVENTS"
	    "SK": "EVENT#{ID}",
	}

Conditional Writes:
WriteCondition maps to a DynamoDB condition expression. IfNotExists becomes
attribute_not_exists(PK); IfVersion compares the stored Version attribute.
A failed check surfaces as errors.ErrConditionFailed.

Streaming:
The streaming API supports configurable options:

	results := store.Stream(ctx, params,
	    storagemodels.WithBufferSize(100),
	    storagemodels.WithPageSize(25),
	    storagemodels.WithMaxRetries(3),
	    storagemodels.WithProgressHandler(func(p storagemodels.StreamProgress) {
	        slog.Debug("stream progress", "items", p.ItemsProcessed)
	    }),
	)

The store only needs the API interface, so tests and tools can hand it any
client implementing GetItem, PutItem, DeleteItem and Query.
*/
package ddb
