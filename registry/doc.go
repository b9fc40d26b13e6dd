/*
Package registry manages type registration and key layout for the registry's
storage backends.

The registry system enables:
  - Several entity types sharing one table (DynamoDB) or one items table (SQLite)
  - An EntityType attribute stored with each item and checked on read
  - Key patterns expressed as macros over entity fields

Index Map Registry:
Associates Go types with key patterns:

	registry.Register[storagemodels.StateDocument]("RegistryState", map[string]string{
	    "PK": "REGISTRY#{Registry}",
	    "SK": "STATE",
	})

	key, _ := registry.KeyFor(doc)                            // from an entity
	key, _ := registry.KeyForString[storagemodels.StateDocument]("main") // from a string key

The layouts of StateDocument, NotificationRecord and Balance are registered in
init(). The registry is thread-safe; further types should be registered during
initialization.
*/
package registry
