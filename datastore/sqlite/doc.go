/*
Package sqlite provides a SQLite implementation of the DataStore interface,
for running a registry on a single host without any cloud service.

Every entity type shares one items table keyed by (pk, sk), the same keys the
DynamoDB backend derives from the registered index maps:

	db, _ := sqlite.Open(ctx, "registry.db")
	docs := sqlite.New[storagemodels.StateDocument](db)
	events := sqlite.New[storagemodels.NotificationRecord](db)

Entities are stored as JSON in the body column next to their entity_type and
version. Conditional writes run as single statements: IfNotExists is an
INSERT that does nothing on conflict, and IfVersion is an UPDATE guarded by the
stored version. No affected row means the condition failed.

The driver is the pure-Go ncruces/go-sqlite3 build, so no cgo toolchain is
needed. Open limits the pool to one connection, which keeps ":memory:"
databases alive across calls.
*/
package sqlite
