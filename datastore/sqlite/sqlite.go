/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	goerrors "errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/suparena/nftregistry/datastore"
	"github.com/suparena/nftregistry/errors"
	"github.com/suparena/nftregistry/registry"
	"github.com/suparena/nftregistry/storagemodels"
)

// Schema is the single items table shared by every entity type.
const Schema = `
CREATE TABLE IF NOT EXISTS items (
	pk TEXT NOT NULL,
	sk TEXT NOT NULL,
	entity_type TEXT NOT NULL,
	version INTEGER NOT NULL DEFAULT 0,
	body TEXT NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (pk, sk)
);
`

// DB is an open SQLite database holding the items table.
type DB struct {
	db   *sql.DB
	path string
}

// Open opens (or creates) the database at path and applies Schema.
// ":memory:" gives a private in-memory database.
func Open(ctx context.Context, path string) (*DB, error) {
	slog.Debug("Opening database", "path", path)
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %q: %w", path, err)
	}
	// One connection keeps an in-memory database alive and serializes writers.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database %q: %w", path, err)
	}
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	slog.Info("Connected to database", "path", path)
	return &DB{db: db, path: path}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// SQL returns the underlying database connection.
func (d *DB) SQL() *sql.DB {
	return d.db
}

// DataStore implements datastore.DataStore[T] over the items table.
// Entities are stored as JSON under the keys of their registered index map.
type DataStore[T any] struct {
	db *DB
}

var _ datastore.DataStore[storagemodels.StateDocument] = (*DataStore[storagemodels.StateDocument])(nil)

// New returns a DataStore for T backed by db.
func New[T any](db *DB) *DataStore[T] {
	return &DataStore[T]{db: db}
}

// GetOne retrieves a single item using a string key.
// A missing item yields a NotFoundError.
func (s *DataStore[T]) GetOne(ctx context.Context, key string) (*T, error) {
	k, err := registry.KeyForString[T](key)
	if err != nil {
		return nil, fmt.Errorf("failed to build key: %w", err)
	}

	var entityType, body string
	err = s.db.db.QueryRowContext(ctx,
		`SELECT entity_type, body FROM items WHERE pk = ? AND sk = ?`, k.PK, k.SK,
	).Scan(&entityType, &body)
	if goerrors.Is(err, sql.ErrNoRows) {
		name, _ := registry.TypeName[T]()
		return nil, errors.NewNotFoundError(name, key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read item: %w", err)
	}

	item, err := decodeRow[T](entityType, body)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// Put stores entity, replacing any item under the same key.
func (s *DataStore[T]) Put(ctx context.Context, entity T) error {
	return s.PutWithCondition(ctx, entity, storagemodels.WriteCondition{})
}

// PutWithCondition stores entity only if cond holds for the stored item.
func (s *DataStore[T]) PutWithCondition(ctx context.Context, entity T, cond storagemodels.WriteCondition) error {
	k, err := registry.KeyFor(entity)
	if err != nil {
		return fmt.Errorf("failed to build key: %w", err)
	}
	name, err := registry.TypeName[T]()
	if err != nil {
		return err
	}
	body, err := json.Marshal(entity)
	if err != nil {
		return fmt.Errorf("failed to marshal entity: %w", err)
	}
	version := datastore.VersionOf(entity)
	now := time.Now().UTC()

	var res sql.Result
	switch {
	case cond.IfNotExists && cond.IfVersion != nil:
		// An absent item has no version to match.
		return errors.NewConditionFailedError("put", "not exists AND version match")
	case cond.IfNotExists:
		res, err = s.db.db.ExecContext(ctx,
			`INSERT INTO items (pk, sk, entity_type, version, body, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?)
			 ON CONFLICT (pk, sk) DO NOTHING`,
			k.PK, k.SK, name, version, string(body), now)
	case cond.IfVersion != nil:
		res, err = s.db.db.ExecContext(ctx,
			`UPDATE items SET entity_type = ?, version = ?, body = ?, updated_at = ?
			 WHERE pk = ? AND sk = ? AND version = ?`,
			name, version, string(body), now, k.PK, k.SK, *cond.IfVersion)
	default:
		_, err = s.db.db.ExecContext(ctx,
			`INSERT INTO items (pk, sk, entity_type, version, body, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?)
			 ON CONFLICT (pk, sk) DO UPDATE SET
			   entity_type = excluded.entity_type,
			   version = excluded.version,
			   body = excluded.body,
			   updated_at = excluded.updated_at`,
			k.PK, k.SK, name, version, string(body), now)
		if err != nil {
			return fmt.Errorf("failed to write item: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to write item: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to write item: %w", err)
	}
	if n == 0 {
		if cond.IfNotExists {
			return errors.NewConditionFailedError("put", "item does not exist")
		}
		return errors.NewConditionFailedError("put", fmt.Sprintf("version = %d", *cond.IfVersion))
	}
	return nil
}

// Query reads one partition in sort key order.
func (s *DataStore[T]) Query(ctx context.Context, params *storagemodels.QueryParams) ([]T, error) {
	rows, err := s.queryPage(ctx, params, params.StartAfter, params.Limit)
	if err != nil {
		return nil, err
	}
	results := make([]T, 0, len(rows))
	for _, r := range rows {
		if r.err != nil {
			return nil, r.err
		}
		results = append(results, r.item)
	}
	return results, nil
}

// Delete removes the item stored under key. Deleting a missing item is not an error.
func (s *DataStore[T]) Delete(ctx context.Context, key string) error {
	k, err := registry.KeyForString[T](key)
	if err != nil {
		return fmt.Errorf("failed to build key for Delete: %w", err)
	}
	if _, err := s.db.db.ExecContext(ctx, `DELETE FROM items WHERE pk = ? AND sk = ?`, k.PK, k.SK); err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	return nil
}

type row[T any] struct {
	sk   string
	item T
	err  error
}

// queryPage runs one bounded query. Decode failures are reported per row.
func (s *DataStore[T]) queryPage(ctx context.Context, params *storagemodels.QueryParams, startAfter string, limit int32) ([]row[T], error) {
	if params == nil || params.PartitionKey == "" {
		return nil, errors.NewValidationError("PartitionKey", "query requires a partition key")
	}

	var b strings.Builder
	args := []any{params.PartitionKey}
	b.WriteString(`SELECT sk, entity_type, body FROM items WHERE pk = ?`)
	if params.SortKeyPrefix != "" {
		// LIKE is case-insensitive in SQLite, so compare the prefix exactly.
		b.WriteString(` AND substr(sk, 1, length(?)) = ?`)
		args = append(args, params.SortKeyPrefix, params.SortKeyPrefix)
	}
	order := "ASC"
	if startAfter != "" {
		if params.Descending {
			b.WriteString(` AND sk < ?`)
		} else {
			b.WriteString(` AND sk > ?`)
		}
		args = append(args, startAfter)
	}
	if params.Descending {
		order = "DESC"
	}
	b.WriteString(` ORDER BY sk ` + order)
	if limit > 0 {
		b.WriteString(` LIMIT ?`)
		args = append(args, limit)
	}

	rows, err := s.db.db.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	defer rows.Close()

	var out []row[T]
	for rows.Next() {
		var sk, entityType, body string
		if err := rows.Scan(&sk, &entityType, &body); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		item, err := decodeRow[T](entityType, body)
		out = append(out, row[T]{sk: sk, item: item, err: err})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	return out, nil
}

// decodeRow checks the stored entity type and unmarshals body into T.
func decodeRow[T any](entityType, body string) (T, error) {
	var result T
	if want, err := registry.TypeName[T](); err == nil && entityType != want {
		return result, fmt.Errorf("item has EntityType %q, expected %q", entityType, want)
	}
	if err := json.Unmarshal([]byte(body), &result); err != nil {
		return result, fmt.Errorf("failed to unmarshal item: %w", err)
	}
	return result, nil
}
