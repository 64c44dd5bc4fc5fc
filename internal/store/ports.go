// Package store defines the persistence contract for the flat transaction
// collection. Implementations live in the csv and memory subpackages and in
// internal/adapters for SQLite.
package store

import (
	"context"

	"spendlog/internal/core"
)

// Store is the single source of truth for transaction rows. The collection is
// always read and rewritten wholesale: there is no partial update path.
//
// LoadAll returns rows in insertion order, an empty collection when the
// backing resource does not exist, and never surfaces read failures (a failed
// read degrades to an empty, reinitialized resource). RewriteAll persists the
// given collection using the column set of the first row; an empty collection
// truncates the resource. DeleteByID and UpdateByID load, mutate and rewrite;
// both return core.ErrNotFound when the id matches nothing, after the rewrite
// has already happened, so the stored content is unchanged in that case.
type Store interface {
	Append(ctx context.Context, row core.Row) error
	LoadAll(ctx context.Context) ([]core.Row, error)
	RewriteAll(ctx context.Context, rows []core.Row) error
	DeleteByID(ctx context.Context, id string) error
	UpdateByID(ctx context.Context, id string, patch map[string]string) error
}
