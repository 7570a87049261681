package store

import (
	"context"
	"database/sql"
)

// Driver persists the catalog snapshot so harvested embeddings survive
// restarts. It is deliberately small: the catalog is read-shared in memory
// and the driver is only touched on load and merge.
type Driver interface {
	GetDB() *sql.DB
	Close() error

	// Migrate creates the schema if needed.
	Migrate(ctx context.Context) error

	// UpsertItems writes items keyed by link, preserving first-seen order.
	UpsertItems(ctx context.Context, items []*Item) error

	// ListItems returns all persisted items in first-seen order.
	ListItems(ctx context.Context) ([]*Item, error)
}
