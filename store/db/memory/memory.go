// Package memory implements the snapshot driver without persistence.
// The catalog lives for the process's uptime only, matching the reference
// behavior when no DSN is configured.
package memory

import (
	"context"
	"database/sql"
	"sync"

	"github.com/uwnexus/watsnew/store"
)

// DB is an in-memory snapshot driver.
type DB struct {
	mu    sync.Mutex
	order []string
	items map[string]*store.Item
}

// NewDB creates an in-memory driver.
func NewDB() *DB {
	return &DB{
		items: make(map[string]*store.Item),
	}
}

func (d *DB) GetDB() *sql.DB {
	return nil
}

func (d *DB) Close() error {
	return nil
}

func (d *DB) Migrate(ctx context.Context) error {
	return nil
}

func (d *DB) UpsertItems(ctx context.Context, items []*store.Item) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, item := range items {
		if _, ok := d.items[item.Link]; !ok {
			d.order = append(d.order, item.Link)
		}
		d.items[item.Link] = item
	}
	return nil
}

func (d *DB) ListItems(ctx context.Context) ([]*store.Item, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	items := make([]*store.Item, 0, len(d.order))
	for _, link := range d.order {
		items = append(items, d.items[link])
	}
	return items, nil
}

var _ store.Driver = (*DB)(nil)
