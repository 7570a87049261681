// Package sqlite implements the snapshot driver on SQLite.
//
// SQLite has no vector type, so embeddings are stored as JSON arrays. That is
// fine here: similarity scans run over the in-memory catalog, the database is
// only a durable snapshot.
package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"

	// Import the pure-Go SQLite driver.
	_ "modernc.org/sqlite"

	"github.com/uwnexus/watsnew/internal/profile"
	"github.com/uwnexus/watsnew/store"
)

// DB is a SQLite snapshot driver.
type DB struct {
	db      *sql.DB
	profile *profile.Profile
}

// NewDB opens the SQLite snapshot database.
func NewDB(p *profile.Profile) (store.Driver, error) {
	if p == nil {
		return nil, errors.New("profile is nil")
	}
	sqlDB, err := sql.Open("sqlite", p.DSN)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open database: %s", p.DSN)
	}
	// SQLite allows one writer; keep the pool honest.
	sqlDB.SetMaxOpenConns(1)
	return &DB{db: sqlDB, profile: p}, nil
}

func (d *DB) GetDB() *sql.DB {
	return d.db
}

func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) Migrate(ctx context.Context) error {
	stmt := `
		CREATE TABLE IF NOT EXISTS item (
			link TEXT PRIMARY KEY,
			title TEXT NOT NULL DEFAULT '',
			source_label TEXT NOT NULL DEFAULT '',
			item_type TEXT NOT NULL DEFAULT '',
			origin TEXT NOT NULL DEFAULT '',
			embedding TEXT NOT NULL,
			position INTEGER NOT NULL,
			fetched_ts BIGINT NOT NULL DEFAULT 0
		)
	`
	if _, err := d.db.ExecContext(ctx, stmt); err != nil {
		return errors.Wrap(err, "failed to create item table")
	}
	return nil
}

func (d *DB) UpsertItems(ctx context.Context, items []*store.Item) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	var maxPosition int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(position), -1) FROM item`).Scan(&maxPosition); err != nil {
		return errors.Wrap(err, "failed to read max position")
	}

	stmt := `
		INSERT INTO item (link, title, source_label, item_type, origin, embedding, position, fetched_ts)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (link)
		DO UPDATE SET
			title = EXCLUDED.title,
			source_label = EXCLUDED.source_label,
			item_type = EXCLUDED.item_type
	`
	for _, item := range items {
		embedding, err := json.Marshal(item.Embedding)
		if err != nil {
			return errors.Wrapf(err, "failed to marshal embedding for %s", item.Link)
		}
		maxPosition++
		if _, err := tx.ExecContext(ctx, stmt,
			item.Link,
			item.Title,
			item.SourceLabel,
			item.ItemType,
			string(item.Origin),
			string(embedding),
			maxPosition,
			item.FetchedAt.Unix(),
		); err != nil {
			return errors.Wrapf(err, "failed to upsert item %s", item.Link)
		}
	}

	return tx.Commit()
}

func (d *DB) ListItems(ctx context.Context) ([]*store.Item, error) {
	query := `
		SELECT link, title, source_label, item_type, origin, embedding, fetched_ts
		FROM item
		ORDER BY position ASC
	`
	rows, err := d.db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list items")
	}
	defer rows.Close()

	var items []*store.Item
	for rows.Next() {
		var (
			item      store.Item
			origin    string
			embedding string
			fetchedTs int64
		)
		if err := rows.Scan(&item.Link, &item.Title, &item.SourceLabel, &item.ItemType, &origin, &embedding, &fetchedTs); err != nil {
			return nil, errors.Wrap(err, "failed to scan item")
		}
		if err := json.Unmarshal([]byte(embedding), &item.Embedding); err != nil {
			return nil, errors.Wrapf(err, "failed to unmarshal embedding for %s", item.Link)
		}
		item.Origin = store.Origin(origin)
		item.FetchedAt = time.Unix(fetchedTs, 0).UTC()
		items = append(items, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate items")
	}
	return items, nil
}

var _ store.Driver = (*DB)(nil)
