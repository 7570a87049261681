// Package postgres implements the snapshot driver on PostgreSQL with the
// pgvector extension. Embeddings are stored as vector values so operators can
// run ad-hoc similarity queries against the snapshot directly.
package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/pgvector/pgvector-go"
	"github.com/pkg/errors"

	// Import the PostgreSQL driver.
	_ "github.com/lib/pq"

	"github.com/uwnexus/watsnew/internal/profile"
	"github.com/uwnexus/watsnew/store"
)

// DB is a PostgreSQL snapshot driver.
type DB struct {
	db      *sql.DB
	profile *profile.Profile
}

// NewDB opens the PostgreSQL snapshot database.
func NewDB(p *profile.Profile) (store.Driver, error) {
	if p == nil {
		return nil, errors.New("profile is nil")
	}
	sqlDB, err := sql.Open("postgres", p.DSN)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open database: %s", p.DSN)
	}
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	return &DB{db: sqlDB, profile: p}, nil
}

func (d *DB) GetDB() *sql.DB {
	return d.db
}

func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) Migrate(ctx context.Context) error {
	if _, err := d.db.ExecContext(ctx, `CREATE EXTENSION IF NOT EXISTS vector`); err != nil {
		return errors.Wrap(err, "failed to enable pgvector extension")
	}
	stmt := `
		CREATE TABLE IF NOT EXISTS item (
			link TEXT PRIMARY KEY,
			title TEXT NOT NULL DEFAULT '',
			source_label TEXT NOT NULL DEFAULT '',
			item_type TEXT NOT NULL DEFAULT '',
			origin TEXT NOT NULL DEFAULT '',
			embedding vector NOT NULL,
			position BIGSERIAL,
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

	stmt := `
		INSERT INTO item (link, title, source_label, item_type, origin, embedding, fetched_ts)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (link)
		DO UPDATE SET
			title = EXCLUDED.title,
			source_label = EXCLUDED.source_label,
			item_type = EXCLUDED.item_type
	`
	for _, item := range items {
		if _, err := tx.ExecContext(ctx, stmt,
			item.Link,
			item.Title,
			item.SourceLabel,
			item.ItemType,
			string(item.Origin),
			pgvector.NewVector(item.Embedding),
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
			embedding pgvector.Vector
			fetchedTs int64
		)
		if err := rows.Scan(&item.Link, &item.Title, &item.SourceLabel, &item.ItemType, &origin, &embedding, &fetchedTs); err != nil {
			return nil, errors.Wrap(err, "failed to scan item")
		}
		item.Origin = store.Origin(origin)
		item.Embedding = embedding.Slice()
		item.FetchedAt = time.Unix(fetchedTs, 0).UTC()
		items = append(items, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate items")
	}
	return items, nil
}

var _ store.Driver = (*DB)(nil)
