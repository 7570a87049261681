package store

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"

	"github.com/uwnexus/watsnew/internal/profile"
)

// Store owns the catalog snapshot and its persistence driver.
//
// Reads go through Catalog(), which returns an immutable snapshot; ranking
// scans over the snapshot run fully in parallel with no coordination. Merges
// build a new snapshot and swap it in under a mutex so concurrent ingestion
// runs are mutually exclusive without ever blocking readers.
type Store struct {
	profile *profile.Profile
	driver  Driver

	mergeMu sync.Mutex
	catalog atomic.Pointer[Catalog]
}

// New creates a new instance of Store with an empty catalog.
func New(driver Driver, profile *profile.Profile) *Store {
	s := &Store{
		driver:  driver,
		profile: profile,
	}
	s.catalog.Store(NewCatalog())
	return s
}

// GetDriver returns the persistence driver.
func (s *Store) GetDriver() Driver {
	return s.driver
}

// Catalog returns the current catalog snapshot.
func (s *Store) Catalog() *Catalog {
	return s.catalog.Load()
}

// LoadCatalog replaces the in-memory snapshot with the persisted items.
// A missing or empty snapshot store is not an error; the server starts with
// an empty catalog and fills it on the next harvest.
func (s *Store) LoadCatalog(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}
	if err := s.driver.Migrate(ctx); err != nil {
		return errors.Wrap(err, "failed to migrate snapshot store")
	}
	items, err := s.driver.ListItems(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to load catalog snapshot")
	}
	s.catalog.Store(NewCatalog(items...))
	slog.Info("catalog snapshot loaded", "items", len(items))
	return nil
}

// Merge applies fn to the current catalog under the merge lock and swaps in
// the catalog it returns, persisting the new items. fn runs off to the side;
// readers keep scanning the old snapshot until the swap.
func (s *Store) Merge(ctx context.Context, fn func(current *Catalog) (*Catalog, []*Item, error)) error {
	s.mergeMu.Lock()
	defer s.mergeMu.Unlock()

	next, added, err := fn(s.catalog.Load())
	if err != nil {
		return err
	}
	if s.driver != nil && len(added) > 0 {
		if err := s.driver.UpsertItems(ctx, added); err != nil {
			return errors.Wrap(err, "failed to persist merged items")
		}
	}
	s.catalog.Store(next)
	return nil
}

// Close releases the driver.
func (s *Store) Close() error {
	if s.driver == nil {
		return nil
	}
	return s.driver.Close()
}
