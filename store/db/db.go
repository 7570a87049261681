// Package db provides the catalog snapshot driver factory.
package db

import (
	"github.com/pkg/errors"

	"github.com/uwnexus/watsnew/internal/profile"
	"github.com/uwnexus/watsnew/store"
	"github.com/uwnexus/watsnew/store/db/memory"
	"github.com/uwnexus/watsnew/store/db/postgres"
	"github.com/uwnexus/watsnew/store/db/sqlite"
)

// NewDBDriver creates a new catalog snapshot driver based on the profile.
func NewDBDriver(p *profile.Profile) (store.Driver, error) {
	switch p.Driver {
	case "", "memory":
		return memory.NewDB(), nil
	case "sqlite":
		return sqlite.NewDB(p)
	case "postgres":
		return postgres.NewDB(p)
	default:
		return nil, errors.Errorf("unknown catalog driver %q", p.Driver)
	}
}
