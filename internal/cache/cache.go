// Package cache persists resolved contact records keyed by normalized
// company and city. Backends: a JSON file, SQLite, and Postgres.
package cache

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/leadforge/leadscout/internal/config"
	"github.com/leadforge/leadscout/internal/model"
)

// Store is the contact cache. Get's second return reports whether the
// key was present. Records are cached regardless of whether the lookup
// found contacts; a cached empty record suppresses repeat API calls for
// companies known to have nothing.
type Store interface {
	Get(ctx context.Context, key string) (*model.ContactRecord, bool, error)
	Put(ctx context.Context, key string, rec *model.ContactRecord) error
	Clear(ctx context.Context) error
	Len(ctx context.Context) (int, error)
	Close() error
}

// Open creates the store selected by cfg.Driver.
func Open(ctx context.Context, cfg config.CacheConfig) (Store, error) {
	switch cfg.Driver {
	case "", "file":
		return NewFileStore(cfg.Path)
	case "sqlite":
		s, err := NewSQLiteStore(cfg.Path)
		if err != nil {
			return nil, err
		}
		if err := s.Migrate(ctx); err != nil {
			s.Close()
			return nil, err
		}
		return s, nil
	case "postgres":
		s, err := NewPostgresStore(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := s.Migrate(ctx); err != nil {
			s.Close()
			return nil, err
		}
		return s, nil
	default:
		return nil, eris.Errorf("cache: unknown driver %q", cfg.Driver)
	}
}
