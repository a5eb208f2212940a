package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/orbitlab/rocketminer/internal/config"
	"github.com/orbitlab/rocketminer/internal/store"
)

// errWriteUnsupported is returned by write commands on drivers that
// cannot persist a catalog.
var errWriteUnsupported = errors.New("cli: driver does not support this command")

// seeder is a backend that can load a catalog.
type seeder interface {
	store.RecordStore
	Seed(ctx context.Context, c *store.Catalog) error
}

// openStore builds the record store selected by sc. The returned func
// releases it and is never nil.
func openStore(ctx context.Context, sc config.StoreConfig) (store.RecordStore, func(), error) {
	switch sc.Driver {
	case config.DriverMemory:
		c, err := store.ReadCatalog(sc.Path)
		if err != nil {
			return nil, nil, err
		}
		st, err := store.NewMemoryStoreFromCatalog(c)
		if err != nil {
			return nil, nil, fmt.Errorf("catalog %s: %w", sc.Path, err)
		}
		return st, func() {}, nil
	case config.DriverFile:
		return store.NewFileStore(sc.Path), func() {}, nil
	case config.DriverSQLite, config.DriverPostgres:
		b, err := openSQL(ctx, sc)
		if err != nil {
			return nil, nil, err
		}
		return b, b.close, nil
	case config.DriverRedis:
		st, err := store.ConnectRedis(ctx, sc.RedisURL, redisPrefix(sc))
		if err != nil {
			return nil, nil, err
		}
		return st, func() { _ = st.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("%w: unknown store driver %q", config.ErrInvalidConfig, sc.Driver)
	}
}

// sqlBackend is a SQL record store that can also be migrated and seeded.
type sqlBackend struct {
	seeder
	dialect store.Dialect
	db      func() *sql.DB
	close   func()
}

// openSQL connects to the SQLite or PostgreSQL backend selected by sc.
func openSQL(ctx context.Context, sc config.StoreConfig) (*sqlBackend, error) {
	switch sc.Driver {
	case config.DriverSQLite:
		st, err := store.OpenSQLite(ctx, sc.Path)
		if err != nil {
			return nil, err
		}
		return &sqlBackend{seeder: st, dialect: store.DialectSQLite, db: st.DB, close: func() { _ = st.Close() }}, nil
	case config.DriverPostgres:
		st, err := store.ConnectPostgres(ctx, sc.DSN)
		if err != nil {
			return nil, err
		}
		return &sqlBackend{seeder: st, dialect: store.DialectPostgres, db: st.DB, close: st.Close}, nil
	default:
		return nil, fmt.Errorf("%w: %s", errWriteUnsupported, sc.Driver)
	}
}

// migrate brings the schema up to date and returns its version.
func (b *sqlBackend) migrate(ctx context.Context) (int64, error) {
	db := b.db()
	if b.dialect == store.DialectPostgres {
		defer db.Close()
	}
	if err := store.Migrate(ctx, db, b.dialect); err != nil {
		return 0, err
	}
	return store.MigrationVersion(ctx, db, b.dialect)
}

func redisPrefix(sc config.StoreConfig) string {
	if sc.RedisPrefix == "" {
		return store.DefaultRedisPrefix
	}
	return sc.RedisPrefix
}
