package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/orbitlab/rocketminer/internal/model"

	_ "modernc.org/sqlite"
)

// SQLStore implements RecordStore over database/sql using the SQLite
// schema and placeholders.
type SQLStore struct {
	db *sql.DB
}

// NewSQLStore wraps an open database handle.
func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

// OpenSQLite opens the SQLite database at path. Use ":memory:" for a
// private in-memory database; it is pinned to one connection so every
// query sees the same data.
func OpenSQLite(ctx context.Context, path string) (*SQLStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return &SQLStore{db: db}, nil
}

// DB exposes the handle for migrations.
func (s *SQLStore) DB() *sql.DB { return s.db }

// Close closes the underlying database.
func (s *SQLStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLStore) queryRows(ctx context.Context, query string) (rows, func(), error) {
	r, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, nil, err
	}
	return r, func() { _ = r.Close() }, nil
}

func (s *SQLStore) LoadLaunches(ctx context.Context) ([]*model.Launch, error) {
	snap, err := snapshotFrom(ctx, s, KindLaunch)
	if err != nil {
		return nil, err
	}
	return snap.Launches, nil
}

func (s *SQLStore) LoadProviders(ctx context.Context) ([]*model.LaunchServiceProvider, error) {
	snap, err := snapshotFrom(ctx, s, KindProvider)
	if err != nil {
		return nil, err
	}
	return snap.Providers, nil
}

// Seed validates c and inserts its rows in one transaction, appending to
// whatever the tables already hold.
func (s *SQLStore) Seed(ctx context.Context, c *Catalog) error {
	c, err := c.prepared()
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, p := range c.Providers {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO providers (id, name, year_founded, country, headquarters) VALUES (?, ?, ?, ?, ?)`,
			p.ID, p.Name, p.YearFounded, p.Country, nullable(p.Headquarters)); err != nil {
			return fmt.Errorf("insert provider %s: %w", p.ID, err)
		}
	}
	for _, r := range c.Rockets {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO rockets (id, name, country, manufacturer_id, mass_to_leo, mass_to_gto, mass_to_other)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			r.ID, r.Name, r.Country, r.ManufacturerID,
			nullable(r.MassToLEO), nullable(r.MassToGTO), nullable(r.MassToOther)); err != nil {
			return fmt.Errorf("insert rocket %s: %w", r.ID, err)
		}
	}
	for _, l := range c.Launches {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO launches (id, launch_date, launch_site, orbit, outcome, price, rocket_id, provider_id)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			l.ID, l.LaunchDate, nullable(l.LaunchSite), l.Orbit, nullable(l.Outcome),
			nullablePtr(l.Price), nullable(l.RocketID), nullable(l.ProviderID)); err != nil {
			return fmt.Errorf("insert launch %s: %w", l.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed: %w", err)
	}
	return nil
}

// nullable maps the empty string to SQL NULL.
func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullablePtr(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
