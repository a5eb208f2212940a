package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/orbitlab/rocketminer/internal/model"
)

// PostgresStore implements RecordStore using PostgreSQL as the source of
// truth. Prices are stored as NUMERIC and read back as text for exact
// decimal precision.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL-backed store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// ConnectPostgres opens a pool for dsn and checks it is reachable.
func ConnectPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

// DB returns a database/sql view of the pool for migrations. Closing it
// does not close the pool.
func (s *PostgresStore) DB() *sql.DB {
	return stdlib.OpenDBFromPool(s.pool)
}

// Close releases every pooled connection.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) queryRows(ctx context.Context, query string) (rows, func(), error) {
	r, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, nil, err
	}
	return r, r.Close, nil
}

func (s *PostgresStore) LoadLaunches(ctx context.Context) ([]*model.Launch, error) {
	snap, err := snapshotFrom(ctx, s, KindLaunch)
	if err != nil {
		return nil, err
	}
	return snap.Launches, nil
}

func (s *PostgresStore) LoadProviders(ctx context.Context) ([]*model.LaunchServiceProvider, error) {
	snap, err := snapshotFrom(ctx, s, KindProvider)
	if err != nil {
		return nil, err
	}
	return snap.Providers, nil
}

// Seed validates c and inserts its rows as one batch inside a transaction.
func (s *PostgresStore) Seed(ctx context.Context, c *Catalog) error {
	c, err := c.prepared()
	if err != nil {
		return err
	}

	b := &pgx.Batch{}
	for _, p := range c.Providers {
		b.Queue(`INSERT INTO providers (id, name, year_founded, country, headquarters)
			 VALUES ($1, $2, $3, $4, NULLIF($5, ''))`,
			p.ID, p.Name, p.YearFounded, p.Country, p.Headquarters)
	}
	for _, r := range c.Rockets {
		b.Queue(`INSERT INTO rockets (id, name, country, manufacturer_id, mass_to_leo, mass_to_gto, mass_to_other)
			 VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''))`,
			r.ID, r.Name, r.Country, r.ManufacturerID, r.MassToLEO, r.MassToGTO, r.MassToOther)
	}
	for _, l := range c.Launches {
		b.Queue(`INSERT INTO launches (id, launch_date, launch_site, orbit, outcome, price, rocket_id, provider_id)
			 VALUES ($1, $2::DATE, NULLIF($3, ''), $4, NULLIF($5, ''), $6::NUMERIC, NULLIF($7, ''), NULLIF($8, ''))`,
			l.ID, l.LaunchDate, l.LaunchSite, l.Orbit, l.Outcome, l.Price, l.RocketID, l.ProviderID)
	}

	err = pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		return tx.SendBatch(ctx, b).Close()
	})
	if err != nil {
		return fmt.Errorf("seed catalog: %w", err)
	}
	return nil
}
