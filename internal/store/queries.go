package store

import (
	"context"
	"fmt"
)

// Column lists are shared by every SQL backend. Money and dates are read as
// text so neither driver converts them to float64 or time.Time with a zone.
const (
	selectProviders = `SELECT id, name, year_founded, country, COALESCE(headquarters, '')
		 FROM providers ORDER BY seq`

	selectRockets = `SELECT id, name, country, manufacturer_id,
		        COALESCE(mass_to_leo, ''), COALESCE(mass_to_gto, ''), COALESCE(mass_to_other, '')
		 FROM rockets ORDER BY seq`

	selectLaunches = `SELECT id, CAST(launch_date AS TEXT), COALESCE(launch_site, ''), orbit,
		        COALESCE(outcome, ''), CAST(price AS TEXT),
		        COALESCE(rocket_id, ''), COALESCE(provider_id, '')
		 FROM launches ORDER BY seq`
)

// rows is the cursor surface shared by pgx.Rows and *sql.Rows.
type rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

// querier runs a read-only statement. release must be called once the
// cursor has been drained.
type querier interface {
	queryRows(ctx context.Context, query string) (r rows, release func(), err error)
}

// loadCatalog reads the rows needed to link the requested kind. Providers
// and rockets are always read; launches only for KindLaunch.
func loadCatalog(ctx context.Context, q querier, kind RecordKind) (*Catalog, error) {
	var c Catalog
	var err error

	if c.Providers, err = collect(ctx, q, selectProviders, scanProvider); err != nil {
		return nil, fmt.Errorf("load %s: %w", KindProvider.Collection(), err)
	}
	if c.Rockets, err = collect(ctx, q, selectRockets, scanRocket); err != nil {
		return nil, fmt.Errorf("load %s: %w", KindRocket.Collection(), err)
	}
	if kind == KindLaunch {
		if c.Launches, err = collect(ctx, q, selectLaunches, scanLaunch); err != nil {
			return nil, fmt.Errorf("load %s: %w", KindLaunch.Collection(), err)
		}
	}
	return &c, nil
}

func collect[T any](ctx context.Context, q querier, query string, scan func(rows) (T, error)) ([]T, error) {
	r, release, err := q.queryRows(ctx, query)
	if err != nil {
		return nil, err
	}
	defer release()

	var out []T
	for r.Next() {
		v, err := scan(r)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, r.Err()
}

func scanProvider(r rows) (ProviderRow, error) {
	var p ProviderRow
	err := r.Scan(&p.ID, &p.Name, &p.YearFounded, &p.Country, &p.Headquarters)
	return p, err
}

func scanRocket(r rows) (RocketRow, error) {
	var rk RocketRow
	err := r.Scan(&rk.ID, &rk.Name, &rk.Country, &rk.ManufacturerID,
		&rk.MassToLEO, &rk.MassToGTO, &rk.MassToOther)
	return rk, err
}

func scanLaunch(r rows) (LaunchRow, error) {
	var l LaunchRow
	err := r.Scan(&l.ID, &l.LaunchDate, &l.LaunchSite, &l.Orbit,
		&l.Outcome, &l.Price, &l.RocketID, &l.ProviderID)
	return l, err
}

// snapshotFrom loads and links a catalog through q.
func snapshotFrom(ctx context.Context, q querier, kind RecordKind) (*Snapshot, error) {
	c, err := loadCatalog(ctx, q, kind)
	if err != nil {
		return nil, err
	}
	return c.Build()
}
