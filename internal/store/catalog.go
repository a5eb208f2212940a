package store

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/orbitlab/rocketminer/internal/model"
)

var (
	// ErrUnknownProvider is returned when a row references a provider id
	// that is not in the catalog.
	ErrUnknownProvider = errors.New("store: unknown provider")

	// ErrUnknownRocket is returned when a launch references a rocket id
	// that is not in the catalog.
	ErrUnknownRocket = errors.New("store: unknown rocket")

	// ErrDuplicateID is returned when two rows of the same kind share an id.
	ErrDuplicateID = errors.New("store: duplicate id")
)

// DateLayout is the wire format of launch dates in every backend.
const DateLayout = "2006-01-02"

// ProviderRow is the flat storage form of a launch service provider.
type ProviderRow struct {
	ID           string `json:"id" yaml:"id"`
	Name         string `json:"name" yaml:"name"`
	YearFounded  int    `json:"year_founded" yaml:"year_founded"`
	Country      string `json:"country" yaml:"country"`
	Headquarters string `json:"headquarters,omitempty" yaml:"headquarters,omitempty"`
}

// RocketRow is the flat storage form of a rocket.
type RocketRow struct {
	ID             string `json:"id" yaml:"id"`
	Name           string `json:"name" yaml:"name"`
	Country        string `json:"country" yaml:"country"`
	ManufacturerID string `json:"manufacturer_id" yaml:"manufacturer_id"`
	MassToLEO      string `json:"mass_to_leo,omitempty" yaml:"mass_to_leo,omitempty"`
	MassToGTO      string `json:"mass_to_gto,omitempty" yaml:"mass_to_gto,omitempty"`
	MassToOther    string `json:"mass_to_other,omitempty" yaml:"mass_to_other,omitempty"`
}

// LaunchRow is the flat storage form of a launch. Price is kept as text so
// that no backend round-trips money through float64.
type LaunchRow struct {
	ID         string  `json:"id" yaml:"id"`
	LaunchDate string  `json:"launch_date" yaml:"launch_date"` // YYYY-MM-DD
	LaunchSite string  `json:"launch_site,omitempty" yaml:"launch_site,omitempty"`
	Orbit      string  `json:"orbit" yaml:"orbit"`
	Outcome    string  `json:"outcome,omitempty" yaml:"outcome,omitempty"` // SUCCESSFUL, FAILED or empty
	Price      *string `json:"price,omitempty" yaml:"price,omitempty"`
	RocketID   string  `json:"rocket_id,omitempty" yaml:"rocket_id,omitempty"`
	ProviderID string  `json:"provider_id,omitempty" yaml:"provider_id,omitempty"`
}

// Catalog is a complete set of flat rows, in storage order.
type Catalog struct {
	Providers []ProviderRow `json:"providers" yaml:"providers"`
	Rockets   []RocketRow   `json:"rockets" yaml:"rockets"`
	Launches  []LaunchRow   `json:"launches" yaml:"launches"`
}

// Snapshot is a linked, point-in-time view of a catalog.
type Snapshot struct {
	Providers []*model.LaunchServiceProvider
	Launches  []*model.Launch
}

// Build validates the rows and links them into model records. Row order is
// preserved; rows without an id receive a random one. Every call returns
// newly allocated records.
func (c *Catalog) Build() (*Snapshot, error) {
	providers := make(map[string]*model.LaunchServiceProvider, len(c.Providers))
	snap := &Snapshot{
		Providers: make([]*model.LaunchServiceProvider, 0, len(c.Providers)),
		Launches:  make([]*model.Launch, 0, len(c.Launches)),
	}

	for _, row := range c.Providers {
		p, err := model.NewLaunchServiceProvider(row.Name, row.YearFounded, row.Country)
		if err != nil {
			return nil, fmt.Errorf("provider %s: %w", row.ID, err)
		}
		if row.Headquarters != "" {
			if err := p.SetHeadquarters(row.Headquarters); err != nil {
				return nil, fmt.Errorf("provider %s: %w", row.ID, err)
			}
		}
		p.ID = rowID(row.ID)
		if _, dup := providers[p.ID]; dup {
			return nil, fmt.Errorf("%w: provider %s", ErrDuplicateID, p.ID)
		}
		providers[p.ID] = p
		snap.Providers = append(snap.Providers, p)
	}

	rockets := make(map[string]*model.Rocket, len(c.Rockets))
	for _, row := range c.Rockets {
		maker, ok := providers[row.ManufacturerID]
		if !ok {
			return nil, fmt.Errorf("%w: %q (rocket %s)", ErrUnknownProvider, row.ManufacturerID, row.Name)
		}
		r, err := buildRocket(row, maker)
		if err != nil {
			return nil, fmt.Errorf("rocket %s: %w", row.Name, err)
		}
		if _, dup := rockets[r.ID]; dup {
			return nil, fmt.Errorf("%w: rocket %s", ErrDuplicateID, r.ID)
		}
		rockets[r.ID] = r

		owned := append(append([]*model.Rocket(nil), maker.Rockets...), r)
		if err := maker.SetRockets(owned); err != nil {
			return nil, fmt.Errorf("rocket %s: %w", row.Name, err)
		}
	}

	for _, row := range c.Launches {
		l, err := buildLaunch(row, rockets, providers)
		if err != nil {
			return nil, fmt.Errorf("launch %s: %w", row.ID, err)
		}
		snap.Launches = append(snap.Launches, l)
	}

	return snap, nil
}

func buildRocket(row RocketRow, maker *model.LaunchServiceProvider) (*model.Rocket, error) {
	r, err := model.NewRocket(row.Name, row.Country, maker)
	if err != nil {
		return nil, err
	}
	if err := r.SetMassToLEO(row.MassToLEO); err != nil {
		return nil, err
	}
	if err := r.SetMassToGTO(row.MassToGTO); err != nil {
		return nil, err
	}
	if err := r.SetMassToOther(row.MassToOther); err != nil {
		return nil, err
	}
	r.ID = rowID(row.ID)
	return r, nil
}

func buildLaunch(row LaunchRow, rockets map[string]*model.Rocket, providers map[string]*model.LaunchServiceProvider) (*model.Launch, error) {
	date, err := time.Parse(DateLayout, row.LaunchDate)
	if err != nil {
		return nil, fmt.Errorf("%w: launch date %q", model.ErrInvalidRecord, row.LaunchDate)
	}

	l := &model.Launch{
		ID:         rowID(row.ID),
		LaunchDate: date,
		LaunchSite: row.LaunchSite,
		Orbit:      row.Orbit,
		Outcome:    model.LaunchOutcome(row.Outcome),
	}

	if row.RocketID != "" {
		r, ok := rockets[row.RocketID]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownRocket, row.RocketID)
		}
		l.Vehicle = r
	}
	if row.ProviderID != "" {
		p, ok := providers[row.ProviderID]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, row.ProviderID)
		}
		l.Provider = p
	}
	if row.Price != nil {
		price, err := decimal.NewFromString(*row.Price)
		if err != nil {
			return nil, fmt.Errorf("%w: price %q", model.ErrInvalidRecord, *row.Price)
		}
		l.Price = model.Priced(price)
	}

	if err := l.Validate(); err != nil {
		return nil, err
	}
	return l, nil
}

// prepared returns a copy of c with every missing id filled in, after
// checking that the copy links. Backends that persist rows seed from it.
func (c *Catalog) prepared() (*Catalog, error) {
	out := &Catalog{
		Providers: append([]ProviderRow(nil), c.Providers...),
		Rockets:   append([]RocketRow(nil), c.Rockets...),
		Launches:  append([]LaunchRow(nil), c.Launches...),
	}
	for i := range out.Providers {
		out.Providers[i].ID = rowID(out.Providers[i].ID)
	}
	for i := range out.Rockets {
		out.Rockets[i].ID = rowID(out.Rockets[i].ID)
	}
	for i := range out.Launches {
		out.Launches[i].ID = rowID(out.Launches[i].ID)
	}
	if _, err := out.Build(); err != nil {
		return nil, err
	}
	return out, nil
}

func rowID(id string) string {
	if id == "" {
		return uuid.NewString()
	}
	return id
}
