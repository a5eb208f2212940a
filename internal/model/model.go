// Package model defines the launch catalog records read by the analytics engine.
// All monetary values use shopspring/decimal, never float64.
package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// LaunchOutcome is the recorded result of a launch. The zero value means
// the outcome was never recorded.
type LaunchOutcome string

const (
	OutcomeUnknown    LaunchOutcome = ""
	OutcomeSuccessful LaunchOutcome = "SUCCESSFUL"
	OutcomeFailed     LaunchOutcome = "FAILED"
)

// Recorded reports whether the launch has a known outcome.
func (o LaunchOutcome) Recorded() bool {
	return o != OutcomeUnknown
}

// Orbit codes a launch can target.
const (
	OrbitLEO   = "LEO"
	OrbitGTO   = "GTO"
	OrbitOther = "Other"
)

// ProviderKey is the value identity of a provider: two providers with the
// same name, founding year and country are the same organization.
type ProviderKey struct {
	Name        string
	YearFounded int
	Country     string
}

// RocketKey is the value identity of a rocket.
type RocketKey struct {
	Name         string
	Country      string
	Manufacturer ProviderKey
}

// LaunchServiceProvider manufactures rockets and/or conducts launches.
// YearFounded == 0 means the founding year is unknown.
type LaunchServiceProvider struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	YearFounded  int       `json:"year_founded"`
	Country      string    `json:"country"`
	Headquarters string    `json:"headquarters,omitempty"`
	Rockets      []*Rocket `json:"-"` // ordered set, manufactured by this provider
}

// Key returns the provider's value identity.
func (p *LaunchServiceProvider) Key() ProviderKey {
	if p == nil {
		return ProviderKey{}
	}
	return ProviderKey{Name: p.Name, YearFounded: p.YearFounded, Country: p.Country}
}

// Equal reports value equality by (name, year founded, country).
func (p *LaunchServiceProvider) Equal(other *LaunchServiceProvider) bool {
	if p == nil || other == nil {
		return p == other
	}
	return p.Key() == other.Key()
}

func (p *LaunchServiceProvider) String() string {
	if p == nil {
		return "<nil provider>"
	}
	return fmt.Sprintf("%s (%s, %d)", p.Name, p.Country, p.YearFounded)
}

// Rocket is a launch vehicle.
type Rocket struct {
	ID           string                 `json:"id"`
	Name         string                 `json:"name"`
	Country      string                 `json:"country"`
	Manufacturer *LaunchServiceProvider `json:"manufacturer"`
	MassToLEO    string                 `json:"mass_to_leo,omitempty"`
	MassToGTO    string                 `json:"mass_to_gto,omitempty"`
	MassToOther  string                 `json:"mass_to_other,omitempty"`
}

// Key returns the rocket's value identity.
func (r *Rocket) Key() RocketKey {
	if r == nil {
		return RocketKey{}
	}
	return RocketKey{Name: r.Name, Country: r.Country, Manufacturer: r.Manufacturer.Key()}
}

// Equal reports value equality by (name, country, manufacturer).
func (r *Rocket) Equal(other *Rocket) bool {
	if r == nil || other == nil {
		return r == other
	}
	return r.Key() == other.Key()
}

func (r *Rocket) String() string {
	if r == nil {
		return "<nil rocket>"
	}
	return fmt.Sprintf("%s (%s, by %s)", r.Name, r.Country, r.Manufacturer.String())
}

// Launch is one attempted flight. Price is absent for many launches.
type Launch struct {
	ID         string                 `json:"id"`
	LaunchDate time.Time              `json:"launch_date"`
	LaunchSite string                 `json:"launch_site,omitempty"`
	Orbit      string                 `json:"orbit"`
	Outcome    LaunchOutcome          `json:"outcome,omitempty"`
	Price      decimal.NullDecimal    `json:"price"`
	Vehicle    *Rocket                `json:"vehicle"`
	Provider   *LaunchServiceProvider `json:"provider"`
}

// Date returns a calendar date at UTC midnight. Launch dates carry no time of day.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Priced wraps an amount as a recorded launch price.
func Priced(amount decimal.Decimal) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: amount, Valid: true}
}
