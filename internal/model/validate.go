package model

import (
	"errors"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

// ErrInvalidRecord matches every ValidationError via errors.Is.
var ErrInvalidRecord = errors.New("model: invalid record")

// ValidationError reports the first constraint a record field violated.
// Error returns the message verbatim.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidRecord }

func invalid(msg string) error { return &ValidationError{Msg: msg} }

// lettersAndSpaces rejects digits and special characters.
var lettersAndSpaces = regexp.MustCompile(`^[A-Za-z ]+$`)

// MinYearFounded is the earliest founding year a provider may carry.
const MinYearFounded = 1500

// check runs rules in order and returns the first failure.
func check(rules ...func() error) error {
	for _, rule := range rules {
		if err := rule(); err != nil {
			return err
		}
	}
	return nil
}

func notBlank(value, msg string) func() error {
	return func() error {
		if strings.TrimSpace(value) == "" {
			return invalid(msg)
		}
		return nil
	}
}

func trimmed(value, msg string) func() error {
	return func() error {
		if value != strings.TrimSpace(value) {
			return invalid(msg)
		}
		return nil
	}
}

func lengthBetween(value string, lo, hi int, msg string) func() error {
	return func() error {
		n := utf8.RuneCountInString(value)
		if n < lo || n > hi {
			return invalid(msg)
		}
		return nil
	}
}

func plainWords(value, msg string) func() error {
	return func() error {
		if !lettersAndSpaces.MatchString(value) {
			return invalid(msg)
		}
		return nil
	}
}

// NewLaunchServiceProvider validates and builds a provider. A founding year
// of 0 records an unknown year; any other value must lie in
// [MinYearFounded, current year].
func NewLaunchServiceProvider(name string, yearFounded int, country string) (*LaunchServiceProvider, error) {
	err := check(
		notBlank(name, "name cannot be null or empty"),
		notBlank(country, "country cannot be null or empty"),
		trimmed(name, "There should be no empty space at the beginning or the end of a name"),
		trimmed(country, "There should be no empty space at the beginning or the end of a country"),
		lengthBetween(name, 2, 40, "The length of the name must be equal or greater than 2 and equal or smaller than 40"),
		func() error {
			if yearFounded == 0 {
				return nil
			}
			if yearFounded < MinYearFounded || yearFounded > time.Now().Year() {
				return invalid("yearFounder must be equal or greater than 1500 and equal or smaller than current year")
			}
			return nil
		},
		lengthBetween(country, 2, 40, "The length of the country must be equal or greater than 2 and equal or smaller than 40"),
		plainWords(country, "country cannot have numbers or special characters"),
	)
	if err != nil {
		return nil, err
	}
	return &LaunchServiceProvider{Name: name, YearFounded: yearFounded, Country: country}, nil
}

// SetHeadquarters validates and records the provider's headquarters.
func (p *LaunchServiceProvider) SetHeadquarters(headquarters string) error {
	err := check(
		notBlank(headquarters, "Headquarters cannot be null or empty"),
		trimmed(headquarters, "There should be no empty space at the beginning or the end of a headquarters"),
		lengthBetween(headquarters, 2, 20, "The length of the headquarters must be equal or greater than 2 and equal or smaller than 20"),
		plainWords(headquarters, "Headquarters must not contain special characters or numbers"),
	)
	if err != nil {
		return err
	}
	p.Headquarters = headquarters
	return nil
}

// SetRockets replaces the provider's rocket set. Every rocket must share
// the provider's country.
func (p *LaunchServiceProvider) SetRockets(rockets []*Rocket) error {
	if rockets == nil {
		return invalid("Rockets cannot be null")
	}
	for _, r := range rockets {
		if r == nil {
			return invalid("Every rocket cannot be null")
		}
	}
	for _, r := range rockets {
		if r.Country != p.Country {
			return invalid("Every rocket must share the same country with the service provider")
		}
	}
	p.Rockets = rockets
	return nil
}

// NewRocket validates and builds a rocket.
func NewRocket(name, country string, manufacturer *LaunchServiceProvider) (*Rocket, error) {
	err := check(
		notBlank(name, "name cannot be null or empty"),
		notBlank(country, "country cannot be null or empty"),
		func() error {
			if manufacturer == nil {
				return invalid("manufacturer cannot be null")
			}
			return nil
		},
		trimmed(name, "There should be no empty space at the beginning or the end of a name"),
		trimmed(country, "There should be no empty space at the beginning or the end of a country"),
		lengthBetween(name, 2, 40, "The length of the name must be equal or greater than 2 and equal or smaller than 40"),
		lengthBetween(country, 2, 40, "The length of the country must be equal or greater than 2 and equal or smaller than 40"),
		plainWords(country, "country cannot have numbers or special characters"),
	)
	if err != nil {
		return nil, err
	}
	return &Rocket{Name: name, Country: country, Manufacturer: manufacturer}, nil
}

func payloadMass(value, field string) error {
	return check(
		trimmed(value, "There should be no empty space at the beginning or the end of "+field),
		lengthBetween(value, 0, 30, "The length of the "+field+" must be equal or greater than 0 and equal or smaller than 30"),
	)
}

// SetMassToLEO records the payload capacity to low earth orbit.
func (r *Rocket) SetMassToLEO(mass string) error {
	if err := payloadMass(mass, "massToLEO"); err != nil {
		return err
	}
	r.MassToLEO = mass
	return nil
}

// SetMassToGTO records the payload capacity to geostationary transfer orbit.
func (r *Rocket) SetMassToGTO(mass string) error {
	if err := payloadMass(mass, "massToGTO"); err != nil {
		return err
	}
	r.MassToGTO = mass
	return nil
}

// SetMassToOther records the payload capacity to any other orbit.
func (r *Rocket) SetMassToOther(mass string) error {
	if err := payloadMass(mass, "massToOther"); err != nil {
		return err
	}
	r.MassToOther = mass
	return nil
}

// Validate checks the invariants the analytics engine relies on: a dated
// launch, a known outcome value, a non-negative price, and vehicle and
// provider references whenever the outcome is recorded.
func (l *Launch) Validate() error {
	switch {
	case l.LaunchDate.IsZero():
		return invalid("launch date cannot be null")
	case l.Outcome != OutcomeUnknown && l.Outcome != OutcomeSuccessful && l.Outcome != OutcomeFailed:
		return invalid("launch outcome must be 'SUCCESSFUL' or 'FAILED'")
	case l.Price.Valid && l.Price.Decimal.IsNegative():
		return invalid("price cannot be negative")
	case l.Outcome.Recorded() && l.Vehicle == nil:
		return invalid("launch vehicle cannot be null")
	case l.Outcome.Recorded() && l.Provider == nil:
		return invalid("launch service provider cannot be null")
	}
	return nil
}
