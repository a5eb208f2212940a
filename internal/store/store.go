// Package store supplies launch catalog snapshots to the analytics engine.
// Implementations include PostgreSQL, SQLite (database/sql), Redis lists,
// YAML/JSON catalog files, and in-memory (for testing).
//
// Every implementation is read-only from the engine's point of view and
// returns a fresh snapshot per call, in a stable order.
package store

import (
	"context"

	"github.com/orbitlab/rocketminer/internal/model"
)

// RecordKind names a collection a RecordStore can load.
type RecordKind string

const (
	KindLaunch   RecordKind = "launch"
	KindProvider RecordKind = "provider"

	// KindRocket is never loaded directly; rockets arrive linked to the
	// launches and providers that reference them.
	KindRocket RecordKind = "rocket"
)

// Collection is the plural name a backend files the kind under: a SQL
// table or a Redis list suffix.
func (k RecordKind) Collection() string {
	if k == KindLaunch {
		return "launches"
	}
	return string(k) + "s"
}

// RecordStore is the engine's only collaborator. Rockets are reached
// through the launches that reference them.
type RecordStore interface {
	// LoadLaunches returns every launch, linked to its rocket and provider.
	LoadLaunches(ctx context.Context) ([]*model.Launch, error)

	// LoadProviders returns every launch service provider with its rockets.
	LoadProviders(ctx context.Context) ([]*model.LaunchServiceProvider, error)
}
