package store

import (
	"context"
	"sync"

	"github.com/orbitlab/rocketminer/internal/model"
)

// MemoryStore implements RecordStore with in-memory slices. Used for testing
// and development. Not suitable for production (no persistence).
type MemoryStore struct {
	mu        sync.RWMutex
	launches  []*model.Launch
	providers []*model.LaunchServiceProvider
}

// NewMemoryStore creates an in-memory store holding the given records.
func NewMemoryStore(launches []*model.Launch, providers []*model.LaunchServiceProvider) *MemoryStore {
	return &MemoryStore{
		launches:  append([]*model.Launch(nil), launches...),
		providers: append([]*model.LaunchServiceProvider(nil), providers...),
	}
}

// NewMemoryStoreFromCatalog links a catalog and serves the result.
func NewMemoryStoreFromCatalog(c *Catalog) (*MemoryStore, error) {
	snap, err := c.Build()
	if err != nil {
		return nil, err
	}
	return NewMemoryStore(snap.Launches, snap.Providers), nil
}

// AddLaunch appends a launch to the collection.
func (s *MemoryStore) AddLaunch(l *model.Launch) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.launches = append(s.launches, l)
}

// AddProvider appends a provider to the collection.
func (s *MemoryStore) AddProvider(p *model.LaunchServiceProvider) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.providers = append(s.providers, p)
}

// LoadLaunches returns a copy of the launch slice so that later additions
// never show up in a snapshot already handed out.
func (s *MemoryStore) LoadLaunches(_ context.Context) ([]*model.Launch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]*model.Launch(nil), s.launches...), nil
}

func (s *MemoryStore) LoadProviders(_ context.Context) ([]*model.LaunchServiceProvider, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]*model.LaunchServiceProvider(nil), s.providers...), nil
}
