package store

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/orbitlab/rocketminer/internal/model"
)

// FileStore implements RecordStore over a YAML catalog file. JSON files
// parse too. The file is re-read on every call so edits are picked up by
// the next query.
type FileStore struct {
	path string
}

// NewFileStore creates a store reading the catalog at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// ReadCatalog decodes a catalog file without linking it.
func ReadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}

	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode catalog %s: %w", path, err)
	}
	return &c, nil
}

func (s *FileStore) snapshot() (*Snapshot, error) {
	c, err := ReadCatalog(s.path)
	if err != nil {
		return nil, err
	}
	snap, err := c.Build()
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", s.path, err)
	}
	return snap, nil
}

func (s *FileStore) LoadLaunches(_ context.Context) ([]*model.Launch, error) {
	snap, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	return snap.Launches, nil
}

func (s *FileStore) LoadProviders(_ context.Context) ([]*model.LaunchServiceProvider, error) {
	snap, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	return snap.Providers, nil
}
