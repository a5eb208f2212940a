package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/orbitlab/rocketminer/internal/model"
)

// DefaultRedisPrefix namespaces catalog keys when no prefix is configured.
const DefaultRedisPrefix = "rocketminer"

// RedisStore implements RecordStore over three Redis lists holding one
// JSON row per element. List order is catalog order.
type RedisStore struct {
	rdb    redis.UniversalClient
	prefix string
}

// NewRedisStore creates a store reading lists under prefix.
func NewRedisStore(rdb redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisStore{rdb: rdb, prefix: prefix}
}

// ConnectRedis parses a redis:// URL and checks the server is reachable.
func ConnectRedis(ctx context.Context, url, prefix string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return NewRedisStore(rdb, prefix), nil
}

// Close closes the client.
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}

func (s *RedisStore) LoadLaunches(ctx context.Context) ([]*model.Launch, error) {
	snap, err := s.snapshot(ctx, KindLaunch)
	if err != nil {
		return nil, err
	}
	return snap.Launches, nil
}

func (s *RedisStore) LoadProviders(ctx context.Context) ([]*model.LaunchServiceProvider, error) {
	snap, err := s.snapshot(ctx, KindProvider)
	if err != nil {
		return nil, err
	}
	return snap.Providers, nil
}

// snapshot reads every list the kind depends on in a single round trip.
func (s *RedisStore) snapshot(ctx context.Context, kind RecordKind) (*Snapshot, error) {
	pipe := s.rdb.Pipeline()
	providers := pipe.LRange(ctx, s.listKey(KindProvider), 0, -1)
	rockets := pipe.LRange(ctx, s.listKey(KindRocket), 0, -1)
	var launches *redis.StringSliceCmd
	if kind == KindLaunch {
		launches = pipe.LRange(ctx, s.listKey(KindLaunch), 0, -1)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("load %s catalog: %w", kind, err)
	}

	var c Catalog
	var err error
	if c.Providers, err = decodeRows[ProviderRow](KindProvider, providers.Val()); err != nil {
		return nil, err
	}
	if c.Rockets, err = decodeRows[RocketRow](KindRocket, rockets.Val()); err != nil {
		return nil, err
	}
	if launches != nil {
		if c.Launches, err = decodeRows[LaunchRow](KindLaunch, launches.Val()); err != nil {
			return nil, err
		}
	}
	return c.Build()
}

// Seed validates c and appends its rows to the lists in one MULTI/EXEC.
func (s *RedisStore) Seed(ctx context.Context, c *Catalog) error {
	c, err := c.prepared()
	if err != nil {
		return err
	}

	providers, err := encodeRows(c.Providers)
	if err != nil {
		return err
	}
	rockets, err := encodeRows(c.Rockets)
	if err != nil {
		return err
	}
	launches, err := encodeRows(c.Launches)
	if err != nil {
		return err
	}

	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for kind, vals := range map[RecordKind][]any{
			KindProvider: providers,
			KindRocket:   rockets,
			KindLaunch:   launches,
		} {
			if len(vals) > 0 {
				pipe.RPush(ctx, s.listKey(kind), vals...)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("seed catalog: %w", err)
	}
	return nil
}

func (s *RedisStore) listKey(kind RecordKind) string {
	return s.prefix + ":" + kind.Collection()
}

func decodeRows[T any](kind RecordKind, vals []string) ([]T, error) {
	out := make([]T, 0, len(vals))
	for i, v := range vals {
		var row T
		if err := json.Unmarshal([]byte(v), &row); err != nil {
			return nil, fmt.Errorf("%w: %s row %d: %v", model.ErrInvalidRecord, kind, i, err)
		}
		out = append(out, row)
	}
	return out, nil
}

func encodeRows[T any](in []T) ([]any, error) {
	out := make([]any, 0, len(in))
	for _, row := range in {
		data, err := json.Marshal(row)
		if err != nil {
			return nil, err
		}
		out = append(out, data)
	}
	return out, nil
}
