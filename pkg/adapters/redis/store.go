package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/storygraph/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces every key written by the store.
const DefaultPrefix = "storygraph:"

// Store implements ports.UnitStore using Redis.
//
// Each unit is a string key <prefix>unit:<id>. A sorted set <prefix>index
// holds every id with score 0, so ZRANGE returns them in lexical order.
type Store struct {
	client *backend.Client
	prefix string
}

// Option configures the Store.
type Option func(*Store)

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: DefaultPrefix,
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

func (s *Store) key(id string) string {
	return s.prefix + "unit:" + id
}

func (s *Store) indexKey() string {
	return s.prefix + "index"
}

// List returns the sorted unit ids from the index.
func (s *Store) List(ctx context.Context) ([]string, error) {
	ids, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list units: %w", err)
	}
	return ids, nil
}

// Read returns the text of a unit.
func (s *Store) Read(ctx context.Context, id string) (string, error) {
	val, err := s.client.Get(ctx, s.key(id)).Result()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return "", domain.ErrUnitNotFound
		}
		return "", fmt.Errorf("failed to get from redis: %w", err)
	}
	return val, nil
}

// Write stores the text and indexes the id.
func (s *Store) Write(ctx context.Context, id, text string) error {
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.key(id), text, 0)
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{Score: 0, Member: id})

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Delete removes the unit and its index entry.
func (s *Store) Delete(ctx context.Context, id string) error {
	pipe := s.client.TxPipeline()
	del := pipe.Del(ctx, s.key(id))
	pipe.ZRem(ctx, s.indexKey(), id)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete from redis: %w", err)
	}
	if del.Val() == 0 {
		return domain.ErrUnitNotFound
	}
	return nil
}

// Rename moves the unit with RENAMENX, so an existing target is never
// overwritten, then updates the index.
func (s *Store) Rename(ctx context.Context, oldID, newID string) error {
	n, err := s.client.Exists(ctx, s.key(oldID)).Result()
	if err != nil {
		return fmt.Errorf("failed to check unit: %w", err)
	}
	if n == 0 {
		return domain.ErrUnitNotFound
	}

	ok, err := s.client.RenameNX(ctx, s.key(oldID), s.key(newID)).Result()
	if err != nil {
		return fmt.Errorf("failed to rename unit: %w", err)
	}
	if !ok {
		return domain.ErrUnitExists
	}

	pipe := s.client.TxPipeline()
	pipe.ZRem(ctx, s.indexKey(), oldID)
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{Score: 0, Member: newID})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to update unit index: %w", err)
	}
	return nil
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
